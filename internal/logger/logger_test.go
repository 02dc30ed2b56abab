package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.TraceLevel, ParseLevel(" TRACE "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestInitWithWriter(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	InitWithWriter("warn", &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("pair", "a-b").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"pair":"a-b"`)
	assert.Contains(t, buf.String(), "shown")
}
