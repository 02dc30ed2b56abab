package env

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env (or the named files) into the process environment.
// Variables already set are not overwritten.
func LoadEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// lookup returns the parsed value of key, or fallback when it is unset, empty or unparsable
func lookup[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := parse(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func GetEnv(key string, defaultValue string) string {
	return lookup(key, defaultValue, func(s string) (string, error) { return s, nil })
}

func GetEnvInt(key string, defaultValue int) int {
	return lookup(key, defaultValue, strconv.Atoi)
}

func GetEnvFloat(key string, defaultValue float64) float64 {
	return lookup(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}
