package envvar

import (
	"fmt"
	"os"
	"strconv"
)

const (
	UPLOAD_FOLDER       = "UPLOAD_FOLDER"
	OUTPUT_FOLDER       = "OUTPUT_FOLDER"
	PORT                = "PORT"
	LOG_LEVEL           = "LOG_LEVEL"
	SPLEETER_BIN_PATH   = "SPLEETER_BIN_PATH"
	SEPARATE_RATE_LIMIT = "SEPARATE_RATE_LIMIT"
	SEPARATE_RATE_BURST = "SEPARATE_RATE_BURST"
	RABBITMQ_URL        = "RABBITMQ_URL"
	RABBITMQ_QUEUE_NAME = "RABBITMQ_QUEUE_NAME"
	ALLOWED_FE_ORIGINS  = "ALLOWED_FE_ORIGINS"
)

func MustGet(key string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet {
		panic(fmt.Sprintf("No env variable found for key %s", key))
	}

	if val == "" {
		panic(fmt.Sprintf("Env variable is empty for key %s", key))
	}

	return val
}

func GetOrDefault(key string, fallback string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet || val == "" {
		return fallback
	}

	return val
}

func GetFloatOrDefault(key string, fallback float64) float64 {
	val, isSet := os.LookupEnv(key)
	if !isSet || val == "" {
		return fallback
	}

	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		panic(fmt.Sprintf("Env variable %s is not a number: %s", key, val))
	}

	return parsed
}

func GetIntOrDefault(key string, fallback int) int {
	val, isSet := os.LookupEnv(key)
	if !isSet || val == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		panic(fmt.Sprintf("Env variable %s is not an integer: %s", key, val))
	}

	return parsed
}
