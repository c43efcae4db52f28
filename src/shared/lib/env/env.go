package env

import "os"

type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
	Test        Environment = "test"
)

// Get falls back to Development when ENVIRONMENT is unset
func Get() Environment {
	environment, ok := os.LookupEnv("ENVIRONMENT")
	if environment == "" || !ok {
		return Development
	}

	switch environment {
	case "production":
		return Production
	case "development":
		return Development
	case "test":
		return Test
	default:
		panic("Invalid environment is set")
	}
}
