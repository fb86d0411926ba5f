package lifeline

import (
	"os"
	"strconv"
	"time"
)

// An Environment is a different context in which a lifeline app operates.
type Environment string

const (
	Demo        Environment = "DEMO"
	Development Environment = "DEVELOPMENT"
	Production  Environment = "PRODUCTION"
	Review      Environment = "REVIEW"
	Staging     Environment = "STAGING"
	Testing     Environment = "TESTING"
)

func (e Environment) String() string { return string(e) }

func (e Environment) Valid() error {
	switch e {
	case Demo, Development, Production, Review, Staging, Testing:
		return nil
	default:
		return ErrNotValid
	}
}

func (e Environment) IsDevelopment() bool {
	return e == Development
}

func (e Environment) IsProduction() bool {
	return e == Production
}

func (e Environment) IsTesting() bool {
	return e == Testing
}

// ToolboxEnabled asserts whether the Environment enables the operator toolbox.
func (e Environment) ToolboxEnabled() bool {
	switch e {
	case Demo, Development, Staging, Testing:
		return true
	default:
		return false
	}
}

// EnvVarOrEnv gets the environment variable for the provided key,
// casting it into a valid Environment,
// or returns the provided default Environment.
func EnvVarOrEnv(key string, def Environment) Environment {
	e := Environment(os.Getenv(key))
	if e.Valid() != nil {
		return def
	}

	return e
}

// EnvVarOrBool gets the environment variable for the provided key,
// creates a bool from the retrieved value,
// or returns the provided default
// if the value is not a valid bool.
func EnvVarOrBool(key string, def bool) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}

	return val
}

// EnvVarOrDuration gets the environment variable for the provided key,
// creates a time.Duration from the retrieved value,
// or returns the provided default
// if the value is not a valid time.Duration.
func EnvVarOrDuration(key string, def time.Duration) time.Duration {
	val, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}

	return val
}

// EnvVarOrInt gets the environment variable for the provided key,
// creates an int from the retrieved value,
// or returns the provided default
// if the value is not a valid int.
func EnvVarOrInt(key string, def int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}

	return val
}

// EnvVarOrString gets the environment variable for the provided key or the provided default string.
func EnvVarOrString(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}

	return val
}
