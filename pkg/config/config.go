// Package config loads application configuration from environment
// variables into annotated structs, with an optional .env file for
// local development.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
// the first Load call in a process reads the default .env file (if one
// exists), and every call parses the environment into the given struct
// using `env` field tags.
//
// # Usage
//
//	type ThrottleConfig struct {
//		MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
//		Window      time.Duration `env:"LOGIN_WINDOW" envDefault:"2m"`
//	}
//
//	var cfg ThrottleConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be
	// parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrNilPointer is returned when a nil pointer is provided to Load.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)

var defaultEnvLoaded sync.Once

// Load populates the struct from environment variables using its `env`
// field tags. The default .env file is read once per process; a missing
// file is not an error.
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if loading fails. Useful for
// configuration the application cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
