package logger

import (
	"go.uber.org/zap"
)

// New creates a zap logger for the given environment. "development" yields a
// human-readable console logger; anything else yields the JSON production logger.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NewNamed creates a logger for the environment with a service name attached.
func NewNamed(env, name string) (*zap.Logger, error) {
	log, err := New(env)
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
