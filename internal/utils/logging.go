package utils

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// NewLogger builds the process logger; development mode gets the console encoder.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// SetLogger installs l as the process logger.
func SetLogger(l *zap.Logger) {
	loggerOnce.Do(func() {})
	logger = l
}

func GetLogger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			l, err := zap.NewProduction()
			if err != nil {
				panic("Failed to initialize logger: " + err.Error())
			}
			logger = l
		}
	})
	return logger
}
