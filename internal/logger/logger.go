// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger holds the process-wide logrus logger.
package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once   sync.Once
	logger *logrus.Logger
)

// Get returns the singleton logger. The level starts at Info and is
// adjusted once configuration is loaded.
func Get() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.Out = os.Stderr
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			PadLevelText:  true,
		})
	})
	return logger
}

// SetLevel parses level and applies it, falling back to Info when the
// value is empty or unknown.
func SetLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Get().SetLevel(lvl)
	return lvl
}
