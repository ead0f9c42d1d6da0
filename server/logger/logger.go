package logger

import (
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a sugared zap logger. Set ADDRESSBOOK_ENV=production
// for JSON output, otherwise a colourised development logger is used.
func NewLogger() *zap.SugaredLogger {
	var config zap.Config

	switch strings.ToLower(os.Getenv("ADDRESSBOOK_ENV")) {
	case "prod", "production":
		config = zap.NewProductionConfig()
	default:
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		log.Panic(err)
	}

	// flushes buffer, if any
	defer logger.Sync()

	return logger.Sugar()
}
