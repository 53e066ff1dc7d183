package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a zap logger for the given mode ("production" or "development")
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	// Command output goes to stdout; keep logs off it
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
