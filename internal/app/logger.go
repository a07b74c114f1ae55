package app

import (
	"os"

	"cafe-delivery-service/internal/config"
	"cafe-delivery-service/internal/logx"
)

// NewLogger returns the JSON stdout logger tagged with the service name.
func NewLogger(cfg *config.Config, service string) logx.Logger {
	return logx.NewJSON(os.Stdout, cfg.LogLevel, service)
}
