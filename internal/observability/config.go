package observability

import (
	"strings"

	"github.com/smallbiznis/haccp/internal/config"
)

// Config is the observability slice of the application configuration with
// defaults applied.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	obs := cfg.Observability
	out := Config{
		ServiceName:          firstNonEmpty(cfg.AppName, "haccp"),
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             firstNonEmpty(obs.LogLevel, "info"),
		LogFormat:            firstNonEmpty(obs.LogFormat, "json"),
		OtelEnabled:          obs.OtelEnabled,
		OtelExporterEndpoint: strings.TrimSpace(obs.OtelEndpoint),
		OtelExporterProtocol: firstNonEmpty(obs.OtelProtocol, "grpc"),
		OtelSamplingRatio:    obs.OtelSamplingRatio,
	}
	if out.OtelSamplingRatio < 0 || out.OtelSamplingRatio > 1 {
		out.OtelSamplingRatio = 1
	}
	if out.OtelExporterEndpoint == "" {
		out.OtelEnabled = false
	}
	return out
}

// Debug is true for an explicit debug level and for non-production
// deployments of the plant server.
func (c Config) Debug() bool {
	if strings.EqualFold(c.LogLevel, "debug") {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func firstNonEmpty(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}
