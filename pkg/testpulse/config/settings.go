package config

import (
	"github.com/randalmurphal/testpulse/pkg/testpulse/event"
	"github.com/randalmurphal/testpulse/pkg/testpulse/perf"
)

// Expected file shape:
//
//	bus:
//	  max_concurrent_handlers: 8
//	  handler_timeout: 30s
//	  shutdown_grace_period: 5s
//	monitor:
//	  max_samples_per_key: 10000
//	  max_sample_age: 24h
//	  archive_path: ./reports.db

// BusConfigFrom maps the "bus" section onto event.BusConfig.
// Missing keys fall back to event.DefaultBusConfig. Logger, metrics,
// and span wiring stay with the caller.
func BusConfigFrom(cfg Config) event.BusConfig {
	section := cfg.Sub("bus")
	return event.BusConfig{
		MaxConcurrentHandlers: section.Int("max_concurrent_handlers", event.DefaultBusConfig.MaxConcurrentHandlers),
		HandlerTimeout:        section.Duration("handler_timeout", event.DefaultBusConfig.HandlerTimeout),
		ShutdownGracePeriod:   section.Duration("shutdown_grace_period", event.DefaultBusConfig.ShutdownGracePeriod),
	}
}

// MonitorConfigFrom maps the "monitor" section onto perf.MonitorConfig.
func MonitorConfigFrom(cfg Config) perf.MonitorConfig {
	section := cfg.Sub("monitor")
	return perf.MonitorConfig{
		MaxSamplesPerKey: section.Int("max_samples_per_key", perf.DefaultMonitorConfig.MaxSamplesPerKey),
		MaxSampleAge:     section.Duration("max_sample_age", 0),
	}
}

// ArchivePath returns the configured report archive path, or "" when
// archiving is disabled.
func ArchivePath(cfg Config) string {
	return cfg.Sub("monitor").String("archive_path", "")
}
