package workspaces

import "time"

type Config struct {
	TerminatePollInterval time.Duration `envconfig:"PROVISIONER_TERMINATE_POLL_INTERVAL" default:"10s"`
	TerminateTimeout      time.Duration `envconfig:"PROVISIONER_TERMINATE_TIMEOUT" default:"90s"`
}

func DefaultConfig() Config {
	return Config{TerminatePollInterval: 10 * time.Second, TerminateTimeout: 90 * time.Second}
}
