package gateway

import "time"

type Config struct {
	HTTPAddr        string        `envconfig:"PROVISIONER_HTTP_ADDR" default:"0.0.0.0:8080"`
	DBDSN           string        `envconfig:"PROVISIONER_DB_DSN"`
	MetricsAddr     string        `envconfig:"PROVISIONER_METRICS_ADDR" default:"0.0.0.0:9090"`
	LogLevel        string        `envconfig:"PROVISIONER_LOG_LEVEL" default:"info"`
	SendResponse    bool          `envconfig:"PROVISIONER_SEND_RESPONSE" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"PROVISIONER_SHUTDOWN_TIMEOUT" default:"30s"`
}
