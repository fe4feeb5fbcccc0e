package messaging

import (
	"time"

	"github.com/crmdemo/crm-core/libs/config"
)

// PublisherConfigFromEnv reads the broker settings the deployment provides.
// Defaults match a local single-broker setup.
func PublisherConfigFromEnv() PublisherConfig {
	return PublisherConfig{
		Brokers:      config.String("KAFKA_BROKERS", "localhost:9092"),
		DefaultTopic: config.String("KAFKA_DEFAULT_TOPIC", DefaultTopic),
		MaxAttempts:  config.Int("KAFKA_MAX_ATTEMPTS", 3),
		RetryBackoff: config.Duration("KAFKA_RETRY_BACKOFF", 100*time.Millisecond),
		WriteTimeout: config.Duration("KAFKA_WRITE_TIMEOUT", 10*time.Second),
	}
}
