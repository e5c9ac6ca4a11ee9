package config

import (
	"fmt"
	"slices"
)

var backends = []string{BackendMemory, BackendRedis, BackendPostgres, BackendDynamoDB, BackendKafka}

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be > 0 (got %d)", c.Server.MaxBodyBytes)
	}
	if err := c.validateAudit(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}

func (c *Config) validateAudit() error {
	a := c.Audit
	if !slices.Contains(backends, a.Backend) {
		return fmt.Errorf("unknown backend %q (want one of %v)", a.Backend, backends)
	}
	if a.Retention <= 0 {
		return fmt.Errorf("retention must be > 0 (got %s)", a.Retention)
	}
	if !a.Enabled() {
		return nil
	}

	switch a.Backend {
	case BackendMemory:
		if a.PruneInterval <= 0 {
			return fmt.Errorf("prune_interval must be > 0 (got %s)", a.PruneInterval)
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis backend requires REDIS_URL")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres backend requires DATABASE_DSN")
		}
		if a.PruneInterval <= 0 {
			return fmt.Errorf("prune_interval must be > 0 (got %s)", a.PruneInterval)
		}
	case BackendDynamoDB:
		if c.DynamoDB.Region == "" {
			return fmt.Errorf("dynamodb backend requires AWS_REGION")
		}
	case BackendKafka:
		if len(c.Kafka.BrokerList()) == 0 {
			return fmt.Errorf("kafka backend requires KAFKA_BROKERS")
		}
	}
	return nil
}
