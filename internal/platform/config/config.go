package config

import (
	"strings"
	"time"
)

// Audit backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
	BackendKafka    = "kafka"
)

// Default backends per entrypoint, applied when AUDIT_BACKEND is unset.
const (
	DefaultServerBackend = BackendMemory
	DefaultLambdaBackend = BackendDynamoDB
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Audit    AuditConfig    `yaml:"audit"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"                env:"SERVER_ADDR"                env-default:":8080"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"SERVER_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"    env:"SERVER_SHUTDOWN_TIMEOUT"    env-default:"10s"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"      env:"SERVER_MAX_BODY_BYTES"      env-default:"1048576"`
}

// AuditConfig selects where decisions are recorded. An empty TableName
// disables auditing entirely. An empty Backend is filled by Load.
type AuditConfig struct {
	TableName     string        `yaml:"table_name"     env:"AUDIT_TABLE_NAME"`
	Backend       string        `yaml:"backend"        env:"AUDIT_BACKEND"`
	Retention     time.Duration `yaml:"retention"      env:"AUDIT_RETENTION"      env-default:"8760h"`
	PruneInterval time.Duration `yaml:"prune_interval" env:"AUDIT_PRUNE_INTERVAL" env-default:"1h"`
	// Consecutive write failures that open the breaker, and how long it stays open.
	BreakerThreshold int           `yaml:"breaker_threshold" env:"AUDIT_BREAKER_THRESHOLD" env-default:"5"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"  env:"AUDIT_BREAKER_COOLDOWN"  env-default:"30s"`
}

// Enabled reports whether a table is configured.
func (c AuditConfig) Enabled() bool {
	return c.TableName != ""
}

// Readable reports whether the backend supports record lookup.
func (c AuditConfig) Readable() bool {
	return c.Backend != BackendKafka
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL          string        `yaml:"url"            env:"REDIS_URL"`
	PoolSize     int           `yaml:"pool_size"      env:"REDIS_POOL_SIZE"      env-default:"10"`
	MinIdleConns int           `yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS" env-default:"2"`
	DialTimeout  time.Duration `yaml:"dial_timeout"   env:"REDIS_DIAL_TIMEOUT"   env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout"   env:"REDIS_READ_TIMEOUT"   env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout"  env:"REDIS_WRITE_TIMEOUT"  env-default:"3s"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// DynamoDBConfig holds AWS settings for the DynamoDB audit table.
type DynamoDBConfig struct {
	Region string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	// Endpoint overrides the service endpoint (DynamoDB Local, LocalStack).
	Endpoint string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT"`
}

// KafkaConfig holds broker settings for the Kafka audit sink.
type KafkaConfig struct {
	Brokers  string `yaml:"brokers"   env:"KAFKA_BROKERS"`
	ClientID string `yaml:"client_id" env:"KAFKA_CLIENT_ID" env-default:"loanapproval"`
}

// BrokerList splits Brokers on commas.
func (c KafkaConfig) BrokerList() []string {
	return splitCSV(c.Brokers)
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	AllowedMethods string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-default:"POST,OPTIONS"`
	AllowedHeaders string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-default:"Content-Type,X-Amz-Date,Authorization,X-Api-Key"`
	MaxAge         int    `yaml:"max_age"         env:"CORS_MAX_AGE"         env-default:"0"`
	// OnError adds Access-Control-Allow-Origin to 400 responses.
	OnError bool `yaml:"on_error" env:"CORS_ON_ERROR" env-default:"false"`
}

// Origins splits AllowedOrigins on commas.
func (c CORSConfig) Origins() []string { return splitCSV(c.AllowedOrigins) }

// Methods splits AllowedMethods on commas.
func (c CORSConfig) Methods() []string { return splitCSV(c.AllowedMethods) }

// Headers splits AllowedHeaders on commas.
func (c CORSConfig) Headers() []string { return splitCSV(c.AllowedHeaders) }

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
