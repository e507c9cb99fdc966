package config

import (
	"os"
	"time"
)

type Config struct {
	// Database. The two services own separate databases; in dev they sit on
	// the same cluster, production points the hosts apart.
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	IdentityDBName   string
	SchedulingDBName string
	DBSSLMode        string

	// JWT (signing secret shared across both services)
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Service base URLs
	IdentityURL   string
	SchedulingURL string

	// Cross-store provisioning
	ProvisionInitialDelay time.Duration
	ProvisionCallTimeout  time.Duration

	// Notifications
	AMQPURL      string
	AMQPExchange string

	// Admin
	AdminEmails string
	AdminToken  string

	// Seeded admin identity (identity service only)
	SeedAdminEmail    string
	SeedAdminPassword string

	// Server
	IdentityPort   string
	SchedulingPort string
	CORSOrigins    string
}

func Load() *Config {
	return &Config{
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		IdentityDBName:   getEnv("IDENTITY_DB_NAME", "clipbook_identity"),
		SchedulingDBName: getEnv("SCHEDULING_DB_NAME", "clipbook_scheduling"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		IdentityURL:   getEnv("IDENTITY_URL", "http://localhost:8081"),
		SchedulingURL: getEnv("SCHEDULING_URL", "http://localhost:8082"),

		ProvisionInitialDelay: parseDuration(getEnv("PROVISION_INITIAL_DELAY", "200ms"), 200*time.Millisecond),
		ProvisionCallTimeout:  parseDuration(getEnv("PROVISION_CALL_TIMEOUT", "5s"), 5*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "clipbook.notifications"),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),

		IdentityPort:   getEnv("IDENTITY_PORT", "8081"),
		SchedulingPort: getEnv("SCHEDULING_PORT", "8082"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) IdentityDSN() string {
	return c.dsn(c.IdentityDBName)
}

func (c *Config) SchedulingDSN() string {
	return c.dsn(c.SchedulingDBName)
}

func (c *Config) dsn(dbName string) string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + dbName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
