package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Postgres PostgresConfig `yaml:"postgres"`
	JWT      JWTConfig      `yaml:"jwt"`
	S3       S3Config       `yaml:"s3"`
}

type AppConfig struct {
	Name               string   `yaml:"name" envconfig:"APP_NAME"`
	Port               string   `yaml:"port" envconfig:"APP_PORT"`
	Env                string   `yaml:"env" envconfig:"APP_ENV"`
	LogLevel           string   `yaml:"log_level" envconfig:"LOG_LEVEL"`
	BcryptCost         int      `yaml:"bcrypt_cost" envconfig:"BCRYPT_COST"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" envconfig:"CORS_ALLOWED_ORIGINS"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host" envconfig:"DB_HOST"`
	Port            string        `yaml:"port" envconfig:"DB_PORT"`
	User            string        `yaml:"user" envconfig:"DB_USER"`
	Password        string        `yaml:"password" envconfig:"DB_PASSWORD"`
	DBName          string        `yaml:"dbname" envconfig:"DB_NAME"`
	SSLMode         string        `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConns        int32         `yaml:"max_conns" envconfig:"DB_MAX_CONNS"`
	MinConns        int32         `yaml:"min_conns" envconfig:"DB_MIN_CONNS"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" envconfig:"DB_MAX_CONN_LIFETIME"`
	ConnectAttempts int           `yaml:"connect_attempts" envconfig:"DB_CONNECT_ATTEMPTS"`
	AutoMigrate     bool          `yaml:"auto_migrate" envconfig:"DB_AUTO_MIGRATE"`
	MigrationsPath  string        `yaml:"migrations_path" envconfig:"DB_MIGRATIONS_PATH"`
}

// DSN returns a keyword/value connection string understood by both pgx and lib/pq.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type JWTConfig struct {
	UserSecret  string        `yaml:"user_secret" envconfig:"JWT_USER_SECRET"`
	AdminSecret string        `yaml:"admin_secret" envconfig:"JWT_ADMIN_SECRET"`
	Issuer      string        `yaml:"issuer" envconfig:"JWT_ISSUER"`
	TTL         time.Duration `yaml:"ttl" envconfig:"JWT_TTL"`
}

type S3Config struct {
	Bucket        string `yaml:"bucket" envconfig:"S3_BUCKET"`
	Region        string `yaml:"region" envconfig:"S3_REGION"`
	Endpoint      string `yaml:"endpoint" envconfig:"S3_ENDPOINT"`
	AccessKey     string `yaml:"access_key" envconfig:"S3_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" envconfig:"S3_SECRET_KEY"`
	PublicBaseURL string `yaml:"public_base_url" envconfig:"S3_PUBLIC_BASE_URL"`
}

// Enabled reports whether course image uploads are configured.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Load reads an optional .env file, an optional YAML file and then the
// environment, in that order of increasing precedence.
func Load(envPath, yamlPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	cfg := &Config{}

	if yamlPath != "" {
		file, err := os.Open(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", yamlPath, err)
		}
	}

	sections := []interface{}{&cfg.App, &cfg.Postgres, &cfg.JWT, &cfg.S3}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "course-marketplace"
	}
	if c.App.Port == "" {
		c.App.Port = "8080"
	}
	if c.App.Env == "" {
		c.App.Env = EnvProduction
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.BcryptCost == 0 {
		c.App.BcryptCost = bcrypt.DefaultCost
	}
	if len(c.App.CORSAllowedOrigins) == 0 {
		c.App.CORSAllowedOrigins = []string{"*"}
	}

	if c.Postgres.Port == "" {
		c.Postgres.Port = "5432"
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.MaxConns == 0 {
		c.Postgres.MaxConns = 10
	}
	if c.Postgres.MinConns == 0 {
		c.Postgres.MinConns = 2
	}
	if c.Postgres.MaxConnLifetime == 0 {
		c.Postgres.MaxConnLifetime = 30 * time.Minute
	}
	if c.Postgres.ConnectAttempts == 0 {
		c.Postgres.ConnectAttempts = 5
	}
	if c.Postgres.MigrationsPath == "" {
		c.Postgres.MigrationsPath = "migrations"
	}

	if c.JWT.Issuer == "" {
		c.JWT.Issuer = c.App.Name
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 24 * time.Hour
	}

	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}

func (c *Config) Validate() error {
	required := []struct{ name, value string }{
		{"DB_HOST", c.Postgres.Host},
		{"DB_USER", c.Postgres.User},
		{"DB_PASSWORD", c.Postgres.Password},
		{"DB_NAME", c.Postgres.DBName},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	if c.JWT.UserSecret == "" || c.JWT.AdminSecret == "" {
		return errors.New("JWT_USER_SECRET and JWT_ADMIN_SECRET are required")
	}
	if c.JWT.UserSecret == c.JWT.AdminSecret {
		return errors.New("JWT_USER_SECRET and JWT_ADMIN_SECRET must differ")
	}
	if c.JWT.TTL < 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL)
	}

	if c.App.BcryptCost < bcrypt.MinCost || c.App.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.Postgres.MinConns, c.Postgres.MaxConns)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}
