package config

import (
	"errors"
	"fmt"
	"time"

	"eclinic/cmd/internal/availability"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"
)

const (
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"

	AuthModeJWT     = "jwt"
	AuthModeCognito = "cognito"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StoreBackend  string `mapstructure:"STORE_BACKEND"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	DynamoDBTable string `mapstructure:"DYNAMODB_TABLE"`
	AWSRegion     string `mapstructure:"AWS_REGION"`
	AWSEndpoint   string `mapstructure:"AWS_ENDPOINT_URL"`

	RedisURL        string        `mapstructure:"REDIS_URL"`
	ProfileCacheTTL time.Duration `mapstructure:"PROFILE_CACHE_TTL"`

	AuthMode  string `mapstructure:"AUTH_MODE"`
	JWTSecret string `mapstructure:"JWT_SECRET"`

	ScheduleTimezone    string `mapstructure:"SCHEDULE_TIMEZONE"`
	ScheduleHorizonDays int    `mapstructure:"SCHEDULE_HORIZON_DAYS"`
	ScheduleStepMinutes int    `mapstructure:"SCHEDULE_SLOT_STEP_MINUTES"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"STORE_BACKEND", "SQLITE_PATH", "DYNAMODB_TABLE", "AWS_REGION", "AWS_ENDPOINT_URL",
	"REDIS_URL", "PROFILE_CACHE_TTL",
	"AUTH_MODE", "JWT_SECRET",
	"SCHEDULE_TIMEZONE", "SCHEDULE_HORIZON_DAYS", "SCHEDULE_SLOT_STEP_MINUTES",
}

// Load reads the process environment, after merging a .env file from the
// working directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "6060")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", BackendSQLite)
	v.SetDefault("SQLITE_PATH", "./database.db")
	v.SetDefault("DYNAMODB_TABLE", "eclinic")
	v.SetDefault("AWS_REGION", "eu-central-1")
	v.SetDefault("PROFILE_CACHE_TTL", "5m")
	v.SetDefault("AUTH_MODE", AuthModeJWT)
	v.SetDefault("SCHEDULE_TIMEZONE", availability.DefaultTimezone)
	v.SetDefault("SCHEDULE_HORIZON_DAYS", availability.DefaultHorizonDays)
	v.SetDefault("SCHEDULE_SLOT_STEP_MINUTES", int(availability.DefaultStep/time.Minute))

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendDynamoDB:
		if c.DynamoDBTable == "" {
			errs = append(errs, errors.New("DYNAMODB_TABLE is required for the dynamodb backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	switch c.AuthMode {
	case AuthModeJWT:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_MODE=jwt"))
		}
	case AuthModeCognito:
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode))
	}

	if c.ProfileCacheTTL <= 0 {
		errs = append(errs, errors.New("PROFILE_CACHE_TTL must be positive"))
	}
	if _, err := c.SchedulePolicy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SchedulePolicy builds the slot policy from the SCHEDULE_* settings.
func (c *Config) SchedulePolicy() (*availability.Policy, error) {
	return availability.NewPolicy(c.ScheduleTimezone, c.ScheduleHorizonDays, time.Duration(c.ScheduleStepMinutes)*time.Minute)
}

// IsDev turns on echo debug mode in the serve command.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// GommonLevel maps LOG_LEVEL onto gommon levels, defaulting to INFO.
func (c *Config) GommonLevel() log.Lvl {
	switch c.LogLevel {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
