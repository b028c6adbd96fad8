package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Env string

const (
	Dev        Env = "development"
	Test       Env = "test"
	Preview    Env = "preview"
	Production Env = "production"
)

type AmazonConfig struct {
	AccessKey  string
	SecretKey  string
	PartnerTag string
	Region     string
}

// Configured reports whether the three required credential fields are set.
// Region always has a default and is not part of the check.
func (c AmazonConfig) Configured() bool {
	return strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.PartnerTag) != ""
}

type ShopeeConfig struct {
	AffiliateID string
	Region      string
	BrowserBin  string
	GraceMs     int
}

type ChromeConfig struct {
	DebugHost string
	DebugPort string
}

type RabbitMQConfig struct {
	URL             string
	Exchange        string
	Queue           string
	RoutingKey      string
	Prefetch        int
	DeclareTopology bool
}

type TursoConfig struct {
	DSN   string
	Token string
}

type InngestConfig struct {
	AppID      string
	SigningKey string
	Dev        string
	ServeHost  string
	ServePath  string
}

type CompletionConfig struct {
	URL    string
	APIKey string
	Model  string
}

type Config struct {
	AppName string
	ENV     Env
	AppPort int

	LogLevel string

	// Postgres (optional; enabled only when DBHost + DBName are set).
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     int
	DBName     string

	// Redis (optional; enabled only when RedisHost is set).
	RedisUser     string
	RedisPassword string
	RedisHost     string
	RedisPort     int
	RedisScheme   string

	// Import result cache TTL in seconds (0 disables caching even with Redis up).
	ImportCacheTTLSec int

	Amazon     AmazonConfig
	Shopee     ShopeeConfig
	Chrome     ChromeConfig
	RabbitMQ   RabbitMQConfig
	Turso      TursoConfig
	Inngest    InngestConfig
	Completion CompletionConfig
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "staylink-admin")
	v.SetDefault("APP_ENV", string(Dev))
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_SCHEME", "redis")
	v.SetDefault("IMPORT_CACHE_TTL_SEC", 900)

	v.SetDefault("AMAZON_REGION", "us-east-1")

	v.SetDefault("SHOPEE_REGION", "co.id")
	v.SetDefault("SHOPEE_GRACE_MS", 5000)

	v.SetDefault("RABBITMQ_EXCHANGE", "staylink")
	v.SetDefault("RABBITMQ_QUEUE", "affiliate.import")
	v.SetDefault("RABBITMQ_ROUTING_KEY", "affiliate.import.requested")
	v.SetDefault("RABBITMQ_PREFETCH", 1)
	v.SetDefault("RABBITMQ_DECLARE_TOPOLOGY", true)

	v.SetDefault("INNGEST_SERVE_PATH", "/api/inngest")

	v.SetDefault("COMPLETION_MODEL", "gemini-2.5-flash")

	return v
}

func NewConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName: v.GetString("APP_NAME"),
		ENV:     Env(v.GetString("APP_ENV")),
		AppPort: v.GetInt("APP_PORT"),

		LogLevel: v.GetString("LOG_LEVEL"),

		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetInt("DB_PORT"),
		DBName:     v.GetString("DB_NAME"),

		RedisUser:     v.GetString("REDIS_USER"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetInt("REDIS_PORT"),
		RedisScheme:   v.GetString("REDIS_SCHEME"),

		ImportCacheTTLSec: v.GetInt("IMPORT_CACHE_TTL_SEC"),

		Amazon: AmazonConfig{
			AccessKey:  v.GetString("AMAZON_ACCESS_KEY"),
			SecretKey:  v.GetString("AMAZON_SECRET_KEY"),
			PartnerTag: v.GetString("AMAZON_PARTNER_TAG"),
			Region:     v.GetString("AMAZON_REGION"),
		},
		Shopee: ShopeeConfig{
			AffiliateID: v.GetString("SHOPEE_AFFILIATE_ID"),
			Region:      v.GetString("SHOPEE_REGION"),
			BrowserBin:  v.GetString("SHOPEE_BROWSER_BIN"),
			GraceMs:     v.GetInt("SHOPEE_GRACE_MS"),
		},
		Chrome: ChromeConfig{
			DebugHost: v.GetString("CHROME_DEBUG_HOST"),
			DebugPort: v.GetString("CHROME_DEBUG_PORT"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:             v.GetString("RABBITMQ_URL"),
			Exchange:        v.GetString("RABBITMQ_EXCHANGE"),
			Queue:           v.GetString("RABBITMQ_QUEUE"),
			RoutingKey:      v.GetString("RABBITMQ_ROUTING_KEY"),
			Prefetch:        v.GetInt("RABBITMQ_PREFETCH"),
			DeclareTopology: v.GetBool("RABBITMQ_DECLARE_TOPOLOGY"),
		},
		Turso: TursoConfig{
			DSN:   v.GetString("TURSO_SQLITE_DSN"),
			Token: v.GetString("TURSO_SQLITE_TOKEN"),
		},
		Inngest: InngestConfig{
			AppID:      v.GetString("INNGEST_APP_ID"),
			SigningKey: v.GetString("INNGEST_SIGNING_KEY"),
			Dev:        v.GetString("INNGEST_DEV"),
			ServeHost:  v.GetString("INNGEST_SERVE_HOST"),
			ServePath:  v.GetString("INNGEST_SERVE_PATH"),
		},
		Completion: CompletionConfig{
			URL:    v.GetString("COMPLETION_API_URL"),
			APIKey: v.GetString("COMPLETION_API_KEY"),
			Model:  v.GetString("COMPLETION_MODEL"),
		},
	}

	if cfg.AppPort <= 0 || cfg.AppPort > 65535 {
		return nil, fmt.Errorf("invalid APP_PORT %d", cfg.AppPort)
	}
	if cfg.DBPort <= 0 || cfg.DBPort > 65535 {
		return nil, fmt.Errorf("invalid DB_PORT %d", cfg.DBPort)
	}
	if cfg.RedisPort <= 0 || cfg.RedisPort > 65535 {
		return nil, fmt.Errorf("invalid REDIS_PORT %d", cfg.RedisPort)
	}
	if cfg.Shopee.GraceMs <= 0 {
		return nil, fmt.Errorf("invalid SHOPEE_GRACE_MS %d", cfg.Shopee.GraceMs)
	}

	return cfg, nil
}
