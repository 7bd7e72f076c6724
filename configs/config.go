package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name        string `koanf:"name"`
		HTTPAddr    string `koanf:"http_addr"`
		LogLevel    string `koanf:"log_level"`
		LogFile     string `koanf:"log_file"`
		SeedCatalog bool   `koanf:"seed_catalog"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout     time.Duration `koanf:"read_timeout"`
		WriteTimeout    time.Duration `koanf:"write_timeout"`
		IdleTimeout     time.Duration `koanf:"idle_timeout"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
		AllowedOrigins  []string      `koanf:"allowed_origins"`
	} `koanf:"http"`

	DB struct {
		Driver          string        `koanf:"driver"` // sqlite | mysql
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"db"`

	Redis struct {
		Addr     string        `koanf:"addr"`
		Password string        `koanf:"password"`
		CacheTTL time.Duration `koanf:"cache_ttl"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Rabbit struct {
		URL               string `koanf:"url"`
		Exchange          string `koanf:"exchange"`
		NotificationQueue string `koanf:"notification_queue"`
		Prefetch          int    `koanf:"prefetch"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers     []string `koanf:"brokers"`
		GroupID     string   `koanf:"group_id"`
		TopicEvents string   `koanf:"topic_events"`
		TopicStatus string   `koanf:"topic_status"`
	} `koanf:"kafka"`

	Payment struct {
		Method string `koanf:"method"` // cash | credit_card
	} `koanf:"payment"`

	Inventory struct {
		LowStockThreshold int `koanf:"low_stock_threshold"`
	} `koanf:"inventory"`

	Admin struct {
		Username string `koanf:"username"`
		Password string `koanf:"password"`
	} `koanf:"admin"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix BAKERY_, nested with __)
	// e.g. BAKERY_DB__DSN, BAKERY_REDIS__PASSWORD
	if err := k.Load(env.Provider("BAKERY_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "BAKERY_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "bakery-api"
	}
	if c.App.LogFile == "" {
		c.App.LogFile = "./logs/app.log"
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 20 * time.Second
	}
	if c.Payment.Method == "" {
		c.Payment.Method = "cash"
	}
	if c.Rabbit.Exchange == "" {
		c.Rabbit.Exchange = "bakery.orders"
	}
	if c.Rabbit.NotificationQueue == "" {
		c.Rabbit.NotificationQueue = "bakery.notifications.q"
	}
	if c.Idempotency.TTL <= 0 {
		c.Idempotency.TTL = 24 * time.Hour
	}
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	switch c.DB.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("db.driver must be sqlite or mysql, got %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn required")
	}
	switch c.Payment.Method {
	case "cash", "credit_card":
	default:
		return fmt.Errorf("payment.method must be cash or credit_card, got %q", c.Payment.Method)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.TopicStatus != "" && c.Kafka.GroupID == "" {
		return fmt.Errorf("kafka.group_id required when kafka.topic_status is set")
	}
	return nil
}
