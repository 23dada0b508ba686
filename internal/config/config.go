package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seancondron/ReelLoop/internal/utils"
)

// 存储驱动
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config 应用配置
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	CORS        CORSConfig        `yaml:"cors"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Logging     LoggingConfig     `yaml:"logging"`
	Cache       CacheConfig       `yaml:"cache"`
	Providers   ProvidersConfig   `yaml:"providers"`
	Apify       ApifyConfig       `yaml:"apify"`
	Preferences PreferencesConfig `yaml:"preferences"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int           `yaml:"port"`
	Mode           string        `yaml:"mode"` // debug, release
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	Version        string        `yaml:"version"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // postgres, mongo, memory
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MigrationsPath  string        `yaml:"migrations_path"`
	Mongo           MongoConfig   `yaml:"mongo"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetURL 获取数据库连接URL (用于golang-migrate)
func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&x-migrations-table=schema_migrations_reelloop",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisConfig Redis 配置, Addr 为空时不使用 Redis
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// RabbitMQConfig RabbitMQ 配置, URL 为空时不发布事件
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	Queue      string `yaml:"queue"`
	RoutingKey string `yaml:"routing_key"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	GlobalRPS int `yaml:"global_rps"`
	ClientRPS int `yaml:"client_rps"`
	Burst     int `yaml:"burst"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTL     int  `yaml:"ttl"` // 缓存TTL(秒)
}

// GetCacheTTL 获取缓存TTL时间
func (c *CacheConfig) GetCacheTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// ProvidersConfig 元数据来源配置
type ProvidersConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TikTok         OEmbedConfig  `yaml:"tiktok"`
	YouTube        OEmbedConfig  `yaml:"youtube"`
}

// OEmbedConfig 单个 oEmbed 来源
type OEmbedConfig struct {
	OEmbedURL string `yaml:"oembed_url"`
}

// ApifyConfig 抓取平台配置
type ApifyConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIToken          string        `yaml:"api_token"`
	InstagramActorID  string        `yaml:"instagram_actor_id"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	MaxAttempts       int           `yaml:"max_attempts"`
	MaxConcurrentJobs int           `yaml:"max_concurrent_jobs"`
}

// PreferencesConfig 偏好设置默认值
type PreferencesConfig struct {
	SkipRestrictedDefault bool `yaml:"skip_restricted_default"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv 从环境变量覆盖配置
func applyEnv(cfg *Config) {
	// 数据库
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		cfg.Database.Password = dbPassword
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		cfg.Database.DBName = dbName
	}
	if mongoURI := os.Getenv("MONGO_URI"); mongoURI != "" {
		cfg.Database.Mongo.URI = mongoURI
	}

	// Redis
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}

	// RabbitMQ
	if rabbitmqURL := os.Getenv("RABBITMQ_URL"); rabbitmqURL != "" {
		cfg.RabbitMQ.URL = rabbitmqURL
	}

	// 抓取平台
	if token := os.Getenv("APIFY_API_TOKEN"); token != "" {
		cfg.Apify.APIToken = token
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// applyDefaults 设置默认值
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	// 抓取任务最长约 5 分钟, 写超时需覆盖
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 6 * time.Minute
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = "dev"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Database.Mongo.Database == "" {
		cfg.Database.Mongo.Database = "reelloop"
	}
	if cfg.Database.Mongo.Collection == "" {
		cfg.Database.Mongo.Collection = "social_posts"
	}

	if cfg.RabbitMQ.Exchange == "" {
		cfg.RabbitMQ.Exchange = "reelloop.posts"
	}
	if cfg.RabbitMQ.Queue == "" {
		cfg.RabbitMQ.Queue = "reelloop.post_events"
	}
	if cfg.RabbitMQ.RoutingKey == "" {
		cfg.RabbitMQ.RoutingKey = "post.events"
	}

	if cfg.RateLimit.GlobalRPS == 0 {
		cfg.RateLimit.GlobalRPS = 200
	}
	if cfg.RateLimit.ClientRPS == 0 {
		cfg.RateLimit.ClientRPS = 10
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 20
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 3600
	}

	if cfg.Providers.RequestTimeout == 0 {
		cfg.Providers.RequestTimeout = 15 * time.Second
	}
	if cfg.Providers.TikTok.OEmbedURL == "" {
		cfg.Providers.TikTok.OEmbedURL = "https://www.tiktok.com/oembed"
	}
	if cfg.Providers.YouTube.OEmbedURL == "" {
		cfg.Providers.YouTube.OEmbedURL = "https://www.youtube.com/oembed"
	}

	if cfg.Apify.BaseURL == "" {
		cfg.Apify.BaseURL = "https://api.apify.com/v2"
	}
	if cfg.Apify.InstagramActorID == "" {
		cfg.Apify.InstagramActorID = "shu8hvrXbJbY3Eb9W"
	}
	if cfg.Apify.RequestTimeout == 0 {
		cfg.Apify.RequestTimeout = 30 * time.Second
	}
	if cfg.Apify.PollInterval == 0 {
		cfg.Apify.PollInterval = 10 * time.Second
	}
	if cfg.Apify.MaxAttempts == 0 {
		cfg.Apify.MaxAttempts = 30
	}
	if cfg.Apify.MaxConcurrentJobs == 0 {
		cfg.Apify.MaxConcurrentJobs = 2
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverMongo && c.Database.Mongo.URI == "" {
		return fmt.Errorf("database.mongo.uri is required for the mongo driver")
	}

	for name, u := range map[string]string{
		"providers.tiktok.oembed_url":  c.Providers.TikTok.OEmbedURL,
		"providers.youtube.oembed_url": c.Providers.YouTube.OEmbedURL,
		"apify.base_url":               c.Apify.BaseURL,
	} {
		if !utils.IsValidURL(u) {
			return fmt.Errorf("%s is not a valid http(s) URL: %q", name, u)
		}
	}

	if c.Apify.MaxAttempts < 0 || c.Apify.PollInterval < 0 {
		return fmt.Errorf("apify poll settings must not be negative")
	}
	return nil
}
