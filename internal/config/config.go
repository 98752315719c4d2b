// Package config loads and holds the application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds everything loaded from the config file.
var Conf Config

// Config mirrors the layout of configs/config.yaml.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	RateLimit     RateLimitConfig     `mapstructure:"ratelimit"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Content       ContentConfig       `mapstructure:"content"`
	Bootstrap     BootstrapConfig     `mapstructure:"bootstrap"`
	Jobs          JobsConfig          `mapstructure:"jobs"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig selects the tree store driver and holds every connection setting.
type DatabaseConfig struct {
	// Driver is one of mysql, sqlite or mongo. Users, images and settings
	// always live in the SQL database; mongo only swaps the tree store.
	Driver string       `mapstructure:"driver"`
	MySQL  MySQLConfig  `mapstructure:"mysql"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// MongoConfig configures the alternate document tree store.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	// Transactions requires a replica set.
	Transactions bool `mapstructure:"transactions"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig configures the tree change event stream.
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type ElasticsearchConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// RateLimitConfig configures the per-IP token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	TTL               time.Duration `mapstructure:"ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ContentConfig tunes the category/content tree.
type ContentConfig struct {
	Cascade CascadeConfig `mapstructure:"cascade"`
	Search  SearchConfig  `mapstructure:"search"`
}

type CascadeConfig struct {
	// Transactional runs category deletes inside one store transaction when
	// the store supports it. Otherwise the cascade is best-effort.
	Transactional bool `mapstructure:"transactional"`
}

type SearchConfig struct {
	MaxLimit int `mapstructure:"max_limit"`
}

// BootstrapConfig describes the admin account created on first start.
type BootstrapConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminName     string `mapstructure:"admin_name"`
	AdminPassword string `mapstructure:"admin_password"`
}

type JobsConfig struct {
	OrphanSweepSchedule string `mapstructure:"orphan_sweep_schedule"`
}

// Init reads the YAML file at configPath into Conf. Values may be
// overridden with CONTENTHUB_* environment variables, optionally sourced
// from a .env file in the working directory.
func Init(configPath string) {
	if err := Load(configPath, &Conf); err != nil {
		panic(err)
	}
}

// Load reads configPath into out without touching the global Conf.
func Load(configPath string, out *Config) error {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CONTENTHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.sqlite.path", "contenthub.db")
	v.SetDefault("database.mongo.database", "contenthub")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("kafka.topic", "contenthub-tree-events")
	v.SetDefault("kafka.group_id", "contenthub-indexer")
	v.SetDefault("elasticsearch.index_name", "contenthub_tree")
	v.SetDefault("minio.bucket_name", "images")
	v.SetDefault("ratelimit.requests_per_second", 10)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("ratelimit.ttl", "10m")
	v.SetDefault("content.cascade.transactional", true)
	v.SetDefault("content.search.max_limit", 100)
	v.SetDefault("jobs.orphan_sweep_schedule", "@every 1h")
}
