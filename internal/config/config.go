package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	Store         string `mapstructure:"store"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	MaxRooms        int           `mapstructure:"max_rooms"`
	MaxUsersPerRoom int           `mapstructure:"max_users_per_room"`
	PromotionDelay  time.Duration `mapstructure:"promotion_delay"`
	GracePeriod     time.Duration `mapstructure:"grace_period"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RoomTTL         time.Duration `mapstructure:"room_ttl"`

	ActionLimit    int           `mapstructure:"action_limit"`
	ActionInterval time.Duration `mapstructure:"action_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 4096)
	v.SetDefault("ping_period", "54s")

	v.SetDefault("store", "memory")
	v.SetDefault("max_rooms", 50)
	v.SetDefault("max_users_per_room", 20)
	v.SetDefault("promotion_delay", "2s")
	v.SetDefault("grace_period", "30s")
	v.SetDefault("cleanup_interval", "5m")
	v.SetDefault("room_ttl", "10m")

	v.SetDefault("action_limit", 20)
	v.SetDefault("action_interval", "1s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Store: %s\n", cfg.Mode, cfg.Port, cfg.Store)
	return &cfg, nil
}
