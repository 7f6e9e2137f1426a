package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	JWT         JWTConfig         `yaml:"jwt"`
	Redis       RedisConfig       `yaml:"redis"`
	Shop        ShopConfig        `yaml:"shop"`
	Mongo       MongoConfig       `yaml:"mongo"`
	AMQP        AMQPConfig        `yaml:"amqp"`
	Economy     EconomyConfig     `yaml:"economy"`
	Permissions PermissionsConfig `yaml:"permissions"`
	World       WorldConfig       `yaml:"world"`
	Players     PlayersConfig     `yaml:"players"`
	Language    string            `yaml:"language"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TickRate int    `yaml:"tick_rate"` // Hz
}

// JWTConfig holds JWT authentication settings
type JWTConfig struct {
	Issuer        string `yaml:"issuer"`
	PublicKeyPath string `yaml:"public_key_path"`
	// Disabled lets clients connect with ?player=<uuid>&name=<name>. Local use only.
	Disabled bool `yaml:"disabled"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
	WalletPrefix    string `yaml:"wallet_prefix"`
}

// ShopConfig holds the shop engine settings
type ShopConfig struct {
	// AdminVirtualStock enables a stock counter on shops without a container.
	AdminVirtualStock bool     `yaml:"admin_virtual_stock"`
	Tags              []string `yaml:"tags"`
	Store             string   `yaml:"store"` // file | mongo
	SaveFile          string   `yaml:"save_file"`
}

// MongoConfig holds the shop store database settings
type MongoConfig struct {
	URL        string `yaml:"url"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// AMQPConfig holds the transaction journal broker settings.
// An empty URL disables broker publishing.
type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// EconomyConfig holds wallet settings
type EconomyConfig struct {
	Backend          string `yaml:"backend"` // memory | redis
	CurrencySingular string `yaml:"currency_singular"`
	CurrencyPlural   string `yaml:"currency_plural"`
	StartingBalance  int64  `yaml:"starting_balance"`
}

// PermissionsConfig holds per-player permission overrides
type PermissionsConfig struct {
	Operators []string            `yaml:"operators"`
	Grants    map[string][]string `yaml:"grants"`
	Denies    map[string][]string `yaml:"denies"`
}

// WorldConfig points at the static world layout
type WorldConfig struct {
	Layout string `yaml:"layout"`
}

// PlayersConfig holds settings for newly connected players
type PlayersConfig struct {
	InventorySize int            `yaml:"inventory_size"`
	StackLimit    int            `yaml:"stack_limit"`
	StartingItems []StartingItem `yaml:"starting_items"`
}

// StartingItem is a stack handed to every new player
type StartingItem struct {
	Item string `yaml:"item"`
	Meta int    `yaml:"meta"`
	Qty  int    `yaml:"qty"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.TickRate == 0 {
		cfg.Server.TickRate = 20
	}
	if cfg.Redis.BlacklistPrefix == "" {
		cfg.Redis.BlacklistPrefix = "jwt:blacklist:"
	}
	if cfg.Redis.WalletPrefix == "" {
		cfg.Redis.WalletPrefix = "wallet:"
	}
	if len(cfg.Shop.Tags) == 0 {
		cfg.Shop.Tags = []string{"[Shop]"}
	}
	if cfg.Shop.Store == "" {
		cfg.Shop.Store = "file"
	}
	if cfg.Shop.SaveFile == "" {
		cfg.Shop.SaveFile = "shops.yaml"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "signshop"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "shops"
	}
	if cfg.AMQP.Exchange == "" {
		cfg.AMQP.Exchange = "shop_journal"
	}
	if cfg.Economy.Backend == "" {
		cfg.Economy.Backend = "memory"
	}
	if cfg.Economy.CurrencySingular == "" {
		cfg.Economy.CurrencySingular = "coin"
	}
	if cfg.Economy.CurrencyPlural == "" {
		cfg.Economy.CurrencyPlural = "coins"
	}
	if cfg.Players.InventorySize == 0 {
		cfg.Players.InventorySize = 36
	}
	if cfg.Players.StackLimit == 0 {
		cfg.Players.StackLimit = 64
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
}
