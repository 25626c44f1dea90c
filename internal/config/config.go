package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Nats     NatsConfig     `json:"nats"`
	Auth     AuthConfig     `json:"auth"`
	Market   MarketConfig   `json:"market"`
}

// ServerConfig contains server related configurations
type ServerConfig struct {
	Port int `json:"port"`
	// PublicURL is the address recorded in the deployment file for clients
	// to resolve the marketplace by name.
	PublicURL      string `json:"public_url"`
	DeploymentFile string `json:"deployment_file"`
}

// DatabaseConfig contains database related configurations
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// RedisConfig contains read-cache configurations. An empty Addr disables
// the cache.
type RedisConfig struct {
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	CacheTTLs int    `json:"cache_ttl_seconds"`
}

// NatsConfig contains event-bus configurations. An empty URL disables
// publishing.
type NatsConfig struct {
	URL string `json:"url"`
}

// AuthConfig contains authentication related configurations
type AuthConfig struct {
	JWTSecret     string `json:"jwt_secret"`
	JWTExpiration int    `json:"jwt_expiration"` // in hours
	ChallengeTTL  int    `json:"challenge_ttl"`  // in minutes
}

// MarketConfig contains the marketplace's deployment parameters.
type MarketConfig struct {
	FeeBps          int64  `json:"fee_bps"`
	PlatformAddress string `json:"platform_address"`
}

// Load loads the configuration from file and environment
func Load() (*Config, error) {
	// Default config
	cfg := &Config{
		Server: ServerConfig{
			Port:           8080,
			PublicURL:      "http://localhost:8080",
			DeploymentFile: filepath.Join("deployments", "deployments.json"),
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			Host:   "localhost",
			Port:   5432,
			Name:   "nftmart",
		},
		Redis: RedisConfig{
			CacheTTLs: 15,
		},
		Auth: AuthConfig{
			JWTExpiration: 24,
			ChallengeTTL:  15,
		},
		Market: MarketConfig{
			FeeBps: 500,
		},
	}

	// Look for config file
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = filepath.Join("configs", "config.json")
	}

	// Try to load config from file
	if _, err := os.Stat(configFile); err == nil {
		file, err := os.Open(configFile)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables if present
	if port := os.Getenv("SERVER_PORT"); port != "" {
		var serverPort int
		if _, err := fmt.Sscanf(port, "%d", &serverPort); err == nil {
			cfg.Server.Port = serverPort
		}
	}
	if publicURL := os.Getenv("PUBLIC_URL"); publicURL != "" {
		cfg.Server.PublicURL = publicURL
	}
	if deploymentFile := os.Getenv("DEPLOYMENT_FILE"); deploymentFile != "" {
		cfg.Server.DeploymentFile = deploymentFile
	}

	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		var databasePort int
		if _, err := fmt.Sscanf(dbPort, "%d", &databasePort); err == nil {
			cfg.Database.Port = databasePort
		}
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("DB_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		cfg.Database.Name = dbName
	}

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if redisPass := os.Getenv("REDIS_PASSWORD"); redisPass != "" {
		cfg.Redis.Password = redisPass
	}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		cfg.Nats.URL = natsURL
	}

	if feeBps := os.Getenv("MARKET_FEE_BPS"); feeBps != "" {
		var bps int64
		if _, err := fmt.Sscanf(feeBps, "%d", &bps); err == nil {
			cfg.Market.FeeBps = bps
		}
	}
	if treasury := os.Getenv("MARKET_PLATFORM_ADDRESS"); treasury != "" {
		cfg.Market.PlatformAddress = treasury
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		cfg.Auth.JWTSecret = jwtSecret
	} else if cfg.Auth.JWTSecret == "" {
		// Generate a random JWT secret if not provided
		randomBytes := make([]byte, 32)
		if _, err := rand.Read(randomBytes); err != nil {
			return nil, err
		}
		cfg.Auth.JWTSecret = base64.StdEncoding.EncodeToString(randomBytes)
	}

	return cfg, nil
}
