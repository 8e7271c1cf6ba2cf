package config

import "time"

// RedisConfig contains Redis configuration. The credential store and the
// catalog cache share this connection.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelPort       string   `env:"SENTINEL_PORT"        envDefault:"26379"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// CacheConfig contains catalog cache configuration.
type CacheConfig struct {
	// Enabled toggles the read-through catalog cache. When disabled the
	// catalog service passes every read to the backend.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"true"`

	// CatalogTTL is the TTL for cached catalog responses.
	CatalogTTL time.Duration `env:"CACHE_CATALOG_TTL" envDefault:"5m"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.CatalogTTL <= 0 {
		c.CatalogTTL = 5 * time.Minute
	}
}
