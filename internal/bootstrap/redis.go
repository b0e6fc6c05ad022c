package bootstrap

import (
	"github.com/redis/go-redis/v9"

	"github.com/napieracademy/sitemap-manager/internal/config"
	"github.com/napieracademy/sitemap-manager/internal/logger"
	"github.com/napieracademy/sitemap-manager/internal/redisclient"
)

// SetupRedis creates an optional Redis client for the run lock and event
// publishing. Returns nil if Redis is disabled or unavailable; generation
// then runs unlocked and without events.
func SetupRedis(cfg *config.Config, log logger.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	client, err := redisclient.NewClient(redisclient.Config{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis not available, run lock and events disabled",
			logger.Error(err),
		)
		return nil
	}

	log.Info("Redis connected",
		logger.String("redis_address", cfg.Redis.Address),
	)
	return client
}
