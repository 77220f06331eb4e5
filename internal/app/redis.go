package app

import (
	"hubspot-proxy/internal/common/logging"
	"hubspot-proxy/internal/locks"
	"hubspot-proxy/internal/redis"
)

func (app *App) initializeRedis() error {
	if !app.Config.RedisEnabled() {
		app.Logger.Info("Redis: Not configured (rate limiting and distributed locks disabled)")
		return nil
	}

	redisClient, err := redis.NewClient(&redis.Config{
		Address:  app.Config.RedisAddress,
		Password: app.Config.RedisPassword,
		DB:       app.Config.RedisDB,
		PoolSize: app.Config.RedisPoolSize,
	})
	if err != nil {
		return err
	}

	app.RedisClient = redisClient
	app.Logger.Info("Redis: Connected", logging.Field{Key: "address", Value: app.Config.RedisAddress})

	locker, err := locks.NewRedsyncManager(redisClient)
	if err != nil {
		return err
	}
	app.Locker = locker
	app.Logger.Info("Distributed Locks: Enabled")

	return nil
}
