package app

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/config"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

// App owns the long-lived connections of the service. Redis and Kafka are
// optional and stay nil when not configured.
type App struct {
	Config        *config.Config
	DB            *pgxpool.Pool
	Redis         *redis.Client
	EventProducer sarama.AsyncProducer
}

func NewApp(cfg *config.Config) (*App, error) {
	effectiveURL := cfg.DBUrl
	if cfg.LDFlag_UsingIsolatedSchema {
		var err error
		effectiveURL, err = utils.WithIsolatedRole(cfg.DBUrl, cfg.UniqueRunnerID, cfg.UniqueRunNumber)
		if err != nil {
			return nil, err
		}
		role, _ := utils.IsolatedRoleName(cfg.UniqueRunnerID, cfg.UniqueRunNumber)
		utils.Logger.Infof("Using isolated schema for bookings-service; role=%s", role)
	}

	dbPool, err := connectDB(effectiveURL)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, DB: dbPool}

	if cfg.RedisURL != "" {
		app.Redis, err = newRedisClient(cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, err
		}
	} else {
		utils.Logger.Warn("REDIS_URL not set; booking cache and rate limiting disabled")
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.LDFlag_PublishBookingEvents {
		app.EventProducer, err = newEventProducer(cfg.KafkaBrokers)
		if err != nil {
			app.Close()
			return nil, err
		}
		utils.Logger.Infof("Publishing lifecycle events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	} else {
		utils.Logger.Info("Lifecycle event publishing disabled")
	}
	return app, nil
}

func (a *App) Close() {
	if a.EventProducer != nil {
		if err := a.EventProducer.Close(); err != nil {
			utils.Logger.WithError(err).Warn("Kafka producer close failed")
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("bookings-service DB connection closed.")
	}
}

func connectDB(databaseURL string) (*pgxpool.Pool, error) {
	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, databaseURL)
		cancel()
		if err == nil {
			utils.Logger.Infof("bookings-service connected to DB on attempt %d", i)
			return dbPool, nil
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)
		if i == maxRetries {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.AfterConnect = repositories.AfterConnect
	return pgxpool.ConnectConfig(ctx, cfg)
}

func newRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func newEventProducer(brokers []string) (sarama.AsyncProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	saramaCfg.Producer.Compression = sarama.CompressionSnappy
	saramaCfg.Producer.Flush.Frequency = 500 * time.Millisecond
	saramaCfg.Producer.Retry.Max = 5
	saramaCfg.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

// RedisPinger adapts a redis client to the health check's Ping(ctx) error.
type RedisPinger struct {
	Client *redis.Client
}

func (p RedisPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
