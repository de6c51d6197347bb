package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrNotFound = errors.New("session config not found")

const (
	KeyPrefix  = "voicechess:config:"
	DefaultTTL = 2 * time.Hour
)

type Options struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// IRedis stores per-lobby session configuration for the lifetime of a browser
// session. Values are JSON encoded.
type IRedis interface {
	SaveSessionConfig(ctx context.Context, lobbyID string, value any) error
	LoadSessionConfig(ctx context.Context, lobbyID string, dst any) error
	DeleteSessionConfig(ctx context.Context, lobbyID string) error
	Ping(ctx context.Context) error
	Close() error
}

type redisClient struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func New(opts Options, logger *logrus.Logger) IRedis {
	if opts.Address == "" {
		opts.Address = "localhost:6379"
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	logger.Info(fmt.Sprintf("Connecting to Redis at %s...", opts.Address))

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	r := &redisClient{client: client, ttl: opts.TTL, log: logger}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Ping(ctx); err != nil {
		logger.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logger.Info("Successfully connected to Redis")
	}

	return r
}

func key(lobbyID string) string {
	return KeyPrefix + lobbyID
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisClient) Close() error {
	return r.client.Close()
}

func (r *redisClient) SaveSessionConfig(ctx context.Context, lobbyID string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode session config: %w", err)
	}

	r.log.Debug(fmt.Sprintf("Saving session config for %s with expiration %v", lobbyID, r.ttl))
	if err := r.client.Set(ctx, key(lobbyID), payload, r.ttl).Err(); err != nil {
		r.log.Error(fmt.Sprintf("Error saving session config for %s: %v", lobbyID, err))
		return err
	}
	return nil
}

func (r *redisClient) LoadSessionConfig(ctx context.Context, lobbyID string, dst any) error {
	val, err := r.client.Get(ctx, key(lobbyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.log.Debug(fmt.Sprintf("Session config not found for %s", lobbyID))
		return ErrNotFound
	} else if err != nil {
		r.log.Error(fmt.Sprintf("Error loading session config for %s: %v", lobbyID, err))
		return err
	}

	if err := json.Unmarshal(val, dst); err != nil {
		return fmt.Errorf("decode session config: %w", err)
	}
	return nil
}

func (r *redisClient) DeleteSessionConfig(ctx context.Context, lobbyID string) error {
	result, err := r.client.Del(ctx, key(lobbyID)).Result()
	if err != nil {
		r.log.Error(fmt.Sprintf("Error deleting session config for %s: %v", lobbyID, err))
		return err
	}
	if result == 0 {
		r.log.Debug(fmt.Sprintf("Session config %s not found for deletion", lobbyID))
	}
	return nil
}
