package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"web-requests/config"

	"github.com/redis/go-redis/v9"
)

// OpenRecordStore builds the record store selected by cfg.Store.Driver and
// migrates its tables when it is database backed.
func OpenRecordStore(cfg *config.Config) (RecordStore, error) {
	if cfg.Store.Driver == config.StoreDriverFile {
		log.Printf("Record store: file %s", cfg.Store.Path)
		return NewFileRecordStore(cfg.Store.Path), nil
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	store := NewDBRecordStore(db, cfg.Store.Name, cfg.Store.Branch)
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate record store: %w", err)
	}
	log.Printf("Record store: %s blob %s@%s", cfg.Store.Driver, cfg.Store.Name, cfg.Store.Branch)
	return store, nil
}

// NewWriteLock returns a Redis lock when REDIS_ADDR is set, otherwise an
// in-process lock.
func NewWriteLock(ctx context.Context, cfg *config.Config) (WriteLock, error) {
	if !cfg.Redis.Enabled() {
		return NewLocalWriteLock(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	log.Printf("Write lock: redis %s", cfg.Redis.Addr)
	return NewRedisWriteLock(client, "web-requests:lock:"+cfg.Store.Name), nil
}

// NewNotifier returns nil when SMTP is not configured.
func NewNotifier(cfg *config.Config) Notifier {
	if !cfg.SMTP.Enabled() {
		log.Printf("SMTP not configured, posted notifications disabled")
		return nil
	}
	return NewMailNotifier(config.NewMailer(cfg.SMTP), cfg.PublicBaseURL)
}
