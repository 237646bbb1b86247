package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"vitatrack/internal/config"
	"vitatrack/internal/models"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

const profileKeyPrefix = "vitatrack:profile:"

// ProfileRepository зеркалирует профили пользователей в Redis: одна
// JSON-запись на пользователя, с тегом схемы внутри.
type ProfileRepository struct {
	client *redis.Client
}

func NewProfileRepository(client *redis.Client) *ProfileRepository {
	return &ProfileRepository{client: client}
}

// SaveProfile пишет запись пользователя. Реализует session.Persister.
func (r *ProfileRepository) SaveProfile(ctx context.Context, profile *models.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile %d: %w", profile.UserID, err)
	}
	key := fmt.Sprintf("%s%d", profileKeyPrefix, profile.UserID)
	if err := r.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save profile %d: %w", profile.UserID, err)
	}
	return nil
}

// LoadProfiles вычитывает все сохраненные записи для прогрева хранилища
// на старте. Записи чужой схемы пропускаются.
func (r *ProfileRepository) LoadProfiles(ctx context.Context) ([]*models.Profile, error) {
	var profiles []*models.Profile

	iter := r.client.Scan(ctx, 0, profileKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var p models.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		if p.Schema != models.SchemaVersion {
			continue
		}
		profiles = append(profiles, &p)
	}
	if err := iter.Err(); err != nil {
		return profiles, fmt.Errorf("scan profiles: %w", err)
	}

	return profiles, nil
}
