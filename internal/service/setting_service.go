package service

import (
	"context"
	"errors"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/log"
)

// EventSettingKey names the setting that points at the featured content item.
const EventSettingKey = "event"

// event setting values derived from the referenced content item
var eventImageKeys = []string{
	"currentEventImage",
	"currentEventImageItem",
	"currentEventImageLocation",
	"currentEventImageArchivement",
}

// SettingService reads and writes keyed settings.
type SettingService interface {
	// Get returns an empty setting when key has never been written.
	Get(ctx context.Context, key string) (*model.Setting, error)
	Update(ctx context.Context, caller Caller, key string, values map[string]string) (*model.Setting, error)
	Delete(ctx context.Context, caller Caller, key string) error
}

type settingService struct {
	settingRepo repository.SettingRepository
	cache       repository.SettingCache
	store       repository.TreeStore
}

func NewSettingService(settingRepo repository.SettingRepository, cache repository.SettingCache, store repository.TreeStore) SettingService {
	return &settingService{settingRepo: settingRepo, cache: cache, store: store}
}

func validateSettingKey(key string) error {
	return validateVar("key", key, "min=1,max=64,alphanum")
}

func (s *settingService) Get(ctx context.Context, key string) (*model.Setting, error) {
	if err := validateSettingKey(key); err != nil {
		return nil, err
	}
	if cached, err := s.cache.Get(ctx, key); err == nil {
		return cached, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Warnw("setting cache read failed", "key", key, "error", err)
	}

	setting, err := s.settingRepo.FindByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.Setting{Key: key, Values: map[string]string{}}, nil
	}
	if err != nil {
		return nil, storageError("failed to load setting", err)
	}
	if err := s.cache.Set(ctx, setting); err != nil {
		log.Warnw("setting cache write failed", "key", key, "error", err)
	}
	return setting, nil
}

// Update merges values into the setting. The event setting instead requires
// eventId to name an existing content item and derives its display values
// from that item unless they are given explicitly.
func (s *settingService) Update(ctx context.Context, caller Caller, key string, values map[string]string) (*model.Setting, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	if err := validateSettingKey(key); err != nil {
		return nil, err
	}

	setting, err := s.settingRepo.FindByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		setting = &model.Setting{Key: key}
	} else if err != nil {
		return nil, storageError("failed to load setting", err)
	}
	if setting.Values == nil {
		setting.Values = map[string]string{}
	}

	if key == EventSettingKey {
		if err := s.applyEvent(ctx, setting.Values, values); err != nil {
			return nil, err
		}
	} else {
		for k, v := range values {
			setting.Values[k] = v
		}
	}

	if err := s.settingRepo.Upsert(ctx, setting); err != nil {
		return nil, storageError("failed to save setting", err)
	}
	if err := s.cache.Invalidate(ctx, key); err != nil {
		log.Warnw("setting cache invalidation failed", "key", key, "error", err)
	}
	return setting, nil
}

func (s *settingService) applyEvent(ctx context.Context, current, values map[string]string) error {
	eventID := values["eventId"]
	if err := validateVar("eventId", eventID, "required,uuid"); err != nil {
		return err
	}
	event, err := s.store.Contents().FindByID(ctx, eventID)
	if err != nil {
		return lookupError("event content", err)
	}

	orDefault := func(k, fallback string) string {
		if v := values[k]; v != "" {
			return v
		}
		return fallback
	}
	current["currentEventId"] = event.ID
	current["currentEventName"] = orDefault("currentEventName", event.Name)
	for _, k := range eventImageKeys {
		current[k] = orDefault(k, event.Image)
	}
	return nil
}

func (s *settingService) Delete(ctx context.Context, caller Caller, key string) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	if err := validateSettingKey(key); err != nil {
		return err
	}
	if err := s.settingRepo.DeleteByKey(ctx, key); err != nil {
		return lookupError("setting", err)
	}
	if err := s.cache.Invalidate(ctx, key); err != nil {
		log.Warnw("setting cache invalidation failed", "key", key, "error", err)
	}
	return nil
}
