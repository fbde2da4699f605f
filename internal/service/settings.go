package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/viewdeck/video-dashboard-go/internal/models"
	"github.com/viewdeck/video-dashboard-go/internal/source"
	"github.com/viewdeck/video-dashboard-go/pkg/logger"
)

const settingsKey = "settings"

// KV is the local persistence port the settings store writes through.
// Implementations are injected; the service holds no ambient global
// state.
type KV interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// MemoryKV is an in-process KV used by tests and the dev server.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string][]byte
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string][]byte)}
}

func (kv *MemoryKV) Get(key string) ([]byte, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.m[key]
	return v, ok
}

func (kv *MemoryKV) Set(key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = append([]byte(nil), value...)
	return nil
}

// SettingsService keeps the user settings document in a local KV and
// mirrors updates to the document sink like any other collection.
type SettingsService struct {
	mu      sync.Mutex
	kv      KV
	sink    source.Sink
	current models.Settings
	log     *zap.Logger
}

// NewSettingsService creates the service over an injected KV port.
func NewSettingsService(kv KV, sink source.Sink) *SettingsService {
	return &SettingsService{
		kv:   kv,
		sink: sink,
		log:  logger.Named("settings"),
	}
}

// Init loads persisted settings from the KV, falling back to defaults
// when nothing is stored or the stored value does not decode.
func (s *SettingsService) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = models.Settings{
		ID:                   settingsKey,
		NotificationsEnabled: true,
		Theme:                "dark",
		DefaultSort:          "default",
		CreatedAt:            models.NowMillis(),
	}

	raw, ok := s.kv.Get(settingsKey)
	if !ok {
		return
	}
	var stored models.Settings
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.log.Warn("stored settings do not decode, using defaults", zap.Error(err))
		return
	}
	s.current = stored
}

// Get returns the current settings.
func (s *SettingsService) Get() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update replaces the settings, persists them locally and mirrors them
// to the sink. A failed sink write is logged and left for the backend
// to reconcile.
func (s *SettingsService) Update(ctx context.Context, next models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next.ID = settingsKey
	if next.CreatedAt == 0 {
		next.CreatedAt = s.current.CreatedAt
	}
	next.UpdatedAt = models.NowMillis()
	s.current = next

	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := s.kv.Set(settingsKey, raw); err != nil {
		return err
	}

	fields, err := source.Fields(next)
	if err != nil {
		return err
	}
	if err := s.sink.WriteDocument(ctx, models.CollectionSettings, settingsKey, fields); err != nil {
		s.log.Warn("settings write to sink failed", zap.Error(err))
	}
	return nil
}
