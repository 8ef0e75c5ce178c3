package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	app_errors "flow-ai/chatcore/internal/errors"
	"flow-ai/chatcore/internal/repository"
	"flow-ai/chatcore/internal/search"
)

const keyWebSearchEnabled = "web_search_enabled"

// Settings holds the user-adjustable application settings.
type Settings struct {
	WebSearchEnabled bool `json:"web_search_enabled"`
}

// SettingsService loads and saves Settings and applies them to the running
// search coordinator, so a saved toggle takes effect on the next exchange.
type SettingsService struct {
	store  repository.SettingsStore
	search *search.Coordinator
}

func NewSettingsService(store repository.SettingsStore, coord *search.Coordinator) *SettingsService {
	return &SettingsService{store: store, search: coord}
}

// InitAndGet loads the stored settings, seeding any missing key from defaults,
// and applies the result to the coordinator.
func (s *SettingsService) InitAndGet(ctx context.Context, defaults Settings) (*Settings, error) {
	values, err := s.store.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}

	if _, ok := values[keyWebSearchEnabled]; !ok {
		slog.Info("No stored web search setting, seeding default", "enabled", defaults.WebSearchEnabled)
		if err := s.store.SaveSettings(ctx, toValues(&defaults)); err != nil {
			return nil, fmt.Errorf("failed to save initial settings: %w", err)
		}
		s.apply(&defaults)
		return &defaults, nil
	}

	settings, err := fromValues(values)
	if err != nil {
		return nil, err
	}
	s.apply(settings)
	return settings, nil
}

// Get reads the stored settings. A missing key reads as its zero value.
func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	values, err := s.store.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	return fromValues(values)
}

// Save persists settings and then applies them.
func (s *SettingsService) Save(ctx context.Context, settings *Settings) error {
	if err := s.store.SaveSettings(ctx, toValues(settings)); err != nil {
		return err
	}
	s.apply(settings)
	slog.Info("Settings saved", "web_search_enabled", settings.WebSearchEnabled)
	return nil
}

func (s *SettingsService) apply(settings *Settings) {
	s.search.SetEnabled(settings.WebSearchEnabled)
}

func toValues(settings *Settings) map[string]string {
	return map[string]string{
		keyWebSearchEnabled: strconv.FormatBool(settings.WebSearchEnabled),
	}
}

func fromValues(values map[string]string) (*Settings, error) {
	var settings Settings
	if raw, ok := values[keyWebSearchEnabled]; ok {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: stored %s is not a boolean: %q", app_errors.ErrInternal, keyWebSearchEnabled, raw)
		}
		settings.WebSearchEnabled = enabled
	}
	return &settings, nil
}
