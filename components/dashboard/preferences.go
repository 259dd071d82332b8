package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryPreferenceStore keeps theme choices for the life of the process.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]ThemeVariant
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]ThemeVariant),
	}
}

// ThemePreference returns the stored variant, light when unknown.
func (s *InMemoryPreferenceStore) ThemePreference(_ context.Context, viewer ViewerContext) (ThemeVariant, error) {
	if viewer.UserID == "" {
		return ThemeLight, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if variant, ok := s.data[viewer.UserID]; ok {
		return variant, nil
	}
	return ThemeLight, nil
}

// SaveThemePreference persists the variant for a viewer.
func (s *InMemoryPreferenceStore) SaveThemePreference(_ context.Context, viewer ViewerContext, variant ThemeVariant) error {
	if viewer.UserID == "" {
		return fmt.Errorf("preference store requires viewer user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewer.UserID] = ParseThemeVariant(string(variant))
	return nil
}
