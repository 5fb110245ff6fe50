package services

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
)

// PreferenceRepo persists string preferences.
type PreferenceRepo interface {
	GetPreference(ctx context.Context, db *gorm.DB, key string) (*domain.Preference, error)
	SetPreference(ctx context.Context, db *gorm.DB, key, value string) (*domain.Preference, error)
}

// ThemeService owns the single light/dark preference cell. The mode is read
// once at construction and written through on every change.
type ThemeService struct {
	DB   *gorm.DB
	Repo PreferenceRepo

	mu   sync.Mutex
	mode domain.ThemeMode
}

// NewThemeService loads the persisted mode. Without one it falls back to the
// system signal preferDark, and then to light.
func NewThemeService(ctx context.Context, db *gorm.DB, r PreferenceRepo, preferDark bool) (*ThemeService, error) {
	s := &ThemeService{DB: db, Repo: r, mode: domain.ThemeLight}
	if preferDark {
		s.mode = domain.ThemeDark
	}

	p, err := r.GetPreference(ctx, db, domain.ThemeModeKey)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s, nil
	case err != nil:
		return nil, err
	}
	if m := domain.ThemeMode(p.Value); m.Valid() {
		s.mode = m
	}
	return s, nil
}

// Mode returns the current mode.
func (s *ThemeService) Mode() domain.ThemeMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Set persists m and makes it current.
func (s *ThemeService) Set(ctx context.Context, m domain.ThemeMode) (domain.ThemeMode, error) {
	if !m.Valid() {
		return "", ErrInvalidTheme
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(ctx, m)
}

// Toggle flips between light and dark and persists the result.
func (s *ThemeService) Toggle(ctx context.Context) (domain.ThemeMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(ctx, s.mode.Toggle())
}

// store must be called with mu held. On a write failure the previous mode stays.
func (s *ThemeService) store(ctx context.Context, m domain.ThemeMode) (domain.ThemeMode, error) {
	if _, err := s.Repo.SetPreference(ctx, s.DB, domain.ThemeModeKey, string(m)); err != nil {
		return s.mode, err
	}
	s.mode = m
	return m, nil
}
