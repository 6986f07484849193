package services

import (
	"context"
	"sync"
	"time"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// SettingsProvider serves the settings row from memory, reloading it after ttl.
// Concurrent reloads share one query.
type SettingsProvider struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	cached   *models.Settings
	loadedAt time.Time
}

func NewSettingsProvider(db *gorm.DB, ttl time.Duration) *SettingsProvider {
	return &SettingsProvider{db: db, ttl: ttl, now: time.Now}
}

// Get returns a copy of the current settings.
func (p *SettingsProvider) Get(ctx context.Context) (models.Settings, error) {
	p.mu.RLock()
	if p.cached != nil && p.now().Sub(p.loadedAt) < p.ttl {
		s := *p.cached
		p.mu.RUnlock()
		return s, nil
	}
	p.mu.RUnlock()

	v, err, _ := p.group.Do("settings", func() (any, error) {
		s, err := database.GetSettings(p.db.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cached = s
		p.loadedAt = p.now()
		p.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return models.Settings{}, err
	}
	return *v.(*models.Settings), nil
}

// Invalidate drops the cached row so the next Get reads the database.
func (p *SettingsProvider) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}
