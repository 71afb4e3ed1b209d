package services

import (
	"errors"
	"sync"
	"time"
)

// DefaultPreferences returns the preference blob handed to users who have
// never saved anything.
func DefaultPreferences() map[string]any {
	return map[string]any{
		"theme":           "light",
		"language":        "en",
		"dashboardLayout": "default",
		"notifications": map[string]any{
			"email": true,
			"push":  true,
			"sms":   false,
		},
		"gridPreferences": map[string]any{
			"pageSize":         20,
			"defaultSort":      "updatedAt",
			"defaultSortOrder": "desc",
		},
	}
}

// PreferencesService stores per-user preference blobs keyed by caller id.
// Storage is in-memory only and lost on restart; acceptable for this design.
type PreferencesService struct {
	mu    sync.RWMutex
	prefs map[string]map[string]any
	now   func() time.Time
}

// NewPreferencesService constructs an empty preference store.
func NewPreferencesService() *PreferencesService {
	return &PreferencesService{
		prefs: make(map[string]map[string]any),
		now:   time.Now,
	}
}

// Get returns the stored preferences for the user, or the defaults when the
// user has never saved any.
func (s *PreferencesService) Get(userID string) (map[string]any, error) {
	if userID == "" {
		return nil, errors.New("preferences: user id is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.prefs[userID]
	if !ok {
		return DefaultPreferences(), nil
	}
	return clonePrefs(stored), nil
}

// Update shallow-merges the provided keys over the user's current blob and
// stamps updatedAt.
func (s *PreferencesService) Update(userID string, updates map[string]any) (map[string]any, error) {
	if userID == "" {
		return nil, errors.New("preferences: user id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.prefs[userID]
	if !ok {
		current = make(map[string]any)
	}

	merged := clonePrefs(current)
	for key, value := range updates {
		merged[key] = value
	}
	merged["updatedAt"] = s.now().UTC().Format(time.RFC3339)

	s.prefs[userID] = merged
	return clonePrefs(merged), nil
}

func clonePrefs(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
