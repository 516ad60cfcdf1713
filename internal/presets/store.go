package presets

import "sync"

// Store caches the preset list for the active workspace. Mutations mirror
// the server's acknowledged state; a workspace change resets the cache.
type Store struct {
	mu      sync.Mutex
	presets []Preset
	loaded  bool
}

// NewStore constructs an empty preset cache.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the cached list with the authoritative fetch result.
func (s *Store) Set(list []Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets = append([]Preset(nil), list...)
	s.loaded = true
}

// Presets returns the cached list and whether it has been loaded.
func (s *Store) Presets() ([]Preset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, false
	}
	return append([]Preset(nil), s.presets...), true
}

// Add appends a newly created preset.
func (s *Store) Add(preset Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets = append(s.presets, preset)
}

// Apply updates a preset in place by id. Unknown ids are ignored.
func (s *Store) Apply(preset Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.presets {
		if s.presets[i].ID == preset.ID {
			s.presets[i].Name = preset.Name
			s.presets[i].Color = preset.Color
			s.presets[i].Options = preset.Options
			s.presets[i].MediaIDs = preset.MediaIDs
			return
		}
	}
}

// Remove drops a preset by id. Removing an absent id is a no-op.
func (s *Store) Remove(presetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.presets[:0]
	for _, preset := range s.presets {
		if preset.ID != presetID {
			kept = append(kept, preset)
		}
	}
	s.presets = kept
}

// Reset discards all cached presets. Called on workspace change and logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets = nil
	s.loaded = false
}
