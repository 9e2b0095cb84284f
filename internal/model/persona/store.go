package persona

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Store exposes persona retrieval for the prompt builder.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the loaded personas.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// LoadFile reads personas from a JSON file holding either one object or an
// array of objects.
func LoadFile(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Persona
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode persona file: %w", err)
		}
		return items, nil
	}

	var item Persona
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("decode persona file: %w", err)
	}
	return []Persona{item}, nil
}

// Resolve picks the persona the twin speaks as. Personas come from path when
// it is set, otherwise from Seed. An unknown id falls back to the first entry.
func Resolve(path, id string) (Persona, error) {
	items := Seed()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return Persona{}, err
		}
		items = loaded
	}
	if len(items) == 0 {
		return Persona{}, fmt.Errorf("no personas available")
	}

	store := NewMemoryStore(items)
	if p, ok := store.FindByID(id); ok {
		return p, nil
	}
	return items[0], nil
}
