package mapview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/ports"
)

var (
	ErrSourceExists  = errors.New("source already exists")
	ErrSourceMissing = errors.New("source does not exist")
	ErrLayerExists   = errors.New("layer already exists")
	ErrNoClickTarget = errors.New("no click handler for layer")
)

// MemoryMap is a server-side map instance. It keeps the GeoJSON of every
// source and the layers in draw order, and behaves like a browser map: adding
// an existing source or layer is an error, so callers must upsert.
type MemoryMap struct {
	mu       sync.RWMutex
	sources  map[string]json.RawMessage
	layers   []ports.LayerSpec
	handlers map[string]ports.FeatureClickHandler
}

func NewMemoryMap() *MemoryMap {
	return &MemoryMap{
		sources:  make(map[string]json.RawMessage),
		handlers: make(map[string]ports.FeatureClickHandler),
	}
}

// New returns the map as the ports.InteractiveMap the order service expects.
func New() ports.InteractiveMap { return NewMemoryMap() }

func (m *MemoryMap) HasSource(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sources[id]
	return ok
}

func (m *MemoryMap) AddSource(id string, data json.Marshaler) error {
	raw, err := encode(data)
	if err != nil {
		return fmt.Errorf("add source %q: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; ok {
		return fmt.Errorf("add source %q: %w", id, ErrSourceExists)
	}
	m.sources[id] = raw
	return nil
}

func (m *MemoryMap) SetSourceData(id string, data json.Marshaler) error {
	raw, err := encode(data)
	if err != nil {
		return fmt.Errorf("set source %q: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return fmt.Errorf("set source %q: %w", id, ErrSourceMissing)
	}
	m.sources[id] = raw
	return nil
}

func (m *MemoryMap) HasLayer(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layerIndex(id) >= 0
}

func (m *MemoryMap) AddLayer(spec ports.LayerSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.layerIndex(spec.ID) >= 0 {
		return fmt.Errorf("add layer %q: %w", spec.ID, ErrLayerExists)
	}
	if _, ok := m.sources[spec.Source]; !ok {
		return fmt.Errorf("add layer %q: %w", spec.ID, ErrSourceMissing)
	}
	m.layers = append(m.layers, spec)
	return nil
}

// OnFeatureClick replaces any handler registered earlier for layerID.
func (m *MemoryMap) OnFeatureClick(layerID string, handler ports.FeatureClickHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[layerID] = handler
}

// Click dispatches a feature click to the layer's handler. The handler runs
// without the map lock held since it usually renders back into this map.
func (m *MemoryMap) Click(ctx context.Context, layerID string, featureID string) (domain.Notification, error) {
	m.mu.RLock()
	h, ok := m.handlers[layerID]
	m.mu.RUnlock()

	if !ok {
		return domain.Notification{}, fmt.Errorf("click %q: %w", layerID, ErrNoClickTarget)
	}
	return h(ctx, featureID), nil
}

func (m *MemoryMap) Snapshot() ports.MapSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sources := make(map[string]json.RawMessage, len(m.sources))
	for id, raw := range m.sources {
		sources[id] = slices.Clone(raw)
	}
	return ports.MapSnapshot{
		Sources: sources,
		Layers:  slices.Clone(m.layers),
	}
}

func (m *MemoryMap) layerIndex(id string) int {
	return slices.IndexFunc(m.layers, func(l ports.LayerSpec) bool { return l.ID == id })
}

func encode(data json.Marshaler) (json.RawMessage, error) {
	if data == nil {
		return nil, errors.New("source data is nil")
	}
	raw, err := data.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode source data: %w", err)
	}
	return raw, nil
}
