package controller

import "sync"

// Field is the host's persisted specifications field.
type Field interface {
	Value() string
	SetValue(value string)
	SetVisible(visible bool)
}

// MemoryField is an in-process Field.
type MemoryField struct {
	mu      sync.RWMutex
	value   string
	visible bool
	writes  int
}

var _ Field = (*MemoryField)(nil)

// NewMemoryField returns a field holding value.
func NewMemoryField(value string) *MemoryField {
	return &MemoryField{value: value, visible: true}
}

func (f *MemoryField) Value() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

func (f *MemoryField) SetValue(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = value
	f.writes++
}

func (f *MemoryField) SetVisible(visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = visible
}

// Visible reports the last visibility set on the field.
func (f *MemoryField) Visible() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.visible
}

// Writes counts SetValue calls.
func (f *MemoryField) Writes() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.writes
}
