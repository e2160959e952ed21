package page

import (
	"context"
	"sync"
)

type elementKind int

const (
	kindBlock elementKind = iota
	kindControl
	kindField
)

type element struct {
	kind    elementKind
	label   string
	value   string
	onClick func()
}

// Memory is an in-process page. The terminal host renders it and tests
// inspect it.
type Memory struct {
	mu         sync.Mutex
	elements   map[string]*element
	order      []string
	focused    string
	highlights map[string]string
	clicks     map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		elements:   map[string]*element{},
		highlights: map[string]string{},
		clicks:     map[string]int{},
	}
}

func (m *Memory) add(id string, el *element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.elements[id]; !ok {
		m.order = append(m.order, id)
	}
	m.elements[id] = el
}

// AddControl registers a clickable control. onClick may be nil.
func (m *Memory) AddControl(id, label string, onClick func()) {
	m.add(id, &element{kind: kindControl, label: label, onClick: onClick})
}

func (m *Memory) AddField(id, label, value string) {
	m.add(id, &element{kind: kindField, label: label, value: value})
}

// AddBlock registers a static element that can only be highlighted.
func (m *Memory) AddBlock(id, label string) {
	m.add(id, &element{kind: kindBlock, label: label})
}

func (m *Memory) Click(_ context.Context, id string) error {
	m.mu.Lock()
	el, ok := m.elements[id]
	if !ok {
		m.mu.Unlock()
		return missing(id)
	}
	m.clicks[id]++
	onClick := el.onClick
	m.mu.Unlock()

	if onClick != nil {
		onClick()
	}
	return nil
}

func (m *Memory) Focus(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.elements[id]; !ok {
		return missing(id)
	}
	m.focused = id
	return nil
}

func (m *Memory) Value(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.elements[id]
	if !ok {
		return "", missing(id)
	}
	return el.value, nil
}

func (m *Memory) SetValue(_ context.Context, id, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.elements[id]
	if !ok {
		return missing(id)
	}
	el.value = value
	return nil
}

func (m *Memory) Highlight(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.elements[id]; !ok {
		return missing(id)
	}
	m.highlights[id] = HighlightID(id)
	return nil
}

func (m *Memory) RemoveHighlight(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.elements[id]; !ok {
		return missing(id)
	}
	delete(m.highlights, id)
	return nil
}

// Highlighted returns the id of the highlighted element, or "" if none is.
func (m *Memory) Highlighted() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if _, ok := m.highlights[id]; ok {
			return id
		}
	}
	return ""
}

func (m *Memory) IsHighlighted(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.highlights[id]
	return ok
}

func (m *Memory) Focused() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

func (m *Memory) Clicks(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clicks[id]
}

// Element is a read-only view of a Memory element for rendering.
type Element struct {
	ID          string
	Label       string
	Value       string
	IsField     bool
	IsControl   bool
	Focused     bool
	Highlighted bool
}

func (m *Memory) Elements() []Element {
	m.mu.Lock()
	defer m.mu.Unlock()

	elements := make([]Element, 0, len(m.order))
	for _, id := range m.order {
		el := m.elements[id]
		_, highlighted := m.highlights[id]
		elements = append(elements, Element{
			ID:          id,
			Label:       el.label,
			Value:       el.value,
			IsField:     el.kind == kindField,
			IsControl:   el.kind == kindControl,
			Focused:     m.focused == id,
			Highlighted: highlighted,
		})
	}
	return elements
}
