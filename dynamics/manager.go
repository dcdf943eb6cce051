// Package dynamics holds the state manager shared by a hub and its state effectors. Effectors never
// own the storage of their states; they hold opaque handles and go through a StateAccessor.
package dynamics

import (
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// StateHandle refers to a state registered with a Manager. The zero value refers to nothing.
type StateHandle struct {
	index int
	rows  int
	name  string
}

// Name returns the name the state was registered under.
func (h StateHandle) Name() string {
	return h.name
}

// Rows returns the size of the state.
func (h StateHandle) Rows() int {
	return h.rows
}

// Valid reports whether the handle was issued by a manager.
func (h StateHandle) Valid() bool {
	return h.rows > 0
}

// StateAccessor is what a state effector sees of the state manager.
type StateAccessor interface {
	// RegisterState creates a new state with the given number of rows, initialized to zero.
	RegisterState(name string, rows int) (StateHandle, error)
	// GetStateObject returns the handle of a state registered by someone else.
	GetStateObject(name string) (StateHandle, error)
	// State returns a copy of the current value.
	State(h StateHandle) []float64
	// SetState overwrites the current value.
	SetState(h StateHandle, value []float64) error
	// SetDerivative records the time derivative of the state for the current evaluation.
	SetDerivative(h StateHandle, value []float64) error
	// GetProperty returns a copy of a named property vector published by the hub.
	GetProperty(name string) ([]float64, error)
}

type stateEntry struct {
	name       string
	value      []float64
	derivative []float64
}

// Manager stores all dynamic states and properties of one simulation context.
type Manager struct {
	states     []stateEntry
	byName     map[string]int
	properties map[string][]float64
	ids        *IDAllocator
}

// NewManager returns an empty state manager.
func NewManager() *Manager {
	return &Manager{
		byName:     map[string]int{},
		properties: map[string][]float64{},
		ids:        NewIDAllocator(),
	}
}

// NextID issues the next identifier for kind from this context's allocator.
func (m *Manager) NextID(kind string) uint64 {
	return m.ids.NextID(kind)
}

// RegisterState creates a new state with the given number of rows.
func (m *Manager) RegisterState(name string, rows int) (StateHandle, error) {
	if name == "" {
		return StateHandle{}, errors.New("state name cannot be empty")
	}
	if rows < 1 {
		return StateHandle{}, errors.Errorf("state %q must have at least one row", name)
	}
	if _, ok := m.byName[name]; ok {
		return StateHandle{}, errors.Wrapf(ErrStateExists, "%q", name)
	}
	m.states = append(m.states, stateEntry{
		name:       name,
		value:      make([]float64, rows),
		derivative: make([]float64, rows),
	})
	idx := len(m.states) - 1
	m.byName[name] = idx
	return StateHandle{index: idx, rows: rows, name: name}, nil
}

// GetStateObject returns the handle for an existing state.
func (m *Manager) GetStateObject(name string) (StateHandle, error) {
	idx, ok := m.byName[name]
	if !ok {
		return StateHandle{}, NewStateNotFoundError(name)
	}
	return StateHandle{index: idx, rows: len(m.states[idx].value), name: name}, nil
}

func (m *Manager) entry(h StateHandle) (*stateEntry, error) {
	if !h.Valid() || h.index >= len(m.states) || m.states[h.index].name != h.name {
		return nil, NewStateNotFoundError(h.name)
	}
	return &m.states[h.index], nil
}

// State returns a copy of the value of h, or nil when h is unknown.
func (m *Manager) State(h StateHandle) []float64 {
	e, err := m.entry(h)
	if err != nil {
		return nil
	}
	return append([]float64(nil), e.value...)
}

// SetState overwrites the value of h.
func (m *Manager) SetState(h StateHandle, value []float64) error {
	e, err := m.entry(h)
	if err != nil {
		return err
	}
	if len(value) != len(e.value) {
		return NewStateSizeError(e.name, len(e.value), len(value))
	}
	copy(e.value, value)
	return nil
}

// SetDerivative records the derivative of h.
func (m *Manager) SetDerivative(h StateHandle, value []float64) error {
	e, err := m.entry(h)
	if err != nil {
		return err
	}
	if len(value) != len(e.derivative) {
		return NewStateSizeError(e.name, len(e.derivative), len(value))
	}
	copy(e.derivative, value)
	return nil
}

// Derivative returns a copy of the last derivative recorded for h.
func (m *Manager) Derivative(h StateHandle) []float64 {
	e, err := m.entry(h)
	if err != nil {
		return nil
	}
	return append([]float64(nil), e.derivative...)
}

// SetProperty publishes a named property vector.
func (m *Manager) SetProperty(name string, value []float64) {
	m.properties[name] = append([]float64(nil), value...)
}

// GetProperty returns a copy of a named property vector.
func (m *Manager) GetProperty(name string) ([]float64, error) {
	v, ok := m.properties[name]
	if !ok {
		return nil, errors.Errorf("property %q not found", name)
	}
	return append([]float64(nil), v...), nil
}

// StateNames returns the names of all registered states in sorted order.
func (m *Manager) StateNames() []string {
	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the total number of rows across all states.
func (m *Manager) Size() int {
	n := 0
	for _, e := range m.states {
		n += len(e.value)
	}
	return n
}

// StateVector returns all state values concatenated in registration order.
func (m *Manager) StateVector() []float64 {
	out := make([]float64, 0, m.Size())
	for _, e := range m.states {
		out = append(out, e.value...)
	}
	return out
}

// SetStateVector overwrites all state values from a vector laid out like StateVector.
func (m *Manager) SetStateVector(x []float64) error {
	if len(x) != m.Size() {
		return errors.Errorf("state vector has %d rows but manager holds %d", len(x), m.Size())
	}
	i := 0
	for _, e := range m.states {
		i += copy(e.value, x[i:i+len(e.value)])
	}
	return nil
}

// DerivativeVector returns all derivatives concatenated in registration order.
func (m *Manager) DerivativeVector() []float64 {
	out := make([]float64, 0, m.Size())
	for _, e := range m.states {
		out = append(out, e.derivative...)
	}
	return out
}

// Scalar reads the first row of a state through any accessor.
func Scalar(acc StateAccessor, h StateHandle) float64 {
	v := acc.State(h)
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

// Vector reads a three-row state through any accessor.
func Vector(acc StateAccessor, h StateHandle) r3.Vector {
	v := acc.State(h)
	if len(v) < 3 {
		return r3.Vector{}
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// VectorSlice flattens v for SetState and SetDerivative.
func VectorSlice(v r3.Vector) []float64 {
	return []float64{v.X, v.Y, v.Z}
}
