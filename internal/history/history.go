// Package history keeps linear undo/redo stacks of forest snapshots.
package history

import (
	"fmt"
	"sync"

	"github.com/kobzarvs/qdoc/internal/ast"
)

// Manager holds the current forest and the snapshots around it. Forests are
// immutable, so a snapshot is the forest value itself; only the top-level
// slice is copied so callers cannot rewrite a stored entry.
//
// All methods are safe for concurrent use. Each transition moves a snapshot
// and swaps the current forest in one critical section.
type Manager struct {
	mu      sync.Mutex
	current ast.Forest
	undo    []ast.Forest
	redo    []ast.Forest
}

// New returns a manager whose current forest is initial.
func New(initial ast.Forest) *Manager {
	return &Manager{current: snapshot(initial)}
}

func snapshot(f ast.Forest) ast.Forest {
	out := make(ast.Forest, len(f))
	copy(out, f)
	return out
}

// Commit pushes the current forest onto the undo stack, clears the redo
// stack and makes f current.
func (m *Manager) Commit(f ast.Forest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = append(m.undo, m.current)
	clear(m.redo)
	m.redo = m.redo[:0]
	m.current = snapshot(f)
}

// Undo restores the previous forest. With nothing to undo it returns
// ErrHistoryUnderflow and changes nothing.
func (m *Manager) Undo() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return fmt.Errorf("undo: %w", ast.ErrHistoryUnderflow)
	}
	idx := len(m.undo) - 1
	prev := m.undo[idx]
	m.undo[idx] = nil
	m.undo = m.undo[:idx]
	m.redo = append(m.redo, m.current)
	m.current = prev
	return nil
}

// Redo re-applies the most recently undone forest. With nothing to redo it
// returns ErrHistoryUnderflow and changes nothing.
func (m *Manager) Redo() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return fmt.Errorf("redo: %w", ast.ErrHistoryUnderflow)
	}
	idx := len(m.redo) - 1
	next := m.redo[idx]
	m.redo[idx] = nil
	m.redo = m.redo[:idx]
	m.undo = append(m.undo, m.current)
	m.current = next
	return nil
}

// Current returns the current forest.
func (m *Manager) Current() ast.Forest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot(m.current)
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Depths returns the sizes of the undo and redo stacks.
func (m *Manager) Depths() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}

// Stacks is a copy of the manager state for dumps. Index 0 of each stack is
// the oldest entry.
type Stacks struct {
	Current ast.Forest   `json:"current" yaml:"current"`
	Undo    []ast.Forest `json:"undo" yaml:"undo"`
	Redo    []ast.Forest `json:"redo" yaml:"redo"`
}

func (m *Manager) Stacks() Stacks {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stacks{
		Current: snapshot(m.current),
		Undo:    make([]ast.Forest, len(m.undo)),
		Redo:    make([]ast.Forest, len(m.redo)),
	}
	for i, f := range m.undo {
		s.Undo[i] = snapshot(f)
	}
	for i, f := range m.redo {
		s.Redo[i] = snapshot(f)
	}
	return s
}
