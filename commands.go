// commands.go - undoable edits over the engine, and their bounded history

package daw

import "fmt"

// Command is a capability set: apply the change, and reverse it. Each
// concrete command captures its own inverse state when it executes.
type Command interface {
	Execute(e *Engine) error
	Undo(e *Engine) error
	Name() string
}

const defaultMaxHistory = 100

// CommandManager holds the undo/redo stacks with a bounded capacity;
// oldest entries are dropped in FIFO order once the cap is exceeded.
type CommandManager struct {
	undoStack  []Command
	redoStack  []Command
	maxHistory int
}

// NewCommandManager constructs a manager with the given history cap.
func NewCommandManager(maxHistory int) *CommandManager {
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	return &CommandManager{maxHistory: maxHistory}
}

// Push executes cmd and pushes it onto the undo stack, clearing redo since
// a new history branch has begun.
func (m *CommandManager) Push(cmd Command, e *Engine) error {
	if err := cmd.Execute(e); err != nil {
		return fmt.Errorf("execute %s: %w", cmd.Name(), err)
	}
	m.undoStack = append(m.undoStack, cmd)
	m.redoStack = m.redoStack[:0]

	if len(m.undoStack) > m.maxHistory {
		m.undoStack = m.undoStack[1:]
	}
	return nil
}

// Undo pops the most recent command and reverses it, returning false if
// there was nothing to undo.
func (m *CommandManager) Undo(e *Engine) (bool, error) {
	if len(m.undoStack) == 0 {
		return false, nil
	}
	cmd := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	if err := cmd.Undo(e); err != nil {
		return false, fmt.Errorf("undo %s: %w", cmd.Name(), err)
	}
	m.redoStack = append(m.redoStack, cmd)
	return true, nil
}

// Redo re-applies the most recently undone command.
func (m *CommandManager) Redo(e *Engine) (bool, error) {
	if len(m.redoStack) == 0 {
		return false, nil
	}
	cmd := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	if err := cmd.Execute(e); err != nil {
		return false, fmt.Errorf("redo %s: %w", cmd.Name(), err)
	}
	m.undoStack = append(m.undoStack, cmd)
	return true, nil
}

// CanUndo reports whether Undo would do anything.
func (m *CommandManager) CanUndo() bool { return len(m.undoStack) > 0 }

// CanRedo reports whether Redo would do anything.
func (m *CommandManager) CanRedo() bool { return len(m.redoStack) > 0 }
