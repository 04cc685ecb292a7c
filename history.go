package sketch

import (
	"errors"
	"fmt"

	"github.com/gogpu/sketch/geom"
)

// Command is an undoable edit of the sketch.
type Command interface {
	Name() string
	// Redo applies the edit.
	Redo(p *Pointer) error
	// Undo reverts it.
	Undo(p *Pointer) error
}

// continuer is implemented by commands that belong to the same gesture as
// the command before them.
type continuer interface {
	ContinuesPrevious() bool
}

func continues(c Command) bool {
	cc, ok := c.(continuer)
	return ok && cc.ContinuesPrevious()
}

// DefaultHistoryLimit is the number of commands kept when no limit is given.
const DefaultHistoryLimit = 256

// History is an undo/redo stack of commands. Commands are applied through
// the pointer the history was created with.
type History struct {
	pointer *Pointer
	limit   int
	undo    []Command
	redo    []Command
}

// NewHistory returns an empty history keeping up to limit commands.
func NewHistory(p *Pointer, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{pointer: p, limit: limit}
}

// Perform applies cmd and records it. The redo stack is cleared.
func (h *History) Perform(cmd Command) error {
	if err := cmd.Redo(h.pointer); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	h.Record(cmd)
	return nil
}

// Record pushes a command that has already been applied.
func (h *History) Record(cmd Command) {
	h.undo = append(h.undo, cmd)
	if over := len(h.undo) - h.limit; over > 0 {
		h.undo = append(h.undo[:0], h.undo[over:]...)
	}
	h.redo = h.redo[:0]
}

// CanUndo reports whether there is a command to undo.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether there is a command to redo.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Undo reverts the newest command, together with the commands it continues.
func (h *History) Undo() error {
	if len(h.undo) == 0 {
		return fmt.Errorf("%w: nothing to undo", ErrNothingToDo)
	}
	for len(h.undo) > 0 {
		cmd := h.undo[len(h.undo)-1]
		h.undo = h.undo[:len(h.undo)-1]
		if err := cmd.Undo(h.pointer); err != nil {
			return fmt.Errorf("undo %s: %w", cmd.Name(), err)
		}
		h.redo = append(h.redo, cmd)
		if !continues(cmd) {
			return nil
		}
	}
	return nil
}

// Redo reapplies the newest undone command, together with the commands
// that continue it.
func (h *History) Redo() error {
	if len(h.redo) == 0 {
		return fmt.Errorf("%w: nothing to redo", ErrNothingToDo)
	}
	for first := true; len(h.redo) > 0; first = false {
		cmd := h.redo[len(h.redo)-1]
		if !first && !continues(cmd) {
			return nil
		}
		h.redo = h.redo[:len(h.redo)-1]
		if err := cmd.Redo(h.pointer); err != nil {
			return fmt.Errorf("redo %s: %w", cmd.Name(), err)
		}
		h.undo = append(h.undo, cmd)
	}
	return nil
}

// Clear drops every recorded command.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// AddStroke records a stroke in a ledger. Undo removes it and destroys its
// geometry.
type AddStroke struct {
	Ledger *Ledger
	Stroke *Stroke
}

func (c *AddStroke) Name() string { return "add stroke" }

func (c *AddStroke) ContinuesPrevious() bool {
	return c.Stroke.Flags.Has(FlagIsGroupContinue)
}

func (c *AddStroke) Redo(p *Pointer) error {
	if c.Stroke.Type == NotCreated {
		if err := p.RecreateLineFromMemory(c.Stroke); err != nil {
			return err
		}
	}
	if c.Ledger.IndexOf(c.Stroke) >= 0 {
		return nil
	}
	return c.Ledger.Add(c.Stroke)
}

func (c *AddStroke) Undo(*Pointer) error {
	c.Ledger.Remove(c.Stroke)
	c.Stroke.Uncreate()
	return nil
}

// DeleteStrokes removes strokes from a ledger and destroys their geometry.
type DeleteStrokes struct {
	Ledger  *Ledger
	Strokes []*Stroke
}

func (c *DeleteStrokes) Name() string { return "delete strokes" }

func (c *DeleteStrokes) Redo(*Pointer) error {
	for _, s := range c.Strokes {
		c.Ledger.Remove(s)
		s.Uncreate()
	}
	return nil
}

func (c *DeleteStrokes) Undo(p *Pointer) error {
	var errs []error
	for _, s := range c.Strokes {
		if err := c.Ledger.Add(s); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.RecreateLineFromMemory(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TransformStrokes applies a left transform to strokes and rebuilds them.
type TransformStrokes struct {
	Strokes   []*Stroke
	Transform geom.TrTransform
}

func (c *TransformStrokes) Name() string { return "transform strokes" }

func (c *TransformStrokes) Redo(p *Pointer) error {
	return c.apply(p, c.Transform)
}

func (c *TransformStrokes) Undo(p *Pointer) error {
	return c.apply(p, c.Transform.Inverse())
}

func (c *TransformStrokes) apply(p *Pointer, xf geom.TrTransform) error {
	var errs []error
	for _, s := range c.Strokes {
		if err := s.Recreate(p, WithLeftTransform(xf)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReparentStrokes moves strokes to another canvas without moving them in
// the scene.
type ReparentStrokes struct {
	Strokes []*Stroke
	To      Canvas

	from []Canvas
}

func (c *ReparentStrokes) Name() string { return "reparent strokes" }

func (c *ReparentStrokes) Redo(p *Pointer) error {
	c.from = make([]Canvas, len(c.Strokes))
	var errs []error
	for i, s := range c.Strokes {
		c.from[i] = s.Canvas()
		if err := s.SetParentKeepWorldPosition(p, c.To, nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *ReparentStrokes) Undo(p *Pointer) error {
	var errs []error
	for i, s := range c.Strokes {
		if i >= len(c.from) || c.from[i] == nil {
			continue
		}
		if err := s.SetParentKeepWorldPosition(p, c.from[i], nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
