package brush

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Manifest lists the brushes a catalog is built from. Compatibility
// brushes load old sketches but are never offered in the GUI.
type Manifest struct {
	Brushes              []*Descriptor
	CompatibilityBrushes []*Descriptor
}

// Catalog maps brush GUIDs to descriptors. It is built once from a
// manifest and is read-only afterwards, so it is safe for concurrent use.
// Rebuilding means calling NewCatalog again.
type Catalog struct {
	byGUID       map[uuid.UUID]*Descriptor
	byName       map[string]*Descriptor
	supersededBy map[uuid.UUID]*Descriptor
	hidden       map[uuid.UUID]bool
	order        []*Descriptor
	gui          []*Descriptor
}

// NewCatalog builds a catalog. A GUID claimed by two different descriptors
// is logged and the first one wins. A brush's Supersedes target is added,
// hidden, if the manifest does not list it.
func NewCatalog(m Manifest) *Catalog {
	c := &Catalog{
		byGUID:       make(map[uuid.UUID]*Descriptor),
		byName:       make(map[string]*Descriptor),
		supersededBy: make(map[uuid.UUID]*Descriptor),
		hidden:       make(map[uuid.UUID]bool),
	}
	log := Logger()

	listed := make(map[*Descriptor]bool, len(m.Brushes))
	var all []*Descriptor
	for _, d := range m.Brushes {
		if d != nil {
			listed[d] = true
			all = append(all, d)
		}
	}
	compat := make(map[*Descriptor]bool)
	for _, d := range m.CompatibilityBrushes {
		if d != nil && !listed[d] {
			all = append(all, d)
			compat[d] = true
		}
	}

	for _, d := range all {
		if c.register(d, log) && compat[d] {
			c.hidden[d.GUID] = true
		}
	}

	for _, d := range all {
		older := d.Supersedes
		if older == nil {
			continue
		}
		if _, ok := c.byGUID[older.GUID]; !ok {
			c.register(older, log)
			c.hidden[older.GUID] = true
		}
		if prev, ok := c.supersededBy[older.GUID]; ok && prev != d {
			log.Warn("brush: superseded by more than one brush",
				"brush", older.DurableName, "first", prev.DurableName, "second", d.DurableName)
			continue
		}
		c.supersededBy[older.GUID] = d
	}

	for _, d := range c.order {
		if d.HiddenInGUI || c.hidden[d.GUID] {
			continue
		}
		c.gui = append(c.gui, d)
	}
	log.Info("brush: catalog built", "brushes", len(c.order), "gui", len(c.gui))
	return c
}

// register adds d and reports whether it was new.
func (c *Catalog) register(d *Descriptor, log *slog.Logger) bool {
	if existing, ok := c.byGUID[d.GUID]; ok {
		if existing != d {
			log.Warn("brush: guid collision", "guid", d.GUID,
				"existing", existing.DurableName, "ignored", d.DurableName)
		}
		return false
	}
	c.byGUID[d.GUID] = d
	c.order = append(c.order, d)
	key := foldName(d.DurableName)
	if _, ok := c.byName[key]; !ok && key != "" {
		c.byName[key] = d
	}
	return true
}

// foldName returns the case-folded lookup key for a brush name. A Caser
// is stateful, so each call builds its own.
func foldName(s string) string {
	return cases.Fold().String(s)
}

// Brush returns the descriptor for guid, or nil if it is unknown.
func (c *Catalog) Brush(guid uuid.UUID) *Descriptor {
	return c.byGUID[guid]
}

// BrushByName looks a brush up by durable name, ignoring case.
func (c *Catalog) BrushByName(name string) *Descriptor {
	return c.byName[foldName(name)]
}

// SupersededBy returns the brush that replaces guid, or nil.
func (c *Catalog) SupersededBy(guid uuid.UUID) *Descriptor {
	return c.supersededBy[guid]
}

// Latest follows SupersededBy links to the newest replacement of guid.
func (c *Catalog) Latest(guid uuid.UUID) *Descriptor {
	d := c.Brush(guid)
	seen := make(map[uuid.UUID]bool)
	for d != nil && !seen[d.GUID] {
		seen[d.GUID] = true
		next := c.supersededBy[d.GUID]
		if next == nil {
			break
		}
		d = next
	}
	return d
}

// IsHidden reports whether guid is kept out of the GUI, either by its own
// flag or because the catalog registered it for compatibility.
func (c *Catalog) IsHidden(guid uuid.UUID) bool {
	d := c.byGUID[guid]
	return d == nil || d.HiddenInGUI || c.hidden[guid]
}

// GUIBrushes returns the brushes offered to the user, in manifest order.
func (c *Catalog) GUIBrushes() []*Descriptor {
	return append([]*Descriptor(nil), c.gui...)
}

// Len returns the number of registered brushes, hidden ones included.
func (c *Catalog) Len() int { return len(c.order) }

// Names returns the durable names of all registered brushes, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.order))
	for _, d := range c.order {
		names = append(names, d.DurableName)
	}
	sort.Strings(names)
	return names
}
