package brush

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// captureLogs routes the package logger into a buffer for the duration of
// the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestCatalogLookup(t *testing.T) {
	ink := NewDescriptor(uuid.New(), "Ink", GeneratorTube)
	ribbon := NewDescriptor(uuid.New(), "Flat Ribbon", GeneratorRibbon)
	c := NewCatalog(Manifest{Brushes: []*Descriptor{ink, ribbon}})

	if got := c.Brush(ink.GUID); got != ink {
		t.Errorf("Brush(ink) = %v", got)
	}
	if got := c.Brush(uuid.New()); got != nil {
		t.Errorf("Brush(unknown) = %v, want nil", got)
	}
	if got := c.BrushByName("FLAT RIBBON"); got != ribbon {
		t.Errorf("BrushByName = %v, want %v", got, ribbon)
	}
	if got := c.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := c.Names(); len(got) != 2 || got[0] != "Flat Ribbon" {
		t.Errorf("Names() = %v", got)
	}
}

func TestCatalogGUIDCollision(t *testing.T) {
	logs := captureLogs(t)
	guid := uuid.New()
	first := NewDescriptor(guid, "First", GeneratorTube)
	second := NewDescriptor(guid, "Second", GeneratorTube)

	c := NewCatalog(Manifest{Brushes: []*Descriptor{first, second, first}})
	if got := c.Brush(guid); got != first {
		t.Errorf("Brush() = %v, want first registration", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if n := strings.Count(logs.String(), "guid collision"); n != 1 {
		t.Errorf("logged %d collisions, want 1:\n%s", n, logs)
	}
}

func TestCatalogSupersedes(t *testing.T) {
	old := NewDescriptor(uuid.New(), "Old", GeneratorTube)
	mid := NewDescriptor(uuid.New(), "Mid", GeneratorTube)
	mid.Supersedes = old
	newest := NewDescriptor(uuid.New(), "New", GeneratorTube)
	newest.Supersedes = mid

	c := NewCatalog(Manifest{Brushes: []*Descriptor{newest, mid}})

	if got := c.Brush(old.GUID); got != old {
		t.Fatalf("superseded brush not auto-registered: %v", got)
	}
	if !c.IsHidden(old.GUID) {
		t.Error("auto-registered brush should be hidden")
	}
	if c.IsHidden(newest.GUID) || c.IsHidden(mid.GUID) {
		t.Error("listed brushes should be visible")
	}
	if got := c.SupersededBy(old.GUID); got != mid {
		t.Errorf("SupersededBy(old) = %v, want mid", got)
	}
	if got := c.Latest(old.GUID); got != newest {
		t.Errorf("Latest(old) = %v, want newest", got)
	}
	if old.HiddenInGUI {
		t.Error("catalog must not mutate descriptors")
	}
}

func TestCatalogSupersedeConflict(t *testing.T) {
	logs := captureLogs(t)
	old := NewDescriptor(uuid.New(), "Old", GeneratorTube)
	a := NewDescriptor(uuid.New(), "A", GeneratorTube)
	a.Supersedes = old
	b := NewDescriptor(uuid.New(), "B", GeneratorTube)
	b.Supersedes = old

	c := NewCatalog(Manifest{Brushes: []*Descriptor{a, b}})
	if got := c.SupersededBy(old.GUID); got != a {
		t.Errorf("SupersededBy = %v, want first", got)
	}
	if !strings.Contains(logs.String(), "superseded by more than one brush") {
		t.Errorf("conflict not logged:\n%s", logs)
	}
}

func TestCatalogGUIBrushes(t *testing.T) {
	visible := NewDescriptor(uuid.New(), "Visible", GeneratorTube)
	flagged := NewDescriptor(uuid.New(), "Flagged", GeneratorTube)
	flagged.HiddenInGUI = true
	compat := NewDescriptor(uuid.New(), "Compat", GeneratorTube)

	c := NewCatalog(Manifest{
		Brushes:              []*Descriptor{visible, flagged},
		CompatibilityBrushes: []*Descriptor{compat, visible},
	})
	gui := c.GUIBrushes()
	if len(gui) != 1 || gui[0] != visible {
		t.Errorf("GUIBrushes() = %v, want [Visible]", gui)
	}
	if c.Brush(compat.GUID) == nil {
		t.Error("compatibility brush not registered")
	}
	if !c.IsHidden(compat.GUID) {
		t.Error("compatibility brush should be hidden")
	}
	if c.IsHidden(visible.GUID) {
		t.Error("brush listed in both lists should stay visible")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		gen  string
		want string
	}{
		{GeneratorTube, "*brush.Tube"},
		{GeneratorRibbon, "*brush.Ribbon"},
		{"", "*brush.Tube"},
	}
	for _, tt := range tests {
		g, err := r.New(testDescriptor(tt.gen))
		if err != nil {
			t.Fatalf("New(%q): %v", tt.gen, err)
		}
		if got := typeName(g); got != tt.want {
			t.Errorf("New(%q) = %s, want %s", tt.gen, got, tt.want)
		}
	}

	a, _ := r.New(testDescriptor(GeneratorTube))
	b, _ := r.New(testDescriptor(GeneratorTube))
	if a == b {
		t.Error("registry must return a fresh generator per call")
	}

	if _, err := r.New(testDescriptor("sparkle")); err == nil {
		t.Error("unknown generator should fail")
	}
}

func typeName(g Generator) string {
	switch g.(type) {
	case *Tube:
		return "*brush.Tube"
	case *Ribbon:
		return "*brush.Ribbon"
	}
	return "unknown"
}
