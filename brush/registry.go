package brush

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Registry maps generator tags to factories. Descriptors select their
// generator by tag, so new strategies can be added without touching the
// stroke pipeline.
type Registry struct {
	factories *gpucontext.Registry[Generator]
}

// NewRegistry returns a registry with the tube and ribbon generators.
// When a descriptor names no generator the tube is used.
func NewRegistry() *Registry {
	r := &Registry{
		factories: gpucontext.NewRegistry[Generator](
			gpucontext.WithPriority(GeneratorTube, GeneratorRibbon),
		),
	}
	r.Register(GeneratorTube, func() Generator { return NewTube() })
	r.Register(GeneratorRibbon, func() Generator { return NewRibbon() })
	return r
}

// Register adds or replaces the factory for tag.
func (r *Registry) Register(tag string, factory func() Generator) {
	r.factories.Register(tag, factory)
}

// Tags returns the registered generator tags.
func (r *Registry) Tags() []string {
	return r.factories.Available()
}

// New returns a fresh generator for desc.
func (r *Registry) New(desc *Descriptor) (Generator, error) {
	if desc == nil {
		return nil, ErrNilDescriptor
	}
	if desc.Generator == "" {
		if g := r.factories.Best(); g != nil {
			return g, nil
		}
		return nil, fmt.Errorf("%w: registry is empty", ErrUnknownGenerator)
	}
	if !r.factories.Has(desc.Generator) {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownGenerator, desc.Generator, desc)
	}
	return r.factories.Get(desc.Generator), nil
}
