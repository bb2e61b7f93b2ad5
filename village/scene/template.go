package scene

import (
	"github.com/segmentio/fasthash/fnv1a"
)

// TemplateID is the opaque handle of a registered template, derived from the
// template name. Handles are stable across processes for a given name, which
// lets persisted layouts refer to templates without storing full definitions.
type TemplateID uint64

// TemplateIDFor returns the handle the template with the name passed would
// be registered under.
func TemplateIDFor(name string) TemplateID {
	return TemplateID(fnv1a.HashString64(name))
}

// RendererSpec describes one renderer of a template: the shared materials it
// draws with. Instances created from the template reference these materials
// and overlay per-instance values on top of them.
type RendererSpec struct {
	Materials []*Material
}

// Template is an instantiable scene object definition.
type Template struct {
	// Name identifies the template. Registering a second template with the
	// same name replaces the first.
	Name string
	// Tag is the category tag applied to instances of the template.
	Tag string
	// Renderers lists the renderers instances of the template carry.
	Renderers []RendererSpec
}

// Registry holds the templates a scene may instantiate.
type Registry struct {
	templates map[TemplateID]Template
}

// NewRegistry creates an empty template registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[TemplateID]Template)}
}

// Register adds the template to the registry and returns its handle.
func (r *Registry) Register(t Template) TemplateID {
	id := TemplateIDFor(t.Name)
	r.templates[id] = t
	return id
}

// Lookup resolves a template by handle.
func (r *Registry) Lookup(id TemplateID) (Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// ByName resolves a template by name.
func (r *Registry) ByName(name string) (Template, bool) {
	return r.Lookup(TemplateIDFor(name))
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.templates)
}
