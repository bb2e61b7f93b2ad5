package scene

// Material is a shared visual material exposing named float properties with
// default values. Materials are immutable once created: instances never write
// to them, only to their own property blocks, so a material may safely back
// any number of renderers.
type Material struct {
	name   string
	floats map[string]float64
}

// NewMaterial creates a material declaring the float properties passed. The
// map is copied.
func NewMaterial(name string, floats map[string]float64) *Material {
	m := &Material{name: name, floats: make(map[string]float64, len(floats))}
	for k, v := range floats {
		m.floats[k] = v
	}
	return m
}

// Name returns the name of the material.
func (m *Material) Name() string { return m.name }

// HasFloat reports whether the material declares a float property with the
// name passed.
func (m *Material) HasFloat(name string) bool {
	_, ok := m.floats[name]
	return ok
}

// Float returns the default value of a declared float property.
func (m *Material) Float(name string) (float64, bool) {
	v, ok := m.floats[name]
	return v, ok
}

// Color is an RGBA tint with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// White is the neutral tint.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Renderer draws a node using one or more shared materials. Per-instance
// values live in the renderer's property block; the shared materials are
// never touched.
type Renderer struct {
	materials []*Material
	block     PropertyBlock
}

func newRenderer(materials []*Material) *Renderer {
	return &Renderer{materials: materials, block: PropertyBlock{frame: -1}}
}

// Materials returns the shared materials of the renderer.
func (r *Renderer) Materials() []*Material { return r.materials }

// SetFloat overlays a float value for the property name on the renderer. The
// value only takes effect on materials that declare the property; if none of
// the renderer's materials do, nothing is stored and false is returned.
func (r *Renderer) SetFloat(name string, v float64) bool {
	declared := false
	for _, m := range r.materials {
		if m.HasFloat(name) {
			declared = true
			break
		}
	}
	if !declared {
		return false
	}
	if r.block.floats == nil {
		r.block.floats = make(map[string]float64)
	}
	r.block.floats[name] = v
	return true
}

// Float returns the effective value of the property name: the instance
// overlay if set, the first declaring material's default otherwise.
func (r *Renderer) Float(name string) (float64, bool) {
	if v, ok := r.block.floats[name]; ok {
		return v, true
	}
	for _, m := range r.materials {
		if v, ok := m.Float(name); ok {
			return v, true
		}
	}
	return 0, false
}

// SetTint overlays a colour tint on the renderer.
func (r *Renderer) SetTint(c Color) {
	r.block.tint = &c
}

// Tint returns the overlaid tint, if any.
func (r *Renderer) Tint() (Color, bool) {
	if r.block.tint == nil {
		return Color{}, false
	}
	return *r.block.tint, true
}

// SetSpriteFrame overlays the sprite-sheet frame index the renderer samples.
func (r *Renderer) SetSpriteFrame(frame int) {
	r.block.frame = frame
}

// SpriteFrame returns the overlaid sprite frame index, or -1 if unset.
func (r *Renderer) SpriteFrame() int {
	return r.block.frame
}

// PropertyBlock is the per-instance overlay of a renderer. It shadows values
// of the shared materials without mutating them.
type PropertyBlock struct {
	floats map[string]float64
	tint   *Color
	frame  int
}
