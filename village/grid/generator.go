package grid

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mcv-dev/mcvillage/village/grid/rand"
	"github.com/mcv-dev/mcvillage/village/scene"
)

var (
	// ErrNoEnabledTypes is returned by Generate when the palette contains no
	// enabled object type with a registered template. This is a fatal
	// configuration error: nothing is placed.
	ErrNoEnabledTypes = errors.New("grid: no enabled object types with a valid template")
)

// GateMode selects how object types are admitted to a cell's candidate set.
type GateMode uint8

const (
	// GateWeight admits every enabled entry and selects among them by
	// weight. The candidate set is never empty. This is the mode of the
	// plant generator variant.
	GateWeight GateMode = iota
	// GateProbability additionally subjects every enabled entry to an
	// independent per-cell Bernoulli trial on its SpawnProbability before
	// weighting the survivors. Cells where every trial fails stay empty.
	// This is the mode of the custom generator variant.
	GateProbability
)

// Config holds the options for creating a Generator.
type Config struct {
	// Log is the logger used for generation events. Defaults to
	// slog.Default().
	Log *slog.Logger
	// Scene is the scene instances are placed into. Required.
	Scene *scene.Scene
	// Parent is the node generated instances are parented to. Defaults to
	// the scene root.
	Parent *scene.Node
	// Spec describes the lattice to fill.
	Spec Spec
	// Types is the object palette. The slice is copied.
	Types []ObjectType
	// Mode selects the candidate gating variant.
	Mode GateMode
	// Rand overrides the random source. If nil, a source seeded from Spec
	// is created per generation run.
	Rand *rand.Random
}

// Generator places one instance per lattice cell, chosen from the enabled
// entries of its palette. Generators are single-threaded: they are driven
// from the simulation goroutine only.
type Generator struct {
	log    *slog.Logger
	scene  *scene.Scene
	parent *scene.Node
	spec   Spec
	types  []ObjectType
	mode   GateMode
	rng    *rand.Random

	placed []*scene.Node
}

// New creates a Generator using the fields of conf.
func (conf Config) New() *Generator {
	if conf.Scene == nil {
		panic("grid: generator requires a scene")
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Parent == nil {
		conf.Parent = conf.Scene.Root()
	}
	types := make([]ObjectType, len(conf.Types))
	copy(types, conf.Types)
	return &Generator{
		log:    conf.Log,
		scene:  conf.Scene,
		parent: conf.Parent,
		spec:   conf.Spec,
		types:  types,
		mode:   conf.Mode,
		rng:    conf.Rand,
	}
}

// ShaderValue is one drawn shader parameter value of a placement.
type ShaderValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Placement records one placed instance: the cell it fills, the selected
// type and every randomized value applied to it.
type Placement struct {
	Cell [3]int `json:"cell"`
	Type string `json:"type"`
	// Template is the name of the instantiated template, kept so persisted
	// layouts can be restored without the palette that produced them.
	Template string     `json:"template"`
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Vec3 `json:"rotation"`
	Scale    mgl64.Vec3 `json:"scale"`
	// Shader holds the drawn shader parameter values in draw order.
	Shader []ShaderValue `json:"shader,omitempty"`
	// Frame is the selected sprite frame, or -1 when no sheet applied.
	Frame int `json:"frame"`

	node *scene.Node
}

// Node returns the placed scene node. It is nil for placements loaded from a
// persisted layout.
func (p Placement) Node() *scene.Node {
	return p.node
}

// Generate fills every cell of the lattice, replacing any instances placed
// by a previous run. The traversal is X outer, Y middle, Z inner; traversal
// order affects instance naming only, since every cell draws independently.
//
// The random stream is consumed in a fixed order per cell: one Bernoulli
// draw per probability-gated candidate in entry order, the weighted
// selection draw (skipped when a single candidate remains), one draw per
// scale axis and per rotation axis in X, Y, Z order when the respective
// randomization is enabled, one draw per enabled shader parameter in list
// order, and finally the sprite frame draw. Reordering any of these breaks
// seed compatibility with persisted layouts.
func (g *Generator) Generate() ([]Placement, error) {
	if err := g.spec.Validate(); err != nil {
		return nil, err
	}
	eligible, err := g.eligibleTypes()
	if err != nil {
		return nil, err
	}

	rng := g.rng
	if rng == nil {
		seed := g.spec.Seed
		if g.spec.UseRandomSeed {
			seed = time.Now().UnixNano()
		}
		rng = rand.NewRandom(seed)
	}

	g.Clear()

	placements := make([]Placement, 0, g.spec.CellCount())
	candidates := make([]ObjectType, 0, len(eligible))
	for x := 0; x < g.spec.SizeX; x++ {
		for y := 0; y < g.spec.SizeY; y++ {
			for z := 0; z < g.spec.SizeZ; z++ {
				candidates = candidates[:0]
				if g.mode == GateProbability {
					for _, t := range eligible {
						if rng.Chance(t.SpawnProbability) {
							candidates = append(candidates, t)
						}
					}
				} else {
					candidates = append(candidates, eligible...)
				}
				if len(candidates) == 0 {
					// Every gate failed for this cell; a normal outcome,
					// not an error.
					g.log.Debug("grid: cell left empty", "x", x, "y", y, "z", z)
					continue
				}

				selected := candidates[0]
				if len(candidates) > 1 {
					selected = selectWeighted(candidates, rng)
				}

				p, err := g.place(selected, x, y, z, rng)
				if err != nil {
					g.Clear()
					return nil, err
				}
				placements = append(placements, p)
			}
		}
	}
	return placements, nil
}

// Clear destroys every instance placed by the previous generation run.
func (g *Generator) Clear() {
	for _, n := range g.placed {
		g.scene.Destroy(n)
	}
	g.placed = g.placed[:0]
}

// eligibleTypes validates the palette and returns the enabled entries whose
// template is registered, in palette order.
func (g *Generator) eligibleTypes() ([]ObjectType, error) {
	eligible := make([]ObjectType, 0, len(g.types))
	for i, t := range g.types {
		if t.Name == "" {
			return nil, fmt.Errorf("grid: object type %d has an empty name", i)
		}
		if t.SpawnWeight < 0 {
			return nil, fmt.Errorf("grid: object type %q has negative spawn weight %v", t.Name, t.SpawnWeight)
		}
		if t.SpawnProbability < 0 || t.SpawnProbability > 1 {
			return nil, fmt.Errorf("grid: object type %q has spawn probability %v outside [0, 1]", t.Name, t.SpawnProbability)
		}
		if !t.Enabled {
			continue
		}
		if _, ok := g.scene.Templates().Lookup(t.Template); !ok {
			return nil, fmt.Errorf("grid: object type %q references unregistered template %#x", t.Name, uint64(t.Template))
		}
		eligible = append(eligible, t)
	}
	if len(eligible) == 0 {
		return nil, ErrNoEnabledTypes
	}
	return eligible, nil
}

// selectWeighted draws r in [0, total) and walks the candidates
// accumulating weight; the first candidate whose cumulative weight reaches r
// is selected. Given identical candidate order and an identical draw the
// selection is deterministic.
func selectWeighted(candidates []ObjectType, rng *rand.Random) ObjectType {
	var total float64
	for _, c := range candidates {
		total += c.SpawnWeight
	}
	r := rng.Float64Range(0, total)
	var acc float64
	for _, c := range candidates {
		acc += c.SpawnWeight
		if r <= acc {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

// place instantiates the selected type at the cell and applies its
// randomization rules in draw order.
func (g *Generator) place(t ObjectType, x, y, z int, rng *rand.Random) (Placement, error) {
	n, err := g.scene.Instantiate(t.Template, g.parent)
	if err != nil {
		return Placement{}, fmt.Errorf("grid: place %q at (%d,%d,%d): %w", t.Name, x, y, z, err)
	}
	tpl, _ := g.scene.Templates().Lookup(t.Template)
	n.SetName(fmt.Sprintf("%s (%d,%d,%d)", t.Name, x, y, z))
	n.SetPosition(g.spec.CellPosition(x, y, z))

	if t.Randomize.Scale.Enabled {
		n.SetScale(drawVec(t.Randomize.Scale, rng))
	}
	if t.Randomize.Rotation.Enabled {
		n.SetRotation(drawVec(t.Randomize.Rotation, rng))
	}

	p := Placement{
		Cell:     [3]int{x, y, z},
		Type:     t.Name,
		Template: tpl.Name,
		Position: n.Position(),
		Rotation: n.Rotation(),
		Scale:    n.Scale(),
		Frame:    -1,
		node:     n,
	}

	for _, param := range t.ShaderParams {
		if !param.Enabled {
			continue
		}
		v := rng.Float64Range(param.Min, param.Max)
		applied := false
		for _, r := range n.Renderers() {
			if r.SetFloat(param.Name, v) {
				applied = true
			}
		}
		if !applied {
			// Absent properties are a silent no-op, never an error.
			g.log.Debug("grid: shader parameter not declared by any material", "type", t.Name, "parameter", param.Name)
		}
		p.Shader = append(p.Shader, ShaderValue{Name: param.Name, Value: v})
	}

	if sheet := t.Sheet; sheet != nil && (sheet.Filter == PrefabAny || sheet.Filter == t.Prefab) {
		if frames := sheet.Frames(); frames > 0 {
			frame := int(rng.Int31n(int32(frames)))
			for _, r := range n.Renderers() {
				r.SetSpriteFrame(frame)
				if sheet.Tint != nil {
					r.SetTint(*sheet.Tint)
				}
			}
			p.Frame = frame
		}
	}

	g.placed = append(g.placed, n)
	return p, nil
}

// drawVec draws the three axes of a vector range independently, in X, Y, Z
// order.
func drawVec(vr VecRange, rng *rand.Random) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		out[i] = rng.Float64Range(vr.Min[i], vr.Max[i])
	}
	return out
}
