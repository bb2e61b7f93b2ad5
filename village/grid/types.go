package grid

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/mcv-dev/mcvillage/village/scene"
)

// PrefabType categorises the template an object type instantiates. Sprite
// sheets may restrict themselves to a single category.
type PrefabType uint8

const (
	// PrefabAny matches every prefab type.
	PrefabAny PrefabType = iota
	// PrefabSingle is a one-cell standalone prop.
	PrefabSingle
	// PrefabDouble is a two-part prop, such as a tall plant.
	PrefabDouble
	// PrefabCrop is a staged crop prop.
	PrefabCrop
)

// String ...
func (p PrefabType) String() string {
	switch p {
	case PrefabAny:
		return "any"
	case PrefabSingle:
		return "single"
	case PrefabDouble:
		return "double"
	case PrefabCrop:
		return "crop"
	}
	return "unknown"
}

// VecRange is a uniform per-axis range. When enabled, each axis is drawn
// independently; axes are never correlated.
type VecRange struct {
	Enabled  bool
	Min, Max mgl64.Vec3
}

// TransformRandomization configures the random scale and rotation applied to
// freshly placed instances. Disabled ranges keep the template defaults.
type TransformRandomization struct {
	// Scale is applied per axis. Values multiply the template scale of 1.
	Scale VecRange
	// Rotation is applied per axis as Euler degrees.
	Rotation VecRange
}

// ShaderFloatParameter is a named float range drawn once per placed instance
// and applied to every renderer material that declares the property name.
// Materials lacking the property are left untouched.
type ShaderFloatParameter struct {
	Name     string
	Enabled  bool
	Min, Max float64
}

// SpriteSheet describes a frame grid a placed instance samples one frame
// from. The sheet only applies to object types whose prefab type matches
// Filter.
type SpriteSheet struct {
	// Columns and Rows are the sheet grid dimensions.
	Columns, Rows int
	// FrameCount is the number of usable frames, at most Columns*Rows.
	FrameCount int
	// Filter restricts which prefab types the sheet applies to.
	Filter PrefabType
	// Tint, if non-nil, is overlaid on the instance renderers.
	Tint *scene.Color
}

// Frames returns the usable frame count, clamped to the grid capacity.
func (s SpriteSheet) Frames() int {
	capacity := s.Columns * s.Rows
	if s.FrameCount <= 0 || s.FrameCount > capacity {
		return capacity
	}
	return s.FrameCount
}

// ObjectType is one entry of a generator palette: a template reference with
// its selection gating and per-instance randomization rules.
type ObjectType struct {
	// Name disambiguates the entry and prefixes instance names. Must be
	// non-empty.
	Name string
	// Template is the handle of the template instantiated for the entry.
	Template scene.TemplateID
	// Enabled excludes the entry from every candidate set when false.
	Enabled bool
	// Prefab categorises the entry for sprite-sheet filtering.
	Prefab PrefabType
	// SpawnWeight is the relative selection mass of the entry among the
	// survivors of gating. Non-negative; zero removes the entry from
	// practical contention unless it is the sole survivor.
	SpawnWeight float64
	// SpawnProbability gates the entry per cell with an independent
	// Bernoulli trial in [0, 1]. Only consulted by probability-gated
	// generators.
	SpawnProbability float64
	// Randomize configures the transform randomization of placed instances.
	Randomize TransformRandomization
	// ShaderParams are the float parameters drawn per placed instance, in
	// application order.
	ShaderParams []ShaderFloatParameter
	// Sheet, if non-nil, randomizes the sprite frame of placed instances.
	Sheet *SpriteSheet
}
