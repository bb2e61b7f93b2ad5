package grid

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mcv-dev/mcvillage/village/grid/rand"
	"github.com/mcv-dev/mcvillage/village/scene"
)

func newTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	return scene.Config{Log: slog.Default()}.New()
}

// registerTemplate registers a template with a single renderer over one
// material declaring the float properties passed.
func registerTemplate(s *scene.Scene, name string, floats map[string]float64) scene.TemplateID {
	return s.Templates().Register(scene.Template{
		Name: name,
		Renderers: []scene.RendererSpec{
			{Materials: []*scene.Material{scene.NewMaterial(name+"_mat", floats)}},
		},
	})
}

func simpleType(name string, tpl scene.TemplateID, weight float64) ObjectType {
	return ObjectType{Name: name, Template: tpl, Enabled: true, SpawnWeight: weight}
}

func TestGenerateFillsEveryCell(t *testing.T) {
	s := newTestScene(t)
	oak := registerTemplate(s, "oak", nil)
	rock := registerTemplate(s, "rock", nil)

	spec := Spec{SizeX: 3, SizeY: 2, SizeZ: 3, Spacing: 1.5, AlignToCenter: true, Seed: 11}
	g := Config{
		Scene: s,
		Spec:  spec,
		Types: []ObjectType{simpleType("oak", oak, 1), simpleType("rock", rock, 2)},
	}.New()

	placements, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(placements) != spec.CellCount() {
		t.Fatalf("placed %d instances, want %d", len(placements), spec.CellCount())
	}
	seen := make(map[[3]int]bool)
	for _, p := range placements {
		if seen[p.Cell] {
			t.Fatalf("cell %v filled twice", p.Cell)
		}
		seen[p.Cell] = true
		want := spec.CellPosition(p.Cell[0], p.Cell[1], p.Cell[2])
		if p.Position != want {
			t.Fatalf("cell %v placed at %v, want %v", p.Cell, p.Position, want)
		}
		if p.Node() == nil || p.Node().Destroyed() {
			t.Fatalf("cell %v has no live node", p.Cell)
		}
		if p.Node().Position() != want {
			t.Fatalf("cell %v node at %v, want %v", p.Cell, p.Node().Position(), want)
		}
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	s := newTestScene(t)
	oak := registerTemplate(s, "oak", map[string]float64{"_Sway": 0})
	rock := registerTemplate(s, "rock", map[string]float64{"_Sway": 0})

	types := []ObjectType{
		{
			Name: "oak", Template: oak, Enabled: true, SpawnWeight: 1, SpawnProbability: 0.7,
			Randomize: TransformRandomization{
				Scale:    VecRange{Enabled: true, Min: mgl64.Vec3{0.5, 0.5, 0.5}, Max: mgl64.Vec3{2, 2, 2}},
				Rotation: VecRange{Enabled: true, Max: mgl64.Vec3{0, 360, 0}},
			},
			ShaderParams: []ShaderFloatParameter{{Name: "_Sway", Enabled: true, Min: 0, Max: 1}},
		},
		{
			Name: "rock", Template: rock, Enabled: true, SpawnWeight: 3, SpawnProbability: 0.4,
		},
	}
	g := Config{
		Scene: s,
		Spec:  Spec{SizeX: 6, SizeY: 1, SizeZ: 6, Spacing: 1, Seed: 99},
		Types: types,
		Mode:  GateProbability,
	}.New()

	first, err := g.Generate()
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	second, err := g.Generate()
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("runs placed %d and %d instances", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Cell != b.Cell || a.Type != b.Type || a.Position != b.Position ||
			a.Scale != b.Scale || a.Rotation != b.Rotation || a.Frame != b.Frame {
			t.Fatalf("placement %d diverged:\n%+v\n%+v", i, a, b)
		}
		if len(a.Shader) != len(b.Shader) {
			t.Fatalf("placement %d shader value counts diverged", i)
		}
		for j := range a.Shader {
			if a.Shader[j] != b.Shader[j] {
				t.Fatalf("placement %d shader value %d diverged: %+v != %+v", i, j, a.Shader[j], b.Shader[j])
			}
		}
	}
}

func TestWeightedSelectionFrequency(t *testing.T) {
	s := newTestScene(t)
	a := registerTemplate(s, "a", nil)
	b := registerTemplate(s, "b", nil)
	c := registerTemplate(s, "c", nil)

	g := Config{
		Scene: s,
		Spec:  Spec{SizeX: 100, SizeY: 1, SizeZ: 100, Spacing: 1, Seed: 7},
		Types: []ObjectType{
			simpleType("a", a, 1),
			simpleType("b", b, 1),
			simpleType("c", c, 2),
		},
	}.New()

	placements, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(placements) != 10000 {
		t.Fatalf("placed %d instances, want 10000", len(placements))
	}
	hits := 0
	for _, p := range placements {
		if p.Type == "c" {
			hits++
		}
	}
	freq := float64(hits) / float64(len(placements))
	if freq < 0.45 || freq > 0.55 {
		t.Fatalf("weight-2 candidate selected with frequency %v, want 0.5 +- 0.05", freq)
	}
}

func TestZeroWeightSoleCandidateSelected(t *testing.T) {
	s := newTestScene(t)
	never := registerTemplate(s, "never", nil)
	always := registerTemplate(s, "always", nil)

	g := Config{
		Scene: s,
		Spec:  Spec{SizeX: 4, SizeY: 1, SizeZ: 4, Spacing: 1, Seed: 3},
		Types: []ObjectType{
			{Name: "never", Template: never, Enabled: true, SpawnWeight: 5, SpawnProbability: 0},
			{Name: "always", Template: always, Enabled: true, SpawnWeight: 0, SpawnProbability: 1},
		},
		Mode: GateProbability,
	}.New()

	placements, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(placements) != 16 {
		t.Fatalf("placed %d instances, want 16", len(placements))
	}
	for _, p := range placements {
		if p.Type != "always" {
			t.Fatalf("cell %v selected %q, want the sole surviving zero-weight candidate", p.Cell, p.Type)
		}
	}
}

func TestProbabilityGateLeavesCellsEmpty(t *testing.T) {
	s := newTestScene(t)
	tpl := registerTemplate(s, "tpl", nil)

	g := Config{
		Scene: s,
		Spec:  Spec{SizeX: 5, SizeY: 1, SizeZ: 5, Spacing: 1, Seed: 1},
		Types: []ObjectType{{Name: "tpl", Template: tpl, Enabled: true, SpawnWeight: 1, SpawnProbability: 0}},
		Mode:  GateProbability,
	}.New()

	placements, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(placements) != 0 {
		t.Fatalf("placed %d instances, want none", len(placements))
	}
}

func TestGenerateFatalConfigErrors(t *testing.T) {
	s := newTestScene(t)
	tpl := registerTemplate(s, "tpl", nil)

	t.Run("no enabled types", func(t *testing.T) {
		g := Config{
			Scene: s,
			Spec:  Spec{SizeX: 2, SizeY: 1, SizeZ: 2, Spacing: 1},
			Types: []ObjectType{{Name: "tpl", Template: tpl, Enabled: false, SpawnWeight: 1}},
		}.New()
		if _, err := g.Generate(); !errors.Is(err, ErrNoEnabledTypes) {
			t.Fatalf("got %v, want ErrNoEnabledTypes", err)
		}
	})
	t.Run("unregistered template", func(t *testing.T) {
		g := Config{
			Scene: s,
			Spec:  Spec{SizeX: 2, SizeY: 1, SizeZ: 2, Spacing: 1},
			Types: []ObjectType{{Name: "ghost", Template: scene.TemplateIDFor("ghost"), Enabled: true, SpawnWeight: 1}},
		}.New()
		if _, err := g.Generate(); err == nil {
			t.Fatal("expected an error for an unregistered template")
		}
	})
	t.Run("nothing placed on abort", func(t *testing.T) {
		g := Config{
			Scene: s,
			Spec:  Spec{SizeX: 2, SizeY: 1, SizeZ: 2, Spacing: 1},
			Types: []ObjectType{{Name: "tpl", Template: tpl, Enabled: false, SpawnWeight: 1}},
		}.New()
		before := len(s.Root().Children())
		_, _ = g.Generate()
		if after := len(s.Root().Children()); after != before {
			t.Fatalf("aborted generation changed the scene: %d -> %d children", before, after)
		}
	})
}

func TestTransformRandomizationBounds(t *testing.T) {
	s := newTestScene(t)
	tpl := registerTemplate(s, "tpl", nil)

	g := Config{
		Scene: s,
		Spec:  Spec{SizeX: 8, SizeY: 1, SizeZ: 8, Spacing: 1, Seed: 21},
		Types: []ObjectType{{
			Name: "tpl", Template: tpl, Enabled: true, SpawnWeight: 1,
			Randomize: TransformRandomization{
				Scale:    VecRange{Enabled: true, Min: mgl64.Vec3{0.5, 1, 0.25}, Max: mgl64.Vec3{2, 1, 4}},
				Rotation: VecRange{Enabled: true, Min: mgl64.Vec3{0, -90, 0}, Max: mgl64.Vec3{0, 90, 0}},
			},
		}},
	}.New()

	placements, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, p := range placements {
		for i, bounds := range [][2]float64{{0.5, 2}, {1, 1}, {0.25, 4}} {
			if p.Scale[i] < bounds[0] || p.Scale[i] > bounds[1] {
				t.Fatalf("cell %v scale axis %d out of bounds: %v", p.Cell, i, p.Scale[i])
			}
		}
		if p.Rotation[0] != 0 || p.Rotation[2] != 0 {
			t.Fatalf("cell %v rotated on a fixed axis: %v", p.Cell, p.Rotation)
		}
		if p.Rotation[1] < -90 || p.Rotation[1] >= 90 {
			t.Fatalf("cell %v Y rotation out of [-90,90): %v", p.Cell, p.Rotation[1])
		}
	}
}

func TestTransformRandomizationDisabledKeepsDefaults(t *testing.T) {
	s := newTestScene(t)
	tpl := registerTemplate(s, "tpl", nil)

	g := Config{
		Scene: s,
		Spec:  Spec{SizeX: 2, SizeY: 1, SizeZ: 2, Spacing: 1, Seed: 5},
		Types: []ObjectType{simpleType("tpl", tpl, 1)},
	}.New()
	placements, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, p := range placements {
		if p.Scale != (mgl64.Vec3{1, 1, 1}) {
			t.Fatalf("cell %v scale %v, want template default", p.Cell, p.Scale)
		}
		if p.Rotation != (mgl64.Vec3{}) {
			t.Fatalf("cell %v rotation %v, want template default", p.Cell, p.Rotation)
		}
	}
}

func TestShaderParametersPerInstance(t *testing.T) {
	s := newTestScene(t)
	tpl := registerTemplate(s, "crop", map[string]float64{"_Stage": 0})

	g := Config{
		Scene: s,
		Spec:  Spec{SizeX: 4, SizeY: 1, SizeZ: 4, Spacing: 1, Seed: 13},
		Types: []ObjectType{{
			Name: "crop", Template: tpl, Enabled: true, SpawnWeight: 1,
			ShaderParams: []ShaderFloatParameter{
				{Name: "_Stage", Enabled: true, Min: 0, Max: 3},
				{Name: "_Missing", Enabled: true, Min: 5, Max: 6},
			},
		}},
	}.New()

	placements, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tplDef, _ := s.Templates().ByName("crop")
	shared := tplDef.Renderers[0].Materials[0]
	for _, p := range placements {
		if len(p.Shader) != 2 {
			t.Fatalf("cell %v recorded %d shader values, want 2", p.Cell, len(p.Shader))
		}
		v, ok := p.Node().Renderers()[0].Float("_Stage")
		if !ok {
			t.Fatalf("cell %v has no effective _Stage value", p.Cell)
		}
		if v < 0 || v >= 3 {
			t.Fatalf("cell %v _Stage %v out of [0,3)", p.Cell, v)
		}
		if v != p.Shader[0].Value {
			t.Fatalf("cell %v renderer value %v does not match recorded %v", p.Cell, v, p.Shader[0].Value)
		}
	}
	// The shared template material must keep its default.
	if v, _ := shared.Float("_Stage"); v != 0 {
		t.Fatalf("shared material mutated: _Stage = %v", v)
	}
}

func TestSpriteSheetFilterAndFrames(t *testing.T) {
	s := newTestScene(t)
	tpl := registerTemplate(s, "plant", nil)

	sheet := &SpriteSheet{Columns: 4, Rows: 4, FrameCount: 12, Filter: PrefabCrop, Tint: &scene.Color{R: 1, G: 0.9, B: 0.9, A: 1}}
	base := ObjectType{Name: "plant", Template: tpl, Enabled: true, SpawnWeight: 1, Sheet: sheet}

	t.Run("filter mismatch", func(t *testing.T) {
		typ := base
		typ.Prefab = PrefabSingle
		g := Config{Scene: s, Spec: Spec{SizeX: 3, SizeY: 1, SizeZ: 3, Spacing: 1, Seed: 2}, Types: []ObjectType{typ}}.New()
		placements, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		for _, p := range placements {
			if p.Frame != -1 {
				t.Fatalf("cell %v got frame %d despite filter mismatch", p.Cell, p.Frame)
			}
		}
	})
	t.Run("filter match", func(t *testing.T) {
		typ := base
		typ.Prefab = PrefabCrop
		g := Config{Scene: s, Spec: Spec{SizeX: 5, SizeY: 1, SizeZ: 5, Spacing: 1, Seed: 2}, Types: []ObjectType{typ}}.New()
		placements, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		for _, p := range placements {
			if p.Frame < 0 || p.Frame >= 12 {
				t.Fatalf("cell %v frame %d out of [0,12)", p.Cell, p.Frame)
			}
			if p.Node().Renderers()[0].SpriteFrame() != p.Frame {
				t.Fatalf("cell %v renderer frame does not match placement", p.Cell)
			}
			if _, ok := p.Node().Renderers()[0].Tint(); !ok {
				t.Fatalf("cell %v missing tint overlay", p.Cell)
			}
		}
	})
}

func TestClearDestroysPlacedInstances(t *testing.T) {
	s := newTestScene(t)
	tpl := registerTemplate(s, "tpl", nil)

	g := Config{
		Scene: s,
		Spec:  Spec{SizeX: 3, SizeY: 1, SizeZ: 3, Spacing: 1, Seed: 1},
		Types: []ObjectType{simpleType("tpl", tpl, 1)},
	}.New()
	placements, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	g.Clear()
	for _, p := range placements {
		if !p.Node().Destroyed() {
			t.Fatalf("cell %v node survived Clear", p.Cell)
		}
	}
}

func TestSelectWeightedBoundary(t *testing.T) {
	// With an injected stream the walk is deterministic: identical candidate
	// order and identical draws select identical entries.
	candidates := []ObjectType{
		{Name: "a", SpawnWeight: 1},
		{Name: "b", SpawnWeight: 1},
		{Name: "c", SpawnWeight: 2},
	}
	a, b := rand.NewRandom(77), rand.NewRandom(77)
	for i := 0; i < 1000; i++ {
		if x, y := selectWeighted(candidates, a), selectWeighted(candidates, b); x.Name != y.Name {
			t.Fatalf("draw %d selected %q and %q for identical streams", i, x.Name, y.Name)
		}
	}
}
