package grid

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mcv-dev/mcvillage/village/scene"
	"gopkg.in/yaml.v3"
)

// Palette is the YAML document describing the templates and object types a
// generator draws from. Palettes are authored by hand; Load validates them
// before use.
type Palette struct {
	Templates []TemplateDef `yaml:"templates"`
	Types     []TypeDef     `yaml:"types"`
}

// TemplateDef declares an instantiable template with its renderer materials.
type TemplateDef struct {
	Name      string        `yaml:"name"`
	Tag       string        `yaml:"tag"`
	Materials []MaterialDef `yaml:"materials"`
}

// MaterialDef declares a shared material and the float properties it
// exposes.
type MaterialDef struct {
	Name   string             `yaml:"name"`
	Floats map[string]float64 `yaml:"floats"`
}

// RangeDef is a per-axis uniform range.
type RangeDef struct {
	Enabled bool       `yaml:"enabled"`
	Min     [3]float64 `yaml:"min"`
	Max     [3]float64 `yaml:"max"`
}

// ParamDef is a shader float parameter range. Enabled defaults to true when
// omitted.
type ParamDef struct {
	Name    string  `yaml:"name"`
	Enabled *bool   `yaml:"enabled"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// SheetDef is a sprite sheet declaration.
type SheetDef struct {
	Columns    int         `yaml:"columns"`
	Rows       int         `yaml:"rows"`
	FrameCount int         `yaml:"frameCount"`
	Filter     string      `yaml:"filter"`
	Tint       *[4]float64 `yaml:"tint"`
}

// TypeDef declares one object type of the palette. Enabled defaults to true
// when omitted.
type TypeDef struct {
	Name             string     `yaml:"name"`
	Template         string     `yaml:"template"`
	Enabled          *bool      `yaml:"enabled"`
	Prefab           string     `yaml:"prefab"`
	SpawnWeight      float64    `yaml:"spawnWeight"`
	SpawnProbability float64    `yaml:"spawnProbability"`
	Scale            RangeDef   `yaml:"scale"`
	Rotation         RangeDef   `yaml:"rotation"`
	ShaderParams     []ParamDef `yaml:"shaderParams"`
	SpriteSheet      *SheetDef  `yaml:"spriteSheet"`
}

// LoadPalette reads and validates a palette file.
func LoadPalette(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette: %w", err)
	}
	return ParsePalette(data)
}

// ParsePalette parses and validates a palette document.
func ParsePalette(data []byte) (*Palette, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse palette: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid palette: %w", err)
	}
	return &p, nil
}

func (p *Palette) validate() error {
	if len(p.Types) == 0 {
		return fmt.Errorf("palette declares no object types")
	}
	names := make(map[string]struct{}, len(p.Templates))
	for i, t := range p.Templates {
		if t.Name == "" {
			return fmt.Errorf("template %d has an empty name", i)
		}
		if _, dup := names[t.Name]; dup {
			return fmt.Errorf("duplicate template name %q", t.Name)
		}
		names[t.Name] = struct{}{}
	}
	for i, t := range p.Types {
		if t.Name == "" {
			return fmt.Errorf("object type %d has an empty name", i)
		}
		if t.Template == "" {
			return fmt.Errorf("object type %q declares no template", t.Name)
		}
		if _, ok := names[t.Template]; !ok {
			return fmt.Errorf("object type %q references unknown template %q", t.Name, t.Template)
		}
		if t.SpawnWeight < 0 {
			return fmt.Errorf("object type %q has negative spawnWeight %v", t.Name, t.SpawnWeight)
		}
		if t.SpawnProbability < 0 || t.SpawnProbability > 1 {
			return fmt.Errorf("object type %q has spawnProbability %v outside [0, 1]", t.Name, t.SpawnProbability)
		}
		if _, err := parsePrefabType(t.Prefab); err != nil {
			return fmt.Errorf("object type %q: %w", t.Name, err)
		}
		for _, param := range t.ShaderParams {
			if param.Name == "" {
				return fmt.Errorf("object type %q has a shader parameter with an empty name", t.Name)
			}
			if param.Min > param.Max {
				return fmt.Errorf("object type %q shader parameter %q has min %v > max %v", t.Name, param.Name, param.Min, param.Max)
			}
		}
		if s := t.SpriteSheet; s != nil {
			if s.Columns <= 0 || s.Rows <= 0 {
				return fmt.Errorf("object type %q sprite sheet has non-positive grid %dx%d", t.Name, s.Columns, s.Rows)
			}
			if s.FrameCount > s.Columns*s.Rows {
				return fmt.Errorf("object type %q sprite sheet declares %d frames on a %dx%d grid", t.Name, s.FrameCount, s.Columns, s.Rows)
			}
			if _, err := parsePrefabType(s.Filter); err != nil {
				return fmt.Errorf("object type %q sprite sheet: %w", t.Name, err)
			}
		}
	}
	return nil
}

// Register installs the palette templates into the registry passed and
// returns the object types resolved against it, in palette order.
func (p *Palette) Register(reg *scene.Registry) []ObjectType {
	for _, td := range p.Templates {
		var renderers []scene.RendererSpec
		for _, md := range td.Materials {
			renderers = append(renderers, scene.RendererSpec{
				Materials: []*scene.Material{scene.NewMaterial(md.Name, md.Floats)},
			})
		}
		reg.Register(scene.Template{Name: td.Name, Tag: td.Tag, Renderers: renderers})
	}

	types := make([]ObjectType, 0, len(p.Types))
	for _, td := range p.Types {
		prefab, _ := parsePrefabType(td.Prefab)
		t := ObjectType{
			Name:             td.Name,
			Template:         scene.TemplateIDFor(td.Template),
			Enabled:          td.Enabled == nil || *td.Enabled,
			Prefab:           prefab,
			SpawnWeight:      td.SpawnWeight,
			SpawnProbability: td.SpawnProbability,
			Randomize: TransformRandomization{
				Scale:    vecRange(td.Scale),
				Rotation: vecRange(td.Rotation),
			},
		}
		for _, pd := range td.ShaderParams {
			t.ShaderParams = append(t.ShaderParams, ShaderFloatParameter{
				Name:    pd.Name,
				Enabled: pd.Enabled == nil || *pd.Enabled,
				Min:     pd.Min,
				Max:     pd.Max,
			})
		}
		if sd := td.SpriteSheet; sd != nil {
			filter, _ := parsePrefabType(sd.Filter)
			sheet := &SpriteSheet{
				Columns:    sd.Columns,
				Rows:       sd.Rows,
				FrameCount: sd.FrameCount,
				Filter:     filter,
			}
			if sd.Tint != nil {
				sheet.Tint = &scene.Color{R: sd.Tint[0], G: sd.Tint[1], B: sd.Tint[2], A: sd.Tint[3]}
			}
			t.Sheet = sheet
		}
		types = append(types, t)
	}
	return types
}

func vecRange(rd RangeDef) VecRange {
	return VecRange{
		Enabled: rd.Enabled,
		Min:     mgl64.Vec3{rd.Min[0], rd.Min[1], rd.Min[2]},
		Max:     mgl64.Vec3{rd.Max[0], rd.Max[1], rd.Max[2]},
	}
}

func parsePrefabType(s string) (PrefabType, error) {
	switch s {
	case "", "any":
		return PrefabAny, nil
	case "single":
		return PrefabSingle, nil
	case "double":
		return PrefabDouble, nil
	case "crop":
		return PrefabCrop, nil
	}
	return PrefabAny, fmt.Errorf("unknown prefab type %q", s)
}
