// Package village wires the scene, grid generators and teleport network into
// a single tick-driven simulation.
package village

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcv-dev/mcvillage/village/grid"
	"github.com/mcv-dev/mcvillage/village/layoutdb"
	"github.com/mcv-dev/mcvillage/village/scene"
)

// Config contains options for creating a Village.
type Config struct {
	// Log is the Logger used for all simulation logging. If nil, Log is set
	// to slog.Default().
	Log *slog.Logger
	// Name is the name of the village, used as the default layout name when
	// layouts are persisted.
	Name string
	// Templates is the template registry the scene instantiates from. If
	// nil, an empty registry is used.
	Templates *scene.Registry
	// Spec is the lattice filled by Generate.
	Spec grid.Spec
	// Types is the object palette used by Generate.
	Types []grid.ObjectType
	// Mode selects the generator gating variant.
	Mode grid.GateMode
	// Anim is the external animation driver. Defaults to a no-op driver.
	Anim scene.AnimationDriver
	// ActorTag is the tag of nodes treated as actors by detection volumes.
	// Defaults to "Player".
	ActorTag string
	// NetworkTag is the tag chest nodes are discovered by. Defaults to
	// "teleport".
	NetworkTag string
	// TeleportDelay, ChestReopenCooldown, PostTeleportCooldown and
	// DestinationLockout configure the teleport network, in seconds. Zero
	// values select the network defaults.
	TeleportDelay        float64
	ChestReopenCooldown  float64
	PostTeleportCooldown float64
	DestinationLockout   float64
	// TickRate is the number of simulation ticks per second run by
	// StartTicking. Defaults to 20.
	TickRate int
	// Layouts is the store Generate persists layouts to. If nil, layouts
	// are not persisted.
	Layouts *layoutdb.DB
}

// UserConfig is the user configuration of an MCVillage simulation. It is
// TOML-serialisable and converted to a Config by calling UserConfig.Config().
type UserConfig struct {
	Village struct {
		// Name is the name of the village.
		Name string
	}
	Grid struct {
		// PaletteFile is the path of the YAML palette describing the
		// templates and object types to generate from.
		PaletteFile string
		// SizeX, SizeY and SizeZ are the lattice cell counts.
		SizeX, SizeY, SizeZ int
		// Spacing is the distance between neighbouring cell centres.
		Spacing float64
		// AlignToCenter centres the lattice on the parent origin.
		AlignToCenter bool
		// UseRandomSeed draws a fresh seed per generation run instead of
		// using Seed.
		UseRandomSeed bool
		// Seed is the generation seed used when UseRandomSeed is false.
		Seed int64
		// Mode selects the generator variant: "plant" gates by weight only,
		// "custom" gates by probability before weighting.
		Mode string
	}
	Teleport struct {
		// Tag is the node tag chests are discovered by.
		Tag string
		// ActorTag is the tag of nodes treated as actors.
		ActorTag string
		// TeleportDelay is the delay in seconds between an actor entering a
		// trigger volume and the relocation.
		TeleportDelay float64
		// ChestReopenCooldown is the reopen cooldown of a closed chest in
		// seconds.
		ChestReopenCooldown float64
		// PostTeleportCooldown is the cooldown in seconds before a source
		// chest may start another teleport.
		PostTeleportCooldown float64
		// DestinationLockout is the lockout in seconds placed on teleport
		// destinations.
		DestinationLockout float64
	}
	Layout struct {
		// SaveData controls whether generated layouts are persisted to the
		// layout database.
		SaveData bool
		// Folder is the directory of the layout database.
		Folder string
	}
	Simulation struct {
		// TickRate is the number of simulation ticks per second.
		TickRate int
	}
}

// DefaultConfig returns a user configuration with the default values filled
// out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.Village.Name = "MCVillage"
	c.Grid.PaletteFile = "palette.yml"
	c.Grid.SizeX, c.Grid.SizeY, c.Grid.SizeZ = 8, 1, 8
	c.Grid.Spacing = 1
	c.Grid.AlignToCenter = true
	c.Grid.Mode = "plant"
	c.Teleport.Tag = "teleport"
	c.Teleport.ActorTag = "Player"
	c.Teleport.TeleportDelay = 1
	c.Teleport.ChestReopenCooldown = 1.5
	c.Teleport.PostTeleportCooldown = 3
	c.Teleport.DestinationLockout = 5
	c.Layout.SaveData = true
	c.Layout.Folder = "layouts"
	c.Simulation.TickRate = 20
	return c
}

// Config converts a UserConfig to a Config, loading the palette file and
// opening the layout database. An error is returned if either fails.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:  log,
		Name: uc.Village.Name,
		Spec: grid.Spec{
			SizeX:         uc.Grid.SizeX,
			SizeY:         uc.Grid.SizeY,
			SizeZ:         uc.Grid.SizeZ,
			Spacing:       uc.Grid.Spacing,
			AlignToCenter: uc.Grid.AlignToCenter,
			UseRandomSeed: uc.Grid.UseRandomSeed,
			Seed:          uc.Grid.Seed,
		},
		ActorTag:             uc.Teleport.ActorTag,
		NetworkTag:           uc.Teleport.Tag,
		TeleportDelay:        uc.Teleport.TeleportDelay,
		ChestReopenCooldown:  uc.Teleport.ChestReopenCooldown,
		PostTeleportCooldown: uc.Teleport.PostTeleportCooldown,
		DestinationLockout:   uc.Teleport.DestinationLockout,
		TickRate:             uc.Simulation.TickRate,
	}
	mode, err := parseGateMode(uc.Grid.Mode)
	if err != nil {
		return conf, err
	}
	conf.Mode = mode

	conf.Templates = scene.NewRegistry()
	if uc.Grid.PaletteFile != "" {
		palette, err := grid.LoadPalette(uc.Grid.PaletteFile)
		if err != nil {
			return conf, fmt.Errorf("load palette: %w", err)
		}
		conf.Types = palette.Register(conf.Templates)
	}
	if uc.Layout.SaveData {
		conf.Layouts, err = layoutdb.Config{Log: log}.Open(uc.Layout.Folder)
		if err != nil {
			return conf, fmt.Errorf("open layout database: %w", err)
		}
	}
	return conf, nil
}

func parseGateMode(name string) (grid.GateMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "plant", "weight":
		return grid.GateWeight, nil
	case "custom", "probability":
		return grid.GateProbability, nil
	}
	return grid.GateWeight, fmt.Errorf("unknown generator mode %q", name)
}
