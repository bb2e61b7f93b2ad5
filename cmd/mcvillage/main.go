package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mcv-dev/mcvillage/village"
	"github.com/pelletier/go-toml"
)

func main() {
	configPath := flag.String("config", "config.toml", "path of the configuration file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(log)

	uc, err := readConfig(*configPath, log)
	if err != nil {
		log.Error("read config: " + err.Error())
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "generate"
	}
	switch cmd {
	case "generate":
		err = generate(uc, log)
	case "simulate":
		err = simulate(uc, log)
	case "layouts":
		err = listLayouts(uc, log)
	default:
		err = fmt.Errorf("unknown command %q (want generate, simulate or layouts)", cmd)
	}
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

// readConfig reads the configuration from the path passed, creating a
// default one if it does not yet exist.
func readConfig(path string, log *slog.Logger) (village.UserConfig, error) {
	c := village.DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("encode default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return c, fmt.Errorf("create default config: %w", err)
		}
		log.Info("Created default config.", "path", path)
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// generate builds the configured village layout once and persists it if a
// layout store is configured.
func generate(uc village.UserConfig, log *slog.Logger) error {
	conf, err := uc.Config(log)
	if err != nil {
		return err
	}
	v := conf.New()
	defer v.Close()

	placements, err := v.Generate()
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	for _, p := range placements {
		fmt.Printf("(%d,%d,%d) %-24s pos=%v scale=%v rot=%v\n",
			p.Cell[0], p.Cell[1], p.Cell[2], p.Type, p.Position, p.Scale, p.Rotation)
	}
	return nil
}

// simulate runs a headless teleport-network simulation with a demo chest
// ring and a single actor standing on the first chest's trigger.
func simulate(uc village.UserConfig, log *slog.Logger) error {
	seconds := 30.0
	if arg := flag.Arg(1); arg != "" {
		if _, err := fmt.Sscanf(arg, "%f", &seconds); err != nil {
			return fmt.Errorf("parse duration %q: %w", arg, err)
		}
	}

	// The simulation does not need the palette or layout store.
	uc.Grid.PaletteFile = ""
	uc.Layout.SaveData = false
	conf, err := uc.Config(log)
	if err != nil {
		return err
	}
	v := conf.New()
	defer v.Close()

	const chestCount = 4
	s := v.Scene()
	for i := 0; i < chestCount; i++ {
		angle := 2 * math.Pi * float64(i) / chestCount
		chest := s.NewNode(fmt.Sprintf("chest-%d", i), nil)
		chest.SetTag(uc.Teleport.Tag)
		chest.SetPosition(mgl64.Vec3{10 * math.Cos(angle), 0, 10 * math.Sin(angle)})
	}
	v.DiscoverChests()

	actor := s.NewNode("wanderer", nil)
	actor.SetTag(uc.Teleport.ActorTag)
	actor.SetPosition(v.Network().Chests()[0].Node().WorldPosition())

	rate := uc.Simulation.TickRate
	if rate <= 0 {
		rate = 20
	}
	dt := 1 / float64(rate)
	for t := 0.0; t < seconds; t += dt {
		v.Tick(dt)
	}
	for _, c := range v.Network().Chests() {
		fmt.Printf("%-10s state=%-12s locked=%v\n", c.Node().Name(), c.State(), c.LockedOut())
	}
	fmt.Printf("actor at %v\n", actor.WorldPosition())
	return nil
}

// listLayouts prints the names of all persisted layouts.
func listLayouts(uc village.UserConfig, log *slog.Logger) error {
	uc.Grid.PaletteFile = ""
	conf, err := uc.Config(log)
	if err != nil {
		return err
	}
	if conf.Layouts == nil {
		return errors.New("layouts: layout saving is disabled in the config")
	}
	defer conf.Layouts.Close()

	names, err := conf.Layouts.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		l, err := conf.Layouts.Layout(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-24s seed=%-12d placements=%d\n", name, l.Seed, len(l.Placements))
	}
	return nil
}
