package village

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcv-dev/mcvillage/village/grid"
	"github.com/mcv-dev/mcvillage/village/layoutdb"
	"github.com/mcv-dev/mcvillage/village/scene"
	"github.com/mcv-dev/mcvillage/village/teleport"
)

// Village is a running simulation: a scene, the grid generator that fills
// it and the teleport network operating inside it. All state is driven from
// a single simulation goroutine; Tick is never called concurrently.
type Village struct {
	conf Config
	log  *slog.Logger

	scene     *scene.Scene
	volumes   *scene.Dispatcher
	generator *grid.Generator
	network   *teleport.Network

	closing chan struct{}
	running sync.WaitGroup
	once    sync.Once
	tps     tpsGauge
}

// New creates a Village using the fields of conf. The teleport network is
// not discovered until DiscoverChests is called, so that the host can build
// its chest nodes first.
func (conf Config) New() *Village {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Name == "" {
		conf.Name = "MCVillage"
	}
	if conf.TickRate <= 0 {
		conf.TickRate = 20
	}

	s := scene.Config{Log: conf.Log, Templates: conf.Templates}.New()
	volumes := scene.DispatcherConfig{
		Log:      conf.Log,
		Scene:    s,
		ActorTag: conf.ActorTag,
	}.New()

	v := &Village{
		conf:    conf,
		log:     conf.Log,
		scene:   s,
		volumes: volumes,
		closing: make(chan struct{}),
	}
	v.generator = grid.Config{
		Log:   conf.Log,
		Scene: s,
		Spec:  conf.Spec,
		Types: conf.Types,
		Mode:  conf.Mode,
	}.New()
	v.network = teleport.Config{
		Log:                  conf.Log,
		Scene:                s,
		Volumes:              volumes,
		Anim:                 conf.Anim,
		Tag:                  conf.NetworkTag,
		TeleportDelay:        conf.TeleportDelay,
		ChestReopenCooldown:  conf.ChestReopenCooldown,
		PostTeleportCooldown: conf.PostTeleportCooldown,
		DestinationLockout:   conf.DestinationLockout,
	}.New()
	return v
}

// Scene returns the scene of the village.
func (v *Village) Scene() *scene.Scene { return v.scene }

// Volumes returns the volume dispatcher of the village.
func (v *Village) Volumes() *scene.Dispatcher { return v.volumes }

// Network returns the teleport network of the village.
func (v *Village) Network() *teleport.Network { return v.network }

// Generator returns the grid generator of the village.
func (v *Village) Generator() *grid.Generator { return v.generator }

// DiscoverChests scans the scene for chest nodes and assembles the teleport
// network from them.
func (v *Village) DiscoverChests() {
	v.network.Discover()
}

// Generate fills the configured lattice and, if a layout store is
// configured, persists the result under the village name.
func (v *Village) Generate() ([]grid.Placement, error) {
	placements, err := v.generator.Generate()
	if err != nil {
		return nil, err
	}
	v.log.Info("village: layout generated", "name", v.conf.Name, "placements", len(placements), "cells", v.conf.Spec.CellCount())
	if v.conf.Layouts != nil {
		l := layoutdb.Layout{
			Name:       v.conf.Name,
			Seed:       v.conf.Spec.Seed,
			Spec:       v.conf.Spec,
			Placements: placements,
		}
		if err := v.conf.Layouts.Save(l); err != nil {
			return placements, fmt.Errorf("persist layout: %w", err)
		}
	}
	return placements, nil
}

// RestoreLayout loads the named layout from the layout store and
// re-instantiates it into the scene.
func (v *Village) RestoreLayout(name string) ([]*scene.Node, error) {
	if v.conf.Layouts == nil {
		return nil, fmt.Errorf("restore layout %q: no layout store configured", name)
	}
	l, err := v.conf.Layouts.Layout(name)
	if err != nil {
		return nil, err
	}
	nodes, err := grid.Restore(v.scene, nil, l.Placements)
	if err != nil {
		return nil, err
	}
	v.log.Info("village: layout restored", "name", name, "placements", len(nodes))
	return nodes, nil
}

// Tick advances the simulation by the elapsed seconds: volume occupancy is
// re-evaluated first, then the teleport network steps its chests and the
// shared lockout table.
func (v *Village) Tick(dt float64) {
	v.volumes.Tick()
	v.network.Tick(dt)
}

// StartTicking starts the tick loop at the configured tick rate. It returns
// immediately; the loop runs until Close is called.
func (v *Village) StartTicking() {
	v.running.Add(1)
	t := ticker{interval: time.Second / time.Duration(v.conf.TickRate)}
	go t.tickLoop(v)
}

// Close stops the tick loop, waits for it to finish and releases the layout
// store if one is configured.
func (v *Village) Close() error {
	v.once.Do(func() {
		close(v.closing)
	})
	v.running.Wait()
	if v.conf.Layouts != nil {
		if err := v.conf.Layouts.Close(); err != nil {
			return fmt.Errorf("close layout store: %w", err)
		}
	}
	return nil
}
