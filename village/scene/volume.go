package scene

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Volume is an axis-aligned detection region attached to a node. The region
// follows the node: its centre is the node's world position plus a fixed
// offset.
type Volume struct {
	node   *Node
	offset mgl64.Vec3
	half   mgl64.Vec3
}

// NewVolume creates a detection volume centred at the node's world position
// plus offset, extending halfExtents along each axis.
func NewVolume(node *Node, offset, halfExtents mgl64.Vec3) *Volume {
	if node == nil {
		panic("scene: volume requires a node")
	}
	return &Volume{node: node, offset: offset, half: halfExtents}
}

// Node returns the node the volume is attached to.
func (v *Volume) Node() *Node { return v.node }

// Contains reports whether the world-space point lies inside the volume.
func (v *Volume) Contains(p mgl64.Vec3) bool {
	c := v.node.WorldPosition().Add(v.offset)
	for i := 0; i < 3; i++ {
		if p[i] < c[i]-v.half[i] || p[i] > c[i]+v.half[i] {
			return false
		}
	}
	return true
}

// VolumeHandler receives enter and exit callbacks for actors crossing a
// registered volume boundary.
type VolumeHandler interface {
	OnVolumeEnter(actor *Node)
	OnVolumeExit(actor *Node)
}

// HandlerFuncs adapts plain functions to a VolumeHandler. Nil functions are
// skipped.
type HandlerFuncs struct {
	Enter func(actor *Node)
	Exit  func(actor *Node)
}

// OnVolumeEnter ...
func (h HandlerFuncs) OnVolumeEnter(actor *Node) {
	if h.Enter != nil {
		h.Enter(actor)
	}
}

// OnVolumeExit ...
func (h HandlerFuncs) OnVolumeExit(actor *Node) {
	if h.Exit != nil {
		h.Exit(actor)
	}
}

// DispatcherConfig holds the options for creating a Dispatcher.
type DispatcherConfig struct {
	// Log is the logger used for dispatch events. Defaults to slog.Default().
	Log *slog.Logger
	// Scene is the scene whose actors are tracked. Required.
	Scene *Scene
	// ActorTag filters the nodes considered actors. Defaults to "Player".
	ActorTag string
}

type registeredVolume struct {
	volume  *Volume
	handler VolumeHandler
	inside  map[uuid.UUID]*Node
}

// Dispatcher tracks actor occupancy of registered volumes and fires enter
// and exit callbacks once per boundary crossing. It is stepped from the
// simulation tick; callbacks run on the calling goroutine.
type Dispatcher struct {
	log      *slog.Logger
	scene    *Scene
	actorTag string
	volumes  []*registeredVolume
}

// New creates a Dispatcher using the fields of conf.
func (conf DispatcherConfig) New() *Dispatcher {
	if conf.Scene == nil {
		panic("scene: dispatcher requires a scene")
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.ActorTag == "" {
		conf.ActorTag = "Player"
	}
	return &Dispatcher{log: conf.Log, scene: conf.Scene, actorTag: conf.ActorTag}
}

// Register starts tracking the volume, routing boundary crossings to the
// handler. Registering the same volume twice replaces its handler and resets
// its occupancy.
func (d *Dispatcher) Register(v *Volume, h VolumeHandler) {
	for _, rv := range d.volumes {
		if rv.volume == v {
			rv.handler = h
			rv.inside = make(map[uuid.UUID]*Node)
			return
		}
	}
	d.volumes = append(d.volumes, &registeredVolume{
		volume:  v,
		handler: h,
		inside:  make(map[uuid.UUID]*Node),
	})
}

// Unregister stops tracking the volume. No exit callbacks are fired for
// actors still inside.
func (d *Dispatcher) Unregister(v *Volume) {
	for i, rv := range d.volumes {
		if rv.volume == v {
			d.volumes = append(d.volumes[:i], d.volumes[i+1:]...)
			return
		}
	}
}

// Tick recomputes occupancy for every registered volume and fires exit
// callbacks before enter callbacks. Volumes whose node has been destroyed
// are dropped.
func (d *Dispatcher) Tick() {
	actors := d.scene.NodesTagged(d.actorTag)

	live := d.volumes[:0]
	for _, rv := range d.volumes {
		if rv.volume.node.Destroyed() {
			continue
		}
		live = append(live, rv)
	}
	d.volumes = live

	for _, rv := range d.volumes {
		current := make(map[uuid.UUID]*Node, len(actors))
		for _, a := range actors {
			if rv.volume.Contains(a.WorldPosition()) {
				current[a.ID()] = a
			}
		}
		for id, a := range rv.inside {
			if _, still := current[id]; !still {
				delete(rv.inside, id)
				rv.handler.OnVolumeExit(a)
			}
		}
		// Fire enters in actor creation order to keep dispatch deterministic.
		for _, a := range actors {
			if _, in := current[a.ID()]; !in {
				continue
			}
			if _, was := rv.inside[a.ID()]; !was {
				rv.inside[a.ID()] = a
				rv.handler.OnVolumeEnter(a)
			}
		}
	}
}
