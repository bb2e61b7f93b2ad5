package teleport

import (
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mcv-dev/mcvillage/village/scene"
)

// ErrNoDestination is returned when a teleport completes but no eligible
// destination chest exists. The attempt fails without relocating the actor
// and the source chest becomes available for a future attempt.
var ErrNoDestination = errors.New("teleport: no eligible destination chest")

// Child node names a chest is assembled from. Missing children are
// synthesized with defaults at discovery time.
const (
	detectVolumeName  = "PlayerDetectVolume"
	triggerVolumeName = "TeleportVolume"
	targetName        = "TeleportTarget"
)

// Default volume half extents used when a chest child node carries the
// default scale of one.
var (
	defaultDetectHalf  = mgl64.Vec3{2.5, 2, 2.5}
	defaultTriggerHalf = mgl64.Vec3{0.75, 1, 0.75}
)

// Config holds the options for creating a Network.
type Config struct {
	// Log is the logger used for teleport events. Defaults to
	// slog.Default().
	Log *slog.Logger
	// Scene is the scene the chests live in. Required.
	Scene *scene.Scene
	// Volumes is the dispatcher the chest volumes are registered with.
	// Required.
	Volumes *scene.Dispatcher
	// Anim is the external animation driver intents are sent through.
	// Defaults to scene.NopAnimationDriver.
	Anim scene.AnimationDriver
	// Lockouts is the shared lockout table. If nil, the network owns a
	// fresh one.
	Lockouts *LockoutTable
	// Tag is the node tag chests are discovered by. Defaults to "teleport".
	Tag string
	// TeleportDelay is the time in seconds between an actor entering the
	// trigger volume and the relocation. Defaults to 1.
	TeleportDelay float64
	// ChestReopenCooldown is the time in seconds a closed chest waits
	// before it may reopen. Defaults to 1.5.
	ChestReopenCooldown float64
	// PostTeleportCooldown is the time in seconds after a completed
	// teleport before the source chest may start another. Defaults to 3.
	PostTeleportCooldown float64
	// DestinationLockout is the lockout in seconds placed on the
	// destination chest of a completed teleport. Defaults to 5.
	DestinationLockout float64
	// Pick draws a uniform int in [0, n) for destination selection.
	// Defaults to math/rand/v2.
	Pick func(n int) int
}

// Network owns the chests discovered under a shared tag and steps their
// state machines once per simulation tick. Chests interact only through the
// shared lockout table; everything else is per-chest state.
type Network struct {
	log     *slog.Logger
	scene   *scene.Scene
	volumes *scene.Dispatcher
	anim    scene.AnimationDriver

	lockouts *LockoutTable
	tag      string
	pick     func(n int) int

	teleportDelay        float64
	chestReopenCooldown  float64
	postTeleportCooldown float64
	destinationLockout   float64

	chests []*Chest
}

// New creates a Network using the fields of conf. Chests are not discovered
// until Discover is called.
func (conf Config) New() *Network {
	if conf.Scene == nil {
		panic("teleport: network requires a scene")
	}
	if conf.Volumes == nil {
		panic("teleport: network requires a volume dispatcher")
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Anim == nil {
		conf.Anim = scene.NopAnimationDriver{}
	}
	if conf.Lockouts == nil {
		conf.Lockouts = NewLockoutTable()
	}
	if conf.Tag == "" {
		conf.Tag = "teleport"
	}
	if conf.TeleportDelay <= 0 {
		conf.TeleportDelay = 1
	}
	if conf.ChestReopenCooldown <= 0 {
		conf.ChestReopenCooldown = 1.5
	}
	if conf.PostTeleportCooldown <= 0 {
		conf.PostTeleportCooldown = 3
	}
	if conf.DestinationLockout <= 0 {
		conf.DestinationLockout = 5
	}
	if conf.Pick == nil {
		conf.Pick = rand.IntN
	}
	return &Network{
		log:                  conf.Log,
		scene:                conf.Scene,
		volumes:              conf.Volumes,
		anim:                 conf.Anim,
		lockouts:             conf.Lockouts,
		tag:                  conf.Tag,
		pick:                 conf.Pick,
		teleportDelay:        conf.TeleportDelay,
		chestReopenCooldown:  conf.ChestReopenCooldown,
		postTeleportCooldown: conf.PostTeleportCooldown,
		destinationLockout:   conf.DestinationLockout,
	}
}

// Lockouts returns the shared lockout table of the network.
func (n *Network) Lockouts() *LockoutTable { return n.lockouts }

// Chests returns the discovered chests in discovery order.
func (n *Network) Chests() []*Chest { return n.chests }

// Discover scans the scene for nodes carrying the network tag and assembles
// a chest for each, registering its volumes with the dispatcher. Missing
// child nodes are synthesized with defaults rather than failing discovery.
// Calling Discover again rebuilds the chest list from scratch.
func (n *Network) Discover() {
	for _, c := range n.chests {
		n.volumes.Unregister(c.detect)
		n.volumes.Unregister(c.trigger)
	}
	n.chests = n.chests[:0]

	for _, node := range n.scene.NodesTagged(n.tag) {
		c := n.assemble(node)
		n.chests = append(n.chests, c)
		n.volumes.Register(c.detect, scene.HandlerFuncs{
			Enter: c.handleDetectEnter,
			Exit:  c.handleDetectExit,
		})
		n.volumes.Register(c.trigger, scene.HandlerFuncs{
			Enter: c.handleTriggerEnter,
		})
	}
	n.log.Info("teleport: network discovered", "tag", n.tag, "chests", len(n.chests))
}

func (n *Network) assemble(node *scene.Node) *Chest {
	c := &Chest{net: n, node: node}

	detectNode, ok := node.Child(detectVolumeName)
	if !ok {
		detectNode = n.scene.NewNode(detectVolumeName, node)
		n.log.Info("teleport: synthesized default detect volume", "chest", node.Name())
	}
	c.detect = scene.NewVolume(detectNode, mgl64.Vec3{}, volumeHalf(detectNode, defaultDetectHalf))

	triggerNode, ok := node.Child(triggerVolumeName)
	if !ok {
		triggerNode = n.scene.NewNode(triggerVolumeName, node)
		n.log.Info("teleport: synthesized default trigger volume", "chest", node.Name())
	}
	c.trigger = scene.NewVolume(triggerNode, mgl64.Vec3{}, volumeHalf(triggerNode, defaultTriggerHalf))

	target, ok := node.Child(targetName)
	if !ok {
		target = n.scene.NewNode(targetName, node)
		target.SetPosition(mgl64.Vec3{0, 0, 1.5})
		n.log.Info("teleport: synthesized default target point", "chest", node.Name())
	}
	c.target = target
	return c
}

// volumeHalf derives volume half extents from the node's scale, falling back
// to the defaults when the node carries the identity scale.
func volumeHalf(node *scene.Node, fallback mgl64.Vec3) mgl64.Vec3 {
	s := node.Scale()
	if s == (mgl64.Vec3{1, 1, 1}) {
		return fallback
	}
	return s.Mul(0.5)
}

// Tick advances the lockout table and every chest by the elapsed seconds.
// Chests whose node has been destroyed are dropped and their lockout entry
// removed.
func (n *Network) Tick(dt float64) {
	n.lockouts.Tick(dt)

	live := n.chests[:0]
	for _, c := range n.chests {
		if c.node.Destroyed() {
			n.lockouts.Forget(c.node.ID())
			n.volumes.Unregister(c.detect)
			n.volumes.Unregister(c.trigger)
			continue
		}
		live = append(live, c)
	}
	n.chests = live

	for _, c := range n.chests {
		c.tick(dt)
	}
}

// destination picks a uniformly random eligible destination for a teleport
// sourced at src. A chest is eligible if it shares the network tag, is not
// the source nor part of the source's scene subtree in either direction, and
// has a resolvable target point.
func (n *Network) destination(src *Chest) (*Chest, error) {
	eligible := make([]*Chest, 0, len(n.chests))
	for _, c := range n.chests {
		if c == src || c.node.Destroyed() {
			continue
		}
		if c.node.IsDescendantOf(src.node) || src.node.IsDescendantOf(c.node) {
			continue
		}
		if c.target == nil || c.target.Destroyed() {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return nil, ErrNoDestination
	}
	return eligible[n.pick(len(eligible))], nil
}
