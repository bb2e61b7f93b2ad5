package teleport

import (
	"errors"

	"github.com/mcv-dev/mcvillage/village/scene"
)

// State is the door state of a chest.
type State uint8

const (
	// Closed is the idle state: the lid is down and no actor is nearby.
	Closed State = iota
	// Open is entered while an actor stands in the detect volume.
	Open
	// CooldownClosed is closed but not yet eligible to reopen.
	CooldownClosed
	// Teleporting marks the chest as the source of an in-flight transfer.
	Teleporting
)

// String ...
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case CooldownClosed:
		return "cooldown"
	case Teleporting:
		return "teleporting"
	}
	return "unknown"
}

// ErrNoTraveller is logged when a teleport sequence completes without a live
// actor to relocate.
var ErrNoTraveller = errors.New("teleport: no actor to relocate")

// timer is a tick-driven countdown. Starting a running timer restarts it, so
// a new countdown always cancels the pending one first.
type timer struct {
	active    bool
	remaining float64
}

func (t *timer) start(seconds float64) {
	t.active = true
	t.remaining = seconds
}

func (t *timer) stop() {
	t.active = false
}

// tick advances the timer and reports whether it fired this tick.
func (t *timer) tick(dt float64) bool {
	if !t.active {
		return false
	}
	t.remaining -= dt
	if t.remaining > 0 {
		return false
	}
	t.active = false
	return true
}

// Chest is one endpoint of a teleport network. Every chest runs the same
// state machine independently; the only cross-chest state is the shared
// lockout table of the network.
type Chest struct {
	net  *Network
	node *scene.Node

	detect  *scene.Volume
	trigger *scene.Volume
	target  *scene.Node

	state         State
	actorsInRange int

	// busy is set while a teleport is pending or the post-teleport cooldown
	// runs; the chest refuses to start another teleport until it clears.
	busy      bool
	traveller *scene.Node

	reopen       timer
	delay        timer
	postCooldown timer
}

// Node returns the scene node the chest is anchored to.
func (c *Chest) Node() *scene.Node { return c.node }

// Target returns the destination point actors arriving at this chest are
// placed at.
func (c *Chest) Target() *scene.Node { return c.target }

// State returns the current door state of the chest.
func (c *Chest) State() State { return c.state }

// LockedOut reports whether the chest currently refuses to initiate
// teleports because it recently served as a destination.
func (c *Chest) LockedOut() bool {
	return c.net.lockouts.Locked(c.node.ID())
}

// DetectVolume returns the proximity region that opens the chest.
func (c *Chest) DetectVolume() *scene.Volume { return c.detect }

// TriggerVolume returns the region that starts a teleport sequence.
func (c *Chest) TriggerVolume() *scene.Volume { return c.trigger }

func (c *Chest) handleDetectEnter(actor *scene.Node) {
	c.actorsInRange++
	if c.state == Closed {
		c.open()
	}
}

func (c *Chest) handleDetectExit(actor *scene.Node) {
	if c.actorsInRange > 0 {
		c.actorsInRange--
	}
	if c.actorsInRange == 0 && c.state == Open {
		c.closeWithCooldown()
	}
}

func (c *Chest) handleTriggerEnter(actor *scene.Node) {
	if c.busy {
		c.net.log.Debug("teleport: chest busy, ignoring actor", "chest", c.node.Name(), "actor", actor.Name())
		return
	}
	if c.LockedOut() {
		c.net.log.Debug("teleport: chest locked out as recent destination", "chest", c.node.Name(), "remaining", c.net.lockouts.Remaining(c.node.ID()))
		return
	}
	c.busy = true
	c.traveller = actor
	// A starting teleport forces the lid shut regardless of the detect
	// state.
	if c.state == Open {
		c.net.anim.Apply(c.node, scene.IntentClose)
	}
	c.state = Teleporting
	c.net.anim.Apply(actor, scene.IntentEnter)
	c.delay.start(c.net.teleportDelay)
	c.net.log.Debug("teleport: sequence started", "chest", c.node.Name(), "actor", actor.Name(), "delay", c.net.teleportDelay)
}

// tick advances the chest timers by the elapsed seconds.
func (c *Chest) tick(dt float64) {
	if c.delay.tick(dt) {
		c.completeTeleport()
	}
	if c.postCooldown.tick(dt) {
		c.busy = false
	}
	if c.reopen.tick(dt) && c.state == CooldownClosed {
		if c.actorsInRange > 0 {
			c.open()
		} else {
			c.state = Closed
		}
	}
}

func (c *Chest) completeTeleport() {
	traveller := c.traveller
	c.traveller = nil

	dest, err := c.net.destination(c)
	if err != nil {
		// Recoverable: reset the flags so a future attempt can succeed.
		c.net.log.Warn("teleport: sequence aborted", "chest", c.node.Name(), "err", err)
		c.busy = false
		c.closeWithCooldown()
		return
	}
	if traveller == nil || traveller.Destroyed() {
		c.net.log.Warn("teleport: sequence aborted", "chest", c.node.Name(), "err", ErrNoTraveller)
		c.busy = false
		c.closeWithCooldown()
		return
	}

	traveller.SetPosition(dest.target.WorldPosition())
	traveller.SetRotation(dest.target.Rotation())
	c.net.anim.Apply(traveller, scene.IntentExit)

	c.net.lockouts.Set(dest.node.ID(), c.net.destinationLockout)
	c.postCooldown.start(c.net.postTeleportCooldown)
	c.closeWithCooldown()
	c.net.log.Info("teleport: actor relocated", "from", c.node.Name(), "to", dest.node.Name(), "actor", traveller.Name())
}

func (c *Chest) open() {
	c.state = Open
	c.reopen.stop()
	c.net.anim.Apply(c.node, scene.IntentOpen)
}

// closeWithCooldown moves the chest to CooldownClosed and (re)starts the
// reopen countdown, cancelling any countdown already pending.
func (c *Chest) closeWithCooldown() {
	if c.state == Open {
		c.net.anim.Apply(c.node, scene.IntentClose)
	}
	c.state = CooldownClosed
	c.reopen.start(c.net.chestReopenCooldown)
}
