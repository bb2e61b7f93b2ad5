package scene

// Intent is an animation state change requested from the external animation
// driver. The core only expresses intent; blending and playback are the
// host's concern.
type Intent uint8

const (
	// IntentOpen requests the open animation of a node, such as a chest lid
	// lifting.
	IntentOpen Intent = iota
	// IntentClose requests the close animation of a node.
	IntentClose
	// IntentEnter requests the travel-start animation on an actor.
	IntentEnter
	// IntentExit requests the travel-end animation on an actor.
	IntentExit
)

// String ...
func (i Intent) String() string {
	switch i {
	case IntentOpen:
		return "open"
	case IntentClose:
		return "close"
	case IntentEnter:
		return "enter"
	case IntentExit:
		return "exit"
	}
	return "unknown"
}

// AnimationDriver applies animation intents to nodes. Implementations are
// provided by the host; the simulation core only calls Apply.
type AnimationDriver interface {
	Apply(node *Node, intent Intent)
}

// NopAnimationDriver discards all intents. It is the default driver when a
// host does not provide one.
type NopAnimationDriver struct{}

// Apply ...
func (NopAnimationDriver) Apply(*Node, Intent) {}
