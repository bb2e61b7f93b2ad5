// Package scene implements the minimal scene-graph contract the simulation
// core expects from a host engine: nodes with transforms and tags, template
// instantiation, per-instance material overlays, detection volumes and an
// animation intent driver. It is pure data and dispatch; no rendering or
// physics happens here.
package scene

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Config holds the options for creating a Scene.
type Config struct {
	// Log is the logger used for scene events. Defaults to slog.Default().
	Log *slog.Logger
	// Templates is the registry of instantiable templates available to the
	// scene. If nil, an empty registry is created.
	Templates *Registry
}

// Scene is a flat-owned scene graph. All nodes created through a Scene are
// tracked by identity until destroyed. A Scene is driven from a single
// simulation goroutine and performs no locking of its own.
type Scene struct {
	log       *slog.Logger
	templates *Registry
	root      *Node
	nodes     map[uuid.UUID]*Node
}

// New creates a Scene using the fields of conf.
func (conf Config) New() *Scene {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Templates == nil {
		conf.Templates = NewRegistry()
	}
	s := &Scene{
		log:       conf.Log,
		templates: conf.Templates,
		nodes:     make(map[uuid.UUID]*Node),
	}
	s.root = s.newNode("root", nil)
	return s
}

// Root returns the root node of the scene. The root always exists and cannot
// be destroyed.
func (s *Scene) Root() *Node {
	return s.root
}

// Templates returns the template registry the scene instantiates from.
func (s *Scene) Templates() *Registry {
	return s.templates
}

// Node resolves a node by identity. The second return value is false if no
// live node carries the id.
func (s *Scene) Node(id uuid.UUID) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// NodesTagged returns all live nodes carrying the tag passed, in creation
// order.
func (s *Scene) NodesTagged(tag string) []*Node {
	var out []*Node
	s.root.walk(func(n *Node) {
		if n.tag == tag {
			out = append(out, n)
		}
	})
	return out
}

// NewNode creates an empty node parented to the node passed. A nil parent
// parents the node to the scene root.
func (s *Scene) NewNode(name string, parent *Node) *Node {
	if parent == nil {
		parent = s.root
	}
	return s.newNode(name, parent)
}

// Instantiate creates a node from the template with the id passed, cloning
// its renderers so that material values set on the instance never leak back
// into the template. An error is returned if the template is not registered.
func (s *Scene) Instantiate(id TemplateID, parent *Node) (*Node, error) {
	tpl, ok := s.templates.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("scene: instantiate: template %#x not registered", uint64(id))
	}
	if parent == nil {
		parent = s.root
	}
	n := s.newNode(tpl.Name, parent)
	n.tag = tpl.Tag
	for _, spec := range tpl.Renderers {
		n.renderers = append(n.renderers, newRenderer(spec.Materials))
	}
	return n, nil
}

// Destroy removes the node and its entire subtree from the scene. Destroying
// the root or an already destroyed node is a no-op.
func (s *Scene) Destroy(n *Node) {
	if n == nil || n == s.root || n.destroyed {
		return
	}
	n.walk(func(c *Node) {
		c.destroyed = true
		delete(s.nodes, c.id)
	})
	if p := n.parent; p != nil {
		for i, c := range p.children {
			if c == n {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	n.parent = nil
}

func (s *Scene) newNode(name string, parent *Node) *Node {
	n := &Node{
		id:     uuid.New(),
		name:   name,
		scene:  s,
		parent: parent,
		scale:  mgl64.Vec3{1, 1, 1},
	}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	s.nodes[n.id] = n
	return n
}

// Node is a single scene-graph entry. Transforms are stored locally; world
// positions are derived by summing parent offsets. Rotation and scale do not
// compose through the hierarchy, which is sufficient for the placement and
// teleport logic built on top.
type Node struct {
	id     uuid.UUID
	name   string
	tag    string
	scene  *Scene
	parent *Node

	children []*Node

	pos, rot mgl64.Vec3
	scale    mgl64.Vec3

	renderers []*Renderer
	destroyed bool
}

// ID returns the unique identity of the node. It remains valid for lookups
// until the node is destroyed.
func (n *Node) ID() uuid.UUID { return n.id }

// Name returns the name the node was created with.
func (n *Node) Name() string { return n.name }

// SetName renames the node.
func (n *Node) SetName(name string) { n.name = name }

// Tag returns the category tag of the node, if any.
func (n *Node) Tag() string { return n.tag }

// SetTag replaces the category tag of the node.
func (n *Node) SetTag(tag string) { n.tag = tag }

// Parent returns the parent node, or nil for the scene root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children of the node in creation order.
func (n *Node) Children() []*Node { return n.children }

// Child returns the first direct child with the name passed.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Destroyed reports whether the node has been removed from its scene.
func (n *Node) Destroyed() bool { return n.destroyed }

// Position returns the local position of the node.
func (n *Node) Position() mgl64.Vec3 { return n.pos }

// SetPosition replaces the local position of the node.
func (n *Node) SetPosition(pos mgl64.Vec3) { n.pos = pos }

// Rotation returns the local Euler rotation of the node in degrees.
func (n *Node) Rotation() mgl64.Vec3 { return n.rot }

// SetRotation replaces the local Euler rotation of the node in degrees.
func (n *Node) SetRotation(rot mgl64.Vec3) { n.rot = rot }

// Scale returns the local scale of the node.
func (n *Node) Scale() mgl64.Vec3 { return n.scale }

// SetScale replaces the local scale of the node.
func (n *Node) SetScale(scale mgl64.Vec3) { n.scale = scale }

// WorldPosition returns the position of the node with all parent offsets
// applied.
func (n *Node) WorldPosition() mgl64.Vec3 {
	pos := n.pos
	for p := n.parent; p != nil; p = p.parent {
		pos = pos.Add(p.pos)
	}
	return pos
}

// Renderers returns the renderers attached to the node.
func (n *Node) Renderers() []*Renderer { return n.renderers }

// AddRenderer attaches a renderer over the materials passed.
func (n *Node) AddRenderer(materials ...*Material) *Renderer {
	r := newRenderer(materials)
	n.renderers = append(n.renderers, r)
	return r
}

// IsDescendantOf reports whether other is a strict ancestor of n.
func (n *Node) IsDescendantOf(other *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == other {
			return true
		}
	}
	return false
}

// IsAncestorOf reports whether other sits in the subtree rooted at n.
func (n *Node) IsAncestorOf(other *Node) bool {
	return other != nil && other.IsDescendantOf(n)
}

func (n *Node) walk(f func(*Node)) {
	f(n)
	for _, c := range n.children {
		c.walk(f)
	}
}
