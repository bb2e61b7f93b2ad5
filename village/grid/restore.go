package grid

import (
	"fmt"

	"github.com/mcv-dev/mcvillage/village/scene"
)

// Restore re-instantiates persisted placements into the scene without
// consuming any random draws: every recorded transform, shader value and
// sprite frame is applied verbatim. The created nodes are returned in
// placement order. On the first failure every node created so far is
// destroyed again.
func Restore(s *scene.Scene, parent *scene.Node, placements []Placement) ([]*scene.Node, error) {
	if parent == nil {
		parent = s.Root()
	}
	nodes := make([]*scene.Node, 0, len(placements))
	fail := func(err error) ([]*scene.Node, error) {
		for _, n := range nodes {
			s.Destroy(n)
		}
		return nil, err
	}
	for _, p := range placements {
		n, err := s.Instantiate(scene.TemplateIDFor(p.Template), parent)
		if err != nil {
			return fail(fmt.Errorf("grid: restore cell (%d,%d,%d): %w", p.Cell[0], p.Cell[1], p.Cell[2], err))
		}
		n.SetName(fmt.Sprintf("%s (%d,%d,%d)", p.Type, p.Cell[0], p.Cell[1], p.Cell[2]))
		n.SetPosition(p.Position)
		n.SetRotation(p.Rotation)
		n.SetScale(p.Scale)
		for _, sv := range p.Shader {
			for _, r := range n.Renderers() {
				r.SetFloat(sv.Name, sv.Value)
			}
		}
		if p.Frame >= 0 {
			for _, r := range n.Renderers() {
				r.SetSpriteFrame(p.Frame)
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
