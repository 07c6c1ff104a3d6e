package dom

// maxSlotDepth bounds slot-to-slot flattening across nested shadow trees.
const maxSlotDepth = 32

// AssignSlots computes the flattened assigned nodes of every <slot> inside
// every shadow tree below root, the way HTMLSlotElement.assignedNodes with
// flatten: true reports them. Existing assignments are replaced.
func AssignSlots(root *Node) {
	raw := make(map[*Node][]*Node)
	var slots []*Node
	for _, host := range append([]*Node{root}, ElementsPiercing(root)...) {
		if host.Shadow == nil {
			continue
		}
		byName := make(map[string]*Node)
		for _, s := range Elements(host.Shadow) {
			if !s.IsElement("slot") {
				continue
			}
			slots = append(slots, s)
			name := s.AttrOr("name", "")
			if _, ok := byName[name]; !ok {
				byName[name] = s
			}
		}
		for _, c := range host.Children {
			var name string
			switch c.Type {
			case ElementNode:
				name = c.AttrOr("slot", "")
			case TextNode:
			default:
				continue
			}
			if s, ok := byName[name]; ok {
				raw[s] = append(raw[s], c)
			}
		}
	}
	for _, s := range slots {
		s.Assigned = flatten(s, raw, 0)
	}
}

func flatten(slot *Node, raw map[*Node][]*Node, depth int) []*Node {
	if depth > maxSlotDepth {
		return nil
	}
	src := raw[slot]
	if len(src) == 0 {
		src = slot.Children
	}
	var out []*Node
	for _, n := range src {
		if n.IsElement("slot") && isInShadow(n) {
			out = append(out, flatten(n, raw, depth+1)...)
			continue
		}
		if n.Type == ElementNode || n.Type == TextNode {
			out = append(out, n)
		}
	}
	return out
}

// isInShadow reports whether n's tree root is a shadow root.
func isInShadow(n *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == FragmentNode {
			return true
		}
	}
	return false
}
