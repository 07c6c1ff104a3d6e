package dom

import "strings"

// Elements returns the element descendants of n in light-DOM pre-order,
// excluding n itself. Shadow trees are not entered.
func Elements(n *Node) []*Node {
	return collect(n, false)
}

// ElementsPiercing returns the element descendants of n in composed
// pre-order: each element, then its open shadow tree, then its light
// children. n itself is excluded.
func ElementsPiercing(n *Node) []*Node {
	return collect(n, true)
}

func collect(n *Node, pierce bool) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	stack := pushChildren(nil, n, pierce)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type == ElementNode {
			out = append(out, cur)
		}
		stack = pushChildren(stack, cur, pierce)
	}
	return out
}

// pushChildren pushes the children of n in reverse so they pop in order.
// The shadow root is pushed last so it is visited before light children.
func pushChildren(stack []*Node, n *Node, pierce bool) []*Node {
	for i := len(n.Children) - 1; i >= 0; i-- {
		stack = append(stack, n.Children[i])
	}
	if pierce && n.Shadow != nil {
		stack = append(stack, n.Shadow)
	}
	return stack
}

// Find returns the first element in composed pre-order below n for which
// match returns true.
func Find(n *Node, pierce bool, match func(*Node) bool) *Node {
	for _, el := range collect(n, pierce) {
		if match(el) {
			return el
		}
	}
	return nil
}

// FindAll returns every element below n, in pre-order, for which match
// returns true.
func FindAll(n *Node, pierce bool, match func(*Node) bool) []*Node {
	var out []*Node
	for _, el := range collect(n, pierce) {
		if match(el) {
			out = append(out, el)
		}
	}
	return out
}

// TextContent returns the concatenated data of all light text descendants,
// as the DOM textContent property does.
func TextContent(n *Node) string {
	if n == nil {
		return ""
	}
	if n.Type == TextNode {
		return n.Data
	}
	var b strings.Builder
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type == TextNode {
			b.WriteString(cur.Data)
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return b.String()
}

// CollapseSpace replaces every run of whitespace with one space and trims
// the result.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
