package browser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mj1618/clickaudit/internal/dom"
)

// DOM node types as the capture script reports them.
const (
	wireElement  = 1
	wireText     = 3
	wireComment  = 8
	wireDocument = 9
	wireFragment = 11
)

var errEmptySnapshot = errors.New("browser: snapshot has no document")

type wireSnapshot struct {
	URL   string    `json:"url"`
	Title string    `json:"title"`
	Base  string    `json:"base"`
	Root  *wireNode `json:"root"`
}

type wireNode struct {
	ID       int               `json:"i"`
	Kind     int               `json:"k"`
	Tag      string            `json:"t"`
	NS       string            `json:"ns"`
	Data     string            `json:"d"`
	Attrs    [][2]string       `json:"a"`
	Children []*wireNode       `json:"c"`
	Shadow   *wireNode         `json:"sr"`
	Assigned []int             `json:"as"`
	Style    *wireStyle        `json:"st"`
	Rect     *wireRect         `json:"r"`
	Props    map[string]string `json:"p"`
}

type wireStyle struct {
	Position        string     `json:"p"`
	BackgroundImage string     `json:"bg"`
	Before          wirePseudo `json:"b"`
	After           wirePseudo `json:"a"`
}

type wirePseudo struct {
	Content  string `json:"c"`
	Position string `json:"p"`
}

type wireRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// DecodeSnapshot turns the capture script's JSON into a Document. Slot
// assignments reported by the browser are linked by node id.
func DecodeSnapshot(data []byte) (*dom.Document, error) {
	var ws wireSnapshot
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("browser: decode snapshot: %w", err)
	}
	if ws.Root == nil || ws.Root.Kind != wireDocument {
		return nil, errEmptySnapshot
	}

	d := &decoder{byID: make(map[int]*dom.Node)}
	root := d.node(ws.Root)
	for slot, ids := range d.slots {
		for _, id := range ids {
			if n, ok := d.byID[id]; ok {
				slot.Assigned = append(slot.Assigned, n)
			}
		}
	}

	doc := dom.NewDocument(root, ws.URL, ws.Title)
	if ws.Base != ws.URL {
		doc.BaseURL = ws.Base
	}
	return doc, nil
}

type decoder struct {
	byID  map[int]*dom.Node
	slots map[*dom.Node][]int
}

func (d *decoder) node(w *wireNode) *dom.Node {
	var n *dom.Node
	switch w.Kind {
	case wireDocument:
		n = &dom.Node{Type: dom.DocumentNode}
	case wireFragment:
		n = &dom.Node{Type: dom.FragmentNode}
	case wireText:
		n = dom.NewText(w.Data)
	case wireComment:
		n = &dom.Node{Type: dom.CommentNode, Data: w.Data}
	case wireElement:
		n = d.element(w)
	default:
		return nil
	}
	d.byID[w.ID] = n
	for _, c := range w.Children {
		if k := d.node(c); k != nil {
			n.AppendChild(k)
		}
	}
	if w.Shadow != nil && n.Type == dom.ElementNode {
		if sr := d.node(w.Shadow); sr != nil {
			n.AttachShadow(sr)
		}
	}
	return n
}

func (d *decoder) element(w *wireNode) *dom.Node {
	n := &dom.Node{Type: dom.ElementNode, Tag: w.Tag, Namespace: w.NS, Props: w.Props}
	for _, a := range w.Attrs {
		n.Attrs = append(n.Attrs, dom.Attr{Name: a[0], Value: a[1]})
	}
	if w.Style != nil {
		n.Style = &dom.Style{
			Position:        w.Style.Position,
			BackgroundImage: w.Style.BackgroundImage,
			Before:          dom.PseudoStyle{Content: w.Style.Before.Content, Position: w.Style.Before.Position},
			After:           dom.PseudoStyle{Content: w.Style.After.Content, Position: w.Style.After.Position},
		}
	}
	if w.Rect != nil {
		n.Rect = &dom.Rect{X: w.Rect.X, Y: w.Rect.Y, Width: w.Rect.W, Height: w.Rect.H}
	}
	if w.Assigned != nil {
		if d.slots == nil {
			d.slots = make(map[*dom.Node][]int)
		}
		d.slots[n] = w.Assigned
	}
	return n
}
