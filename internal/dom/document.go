package dom

import (
	"net/url"
	"strings"
	"sync"
)

// Document is a captured page.
type Document struct {
	Root  *Node
	URL   string
	Title string
	// BaseURL is the document base URI when it differs from URL.
	BaseURL string

	idOnce sync.Once
	ids    map[string]*Node
}

// NewDocument wraps root, which must be a DocumentNode.
func NewDocument(root *Node, pageURL, title string) *Document {
	return &Document{Root: root, URL: pageURL, Title: title}
}

// Base returns the parsed base URI used to resolve relative references.
func (d *Document) Base() *url.URL {
	raw := d.BaseURL
	if raw == "" {
		raw = d.URL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	if d.BaseURL != "" && d.URL != "" {
		if page, err := url.Parse(d.URL); err == nil {
			return page.ResolveReference(u)
		}
	}
	return u
}

// ElementByID returns the first element carrying id in composed pre-order,
// or nil.
func (d *Document) ElementByID(id string) *Node {
	if d == nil || d.Root == nil || id == "" {
		return nil
	}
	d.idOnce.Do(d.indexIDs)
	return d.ids[id]
}

func (d *Document) indexIDs() {
	d.ids = make(map[string]*Node)
	for _, el := range ElementsPiercing(d.Root) {
		id, ok := el.Attr("id")
		if !ok || id == "" {
			continue
		}
		if _, seen := d.ids[id]; !seen {
			d.ids[id] = el
		}
	}
}

// Elements returns every element of the page in composed pre-order.
func (d *Document) Elements() []*Node {
	return ElementsPiercing(d.Root)
}

// ParseDocument parses HTML markup into a Document for pageURL. The title is
// taken from the first <title> element and the base from <base href>.
func ParseDocument(src, pageURL string) (*Document, error) {
	root, err := FromHTML(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	doc := NewDocument(root, pageURL, "")
	if t := Find(root, false, func(n *Node) bool { return n.IsElement("title") }); t != nil {
		doc.Title = CollapseSpace(TextContent(t))
	}
	if b := Find(root, false, func(n *Node) bool { return n.IsElement("base") && n.HasAttr("href") }); b != nil {
		doc.BaseURL = b.AttrOr("href", "")
	}
	return doc, nil
}
