package model

import (
	"github.com/mj1618/clickaudit/internal/dom"
	"github.com/mj1618/clickaudit/internal/probe"
)

// Rect is an element's layout box. A nil *Rect means the element has no box.
type Rect = dom.Rect

// NestedAria is a descendant carrying aria-label or aria-labelledby.
type NestedAria = probe.NestedAria

// InteractiveElement is one clickable element and everything inferred about
// it. Optional values are explicit nulls, never omitted.
type InteractiveElement struct {
	SequenceID int    `yaml:"sequenceId" json:"sequenceId"` // 0-based visiting order
	KindID     int    `yaml:"kindId"     json:"kindId"`     // 1-based within buttons or links
	Tag        string `yaml:"tag"        json:"tag"`
	IsButton   bool   `yaml:"isButton"   json:"isButton"`
	Href       string `yaml:"href"       json:"href"`
	IsInternal *bool  `yaml:"isInternal" json:"isInternal"`

	AccessibleText    string `yaml:"accessibleText"    json:"accessibleText"`
	HasAccessibleText bool   `yaml:"hasAccessibleText" json:"hasAccessibleText"`

	AriaLabel           string `yaml:"ariaLabel"           json:"ariaLabel"`
	AriaLabelledBy      string `yaml:"ariaLabelledBy"      json:"ariaLabelledBy"`
	AriaLabelledByText  string `yaml:"ariaLabelledByText"  json:"ariaLabelledByText"`
	AriaDescribedBy     string `yaml:"ariaDescribedBy"     json:"ariaDescribedBy"`
	AriaDescribedByText string `yaml:"ariaDescribedByText" json:"ariaDescribedByText"`
	HasAriaData         bool   `yaml:"hasAriaData"         json:"hasAriaData"`

	PseudoElementText      string       `yaml:"pseudoElementText"      json:"pseudoElementText"`
	IsAbsolutelyPositioned bool         `yaml:"isAbsolutelyPositioned" json:"isAbsolutelyPositioned"`
	NestedAriaElements     []NestedAria `yaml:"nestedAriaElements"     json:"nestedAriaElements"`
	BoundingBox            *Rect        `yaml:"boundingBox"            json:"boundingBox"`

	OpensNewWindow       bool    `yaml:"opensNewWindow"       json:"opensNewWindow"`
	OpensNewWindowTarget bool    `yaml:"opensNewWindowTarget" json:"opensNewWindowTarget"`
	OpensNewWindowScript bool    `yaml:"opensNewWindowScript" json:"opensNewWindowScript"`
	AncestorLinkHref     *string `yaml:"ancestorLinkHref"     json:"ancestorLinkHref"`

	HasImage      bool              `yaml:"hasImage"      json:"hasImage"`
	ImageContent  []ImageDescriptor `yaml:"imageContent"  json:"imageContent"`
	FigureContext FigureContext     `yaml:"figureContext" json:"figureContext"`
	ShadowDomInfo ShadowDomInfo     `yaml:"shadowDomInfo" json:"shadowDomInfo"`
	SlotInfo      SlotInfo          `yaml:"slotInfo"      json:"slotInfo"`

	Rel         *string `yaml:"rel"         json:"rel"`
	Target      *string `yaml:"target"      json:"target"`
	Title       *string `yaml:"title"       json:"title"`
	HasTitle    bool    `yaml:"hasTitle"    json:"hasTitle"`
	Tabindex    *string `yaml:"tabindex"    json:"tabindex"`
	HasTabindex bool    `yaml:"hasTabindex" json:"hasTabindex"`

	// Error is set on a partial record whose extraction failed midway.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// FigureContext describes the nearest enclosing <figure>. HasCaption and
// CaptionText are only set when InFigure is true.
type FigureContext struct {
	InFigure    bool    `yaml:"inFigure"              json:"inFigure"`
	HasCaption  *bool   `yaml:"hasCaption,omitempty"  json:"hasCaption,omitempty"`
	CaptionText *string `yaml:"captionText,omitempty" json:"captionText,omitempty"`
}

// ShadowDomInfo reports shadow-tree hosting and its text.
type ShadowDomInfo struct {
	HasShadowRoot bool   `yaml:"hasShadowRoot" json:"hasShadowRoot"`
	ShadowText    string `yaml:"shadowText"    json:"shadowText"`
}

// SlotInfo reports slot presence and projected text.
type SlotInfo struct {
	ContainsSlot bool   `yaml:"containsSlot" json:"containsSlot"`
	SlotText     string `yaml:"slotText"     json:"slotText"`
}

// Image descriptor types.
const (
	ImageTypeImg        = "img"
	ImageTypeSVG        = "svg"
	ImageTypeBackground = "background"
)

// ImageDescriptor is one visual inside or behind an element. Exactly one of
// Img, SVG and Background is set, matching Type.
type ImageDescriptor struct {
	ImageID       int     `yaml:"imageId"       json:"imageId"`
	Type          string  `yaml:"type"          json:"type"`
	PreviewBitmap *string `yaml:"previewBitmap" json:"previewBitmap"` // data URI

	Img        *ImgInfo        `yaml:"img,omitempty"        json:"img,omitempty"`
	SVG        *SVGInfo        `yaml:"svg,omitempty"        json:"svg,omitempty"`
	Background *BackgroundInfo `yaml:"background,omitempty" json:"background,omitempty"`
}

// ImgInfo describes an <img>.
type ImgInfo struct {
	AltText             string  `yaml:"altText"             json:"altText"`
	TitleText           *string `yaml:"titleText"           json:"titleText"`
	Src                 string  `yaml:"src"                 json:"src"`
	AriaHiddenEffective bool    `yaml:"ariaHiddenEffective" json:"ariaHiddenEffective"`
	PresentationRole    bool    `yaml:"presentationRole"    json:"presentationRole"`
}

// SVGInfo describes an <svg>.
type SVGInfo struct {
	TitleOrDesc         string  `yaml:"titleOrDesc"         json:"titleOrDesc"`
	TitleText           *string `yaml:"titleText"           json:"titleText"`
	AriaLabel           string  `yaml:"ariaLabel"           json:"ariaLabel"`
	AriaLabelledByText  string  `yaml:"ariaLabelledByText"  json:"ariaLabelledByText"`
	AriaDescribedByText string  `yaml:"ariaDescribedByText" json:"ariaDescribedByText"`
	AriaHiddenEffective bool    `yaml:"ariaHiddenEffective" json:"ariaHiddenEffective"`
	PresentationRole    bool    `yaml:"presentationRole"    json:"presentationRole"`
	UsesReference       bool    `yaml:"usesReference"       json:"usesReference"`
}

// BackgroundInfo describes a CSS background image.
type BackgroundInfo struct {
	SourceURL string `yaml:"sourceUrl" json:"sourceUrl"`
}
