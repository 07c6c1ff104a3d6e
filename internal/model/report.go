package model

import "time"

// PageReport is the result of one extraction request.
type PageReport struct {
	RunID         string               `yaml:"runId"         json:"runId"`
	OriginalURL   string               `yaml:"originalUrl"   json:"originalUrl"`
	FinalURL      string               `yaml:"finalUrl"      json:"finalUrl"`
	Title         string               `yaml:"title"         json:"title"`
	Timestamp     time.Time            `yaml:"timestamp"     json:"timestamp"`
	CookieHandled bool                 `yaml:"cookieHandled" json:"cookieHandled"`
	Elements      []InteractiveElement `yaml:"elements"      json:"elements"`

	// Screenshot is the full-page PNG when one was requested. It is not
	// serialized.
	Screenshot []byte `yaml:"-" json:"-"`
}

// Counts returns the number of buttons and links in the report.
func (r *PageReport) Counts() (buttons, links int) {
	for _, e := range r.Elements {
		if e.IsButton {
			buttons++
		} else {
			links++
		}
	}
	return buttons, links
}

// SvgReport is the page-wide SVG inventory.
type SvgReport struct {
	RunID     string     `yaml:"runId"     json:"runId"`
	URL       string     `yaml:"url"       json:"url"`
	FinalURL  string     `yaml:"finalUrl"  json:"finalUrl"`
	Timestamp time.Time  `yaml:"timestamp" json:"timestamp"`
	SvgCount  int        `yaml:"svgCount"  json:"svgCount"`
	Svgs      []SvgEntry `yaml:"svgs"      json:"svgs"`
}

// SvgEntry is one <svg> on the page.
type SvgEntry struct {
	ID                  int      `yaml:"id"                  json:"id"`
	OriginalHTML        string   `yaml:"originalHtml"        json:"originalHtml"`
	ProcessedSvg        string   `yaml:"processedSvg"        json:"processedSvg"`
	PreviewBitmap       *string  `yaml:"previewBitmap"       json:"previewBitmap"`
	TitleDesc           string   `yaml:"titleDesc"           json:"titleDesc"`
	AriaLabel           string   `yaml:"ariaLabel"           json:"ariaLabel"`
	AriaLabelledBy      string   `yaml:"ariaLabelledBy"      json:"ariaLabelledBy"`
	AriaDescribedBy     string   `yaml:"ariaDescribedBy"     json:"ariaDescribedBy"`
	HasAriaHidden       bool     `yaml:"hasAriaHidden"       json:"hasAriaHidden"`
	HasRolePresentation bool     `yaml:"hasRolePresentation" json:"hasRolePresentation"`
	HasUseElements      bool     `yaml:"hasUseElements"      json:"hasUseElements"`
	UseHrefs            []string `yaml:"useHrefs"            json:"useHrefs"`
	Width               string   `yaml:"width"               json:"width"`
	Height              string   `yaml:"height"              json:"height"`
	ViewBox             string   `yaml:"viewBox"             json:"viewBox"`
	ClassName           string   `yaml:"className"           json:"className"`
	Style               string   `yaml:"style"               json:"style"`
	Error               string   `yaml:"error,omitempty"     json:"error,omitempty"`
}
