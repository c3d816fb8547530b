// Package document is the mutable DOM of a slide living inside an isolated
// surface. It knows how to find, measure and transform the slide content and
// how to enumerate the animation and media elements the surface controller
// drives.
package document

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// ContentClass marks the element that gets measured and scaled
	ContentClass = "slide-content"
	// ActiveAnimationClass is added to animation groups once triggered
	ActiveAnimationClass = "animate-active"
)

var groupClasses = []string{"anim-slide", "anim-par", "anim-seq"}

// Document is a parsed slide. It is not safe for concurrent use; the
// surface controller owning it only touches it from its own loop.
type Document struct {
	root     *html.Node
	viewport [2]float64
	autoplay bool
	reflows  int
}

// Option tweaks a parsed document
type Option func(*Document)

// WithViewport sets the size the document believes its window has
func WithViewport(width, height float64) Option {
	return func(d *Document) {
		d.viewport = [2]float64{width, height}
	}
}

// WithAutoplay lets unmuted media start without a user gesture
func WithAutoplay(allowed bool) Option {
	return func(d *Document) {
		d.autoplay = allowed
	}
}

// Parse reads an HTML document
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	d := &Document{root: root}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ParseBytes is Parse over an in-memory document
func ParseBytes(data []byte, opts ...Option) (*Document, error) {
	return Parse(bytes.NewReader(data), opts...)
}

// ExtractTitle returns the text of the first <title>, or "" when absent
func ExtractTitle(data []byte) string {
	z := html.NewTokenizer(bytes.NewReader(data))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(z.Text()))
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}

// Title returns the document title
func (d *Document) Title() string {
	if n := d.find(func(n *html.Node) bool { return n.DataAtom == atom.Title }); n != nil && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	return ""
}

// Viewport returns the window size the document was given
func (d *Document) Viewport() (float64, float64) {
	return d.viewport[0], d.viewport[1]
}

// SetViewport updates the window size
func (d *Document) SetViewport(width, height float64) {
	d.viewport = [2]float64{width, height}
}

// HasElementID reports whether an element with the id exists
func (d *Document) HasElementID(id string) bool {
	return d.byID(id) != nil
}

// InjectStylesheet appends a <style id=...> to the head unless one with
// the same id is already present. It reports whether it inserted.
func (d *Document) InjectStylesheet(id, css string) bool {
	if d.HasElementID(id) {
		return false
	}
	head := d.find(func(n *html.Node) bool { return n.DataAtom == atom.Head })
	if head == nil {
		return false
	}
	style := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	head.AppendChild(style)
	return true
}

// Content returns the element to scale, or nil
func (d *Document) Content() *Element {
	n := d.find(func(n *html.Node) bool {
		return n.Type == html.ElementNode && (&Element{node: n}).HasClass(ContentClass)
	})
	if n == nil {
		return nil
	}
	return &Element{node: n}
}

// ContentSize measures the content element's declared box
func (d *Document) ContentSize() (float64, float64, bool) {
	content := d.Content()
	if content == nil {
		return 0, 0, false
	}
	return content.size(d.contentRules())
}

// contentRules gathers the stylesheet declarations aimed at the content class
func (d *Document) contentRules() inlineStyle {
	var css strings.Builder
	d.collect(func(e *Element) bool {
		if e.node.DataAtom == atom.Style {
			for c := e.node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					css.WriteString(c.Data)
					css.WriteString("\n")
				}
			}
		}
		return false
	})
	return classRules(css.String(), ContentClass)
}

// ApplyContentTransform centers the content and scales it uniformly
func (d *Document) ApplyContentTransform(scale float64) bool {
	content := d.Content()
	if content == nil {
		return false
	}
	s := strconv.FormatFloat(scale, 'f', 4, 64)
	content.SetStyle("transform-origin", "center center")
	content.SetStyle("will-change", "transform")
	content.SetStyle("position", "absolute")
	content.SetStyle("top", "50%")
	content.SetStyle("left", "50%")
	content.SetStyle("transform", "translate3d(-50%, -50%, 0) scale3d("+s+", "+s+", 1)")
	content.SetStyle("backface-visibility", "hidden")
	content.SetStyle("perspective", "1000px")
	return true
}

// Reflow commits pending style writes. A static tree has no layout cache,
// so this only counts cycles for callers that assert the sequence.
func (d *Document) Reflow() {
	d.reflows++
}

// Reflows reports how many reflow cycles were forced
func (d *Document) Reflows() int {
	return d.reflows
}

// AnimatedElements lists elements tagged for entrance animation in
// document order
func (d *Document) AnimatedElements() []*Element {
	return d.collect(func(e *Element) bool {
		if e.HasClass("animated") || e.HasClass("animate") {
			return true
		}
		if _, ok := e.Attr("data-animation"); ok {
			return true
		}
		_, ok := e.Attr("data-animate")
		return ok
	})
}

// AnimationGroups lists grouped/sequenced animation containers
func (d *Document) AnimationGroups() []*Element {
	return d.collect(func(e *Element) bool {
		for _, c := range groupClasses {
			if e.HasClass(c) {
				return true
			}
		}
		return false
	})
}

// Media lists audio and video elements
func (d *Document) Media() []*Media {
	var out []*Media
	for _, e := range d.collect(func(e *Element) bool {
		return e.node.DataAtom == atom.Video || e.node.DataAtom == atom.Audio
	}) {
		out = append(out, &Media{Element: e, autoplayAllowed: d.autoplay})
	}
	return out
}

// ReleaseHints resets every will-change hint to auto
func (d *Document) ReleaseHints() int {
	released := 0
	for _, e := range d.collect(func(e *Element) bool {
		v := e.Style("will-change")
		return v != "" && v != "auto"
	}) {
		e.SetStyle("will-change", "auto")
		released++
	}
	return released
}

// Render serializes the document
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, mostly for tests and logs
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) byID(id string) *html.Node {
	return d.find(func(n *html.Node) bool {
		v, ok := (&Element{node: n}).Attr("id")
		return n.Type == html.ElementNode && ok && v == id
	})
}

func (d *Document) find(match func(*html.Node) bool) *html.Node {
	var walk func(*html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if match(n) {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(d.root)
}

func (d *Document) collect(match func(*Element) bool) []*Element {
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if e := (&Element{node: n}); match(e) {
				out = append(out, e)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out
}
