package document

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Element wraps a node of the document tree
type Element struct {
	node *html.Node
}

// Tag returns the lower-case element name
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the attribute value and whether it is present
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr adds or replaces an attribute
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether the class list contains name
func (e *Element) HasClass(name string) bool {
	classes, _ := e.Attr("class")
	for _, c := range strings.Fields(classes) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the class list once
func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	classes, _ := e.Attr("class")
	e.SetAttr("class", strings.TrimSpace(classes+" "+name))
}

// Style returns an inline style property
func (e *Element) Style(prop string) string {
	s, _ := e.Attr("style")
	return parseStyle(s).get(prop)
}

// SetStyle writes an inline style property
func (e *Element) SetStyle(prop, val string) {
	s, _ := e.Attr("style")
	e.SetAttr("style", parseStyle(s).set(prop, val).String())
}

// Reveal undoes the hidden/paused state slides park animated elements in
func (e *Element) Reveal() {
	if e.Style("visibility") == "hidden" {
		e.SetStyle("visibility", "visible")
	}
	if e.Style("display") == "none" {
		e.SetStyle("display", "block")
	}
	if e.Style("animation-play-state") == "paused" {
		e.SetStyle("animation-play-state", "running")
	}
}

// Accelerate applies compositing hints
func (e *Element) Accelerate() {
	e.SetStyle("will-change", "transform, opacity")
	if e.Style("transform") == "" {
		e.SetStyle("transform", "translate3d(0,0,0)")
	}
	e.SetStyle("backface-visibility", "hidden")
}

// Activate marks the element as running its entrance animation
func (e *Element) Activate() {
	e.SetStyle("will-change", "transform, opacity")
	e.AddClass(ActiveAnimationClass)
}

// TaggedChildren returns direct children carrying data-anim
func (e *Element) TaggedChildren() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		child := &Element{node: c}
		if _, ok := child.Attr("data-anim"); ok {
			out = append(out, child)
		}
	}
	return out
}

// size reads the element's declared pixel box: inline style first, then
// data attributes, then the given stylesheet declarations
func (e *Element) size(sheet inlineStyle) (float64, float64, bool) {
	w, okW := pixels(e.Style("width"))
	h, okH := pixels(e.Style("height"))
	if !okW {
		if v, ok := e.Attr("data-width"); ok {
			w, okW = pixels(v)
		}
	}
	if !okH {
		if v, ok := e.Attr("data-height"); ok {
			h, okH = pixels(v)
		}
	}
	if !okW {
		w, okW = pixels(sheet.get("width"))
	}
	if !okH {
		h, okH = pixels(sheet.get("height"))
	}
	return w, h, okW && okH
}

func pixels(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "!important"))
	s = strings.TrimSpace(strings.TrimSuffix(s, "px"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ErrPlaybackBlocked is returned when the autoplay policy refuses playback
var ErrPlaybackBlocked = errors.New("playback not allowed by autoplay policy")

// Media is an audio or video element
type Media struct {
	*Element
	autoplayAllowed bool
}

// AtStart reports whether playback position is still zero and not ended
func (m *Media) AtStart() bool {
	if _, ended := m.Attr("data-ended"); ended {
		return false
	}
	pos, ok := m.Attr("data-current-time")
	if !ok {
		return true
	}
	v, err := strconv.ParseFloat(pos, 64)
	return err == nil && v == 0
}

// Playing reports whether playback was started
func (m *Media) Playing() bool {
	_, ok := m.Attr("data-playing")
	return ok
}

// Play starts playback. Unmuted media is refused unless autoplay is allowed.
func (m *Media) Play() error {
	if _, muted := m.Attr("muted"); !muted && !m.autoplayAllowed {
		return ErrPlaybackBlocked
	}
	m.SetStyle("will-change", "transform")
	m.SetAttr("autoplay", "")
	m.SetAttr("data-playing", "")
	return nil
}
