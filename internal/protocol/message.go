// Package protocol defines the messages the host sends into isolated
// surfaces and the best-effort port they travel through.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind tags a message
type Kind string

const (
	KindResize          Kind = "resize"
	KindForceScale      Kind = "force-scale"
	KindTransitionStart Kind = "transition-start"
	KindTransitionEnd   Kind = "transition-end"
	KindAnimationStart  Kind = "ppt-animation-start"
)

var knownKinds = map[Kind]bool{
	KindResize:          true,
	KindForceScale:      true,
	KindTransitionStart: true,
	KindTransitionEnd:   true,
	KindAnimationStart:  true,
}

var (
	ErrUnknownKind   = errors.New("unknown message kind")
	ErrInvalidResize = errors.New("resize requires positive width and height")
)

// Message is one host→surface signal. Only resize carries a payload.
type Message struct {
	Type   Kind    `json:"type"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

func Resize(width, height float64) Message {
	return Message{Type: KindResize, Width: width, Height: height}
}

func ForceScale() Message      { return Message{Type: KindForceScale} }
func TransitionStart() Message { return Message{Type: KindTransitionStart} }
func TransitionEnd() Message   { return Message{Type: KindTransitionEnd} }
func AnimationStart() Message  { return Message{Type: KindAnimationStart} }

// Validate checks the kind and the payload
func (m Message) Validate() error {
	if !knownKinds[m.Type] {
		return fmt.Errorf("%w: %q", ErrUnknownKind, m.Type)
	}
	if m.Type == KindResize && (m.Width <= 0 || m.Height <= 0) {
		return ErrInvalidResize
	}
	return nil
}

// Encode serializes a message for the wire
func Encode(m Message) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// Decode parses and validates a wire message
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("failed to decode message: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}
