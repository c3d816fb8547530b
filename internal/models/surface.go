package models

import (
	"fmt"
	"strings"
	"time"
)

// SurfaceID names one of the two rendering slots
type SurfaceID int

const (
	SurfaceA SurfaceID = iota
	SurfaceB
)

// Other returns the opposite surface
func (id SurfaceID) Other() SurfaceID {
	if id == SurfaceA {
		return SurfaceB
	}
	return SurfaceA
}

func (id SurfaceID) String() string {
	if id == SurfaceA {
		return "A"
	}
	return "B"
}

// ParseSurfaceID accepts "A"/"B" in either case
func ParseSurfaceID(s string) (SurfaceID, error) {
	switch strings.ToUpper(s) {
	case "A":
		return SurfaceA, nil
	case "B":
		return SurfaceB, nil
	}
	return 0, fmt.Errorf("unknown surface %q", s)
}

// NoSlide is the slide index of a surface that represents nothing
const NoSlide = -1

// Pose is a transform/opacity triple applied to a surface container.
// Translations are percentages of the viewport, rotations degrees.
type Pose struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Scale      float64 `json:"scale"`
	Rotate     float64 `json:"rotate"`
	RotateY    float64 `json:"rotateY"`
	Opacity    float64 `json:"opacity"`
}

// IdentityPose is the on-stage, fully opaque pose
var IdentityPose = Pose{Scale: 1, Opacity: 1}

// CSS renders the transform part of the pose for browser clients
func (p Pose) CSS() string {
	return fmt.Sprintf("translate3d(%g%%, %g%%, 0) scale(%g) rotate(%gdeg) rotateY(%gdeg)",
		p.TranslateX, p.TranslateY, p.Scale, p.Rotate, p.RotateY)
}

// VisualState describes how a surface is composited.
// Opacity gates the whole container (0 hidden, 1 shown); the pose carries
// the effect's own opacity on top of it.
type VisualState struct {
	Pose         Pose    `json:"pose"`
	Opacity      float64 `json:"opacity"`
	ZIndex       int     `json:"zIndex"`
	TransitionMs int64   `json:"transitionMs"`
}

// WithTransition returns a copy animating over d
func (v VisualState) WithTransition(d time.Duration) VisualState {
	v.TransitionMs = d.Milliseconds()
	return v
}

// Foreground is the steady-state visual of the active surface
func Foreground() VisualState {
	return VisualState{Pose: IdentityPose, Opacity: 1, ZIndex: 20}
}

// Hidden is the steady-state visual of the idle surface
func Hidden() VisualState {
	return VisualState{Pose: IdentityPose, Opacity: 0, ZIndex: 0}
}

// SurfaceState is the externally visible record of a surface
type SurfaceState struct {
	ID         SurfaceID   `json:"-"`
	Name       string      `json:"id"`
	ContentRef ContentRef  `json:"contentRef"`
	Title      string      `json:"title"`
	SlideIndex int         `json:"slideIndex"`
	Active     bool        `json:"active"`
	Loaded     bool        `json:"loaded"`
	Generation uint64      `json:"generation"`
	Visual     VisualState `json:"visual"`
}
