package models

import "time"

// Effect is one entry of the fixed transition catalog
type Effect string

const (
	EffectNone            Effect = "none"
	EffectSlideHorizontal Effect = "slide-horizontal"
	EffectSlideVertical   Effect = "slide-vertical"
	EffectFade            Effect = "fade"
	EffectZoom            Effect = "zoom"
	EffectRotate          Effect = "rotate"
	EffectFlip            Effect = "flip"
	EffectCube            Effect = "cube"
)

// Direction selects the geometric variant of an effect
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// Transition is the per-navigation descriptor
type Transition struct {
	Effect    Effect    `json:"effect"`
	Direction Direction `json:"direction"`
}

// TransitionRecord represents a finished transition in the journal
type TransitionRecord struct {
	ID         int64     `json:"id"`
	Effect     Effect    `json:"effect"`
	Direction  Direction `json:"direction"`
	FromIndex  int       `json:"fromIndex"`
	ToIndex    int       `json:"toIndex"`
	SlideID    string    `json:"slideId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}
