package engine

import (
	"math/rand"
	"sync"

	"html-presenter/internal/models"
)

// Poses are the three transform/opacity targets of one effect variant
type Poses struct {
	// EntryStart is where the incoming surface waits before it moves
	EntryStart models.Pose
	// Exit is where the outgoing surface ends up
	Exit models.Pose
	// EntryFinal is where the incoming surface comes to rest
	EntryFinal models.Pose
}

type geometry struct {
	next Poses
	prev Poses
}

func pose(tx, ty, scale, rotate, rotateY, opacity float64) models.Pose {
	return models.Pose{TranslateX: tx, TranslateY: ty, Scale: scale, Rotate: rotate, RotateY: rotateY, Opacity: opacity}
}

func variant(entryStart, exit models.Pose) Poses {
	return Poses{EntryStart: entryStart, Exit: exit, EntryFinal: models.IdentityPose}
}

var catalog = map[models.Effect]geometry{
	models.EffectNone: {
		next: variant(models.IdentityPose, models.IdentityPose),
		prev: variant(models.IdentityPose, models.IdentityPose),
	},
	models.EffectSlideHorizontal: {
		next: variant(pose(100, 0, 1, 0, 0, 1), pose(-100, 0, 1, 0, 0, 1)),
		prev: variant(pose(-100, 0, 1, 0, 0, 1), pose(100, 0, 1, 0, 0, 1)),
	},
	models.EffectSlideVertical: {
		next: variant(pose(0, 100, 1, 0, 0, 1), pose(0, -100, 1, 0, 0, 1)),
		prev: variant(pose(0, -100, 1, 0, 0, 1), pose(0, 100, 1, 0, 0, 1)),
	},
	models.EffectFade: {
		next: variant(pose(0, 0, 1, 0, 0, 0), pose(0, 0, 1, 0, 0, 0)),
		prev: variant(pose(0, 0, 1, 0, 0, 0), pose(0, 0, 1, 0, 0, 0)),
	},
	models.EffectZoom: {
		next: variant(pose(0, 0, 1.5, 0, 0, 0), pose(0, 0, 0.5, 0, 0, 0)),
		prev: variant(pose(0, 0, 0.5, 0, 0, 0), pose(0, 0, 1.5, 0, 0, 0)),
	},
	models.EffectRotate: {
		next: variant(pose(0, 0, 0.75, 90, 0, 0), pose(0, 0, 0.75, -90, 0, 0)),
		prev: variant(pose(0, 0, 0.75, -90, 0, 0), pose(0, 0, 0.75, 90, 0, 0)),
	},
	models.EffectFlip: {
		next: variant(pose(0, 0, 1, 0, 90, 0), pose(0, 0, 1, 0, -90, 0)),
		prev: variant(pose(0, 0, 1, 0, -90, 0), pose(0, 0, 1, 0, 90, 0)),
	},
	// the cube turns around its vertical edge: the incoming face starts on
	// the far side rotated, the outgoing one swings away to the other side
	models.EffectCube: {
		next: variant(pose(-100, 0, 1, 0, 90, 1), pose(100, 0, 1, 0, 90, 1)),
		prev: variant(pose(100, 0, 1, 0, -90, 1), pose(-100, 0, 1, 0, -90, 1)),
	},
}

// effectOrder is the catalog in presentation order
var effectOrder = []models.Effect{
	models.EffectNone,
	models.EffectSlideHorizontal,
	models.EffectSlideVertical,
	models.EffectFade,
	models.EffectZoom,
	models.EffectRotate,
	models.EffectFlip,
	models.EffectCube,
}

// Effects returns the catalog
func Effects() []models.Effect {
	out := make([]models.Effect, len(effectOrder))
	copy(out, effectOrder)
	return out
}

// Lookup returns the poses for an effect variant
func Lookup(effect models.Effect, direction models.Direction) (Poses, bool) {
	g, ok := catalog[effect]
	if !ok {
		return Poses{}, false
	}
	if direction == models.DirectionPrev {
		return g.prev, true
	}
	return g.next, true
}

// Picker chooses the effect of the next transition
type Picker func() models.Effect

// RandomPicker picks uniformly from the catalog
func RandomPicker(r *rand.Rand) Picker {
	var mu sync.Mutex
	return func() models.Effect {
		mu.Lock()
		defer mu.Unlock()
		return effectOrder[r.Intn(len(effectOrder))]
	}
}

// FixedPicker always picks the same effect
func FixedPicker(effect models.Effect) Picker {
	return func() models.Effect { return effect }
}

// SetPicker picks uniformly from the given effects, falling back to the
// whole catalog when the set is empty
func SetPicker(r *rand.Rand, effects []models.Effect) Picker {
	if len(effects) == 0 {
		return RandomPicker(r)
	}
	set := make([]models.Effect, len(effects))
	copy(set, effects)
	var mu sync.Mutex
	return func() models.Effect {
		mu.Lock()
		defer mu.Unlock()
		return set[r.Intn(len(set))]
	}
}
