package engine

import "html-presenter/internal/models"

// Surface is the host-side record of one rendering slot. Only the
// orchestrator mutates it, through SurfacePair.
type Surface struct {
	ID         models.SurfaceID
	ContentRef models.ContentRef
	Title      string
	SlideIndex int
	Loaded     bool
	Generation uint64
	Visual     models.VisualState
}

// SurfacePair holds surfaces A and B. The active role lives in a single
// field so flipping it moves both roles at once.
type SurfacePair struct {
	surfaces [2]*Surface
	active   models.SurfaceID
}

// NewSurfacePair starts with A active and both slots empty
func NewSurfacePair() *SurfacePair {
	p := &SurfacePair{active: models.SurfaceA}
	for _, id := range []models.SurfaceID{models.SurfaceA, models.SurfaceB} {
		p.surfaces[id] = &Surface{ID: id, SlideIndex: models.NoSlide, Visual: models.Hidden()}
	}
	p.surfaces[models.SurfaceA].Visual = models.Foreground()
	return p
}

func (p *SurfacePair) Get(id models.SurfaceID) *Surface { return p.surfaces[id] }
func (p *SurfacePair) Active() *Surface                 { return p.surfaces[p.active] }
func (p *SurfacePair) Inactive() *Surface               { return p.surfaces[p.active.Other()] }
func (p *SurfacePair) ActiveID() models.SurfaceID       { return p.active }
func (p *SurfacePair) IsActive(id models.SurfaceID) bool {
	return p.active == id
}

// Activate hands the active role to id
func (p *SurfacePair) Activate(id models.SurfaceID) {
	p.active = id
}

// SetContent stages new content. Staging alone changes nothing visible.
// It returns the generation the coming load signal must carry.
func (p *SurfacePair) SetContent(id models.SurfaceID, ref models.ContentRef, title string, index int, loaded bool) uint64 {
	s := p.surfaces[id]
	s.ContentRef = ref
	s.Title = title
	s.SlideIndex = index
	s.Loaded = loaded
	s.Generation++
	return s.Generation
}

// SetSlideIndex re-associates already staged content with a deck index
func (p *SurfacePair) SetSlideIndex(id models.SurfaceID, index int) {
	p.surfaces[id].SlideIndex = index
}

// ClearContent releases whatever the surface holds
func (p *SurfacePair) ClearContent(id models.SurfaceID) {
	s := p.surfaces[id]
	s.ContentRef = ""
	s.Title = ""
	s.SlideIndex = models.NoSlide
	s.Loaded = false
	s.Generation++
}

func (p *SurfacePair) MarkLoaded(id models.SurfaceID) {
	p.surfaces[id].Loaded = true
}

func (p *SurfacePair) SetVisual(id models.SurfaceID, v models.VisualState) {
	p.surfaces[id].Visual = v
}

// State returns the external view of a surface
func (p *SurfacePair) State(id models.SurfaceID) models.SurfaceState {
	s := p.surfaces[id]
	return models.SurfaceState{
		ID:         id,
		Name:       id.String(),
		ContentRef: s.ContentRef,
		Title:      s.Title,
		SlideIndex: s.SlideIndex,
		Active:     p.active == id,
		Loaded:     s.Loaded,
		Generation: s.Generation,
		Visual:     s.Visual,
	}
}

func (p *SurfacePair) States() [2]models.SurfaceState {
	return [2]models.SurfaceState{p.State(models.SurfaceA), p.State(models.SurfaceB)}
}
