package scaler

import (
	"errors"
	"log"
	"time"

	"html-presenter/internal/document"
)

// startAnimations walks the animation-tagged elements on the next paint,
// staggering them so the surface does not render every entrance at once
func (c *Controller) startAnimations() {
	c.stats.AnimationRuns++
	c.loop.NextFrame(func() {
		if c.closed.Load() {
			return
		}
		for i, el := range c.doc.AnimatedElements() {
			el := el
			c.loop.AfterFunc(time.Duration(i)*c.opts.ElementStagger, func() {
				c.loop.NextFrame(func() {
					if c.closed.Load() {
						return
					}
					el.Reveal()
					el.Accelerate()
				})
			})
		}

		for i, group := range c.doc.AnimationGroups() {
			group := group
			c.loop.AfterFunc(time.Duration(i)*c.opts.ContainerStagger, func() {
				c.loop.NextFrame(func() { c.activateGroup(group) })
			})
		}

		c.startMedia()

		if c.cooldown != nil {
			c.cooldown.Stop()
		}
		c.cooldown = c.loop.AfterFunc(c.opts.HintCooldown, func() {
			if !c.closed.Load() {
				c.doc.ReleaseHints()
			}
		})
	})
}

func (c *Controller) activateGroup(group *document.Element) {
	if c.closed.Load() {
		return
	}
	group.Accelerate()
	group.Activate()
	for j, child := range group.TaggedChildren() {
		child := child
		c.loop.AfterFunc(time.Duration(j)*c.opts.ChildStagger, func() {
			if !c.closed.Load() {
				child.Activate()
			}
		})
	}
}

func (c *Controller) startMedia() {
	for _, m := range c.doc.Media() {
		if !m.AtStart() || m.Playing() {
			continue
		}
		if err := m.Play(); err != nil {
			if errors.Is(err, document.ErrPlaybackBlocked) {
				c.stats.MediaBlocked++
			}
			log.Printf("surface %s: media playback refused: %v", c.name, err)
			continue
		}
		c.stats.MediaStarted++
	}
}
