// Package presets holds a handful of illustrative effect generators,
// one per effect-generator shape, registered into a schedule.EffectBank.
// They're portable (no js build tag): each produces schedule.Keyframe or
// schedule.FrameMutator data, never touching the DOM directly — the host
// applies whatever they return.
package presets

import (
	"fmt"
	"math"

	"github.com/windrift/stagehand/pkg/schedule"
)

// Fade registers "fade-in" under each of the Entrance/Exit/Emphasis
// categories (there is no "fade-out" entry) using the KeyframesFunc shape — the simplest case, where
// both directions are known up front and never need the element's
// current layout.
func Fade(bank *schedule.EffectBank) {
	entry := &schedule.EffectBankEntry{
		Generator: &schedule.EffectGenerator{
			Mode: schedule.ModeKeyframes,
			Keyframes: func(c *schedule.AnimClip) ([]schedule.Keyframe, []schedule.Keyframe, error) {
				forward := []schedule.Keyframe{{"opacity": "0"}, {"opacity": "1"}}
				backward := []schedule.Keyframe{{"opacity": "1"}, {"opacity": "0"}}
				return forward, backward, nil
			},
		},
	}
	bank.Register(schedule.Entrance, "fade-in", entry)
	bank.Register(schedule.Exit, "fade-in", entry)
	bank.Register(schedule.Emphasis, "fade-in", entry)
}

// FlyIn registers "fly-in" under Entrance/Exit using the
// KeyframeGeneratorsFunc shape: the travel distance depends on the
// element's current bounding rect, which must be read at play-start
// rather than at registration time (the element may not even be
// attached to the document yet when the bank is built).
func FlyIn(bank *schedule.EffectBank) {
	entry := &schedule.EffectBankEntry{
		Generator: &schedule.EffectGenerator{
			Mode: schedule.ModeKeyframeGenerator,
			KeyframeGenerators: func(c *schedule.AnimClip) (func() []schedule.Keyframe, func() []schedule.Keyframe, error) {
				forward := func() []schedule.Keyframe {
					rect := c.Element.BoundingClientRect()
					travel := rect.Height + 40
					return []schedule.Keyframe{
						{"transform": fmt.Sprintf("translateY(%gpx)", travel), "opacity": "0"},
						{"transform": "translateY(0px)", "opacity": "1"},
					}
				}
				// nil backward: reuse forward's frames in reverse (spec fallback rule).
				return forward, nil, nil
			},
		},
	}
	bank.Register(schedule.Entrance, "fly-in", entry)
	bank.Register(schedule.Exit, "fly-in", entry)
}

// CounterPulse registers "counter-pulse" under Emphasis using the
// RafMutatorsFunc shape: stepping the element's --counter-value custom
// property through whole numbers from `from` to `to` runs as a plain
// per-frame callback rather than a keyframe dictionary.
func CounterPulse(bank *schedule.EffectBank, from, to int) {
	entry := &schedule.EffectBankEntry{
		Generator: &schedule.EffectGenerator{
			Mode: schedule.ModeMutator,
			RafMutators: func(c *schedule.AnimClip) (schedule.FrameMutator, schedule.FrameMutator, error) {
				forward := func(progress float64) {
					n := from + int(math.Round(float64(to-from)*progress))
					c.Element.SetStyleProperty("--counter-value", fmt.Sprintf("%d", n))
				}
				backward := func(progress float64) {
					n := to - int(math.Round(float64(to-from)*progress))
					c.Element.SetStyleProperty("--counter-value", fmt.Sprintf("%d", n))
				}
				return forward, backward, nil
			},
		},
	}
	bank.Register(schedule.Emphasis, "counter-pulse", entry)
}

// Shimmer registers "shimmer" under Motion using the
// RafMutatorGeneratorsFunc shape: a continuous highlight sweep whose
// travel span is computed from the element's own width at play-start.
func Shimmer(bank *schedule.EffectBank) {
	entry := &schedule.EffectBankEntry{
		Generator: &schedule.EffectGenerator{
			Mode: schedule.ModeMutatorGenerator,
			RafMutatorGenerators: func(c *schedule.AnimClip) (func() schedule.FrameMutator, func() schedule.FrameMutator, error) {
				build := func() schedule.FrameMutator {
					rect := c.Element.BoundingClientRect()
					span := rect.Width + 80
					return func(progress float64) {
						x := -40 + span*progress
						c.Element.SetStyleProperty("background-position-x", fmt.Sprintf("%gpx", x))
					}
				}
				return build, nil, nil
			},
		},
	}
	bank.Register(schedule.Motion, "shimmer", entry)
}

// RegisterAll wires every preset effect into bank, for a quick-start
// root façade that doesn't need to hand-pick effects.
func RegisterAll(bank *schedule.EffectBank) {
	Fade(bank)
	FlyIn(bank)
	CounterPulse(bank, 0, 100)
	Shimmer(bank)
}
