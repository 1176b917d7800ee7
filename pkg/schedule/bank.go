package schedule

import (
	"fmt"
	"time"
)

// KeyframesFunc is the simplest effect-generator shape: compute both
// directions' keyframes once, up front.
type KeyframesFunc func(c *AnimClip) (forward, backward []Keyframe, err error)

// KeyframeGeneratorsFunc defers keyframe computation until play-start,
// returning factories instead of the frames themselves — used when an
// effect needs to read the element's current layout just before it
// runs (spec §4.2 generateKeyframeGenerators). A nil backward factory
// means "reuse the forward frames" (spec §4.2 fallback rule).
type KeyframeGeneratorsFunc func(c *AnimClip) (forward, backward func() []Keyframe, err error)

// RafMutatorsFunc is for effects no keyframe dictionary can express —
// per-frame callbacks driven by the host's own frame tick.
type RafMutatorsFunc func(c *AnimClip) (forward, backward FrameMutator, err error)

// RafMutatorGeneratorsFunc is the mutator analogue of
// KeyframeGeneratorsFunc: factories built at play-start.
type RafMutatorGeneratorsFunc func(c *AnimClip) (forward, backward func() FrameMutator, err error)

// EffectGenerator is a single registered effect. Exactly one of the
// four function fields is populated, matching Mode — effect authors
// implement ONE of the four shapes (spec §4.2 "effect-generator
// contract"), not all of them.
type EffectGenerator struct {
	Mode GeneratorMode

	Keyframes            KeyframesFunc
	KeyframeGenerators   KeyframeGeneratorsFunc
	RafMutators          RafMutatorsFunc
	RafMutatorGenerators RafMutatorGeneratorsFunc
}

func (g *EffectGenerator) GenerateKeyframes(c *AnimClip) ([]Keyframe, []Keyframe, error) {
	if g.Keyframes == nil {
		return nil, nil, fmt.Errorf("effect generator has no Keyframes shape")
	}
	return g.Keyframes(c)
}

func (g *EffectGenerator) GenerateKeyframeGenerators(c *AnimClip) (func() []Keyframe, func() []Keyframe, error) {
	if g.KeyframeGenerators == nil {
		return nil, nil, fmt.Errorf("effect generator has no KeyframeGenerators shape")
	}
	return g.KeyframeGenerators(c)
}

func (g *EffectGenerator) GenerateRafMutators(c *AnimClip) (FrameMutator, FrameMutator, error) {
	if g.RafMutators == nil {
		return nil, nil, fmt.Errorf("effect generator has no RafMutators shape")
	}
	return g.RafMutators(c)
}

func (g *EffectGenerator) GenerateRafMutatorGenerators(c *AnimClip) (func() FrameMutator, func() FrameMutator, error) {
	if g.RafMutatorGenerators == nil {
		return nil, nil, fmt.Errorf("effect generator has no RafMutatorGenerators shape")
	}
	return g.RafMutatorGenerators(c)
}

// PartialClipConfig mirrors ClipConfig but every leaf is a pointer, so
// "unset" is distinguishable from "explicitly zero" — needed for the
// config-merge precedence chain (spec §9 "Effect bank extensibility").
type PartialClipConfig struct {
	Delay        *time.Duration
	Duration     *time.Duration
	EndDelay     *time.Duration
	Easing       *string
	PlaybackRate *float64

	CSSClasses             *ClassModifiers
	Composite              *CompositeMode
	CommitsStyles          *bool
	CommitStylesForcefully *bool

	Sequencing *SequencingFlags

	ComputeNow                 *bool
	HideNowType                *HideType
	ExitType                   *HideType
	RemoveInlineStylesOnFinish *bool
	PointTrackingEnabled       *bool
}

func overlay(dst ClipConfig, src *PartialClipConfig) ClipConfig {
	if src == nil {
		return dst
	}
	if src.Delay != nil {
		dst.Timing.Delay = *src.Delay
	}
	if src.Duration != nil {
		dst.Timing.Duration = *src.Duration
	}
	if src.EndDelay != nil {
		dst.Timing.EndDelay = *src.EndDelay
	}
	if src.Easing != nil {
		dst.Timing.Easing = *src.Easing
	}
	if src.PlaybackRate != nil {
		dst.Timing.PlaybackRate = *src.PlaybackRate
	}
	if src.CSSClasses != nil {
		dst.Modifiers.CSSClasses = *src.CSSClasses
	}
	if src.Composite != nil {
		dst.Modifiers.Composite = *src.Composite
	}
	if src.CommitsStyles != nil {
		dst.Modifiers.CommitsStyles = *src.CommitsStyles
	}
	if src.CommitStylesForcefully != nil {
		dst.Modifiers.CommitStylesForcefully = *src.CommitStylesForcefully
	}
	if src.Sequencing != nil {
		dst.Sequencing = *src.Sequencing
	}
	if src.ComputeNow != nil {
		dst.ComputeNow = *src.ComputeNow
	}
	if src.HideNowType != nil {
		dst.HideNowType = *src.HideNowType
	}
	if src.ExitType != nil {
		dst.ExitType = *src.ExitType
	}
	if src.RemoveInlineStylesOnFinish != nil {
		dst.RemoveInlineStylesOnFinish = *src.RemoveInlineStylesOnFinish
	}
	if src.PointTrackingEnabled != nil {
		dst.PointTrackingEnabled = *src.PointTrackingEnabled
	}
	return dst
}

// EffectBankEntry is one registered effect: its generator plus the
// three config layers author config merges against (spec §9).
type EffectBankEntry struct {
	Generator       *EffectGenerator
	DefaultConfig   *PartialClipConfig // bank-supplied defaults, lowest precedence after clip-class defaults
	Config          *PartialClipConfig // bank-supplied config, overrides DefaultConfig
	ImmutableConfig *PartialClipConfig // bank-supplied config authors cannot override
}

// EffectBank is the registry of effects per category (spec §6 "Generator
// bank"). One process-wide instance is built at startup and handed to
// the root façade.
type EffectBank struct {
	entries map[Category]map[string]*EffectBankEntry
}

func NewEffectBank() *EffectBank {
	return &EffectBank{entries: make(map[Category]map[string]*EffectBankEntry)}
}

// Register adds (or replaces) one effect under a category.
func (b *EffectBank) Register(cat Category, name string, entry *EffectBankEntry) {
	if b.entries[cat] == nil {
		b.entries[cat] = make(map[string]*EffectBankEntry)
	}
	b.entries[cat][name] = entry
}

// Lookup finds the entry for (category, name); errors if absent.
func (b *EffectBank) Lookup(cat Category, name string) (*EffectBankEntry, error) {
	byName, ok := b.entries[cat]
	if !ok {
		return nil, fmt.Errorf("no effects registered for category %s", cat)
	}
	entry, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("effect %q not registered for category %s", name, cat)
	}
	return entry, nil
}

// MergeConfig applies the full precedence chain: clip-class defaults
// (builtinDefault, e.g. Entrance's standard class/commit defaults) <
// bank DefaultConfig < bank Config < author-supplied < bank
// ImmutableConfig (spec §9).
func MergeConfig(builtinDefault ClipConfig, entry *EffectBankEntry, author *PartialClipConfig) ClipConfig {
	cfg := builtinDefault
	cfg = overlay(cfg, entry.DefaultConfig)
	cfg = overlay(cfg, entry.Config)
	cfg = overlay(cfg, author)
	cfg = overlay(cfg, entry.ImmutableConfig)
	return cfg
}
