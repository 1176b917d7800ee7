package schedule

import "time"

// Element is the host-DOM-element surface the scheduler needs. The real
// implementation (pkg/hostjs, js&&wasm-tagged) wraps a syscall/js.Value;
// schedulefakes provides an in-memory stand-in so the core algorithms in
// this package are exercised by plain `go test`.
type Element interface {
	Tag() string
	OuterHTML() string
	ClassListAdd(classes ...string)
	ClassListRemove(classes ...string)
	ClassListContains(class string) bool
	GetStyleProperty(prop string) string
	SetStyleProperty(prop, value string)
	RemoveStyleProperty(prop string)
	BoundingClientRect() Rect
	// IsRendered reports whether the element (and its ancestors) are
	// currently laid out — false when hidden via display:none, an
	// unrendered ancestor, or not attached to the document.
	IsRendered() bool
	// CommitComputedStyles persists the element's current computed
	// style as inline style, the host-API equivalent of
	// Animation.commitStyles(). Returns an error if the element (or an
	// ancestor) is not rendered.
	CommitComputedStyles(properties []string) error
}

// Rect is a minimal bounding-box, enough for effects that need layout
// measurements (spec §1 Non-goals: the scheduler asks for it, doesn't
// compute it).
type Rect struct {
	X, Y, Width, Height float64
}

// Keyframe is one Web Animations keyframe dictionary: CSS property name
// to value. A nil/empty Offset key is implicit/evenly spaced, matching
// the host API; an explicit "offset" entry pins it.
type Keyframe map[string]string

// CompositeMode mirrors the Web Animations `composite` option (spec §3
// modifiers.composite).
type CompositeMode int

const (
	CompositeReplace CompositeMode = iota
	CompositeAccumulate
	CompositeAdd
)

func (c CompositeMode) String() string {
	switch c {
	case CompositeAccumulate:
		return "accumulate"
	case CompositeAdd:
		return "add"
	default:
		return "replace"
	}
}

// FrameMutator is a per-frame callback driven by the host's frame tick,
// used when an effect cannot be expressed as keyframes (spec §4.2,
// generateRafMutators). progress is the fractional progress through the
// *whole* clip-animation phase set in the effective playback direction.
type FrameMutator func(progress float64)

// AnimationOptions configures a HostAnimation at creation time. Delay,
// Duration and EndDelay are unscaled (playback-rate-independent)
// lengths; Host.Animate composes them into the host animation's own
// timing model.
type AnimationOptions struct {
	Delay     time.Duration
	Duration  time.Duration
	EndDelay  time.Duration
	Easing    string // named easing, looked up via pkg/easing
	Composite CompositeMode
	Reverse   bool // true selects the mirrored/"reverse" direction
}

// HostAnimation is the scheduler's view of one running host animation —
// either a real Web Animations API Animation object (keyframe modes) or
// a host-frame-tick-driven virtual clock feeding a FrameMutator (mutator
// modes). ClipAnimation owns exactly two: one forward, one backward.
type HostAnimation interface {
	Play()
	Pause()
	Finish()
	Cancel()
	SetPlaybackRate(rate float64)
	// CurrentTime is this animation's own elapsed time since its local
	// zero point (the start of its delay phase), honoring pause state
	// and playback rate — i.e. exactly what the real Animation.currentTime
	// would report.
	CurrentTime() time.Duration
	// NotifyAt arranges for cb to run once CurrentTime crosses `at`.
	// Pending callbacks fire in ascending `at` order (registration order
	// among equal `at`); if `at` has already been crossed, cb runs
	// synchronously inside the NotifyAt call — spec §4.1
	// blocking/time-promise semantics.
	NotifyAt(at time.Duration, cb func())
	// SetKeyframes swaps the effect's keyframes (deferred-generation
	// clips, spec §4.2 computeNow=false).
	SetKeyframes(kf []Keyframe)
}

// Host is the facade's binding to the browser runtime. Exactly one
// concrete Host exists per process: pkg/hostjs.New() in production,
// an in-memory fake in tests.
type Host interface {
	// Animate creates a keyframe-mode HostAnimation.
	Animate(el Element, frames []Keyframe, opts AnimationOptions) HostAnimation
	// AnimateMutator creates a mutator-mode HostAnimation: no keyframes,
	// just a per-frame callback driven by the host's own frame tick.
	AnimateMutator(el Element, mutator FrameMutator, opts AnimationOptions) HostAnimation
	// Now returns the host's monotonic clock, used only for diagnostics
	// (debug snapshots) — never for scheduling decisions, which always
	// go through HostAnimation.CurrentTime/NotifyAt.
	Now() time.Time
}
