package schedule

import (
	"context"
	"fmt"
	"time"
)

// Category is the closed set of clip categories (spec §3). Categories
// are modeled as a closed tagged variant (spec §9 "Dynamic dispatch over
// categories") rather than open inheritance: each resolves to a
// categoryBehavior implementation in category.go.
type Category int

const (
	Entrance Category = iota
	Exit
	Emphasis
	Motion
	Transition
	Scroller
	ConnectorSetter
	ConnectorEntrance
	ConnectorExit
)

func (c Category) String() string {
	switch c {
	case Entrance:
		return "Entrance"
	case Exit:
		return "Exit"
	case Emphasis:
		return "Emphasis"
	case Motion:
		return "Motion"
	case Transition:
		return "Transition"
	case Scroller:
		return "Scroller"
	case ConnectorSetter:
		return "ConnectorSetter"
	case ConnectorEntrance:
		return "ConnectorEntrance"
	case ConnectorExit:
		return "ConnectorExit"
	default:
		return "Unknown"
	}
}

// GeneratorMode selects which of the four effect-generator shapes a
// clip's bank entry uses (spec §4.2).
type GeneratorMode int

const (
	ModeKeyframes GeneratorMode = iota
	ModeKeyframeGenerator
	ModeMutator
	ModeMutatorGenerator
)

// HideType controls which recognized hide class an Entrance/Exit clip
// uses (spec §4.2 hideNowType/exitType).
type HideType int

const (
	HideNone HideType = iota
	HideDisplayNone
	HideVisibilityHidden
)

// ClassModifiers are the CSS classes added/removed at phase boundaries
// (spec §3 modifiers.cssClasses).
type ClassModifiers struct {
	ToAddOnStart    []string
	ToAddOnFinish   []string
	ToRemoveOnStart []string
	ToRemoveOnFinish []string
}

// Modifiers bundles the non-timing clip config (spec §3 modifiers).
type Modifiers struct {
	CSSClasses              ClassModifiers
	Composite               CompositeMode
	CommitsStyles           bool
	CommitStylesForcefully bool
}

// SequencingFlags control intra-sequence parallelism grouping (spec §3,
// §4.3 commit algorithm).
type SequencingFlags struct {
	StartsWithPrevious bool
	StartsNextClipToo  bool
}

// Timing is a clip's timing config (spec §3).
type Timing struct {
	Delay        time.Duration
	Duration     time.Duration
	EndDelay     time.Duration
	Easing       string
	PlaybackRate float64
}

// ClipConfig is what an author passes to a clip factory; zero values are
// filled in by category defaults, then the bank entry, per the
// precedence in spec §9 ("Effect bank extensibility").
type ClipConfig struct {
	Timing          Timing
	Modifiers       Modifiers
	Sequencing      SequencingFlags
	ComputeNow      bool
	HideNowType     HideType // Entrance only
	ExitType        HideType // Exit only
	RemoveInlineStylesOnFinish bool // Transition only
	PointTrackingEnabled       bool // Connector* only
}

// ScheduledTimes are derived by AnimSequence.commit (spec I4).
type ScheduledTimes struct {
	FullStartTime    time.Duration
	ActiveStartTime  time.Duration
	ActiveFinishTime time.Duration
	FullFinishTime   time.Duration
}

// ClipStatus mirrors spec §3 / invariant I6.
type ClipStatus struct {
	InProgress bool
	IsRunning  bool
	IsPaused   bool
}

// AnimClip (C2) binds a target element + effect + timing and drives one
// ClipAnimation through its phases.
type AnimClip struct {
	ID         string
	Category   Category
	EffectName string
	EffectArgs []interface{}
	Element    Element
	Connector  Connector // only set for ConnectorSetter/Entrance/Exit

	Config ClipConfig
	Mode   GeneratorMode

	ParentSequence *AnimSequence // weak back-reference, never owning
	ParentTimeline *AnimTimeline // weak back-reference, derived from ParentSequence

	Status   ClipStatus
	Schedule ScheduledTimes

	host     Host
	bank     EffectGenerator
	behavior categoryBehavior
	anim     *ClipAnimation

	// forward/backward keyframes, populated either at construction
	// (computeNow) or lazily at play-start (spec §4.2).
	forwardFrames  []Keyframe
	backwardFrames []Keyframe
	framesGenerated bool

	// category-specific scratch state
	rememberedHideClass string
	connectorStash      connectorStash

	log Logger
}

// newAnimClip constructs a clip not yet owned by any sequence. Called
// only by the root façade's category factories (facade.go).
func newAnimClip(id string, cat Category, el Element, effectName string, args []interface{}, cfg ClipConfig, mode GeneratorMode, bank EffectGenerator, host Host, log Logger) (*AnimClip, error) {
	if el == nil && cat != ConnectorSetter && cat != ConnectorEntrance && cat != ConnectorExit {
		return nil, &InvalidElementError{Reason: "target element is nil"}
	}
	c := &AnimClip{
		ID:         id,
		Category:   cat,
		EffectName: effectName,
		EffectArgs: args,
		Element:    el,
		Config:     cfg,
		Mode:       mode,
		host:       host,
		bank:       bank,
		log:        log,
	}
	if cat == ConnectorSetter || cat == ConnectorEntrance || cat == ConnectorExit {
		if conn, ok := el.(Connector); ok {
			c.Connector = conn
		}
	}
	c.behavior = behaviorFor(cat)
	if err := c.behavior.Initialize(c); err != nil {
		return nil, err
	}
	if c.Config.ComputeNow {
		if err := c.generateFrames(Forward); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *AnimClip) location() Location {
	loc := Location{ClipCategory: c.Category, ClipEffectName: c.EffectName}
	if c.Element != nil {
		loc.ElementOpeningTag = c.Element.OuterHTML()
	}
	if c.ParentSequence != nil {
		loc.SequenceIndex = c.ParentSequence.indexInTimeline()
		loc.SequenceTag = c.ParentSequence.Tag
		loc.SequenceDescription = c.ParentSequence.Description
	}
	if c.ParentTimeline != nil {
		loc.TimelineName = c.ParentTimeline.Config.TimelineName
		loc.StepNumber = c.ParentTimeline.StepNumber()
	}
	return loc
}

// generateFrames runs the bank's generator for direction dir, honoring
// the computeNow flag and the "backward falls back to forward if no
// backward generator" rule (spec §4.2).
func (c *AnimClip) generateFrames(dir Direction) error {
	switch c.Mode {
	case ModeKeyframes:
		if c.framesGenerated {
			return nil
		}
		fwd, bwd, err := c.bank.GenerateKeyframes(c)
		if err != nil {
			return err
		}
		c.forwardFrames = fwd
		c.backwardFrames = bwd
		c.framesGenerated = true
	case ModeKeyframeGenerator:
		fwdFn, bwdFn, err := c.bank.GenerateKeyframeGenerators(c)
		if err != nil {
			return err
		}
		if dir == Forward || c.forwardFrames == nil {
			c.forwardFrames = fwdFn()
		}
		if dir == Backward {
			if bwdFn != nil {
				c.backwardFrames = bwdFn()
			} else {
				c.backwardFrames = c.forwardFrames
			}
		}
		c.framesGenerated = true
	case ModeMutator, ModeMutatorGenerator:
		// handled directly by ClipAnimation via mutator functions; no
		// keyframes to generate.
		c.framesGenerated = true
	}
	return nil
}

// ComputeTween is the helper the spec (§4.2) exposes to mutator
// generators: `a + (b-a)*progress`.
func ComputeTween(a, b, progress float64) float64 {
	return a + (b-a)*progress
}

// ensureAnimation lazily builds the ClipAnimation the first time the
// clip is played, generating deferred (non-computeNow) frames for the
// requested direction first.
func (c *AnimClip) ensureAnimation(dir Direction) error {
	if !c.Config.ComputeNow {
		if err := c.generateFrames(dir); err != nil {
			return err
		}
	}
	if c.anim != nil {
		// Deferred keyframe generators were just re-run for dir; hand the
		// fresh frames to the already-built host animation.
		if !c.Config.ComputeNow && c.Mode == ModeKeyframeGenerator {
			if dir == Backward {
				c.anim.backward.SetKeyframes(c.backwardFrames)
			} else {
				c.anim.forward.SetKeyframes(c.forwardFrames)
			}
		}
		return nil
	}

	opts := AnimationOptions{
		Delay:     c.Config.Timing.Delay,
		Duration:  c.Config.Timing.Duration,
		EndDelay:  c.Config.Timing.EndDelay,
		Easing:    c.Config.Timing.Easing,
		Composite: c.Config.Modifiers.Composite,
	}

	switch c.Mode {
	case ModeMutator, ModeMutatorGenerator:
		fwdMut, bwdMut, err := c.resolveMutators()
		if err != nil {
			return err
		}
		c.anim = newClipAnimation(c.host, c.Element, nil, nil, fwdMut, bwdMut, opts)
	default:
		c.anim = newClipAnimation(c.host, c.Element, c.forwardFrames, c.backwardFrames, nil, nil, opts)
	}
	return nil
}

func (c *AnimClip) resolveMutators() (FrameMutator, FrameMutator, error) {
	if c.Mode == ModeMutator {
		return c.bank.GenerateRafMutators(c)
	}
	fwdFactory, bwdFactory, err := c.bank.GenerateRafMutatorGenerators(c)
	if err != nil {
		return nil, nil, err
	}
	if bwdFactory == nil {
		// newClipAnimation runs the forward mutator backward when no
		// backward one is given.
		return fwdFactory(), nil, nil
	}
	return fwdFactory(), bwdFactory(), nil
}

// Play starts (or resumes) the clip forward. Direct calls are only
// legal when the clip has no parent sequence (spec §7
// ChildPlaybackError); sequences call the unexported run method.
func (c *AnimClip) Play(ctx context.Context) error {
	if c.ParentSequence != nil {
		return Annotate(&ChildPlaybackError{Operation: "play"}, c.location())
	}
	return c.run(ctx, Forward, false)
}

// Rewind plays the clip backward. See Play for the ChildPlaybackError rule.
func (c *AnimClip) Rewind(ctx context.Context) error {
	if c.ParentSequence != nil {
		return Annotate(&ChildPlaybackError{Operation: "rewind"}, c.location())
	}
	return c.run(ctx, Backward, false)
}

func (c *AnimClip) Pause() error {
	if c.ParentSequence != nil {
		return Annotate(&ChildPlaybackError{Operation: "pause"}, c.location())
	}
	c.pauseInternal()
	return nil
}

func (c *AnimClip) Unpause() error {
	if c.ParentSequence != nil {
		return Annotate(&ChildPlaybackError{Operation: "unpause"}, c.location())
	}
	c.unpauseInternal()
	return nil
}

func (c *AnimClip) pauseInternal() {
	if c.anim != nil && c.Status.InProgress {
		c.anim.Pause()
		c.Status.IsRunning = false
		c.Status.IsPaused = true
	}
}

func (c *AnimClip) unpauseInternal() {
	if c.anim != nil && c.Status.InProgress {
		c.anim.Play()
		c.Status.IsRunning = true
		c.Status.IsPaused = false
	}
}

// run drives the clip through delay/active/endDelay for one direction,
// invoking category behavior hooks and CSS class side effects at the
// phase boundaries they belong to (spec §4.2).
//
// skip mirrors AnimSequence's skippingOn: the clip calls Finish on the
// host animation instead of Play, but every phase hook still fires in
// order before returning (spec §4.1 "Skipping").
func (c *AnimClip) run(ctx context.Context, dir Direction, skip bool) (err error) {
	if err = c.ensureAnimation(dir); err != nil {
		return Annotate(err, c.location())
	}
	c.anim.SetDirection(dir)
	c.Status.InProgress = true
	c.Status.IsRunning = true
	c.Status.IsPaused = false

	defer func() {
		c.Status.InProgress = false
		c.Status.IsRunning = false
		c.Status.IsPaused = false
		if err != nil {
			c.routeError(err)
		}
	}()

	if dir == Forward {
		if err = c.behavior.OnStartForward(c); err != nil {
			return err
		}
		c.applyClasses(c.Config.Modifiers.CSSClasses.ToAddOnStart, c.Config.Modifiers.CSSClasses.ToRemoveOnStart)
	} else {
		if err = c.behavior.OnStartBackward(c); err != nil {
			return err
		}
		c.applyClasses(c.Config.Modifiers.CSSClasses.ToRemoveOnFinish, c.Config.Modifiers.CSSClasses.ToAddOnFinish)
	}

	if skip {
		c.anim.Finish()
	} else {
		c.anim.Play()
	}

	if err = c.anim.Wait(ctx); err != nil {
		return err
	}

	if dir == Forward {
		c.applyClasses(c.Config.Modifiers.CSSClasses.ToAddOnFinish, c.Config.Modifiers.CSSClasses.ToRemoveOnFinish)
		if err = c.behavior.OnFinishForward(c); err != nil {
			return err
		}
		if c.Config.Modifiers.CommitsStyles {
			if err = c.commitStyles(); err != nil {
				return err
			}
		}
	} else {
		c.applyClasses(c.Config.Modifiers.CSSClasses.ToRemoveOnStart, c.Config.Modifiers.CSSClasses.ToAddOnStart)
		if err = c.behavior.OnFinishBackward(c); err != nil {
			return err
		}
	}
	return nil
}

func (c *AnimClip) applyClasses(toAdd, toRemove []string) {
	if c.Element == nil {
		return
	}
	if len(toRemove) > 0 {
		c.Element.ClassListRemove(toRemove...)
	}
	if len(toAdd) > 0 {
		c.Element.ClassListAdd(toAdd...)
	}
}

func (c *AnimClip) commitStyles() error {
	props := committableProperties(c.forwardFrames)
	if c.Element.IsRendered() {
		if err := c.Element.CommitComputedStyles(props); err != nil {
			return Annotate(&CommitStylesError{Reason: err.Error(), OuterHTML: c.Element.OuterHTML()}, c.location())
		}
		return nil
	}
	if !c.Config.Modifiers.CommitStylesForcefully {
		return Annotate(&CommitStylesError{Reason: "element not rendered and commitStylesForcefully is false", OuterHTML: c.Element.OuterHTML()}, c.location())
	}
	c.Element.ClassListAdd(forceOverrideClassName)
	err := c.Element.CommitComputedStyles(props)
	c.Element.ClassListRemove(forceOverrideClassName)
	if err != nil {
		return Annotate(&CommitStylesError{Reason: fmt.Sprintf("forceful commit also failed: %v", err), OuterHTML: c.Element.OuterHTML()}, c.location())
	}
	return nil
}

func committableProperties(frames []Keyframe) []string {
	seen := map[string]bool{}
	var props []string
	for _, kf := range frames {
		for prop := range kf {
			if prop == "offset" {
				continue
			}
			if !seen[prop] {
				seen[prop] = true
				props = append(props, prop)
			}
		}
	}
	return props
}

// routeError pauses the root of the clip's hierarchy and is itself
// routed on up by the caller (sequence/timeline) rejecting their own
// play/rewind futures — spec §7 "Propagation policy".
func (c *AnimClip) routeError(err error) {
	switch {
	case c.ParentTimeline != nil:
		c.ParentTimeline.pauseInternal()
	case c.ParentSequence != nil:
		c.ParentSequence.pauseInternal()
	default:
		c.pauseInternal()
	}
	if c.log != nil {
		c.log.Errorf("clip %s error routed to root: %v", c.ID, err)
	}
}

// UseCompoundedPlaybackRate applies parentRate (timeline rate * sequence
// rate) times the clip's own rate to the underlying host animation
// (spec §4.4 "Playback-rate broadcast").
func (c *AnimClip) UseCompoundedPlaybackRate(parentRate float64) {
	rate := c.Config.Timing.PlaybackRate
	if rate == 0 {
		rate = 1
	}
	if c.anim != nil {
		c.anim.SetPlaybackRate(parentRate * rate)
	}
}

// AddIntegrityBlocks exposes ClipAnimation.AddIntegrityBlocks for the
// sequence commit algorithm.
func (c *AnimClip) AddIntegrityBlocks(dir Direction, phase Phase, pos Position, awaitables ...Awaitable) error {
	if err := c.ensureAnimation(dir); err != nil {
		return err
	}
	return c.anim.AddIntegrityBlocks(dir, phase, pos, awaitables...)
}

// AddRoadblocks is the user-facing counterpart of AddIntegrityBlocks
// (spec §4.1).
func (c *AnimClip) AddRoadblocks(dir Direction, phase Phase, pos Position, awaitables ...Awaitable) error {
	if err := c.ensureAnimation(dir); err != nil {
		return err
	}
	return c.anim.AddRoadblocks(dir, phase, pos, awaitables...)
}

// TimePromise exposes ClipAnimation.GenerateTimePromise for external
// callers building their own roadblocks relative to this clip.
func (c *AnimClip) TimePromise(dir Direction, phase Phase, pos Position) (*Future[struct{}], error) {
	if err := c.ensureAnimation(dir); err != nil {
		return nil, err
	}
	return c.anim.GenerateTimePromise(dir, phase, pos)
}

// TimePromiseAt is TimePromise's raw-offset counterpart, used by the
// sequence commit algorithm's backward "computed intersection" rule
// (spec §4.3), which waits on an absolute point rather than a named
// phase position.
func (c *AnimClip) TimePromiseAt(dir Direction, at time.Duration) (*Future[struct{}], error) {
	if err := c.ensureAnimation(dir); err != nil {
		return nil, err
	}
	return c.anim.GenerateTimePromiseAt(dir, at), nil
}

// OnDelayFinish, OnActiveFinish, and OnEndDelayFinish are the named
// phase-boundary hooks spec §4.1 calls for: each returns a future
// resolved exactly once, when dir's playback crosses that phase's end.
// AnimSequence.runGroup uses OnActiveFinish to pin the commit
// algorithm's per-phase ordering guarantee (spec §4.3/§8).
func (c *AnimClip) OnDelayFinish(dir Direction) (*Future[struct{}], error) {
	return c.TimePromise(dir, DelayPhase, Position{Kind: PositionEnd})
}

func (c *AnimClip) OnActiveFinish(dir Direction) (*Future[struct{}], error) {
	return c.TimePromise(dir, ActivePhase, Position{Kind: PositionEnd})
}

func (c *AnimClip) OnEndDelayFinish(dir Direction) (*Future[struct{}], error) {
	return c.TimePromise(dir, EndDelayPhase, Position{Kind: PositionEnd})
}
