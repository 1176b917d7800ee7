package schedule

import (
	"context"
	"fmt"
	"regexp"
)

// SearchDirection picks where JumpToSequenceTag starts looking for a
// matching tag and which way it scans (spec §4.4 "Jump").
type SearchDirection int

const (
	// SearchForward scans from the current step forward to the end.
	SearchForward SearchDirection = iota
	// SearchBackward scans from just behind the current step back to the
	// beginning.
	SearchBackward
	// SearchForwardFromBeginning scans the whole timeline from index 0.
	SearchForwardFromBeginning
	// SearchBackwardFromEnd scans the whole timeline from the last index.
	SearchBackwardFromEnd
)

// AutoplayDetection controls whether a jump keeps stepping past its
// nominal target once reached, consulting the same autoplay predicate
// Step does (spec §4.4 "Jump").
type AutoplayDetection int

const (
	// AutoplayDetectionNone stops exactly at the computed target.
	AutoplayDetectionNone AutoplayDetection = iota
	// AutoplayDetectionForward continues stepping forward while the
	// autoplay chain predicate holds.
	AutoplayDetectionForward
	// AutoplayDetectionBackward continues stepping backward while the
	// autoplay chain predicate holds.
	AutoplayDetectionBackward
)

// JumpOptions configures AnimTimeline.JumpToSequenceTag/JumpToPosition
// (spec §4.4 "Jump").
type JumpOptions struct {
	// SearchDirection picks where tag search starts and which way it
	// scans. Ignored by JumpToPosition.
	SearchDirection SearchDirection
	// SearchOffset shifts the tag search's starting index. Ignored by
	// JumpToPosition.
	SearchOffset int
	// TargetOffset shifts the final landing step index, applied after
	// the tag (or position) has been resolved to an index.
	TargetOffset int
	// AutoplayDetection continues stepping past the resolved target
	// while the relevant autoplay predicate holds.
	AutoplayDetection AutoplayDetection
}

// TimelineSnapshot is what gets pushed to DebugSink subscribers on every
// structural or playback change (spec §6 "debug-mode state
// broadcasting").
type TimelineSnapshot struct {
	TimelineName string
	StepNumber   int
	SequenceTags []string
	Paused       bool
	PlaybackRate float64
}

// DebugSink receives a TimelineSnapshot after every state-changing
// operation when the timeline's debug mode is enabled.
type DebugSink interface {
	Broadcast(TimelineSnapshot)
}

// TimelineConfig is the façade-supplied configuration for one timeline
// (spec §4.4).
type TimelineConfig struct {
	TimelineName string
	DebugMode    bool
}

// AnimTimeline (C4) is an ordered list of sequences stepped through one
// at a time, forward or backward, with an independent playback rate
// broadcast down to every clip beneath it.
type AnimTimeline struct {
	Config TimelineConfig

	sequences []*AnimSequence

	// stepNumber counts completed forward steps: 0 means no sequence has
	// played yet; N means sequences[0..N-1] have all completed forward.
	stepNumber int

	playbackRateOwn float64
	paused          bool
	locked          bool // true while a step/jump is actively running

	debugSink DebugSink
	log       Logger
}

func NewAnimTimeline(cfg TimelineConfig, log Logger) *AnimTimeline {
	return &AnimTimeline{Config: cfg, playbackRateOwn: 1, log: log}
}

func (t *AnimTimeline) SetDebugSink(sink DebugSink) { t.debugSink = sink }

func (t *AnimTimeline) isLocked() bool { return t.locked }

func (t *AnimTimeline) effectiveRate() float64 {
	rate := t.playbackRateOwn
	if rate == 0 {
		rate = 1
	}
	return rate
}

func (t *AnimTimeline) StepNumber() int { return t.stepNumber }

// AddSequences appends sequences, each of which must not already belong
// to a timeline (spec §7 InvalidChildError); refused while locked.
func (t *AnimTimeline) AddSequences(seqs ...*AnimSequence) error {
	if t.locked {
		return &LockedOperationError{Operation: "AddSequences"}
	}
	for _, s := range seqs {
		if s.ParentTimeline != nil {
			return &InvalidChildError{Reason: "sequence already belongs to a timeline"}
		}
	}
	for _, s := range seqs {
		s.ParentTimeline = t
		for _, c := range s.clips {
			c.ParentTimeline = t
		}
		t.sequences = append(t.sequences, s)
	}
	t.broadcast()
	return nil
}

// RemoveSequence drops the sequence at index i. Removing a sequence
// before index stepNumber (one that has already played) would rewrite
// history, which is refused (spec §7 TimeParadoxError).
func (t *AnimTimeline) RemoveSequence(i int) error {
	if t.locked {
		return &LockedOperationError{Operation: "RemoveSequence"}
	}
	if i < 0 || i >= len(t.sequences) {
		return fmt.Errorf("sequence index %d out of range", i)
	}
	if i < t.stepNumber {
		return &TimeParadoxError{Operation: "RemoveSequence"}
	}
	removed := t.sequences[i]
	removed.ParentTimeline = nil
	t.sequences = append(t.sequences[:i], t.sequences[i+1:]...)
	t.broadcast()
	return nil
}

// Step plays (dir == forward) or rewinds (dir == backward) exactly one
// sequence, then keeps going in the same direction for as long as the
// autoplay chain predicate described on stepOnce holds (spec §4.4
// "autoplay chain").
func (t *AnimTimeline) Step(ctx context.Context, dir Direction) error {
	if t.locked {
		return &LockedOperationError{Operation: "Step"}
	}
	t.locked = true
	defer func() { t.locked = false; t.broadcast() }()

	for {
		advanced, autoplay, err := t.stepOnce(ctx, dir)
		if err != nil {
			return err
		}
		if !advanced || !autoplay {
			return nil
		}
	}
}

// stepOnce runs a single sequence and reports whether the step boundary
// it just crossed chains into another step in the same direction. The
// autoplay chain predicate reads both sides of the boundary: the
// sequence that just completed may carry autoplaysNextSequence, or the
// sequence about to load may carry autoplays — either is enough (spec
// §4.4 "Step": `prev.autoplaysNextSequence ∨ next.autoplays`).
func (t *AnimTimeline) stepOnce(ctx context.Context, dir Direction) (advanced, autoplay bool, err error) {
	if dir == Forward {
		if t.stepNumber >= len(t.sequences) {
			return false, false, nil
		}
		seq := t.sequences[t.stepNumber]
		if err := seq.playForward(ctx); err != nil {
			return false, false, err
		}
		t.stepNumber++
		chain := false
		if t.stepNumber < len(t.sequences) {
			next := t.sequences[t.stepNumber]
			chain = seq.autoplaysNextSequence || next.autoplays
		}
		return true, chain, nil
	}

	if t.stepNumber <= 0 {
		return false, false, nil
	}
	seq := t.sequences[t.stepNumber-1]
	if err := seq.playBackward(ctx); err != nil {
		return false, false, err
	}
	t.stepNumber--
	chain := false
	if t.stepNumber > 0 {
		prev := t.sequences[t.stepNumber-1]
		chain = seq.autoplaysNextSequence || prev.autoplays
	}
	return true, chain, nil
}

// findTagIndex locates the sequence matching pattern according to
// opts.SearchDirection/SearchOffset (spec §4.4 "Jump" tag search).
// pattern is tried as a regexp first; if it fails to compile, it falls
// back to an exact tag match.
func (t *AnimTimeline) findTagIndex(pattern string, opts JumpOptions) (int, error) {
	re, reErr := regexp.Compile(pattern)
	matches := func(tag string) bool {
		if reErr == nil {
			return re.MatchString(tag)
		}
		return tag == pattern
	}

	n := len(t.sequences)
	switch opts.SearchDirection {
	case SearchForwardFromBeginning:
		for i := 0; i < n; i++ {
			if matches(t.sequences[i].Tag) {
				return i, nil
			}
		}
	case SearchBackwardFromEnd:
		for i := n - 1; i >= 0; i-- {
			if matches(t.sequences[i].Tag) {
				return i, nil
			}
		}
	case SearchBackward:
		start := t.stepNumber - 1 + opts.SearchOffset
		if start >= n {
			start = n - 1
		}
		for i := start; i >= 0; i-- {
			if matches(t.sequences[i].Tag) {
				return i, nil
			}
		}
	default: // SearchForward
		start := t.stepNumber + opts.SearchOffset
		if start < 0 {
			start = 0
		}
		for i := start; i < n; i++ {
			if matches(t.sequences[i].Tag) {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("no sequence tag matching %q", pattern)
}

// JumpToSequenceTag fast-forwards or rewinds, skipping every intervening
// sequence straight to its finished state, until the tagged sequence has
// just finished playing (or, if already past it, until every later
// sequence has been rewound, leaving the tagged one as the last played)
// — spec §4.4 "jump".
func (t *AnimTimeline) JumpToSequenceTag(ctx context.Context, tag string, opts JumpOptions) error {
	idx, err := t.findTagIndex(tag, opts)
	if err != nil {
		return err
	}
	return t.jumpToStepNumber(ctx, idx+1+opts.TargetOffset, opts)
}

// JumpToPosition jumps to the timeline state immediately after the
// sequence at index seqIndex (0-based) has finished forward.
func (t *AnimTimeline) JumpToPosition(ctx context.Context, seqIndex int, opts JumpOptions) error {
	return t.jumpToStepNumber(ctx, seqIndex+1+opts.TargetOffset, opts)
}

func (t *AnimTimeline) jumpToStepNumber(ctx context.Context, target int, opts JumpOptions) error {
	if t.locked {
		return &LockedOperationError{Operation: "Jump"}
	}
	if target < 0 || target > len(t.sequences) {
		return fmt.Errorf("jump target %d out of range", target)
	}
	t.locked = true
	defer func() { t.locked = false; t.broadcast() }()

	wasPaused := t.paused
	if wasPaused {
		_ = t.Unpause()
	}
	prevSkipping := make([]bool, len(t.sequences))
	for i, s := range t.sequences {
		prevSkipping[i] = s.skippingOn
		s.skippingOn = true
	}
	restore := func() {
		for i, s := range t.sequences {
			s.skippingOn = prevSkipping[i]
		}
		if wasPaused {
			_ = t.Pause()
		}
	}

	for t.stepNumber != target {
		dir := Forward
		if target < t.stepNumber {
			dir = Backward
		}
		if _, _, err := t.stepOnce(ctx, dir); err != nil {
			restore()
			return err
		}
	}

	if opts.AutoplayDetection != AutoplayDetectionNone {
		dir := Forward
		if opts.AutoplayDetection == AutoplayDetectionBackward {
			dir = Backward
		}
		for {
			advanced, autoplay, err := t.stepOnce(ctx, dir)
			if err != nil {
				restore()
				return err
			}
			if !advanced || !autoplay {
				break
			}
		}
	}

	restore()
	return nil
}

func (t *AnimTimeline) Pause() error {
	if t.paused {
		return nil
	}
	t.paused = true
	for _, s := range t.sequences {
		if s.inProgress {
			s.pauseInternal()
		}
	}
	t.broadcast()
	return nil
}

func (t *AnimTimeline) Unpause() error {
	if !t.paused {
		return nil
	}
	t.paused = false
	for _, s := range t.sequences {
		if s.inProgress {
			s.unpauseInternal()
		}
	}
	t.broadcast()
	return nil
}

func (t *AnimTimeline) pauseInternal() { _ = t.Pause() }

// ToggleSkipping flips whether every future step/jump fast-forwards its
// sequences to completion immediately rather than animating.
func (t *AnimTimeline) ToggleSkipping() bool {
	skipping := false
	for _, s := range t.sequences {
		skipping = !s.skippingOn
		s.skippingOn = skipping
	}
	return skipping
}

// SetPlaybackRate broadcasts a new own-rate down through every sequence
// and in-progress clip, compounding with each level's own rate (spec
// §4.4 "playback-rate broadcast").
func (t *AnimTimeline) SetPlaybackRate(rate float64) {
	t.playbackRateOwn = rate
	for _, s := range t.sequences {
		if !s.inProgress {
			continue
		}
		effective := s.effectiveRate()
		for _, c := range s.clips {
			if c.Status.InProgress {
				c.UseCompoundedPlaybackRate(effective)
			}
		}
	}
	t.broadcast()
}

// FinishInProgressSequences skips every currently-running sequence to
// the end of its current direction without advancing stepNumber further
// than that sequence's own completion (spec §4.4 "finish()").
func (t *AnimTimeline) FinishInProgressSequences() {
	for _, s := range t.sequences {
		if s.inProgress {
			s.Finish()
		}
	}
}

func (t *AnimTimeline) broadcast() {
	if t.debugSink == nil || !t.Config.DebugMode {
		return
	}
	tags := make([]string, len(t.sequences))
	for i, s := range t.sequences {
		tags[i] = s.Tag
	}
	t.debugSink.Broadcast(TimelineSnapshot{
		TimelineName: t.Config.TimelineName,
		StepNumber:   t.stepNumber,
		SequenceTags: tags,
		Paused:       t.paused,
		PlaybackRate: t.playbackRateOwn,
	})
}
