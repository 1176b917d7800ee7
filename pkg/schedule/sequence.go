package schedule

import (
	"context"
	"sort"
	"time"
)

// group is a cohort of clips that launch together in forward playback:
// a run of clips chained by startsWithPrevious/startsNextClipToo (spec
// §4.3 "commit algorithm" forwardGroupings). The three order fields are
// computed once at commit time and drive runGroup's ordering guarantees.
type group struct {
	clips []*AnimClip

	// activeFinishOrder is clips sorted ascending by ActiveFinishTime.
	activeFinishOrder []*AnimClip
	// endDelayFinishOrder is clips sorted ascending by FullFinishTime.
	endDelayFinishOrder []*AnimClip
	// backwardActiveFinishOrder is endDelayFinishOrder reversed, then
	// stably sorted ascending by ActiveStartTime (spec §4.3).
	backwardActiveFinishOrder []*AnimClip
}

// AnimSequence (C3) commits a fixed ordering/grouping over its clips and
// drives them forward or backward as cohorts.
type AnimSequence struct {
	Tag         string
	Description string

	clips          []*AnimClip
	groupings      []group
	committed      bool

	ParentTimeline *AnimTimeline // weak back-reference

	playbackRateOwn float64

	wasPlayed  bool
	wasRewound bool
	inProgress bool
	skippingOn bool
	autoplays  bool
	// autoplaysNextSequence marks that this sequence's own completion
	// chains the timeline into the next step, independent of whether the
	// next sequence itself carries autoplays (spec §4.4 "autoplay
	// chain": prev.autoplaysNextSequence ∨ next.autoplays).
	autoplaysNextSequence bool

	OnStartForward  func(*AnimSequence)
	OnFinishForward func(*AnimSequence)
	OnStartBackward func(*AnimSequence)
	OnFinishBackward func(*AnimSequence)

	log Logger
}

func NewAnimSequence(tag, description string, log Logger) *AnimSequence {
	return &AnimSequence{Tag: tag, Description: description, playbackRateOwn: 1, log: log}
}

// SetAutoplays marks whether a timeline Step that has just loaded this
// sequence as the next one to run (forward: its predecessor finished
// playing; backward: its successor finished rewinding) continues
// straight into it without waiting for another Step call, regardless of
// the neighbour's autoplaysNextSequence flag (spec §4.4 "autoplay
// chain").
func (s *AnimSequence) SetAutoplays(autoplay bool) *AnimSequence {
	s.autoplays = autoplay
	return s
}

// SetAutoplaysNextSequence marks whether this sequence finishing chains
// the timeline into the next step regardless of the next sequence's own
// autoplays flag (spec §4.4 "autoplay chain"): the boundary continues
// when either side asks for it.
func (s *AnimSequence) SetAutoplaysNextSequence(autoplay bool) *AnimSequence {
	s.autoplaysNextSequence = autoplay
	return s
}

func (s *AnimSequence) indexInTimeline() int {
	if s.ParentTimeline == nil {
		return -1
	}
	for i, seq := range s.ParentTimeline.sequences {
		if seq == s {
			return i
		}
	}
	return -1
}

// AddClips appends clips, each of which must not already belong to a
// sequence (spec §7 InvalidChildError), and invalidates any prior
// commit so the next play recomputes groupings and schedule.
func (s *AnimSequence) AddClips(clips ...*AnimClip) error {
	if s.ParentTimeline != nil && s.ParentTimeline.isLocked() {
		return &LockedOperationError{Operation: "AddClips"}
	}
	for _, c := range clips {
		if c.ParentSequence != nil {
			return &InvalidChildError{Reason: "clip already belongs to a sequence"}
		}
		if s.wasPlayed && !s.wasRewound {
			return &InvalidChildError{Reason: "sequence is forward-finished; rewind before adding clips"}
		}
	}
	for _, c := range clips {
		c.ParentSequence = s
		c.ParentTimeline = s.ParentTimeline
		s.clips = append(s.clips, c)
	}
	s.committed = false
	return nil
}

// Commit computes (or recomputes, if clips changed since the last
// commit) every clip's ScheduledTimes and the forward groupings, without
// playing anything. Play/Rewind call it automatically; exposed directly
// so callers can inspect the resulting schedule beforehand.
func (s *AnimSequence) Commit() { s.commit() }

// commit computes each clip's ScheduledTimes and the forward groupings
// (spec §4.3). A clip joins the current group when it has
// StartsWithPrevious or the clip before it has StartsNextClipToo; its
// start then anchors to the immediately-preceding clip's
// ActiveStartTime (resolved Open Question), so it launches alongside
// that clip once its delay phase has elapsed. A clip that begins a new
// group starts at the latest FullFinishTime reached so far, i.e. once
// every clip of the previous group has fully finished.
func (s *AnimSequence) commit() {
	if s.committed {
		return
	}
	var groupFullFinish, prevActiveStart int64
	groups := make([]group, 0, len(s.clips))
	var cur *group
	for i, c := range s.clips {
		joinsGroup := i > 0 && (c.Config.Sequencing.StartsWithPrevious || s.clips[i-1].Config.Sequencing.StartsNextClipToo)
		var fullStart int64
		if joinsGroup {
			fullStart = prevActiveStart
		} else {
			fullStart = groupFullFinish
		}
		activeStart := fullStart + int64(c.Config.Timing.Delay)
		activeFinish := activeStart + int64(c.Config.Timing.Duration)
		fullFinish := activeFinish + int64(c.Config.Timing.EndDelay)
		c.Schedule.FullStartTime = time.Duration(fullStart)
		c.Schedule.ActiveStartTime = time.Duration(activeStart)
		c.Schedule.ActiveFinishTime = time.Duration(activeFinish)
		c.Schedule.FullFinishTime = time.Duration(fullFinish)

		if !joinsGroup || cur == nil {
			groups = append(groups, group{})
			cur = &groups[len(groups)-1]
		}
		cur.clips = append(cur.clips, c)

		if fullFinish > groupFullFinish {
			groupFullFinish = fullFinish
		}
		prevActiveStart = activeStart
	}
	for i := range groups {
		g := &groups[i]
		g.activeFinishOrder = activeFinishOrderOf(g.clips)
		g.endDelayFinishOrder = endDelayFinishOrderOf(g.clips)
		g.backwardActiveFinishOrder = backwardActiveFinishOrderOf(g.endDelayFinishOrder)
	}
	s.groupings = groups
	s.committed = true
}

// activeFinishOrderOf sorts clips ascending by ActiveFinishTime (spec
// §4.3 commit algorithm) — the order forward active-phase completions
// are pinned to by runGroup's integrity blocks.
func activeFinishOrderOf(clips []*AnimClip) []*AnimClip {
	ordered := append([]*AnimClip(nil), clips...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Schedule.ActiveFinishTime < ordered[j].Schedule.ActiveFinishTime
	})
	return ordered
}

// endDelayFinishOrderOf sorts clips ascending by FullFinishTime (spec
// §4.3 commit algorithm).
func endDelayFinishOrderOf(clips []*AnimClip) []*AnimClip {
	ordered := append([]*AnimClip(nil), clips...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Schedule.FullFinishTime < ordered[j].Schedule.FullFinishTime
	})
	return ordered
}

// backwardActiveFinishOrderOf reverses endDelayOrder and then stably
// re-sorts ascending by ActiveStartTime (spec §4.3 commit algorithm),
// pinning the order in which active-phase rewinds complete.
func backwardActiveFinishOrderOf(endDelayOrder []*AnimClip) []*AnimClip {
	reversed := make([]*AnimClip, len(endDelayOrder))
	for i, c := range endDelayOrder {
		reversed[len(endDelayOrder)-1-i] = c
	}
	sort.SliceStable(reversed, func(i, j int) bool {
		return reversed[i].Schedule.ActiveStartTime < reversed[j].Schedule.ActiveStartTime
	})
	return reversed
}

func (s *AnimSequence) Play(ctx context.Context) error {
	if s.ParentTimeline != nil {
		return Annotate(&ChildPlaybackError{Operation: "play"}, Location{SequenceTag: s.Tag})
	}
	return s.playForward(ctx)
}

func (s *AnimSequence) Rewind(ctx context.Context) error {
	if s.ParentTimeline != nil {
		return Annotate(&ChildPlaybackError{Operation: "rewind"}, Location{SequenceTag: s.Tag})
	}
	return s.playBackward(ctx)
}

// playForward launches each grouping in commit order, waiting for every
// clip in a grouping to fully finish (active + endDelay phases) before
// the next grouping launches (spec §4.3 "forward playback algorithm").
func (s *AnimSequence) playForward(ctx context.Context) error {
	s.commit()
	s.inProgress = true
	defer func() { s.inProgress = false }()

	if s.OnStartForward != nil {
		s.OnStartForward(s)
	}

	rate := s.effectiveRate()
	for _, g := range s.groupings {
		for _, c := range g.clips {
			c.UseCompoundedPlaybackRate(rate)
		}
		if err := s.runGroup(ctx, g, Forward); err != nil {
			return err
		}
	}

	s.wasPlayed = true
	s.wasRewound = false
	if s.OnFinishForward != nil {
		s.OnFinishForward(s)
	}
	return nil
}

// playBackward unwinds groupings in reverse commit order (spec §4.3
// "backward playback algorithm"). Each grouping's clips reverse
// concurrently; groupings wait on each other the same way forward does,
// so a clip never starts rewinding before everything that forward-
// depended on it has unwound.
func (s *AnimSequence) playBackward(ctx context.Context) error {
	s.commit()
	s.inProgress = true
	defer func() { s.inProgress = false }()

	if s.OnStartBackward != nil {
		s.OnStartBackward(s)
	}

	rate := s.effectiveRate()
	for i := len(s.groupings) - 1; i >= 0; i-- {
		g := s.groupings[i]
		for _, c := range g.clips {
			c.UseCompoundedPlaybackRate(rate)
		}
		if err := s.runGroup(ctx, g, Backward); err != nil {
			return err
		}
	}

	s.wasRewound = true
	s.wasPlayed = false
	if s.OnFinishBackward != nil {
		s.OnFinishBackward(s)
	}
	return nil
}

func (s *AnimSequence) runGroup(ctx context.Context, g group, dir Direction) error {
	if dir == Forward {
		return s.runGroupForward(ctx, g)
	}
	return s.runGroupBackward(ctx, g)
}

// runGroupForward is the composite playback scheduler's forward half
// (spec §4.3 "Forward playback"). It (1) attaches an integrity block on
// every clip but the first of activeFinishOrder, pinning its active-
// phase end to its activeFinishOrder predecessor's, so that the §8
// ordering guarantee holds regardless of host/goroutine jitter, then
// (2) launches clips in insertion order, each waiting on a time promise
// at its predecessor's beginning-of-active-phase before launching.
func (s *AnimSequence) runGroupForward(ctx context.Context, g group) error {
	order := g.activeFinishOrder
	for j := 1; j < len(order); j++ {
		predecessorDone, err := order[j-1].OnActiveFinish(Forward)
		if err != nil {
			return err
		}
		if err := order[j].AddIntegrityBlocks(Forward, ActivePhase, Position{Kind: PositionEnd}, predecessorDone); err != nil {
			return err
		}
	}

	errCh := make(chan error, len(g.clips))
	var prevActiveBegin *Future[struct{}]
	for _, c := range g.clips {
		c := c
		wait := prevActiveBegin
		activeBegin, err := c.TimePromise(Forward, ActivePhase, Position{Kind: PositionBeginning})
		if err != nil {
			return err
		}
		prevActiveBegin = activeBegin
		go func() {
			if wait != nil {
				if _, err := wait.Wait(ctx); err != nil {
					errCh <- err
					return
				}
			}
			errCh <- c.run(ctx, Forward, s.skippingOn)
		}()
	}
	var firstErr error
	for range g.clips {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// runGroupBackward is the composite playback scheduler's backward half
// (spec §4.3 "Backward playback"). A pre-pass attaches integrity blocks
// on backwardActiveFinishOrder mirroring runGroupForward's pinning, then
// clips launch last-to-first: the group's last clip rewinds immediately,
// each earlier clip waits on a computed intersection with the clip
// launched just before it.
func (s *AnimSequence) runGroupBackward(ctx context.Context, g group) error {
	order := g.backwardActiveFinishOrder
	for j := 1; j < len(order); j++ {
		predecessorDone, err := order[j-1].OnActiveFinish(Backward)
		if err != nil {
			return err
		}
		if err := order[j].AddIntegrityBlocks(Backward, ActivePhase, Position{Kind: PositionEnd}, predecessorDone); err != nil {
			return err
		}
	}

	n := len(g.clips)
	waits := make([]*Future[struct{}], n)
	for i := n - 2; i >= 0; i-- {
		cur := g.clips[i]
		next := g.clips[i+1]
		if cur.Schedule.FullFinishTime > next.Schedule.FullStartTime {
			at := cur.Schedule.FullFinishTime - next.Schedule.FullStartTime
			fut, err := next.TimePromiseAt(Backward, at)
			if err != nil {
				return err
			}
			waits[i] = fut
		} else {
			fut, err := next.TimePromise(Backward, DelayPhase, Position{Kind: PositionBeginning})
			if err != nil {
				return err
			}
			waits[i] = fut
		}
	}

	errCh := make(chan error, n)
	for i := n - 1; i >= 0; i-- {
		c := g.clips[i]
		wait := waits[i]
		go func() {
			if wait != nil {
				if _, err := wait.Wait(ctx); err != nil {
					errCh <- err
					return
				}
			}
			errCh <- c.run(ctx, Backward, s.skippingOn)
		}()
	}
	var firstErr error
	for range g.clips {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *AnimSequence) effectiveRate() float64 {
	rate := s.playbackRateOwn
	if rate == 0 {
		rate = 1
	}
	if s.ParentTimeline != nil {
		rate *= s.ParentTimeline.effectiveRate()
	}
	return rate
}

func (s *AnimSequence) pauseInternal() {
	for _, c := range s.clips {
		if c.Status.InProgress {
			c.pauseInternal()
		}
	}
}

func (s *AnimSequence) unpauseInternal() {
	for _, c := range s.clips {
		if c.Status.InProgress {
			c.unpauseInternal()
		}
	}
}

func (s *AnimSequence) Pause() error {
	if s.ParentTimeline != nil {
		return Annotate(&ChildPlaybackError{Operation: "pause"}, Location{SequenceTag: s.Tag})
	}
	s.pauseInternal()
	return nil
}

func (s *AnimSequence) Unpause() error {
	if s.ParentTimeline != nil {
		return Annotate(&ChildPlaybackError{Operation: "unpause"}, Location{SequenceTag: s.Tag})
	}
	s.unpauseInternal()
	return nil
}

// Finish skips every in-progress clip straight to the end of its
// current direction and turns skippingOn on, so clips launched after the
// call, in the current grouping or in groupings still to come, also
// finish as soon as they start (spec §4.3/§4.4 "finish()").
func (s *AnimSequence) Finish() {
	s.skippingOn = true
	for _, c := range s.clips {
		if c.Status.InProgress && c.anim != nil {
			c.anim.Finish()
		}
	}
}

func (s *AnimSequence) IsFinished() bool     { return s.wasPlayed && !s.wasRewound }
func (s *AnimSequence) WasPlayed() bool      { return s.wasPlayed }
func (s *AnimSequence) WasRewound() bool     { return s.wasRewound }
func (s *AnimSequence) FullyFinished() bool  { return s.wasPlayed && !s.wasRewound && !s.inProgress }
func (s *AnimSequence) IsInProgress() bool   { return s.inProgress }
