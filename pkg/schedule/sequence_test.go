package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/windrift/stagehand/pkg/schedule"
	"github.com/windrift/stagehand/pkg/schedule/schedulefakes"
)

func fadeBank() *schedule.EffectBank {
	bank := schedule.NewEffectBank()
	keyframes := &schedule.EffectBankEntry{
		Generator: &schedule.EffectGenerator{
			Mode: schedule.ModeKeyframes,
			Keyframes: func(c *schedule.AnimClip) ([]schedule.Keyframe, []schedule.Keyframe, error) {
				return []schedule.Keyframe{{"opacity": "0"}, {"opacity": "1"}},
					[]schedule.Keyframe{{"opacity": "1"}, {"opacity": "0"}}, nil
			},
		},
	}
	bank.Register(schedule.Emphasis, "fade-in", keyframes)
	bank.Register(schedule.Entrance, "fade-in", keyframes)
	return bank
}

func newTestFactories(t *testing.T) (*schedule.ClipFactories, *schedulefakes.FakeHost) {
	t.Helper()
	host := schedulefakes.NewFakeHost()
	root := schedule.NewRoot(fadeBank(), host, nil)
	factories, err := root.CreateAnimationClipFactories()
	if err != nil {
		t.Fatalf("CreateAnimationClipFactories: %v", err)
	}
	return factories, host
}

func durPtr(d time.Duration) *time.Duration { return &d }

func newEmphasisClip(t *testing.T, f *schedule.ClipFactories, delay, duration time.Duration) *schedule.AnimClip {
	t.Helper()
	el := schedulefakes.NewFakeElement("div")
	clip, err := f.Emphasis(el, "fade-in", nil, &schedule.PartialClipConfig{
		Delay:    durPtr(delay),
		Duration: durPtr(duration),
	})
	if err != nil {
		t.Fatalf("Emphasis factory: %v", err)
	}
	return clip
}

// driveToCompletion repeatedly advances the fake host's clock in small
// steps until the play/rewind goroutine reports completion, or the
// budget runs out (a hang is a test failure, not an infinite loop).
func driveToCompletion(t *testing.T, host *schedulefakes.FakeHost, done <-chan error, budget time.Duration) error {
	t.Helper()
	step := time.Millisecond
	deadline := time.After(budget)
	for {
		select {
		case err := <-done:
			return err
		case <-deadline:
			t.Fatalf("timed out waiting for playback to finish")
			return nil
		default:
			host.AdvanceAll(step)
			time.Sleep(time.Microsecond)
		}
	}
}

// TestSequenceDelayStacking verifies a clip with StartsWithPrevious
// commits to launch alongside its predecessor's active phase rather
// than after its predecessor's full finish, per the resolved group-
// start anchor (immediately-preceding clip's ActiveStartTime).
func TestSequenceDelayStacking(t *testing.T) {
	factories, _ := newTestFactories(t)

	first := newEmphasisClip(t, factories, 100*time.Millisecond, 200*time.Millisecond)
	second := newEmphasisClip(t, factories, 0, 50*time.Millisecond)
	second.Config.Sequencing.StartsWithPrevious = true

	seq := schedule.NewAnimSequence("stack", "", nil)
	if err := seq.AddClips(first, second); err != nil {
		t.Fatalf("AddClips: %v", err)
	}
	seq.Commit()

	if got, want := second.Schedule.FullStartTime, first.Schedule.ActiveStartTime; got != want {
		t.Fatalf("second clip FullStartTime = %v, want %v (first clip's ActiveStartTime)", got, want)
	}
}

// TestSequencePlayForward drives a two-clip sequence end to end on the
// fake host and checks both clips actually finished.
func TestSequencePlayForward(t *testing.T) {
	factories, host := newTestFactories(t)

	a := newEmphasisClip(t, factories, 0, 10*time.Millisecond)
	b := newEmphasisClip(t, factories, 0, 10*time.Millisecond)

	seq := schedule.NewAnimSequence("seq", "", nil)
	if err := seq.AddClips(a, b); err != nil {
		t.Fatalf("AddClips: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- seq.Play(context.Background()) }()

	if err := driveToCompletion(t, host, done, time.Second); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !seq.WasPlayed() {
		t.Fatalf("expected sequence to report WasPlayed")
	}
}

// TestAutoplayChain exercises the autoplay chain's OR predicate (spec
// §4.4/§8 scenario 3): stepping chains from seq1 into seq2 because seq1
// carries autoplaysNextSequence, then from seq2 into seq3 because seq3
// itself carries autoplays, then stops at seq4 since neither side of
// that boundary opts in.
func TestAutoplayChain(t *testing.T) {
	factories, host := newTestFactories(t)

	tl := schedule.NewAnimTimeline(schedule.TimelineConfig{TimelineName: "demo"}, nil)

	seq1 := schedule.NewAnimSequence("s1", "", nil).SetAutoplaysNextSequence(true)
	seq2 := schedule.NewAnimSequence("s2", "", nil)
	seq3 := schedule.NewAnimSequence("s3", "", nil).SetAutoplays(true)
	seq4 := schedule.NewAnimSequence("s4", "", nil)

	c1 := newEmphasisClip(t, factories, 0, 10*time.Millisecond)
	c2 := newEmphasisClip(t, factories, 0, 10*time.Millisecond)
	c3 := newEmphasisClip(t, factories, 0, 10*time.Millisecond)
	c4 := newEmphasisClip(t, factories, 0, 10*time.Millisecond)
	if err := seq1.AddClips(c1); err != nil {
		t.Fatal(err)
	}
	if err := seq2.AddClips(c2); err != nil {
		t.Fatal(err)
	}
	if err := seq3.AddClips(c3); err != nil {
		t.Fatal(err)
	}
	if err := seq4.AddClips(c4); err != nil {
		t.Fatal(err)
	}

	if err := tl.AddSequences(seq1, seq2, seq3, seq4); err != nil {
		t.Fatalf("AddSequences: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- tl.Step(context.Background(), schedule.Forward) }()

	if err := driveToCompletion(t, host, done, time.Second); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if tl.StepNumber() != 3 {
		t.Fatalf("expected autoplay chain to stop after seq1+seq2+seq3 (stepNumber=3), got %d", tl.StepNumber())
	}
	if !seq1.WasPlayed() || !seq2.WasPlayed() || !seq3.WasPlayed() {
		t.Fatalf("expected seq1, seq2, and seq3 to have played")
	}
	if seq4.WasPlayed() {
		t.Fatalf("seq4 should not autoplay: neither seq3.autoplaysNextSequence nor seq4.autoplays is set")
	}
}

// TestEntranceRequiresHiddenElement checks the InvalidEntranceAttempt
// error surfaces at forward-start, through the sequence's play promise,
// for an element not hidden via a recognized class (spec §4.2).
func TestEntranceRequiresHiddenElement(t *testing.T) {
	factories, host := newTestFactories(t)
	el := schedulefakes.NewFakeElement("div") // not hidden
	clip, err := factories.Entrance(el, "fade-in", nil, nil)
	if err != nil {
		t.Fatalf("Entrance factory: %v", err)
	}

	seq := schedule.NewAnimSequence("entrance", "", nil)
	if err := seq.AddClips(clip); err != nil {
		t.Fatalf("AddClips: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- seq.Play(context.Background()) }()

	err = driveToCompletion(t, host, done, time.Second)
	if err == nil {
		t.Fatalf("expected InvalidEntranceAttempt, got nil")
	}
	var target *schedule.InvalidEntranceAttempt
	if !asInvalidEntranceAttempt(err, &target) {
		t.Fatalf("expected *schedule.InvalidEntranceAttempt, got %T: %v", err, err)
	}
}

func asInvalidEntranceAttempt(err error, target **schedule.InvalidEntranceAttempt) bool {
	for err != nil {
		if e, ok := err.(*schedule.InvalidEntranceAttempt); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
