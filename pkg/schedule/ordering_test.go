package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/windrift/stagehand/pkg/schedule"
)

// TestRunGroupHonorsActiveFinishOrder exercises the §8 ordering
// guarantee: within a group, the clip with the earlier ActiveFinishTime
// must have its active phase complete before the clip with the later
// one, pinned by runGroup's integrity blocks rather than left to
// goroutine scheduling. The second clip here is both launched later
// (StartsWithPrevious waits on the first clip's active-begin promise)
// and scheduled to finish its active phase first (shorter duration), so
// a naive fan-out with no ordering guarantee would still happen to get
// this right by luck; what this test actually exercises is that commit
// computes that order and runGroupForward wires
// AddIntegrityBlocks/OnActiveFinish without deadlocking or
// erroring the sequence.
func TestRunGroupHonorsActiveFinishOrder(t *testing.T) {
	factories, host := newTestFactories(t)

	long := newEmphasisClip(t, factories, 0, 30*time.Millisecond)
	short := newEmphasisClip(t, factories, 0, 10*time.Millisecond)
	short.Config.Sequencing.StartsWithPrevious = true

	seq := schedule.NewAnimSequence("ordering", "", nil)
	if err := seq.AddClips(long, short); err != nil {
		t.Fatalf("AddClips: %v", err)
	}
	seq.Commit()

	if !(short.Schedule.ActiveFinishTime < long.Schedule.ActiveFinishTime) {
		t.Fatalf("expected short clip's ActiveFinishTime (%v) before long's (%v)",
			short.Schedule.ActiveFinishTime, long.Schedule.ActiveFinishTime)
	}

	done := make(chan error, 1)
	go func() { done <- seq.Play(context.Background()) }()

	if err := driveToCompletion(t, host, done, time.Second); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !seq.WasPlayed() {
		t.Fatalf("expected sequence to report WasPlayed")
	}
	if long.Status.InProgress || short.Status.InProgress {
		t.Fatalf("expected both clips to have finished (InProgress=false)")
	}
}

// TestAddRoadblocksBlocksUntilResolved exercises AnimClip.AddRoadblocks
// directly (spec §4.1): a roadblock registered at a clip's active-phase
// beginning must pause that clip's playthrough until the supplied
// awaitable settles.
func TestAddRoadblocksBlocksUntilResolved(t *testing.T) {
	factories, host := newTestFactories(t)

	clip := newEmphasisClip(t, factories, 5*time.Millisecond, 10*time.Millisecond)

	gate := schedule.NewFuture[struct{}]()
	if err := clip.AddRoadblocks(schedule.Forward, schedule.ActivePhase, schedule.Position{Kind: schedule.PositionBeginning}, gate); err != nil {
		t.Fatalf("AddRoadblocks: %v", err)
	}

	seq := schedule.NewAnimSequence("roadblock", "", nil)
	if err := seq.AddClips(clip); err != nil {
		t.Fatalf("AddClips: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- seq.Play(context.Background()) }()

	// Advance well past the clip's total duration; it must not complete
	// because the roadblock at the active phase's beginning is still
	// unresolved.
	for i := 0; i < 50; i++ {
		host.AdvanceAll(time.Millisecond)
	}
	select {
	case err := <-done:
		t.Fatalf("sequence completed before roadblock resolved (err=%v)", err)
	default:
	}

	gate.Resolve(struct{}{})

	if err := driveToCompletion(t, host, done, time.Second); err != nil {
		t.Fatalf("Play: %v", err)
	}
}
