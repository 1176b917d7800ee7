//go:build js && wasm

package hostjs

import (
	"sort"
	"sync"
	"syscall/js"
	"time"

	"github.com/windrift/stagehand/pkg/easing"
	"github.com/windrift/stagehand/pkg/renderer"
	"github.com/windrift/stagehand/pkg/schedule"
)

// notification is one pending schedule.HostAnimation.NotifyAt registration.
type notification struct {
	at time.Duration
	cb func()
}

// animation implements schedule.HostAnimation. Keyframe mode wraps a real
// Web Animations API Animation object (element.animate()); mutator mode
// drives a FrameMutator off the same rAF ticker with no native Animation
// backing it. Both modes share NotifyAt bookkeeping: the host API doesn't
// expose a "time crossed" event, so a rAF tick polls CurrentTime and fires
// whatever notifications it has crossed, in ascending position order
// (registration order among equal positions).
type animation struct {
	mu sync.Mutex

	native js.Value // keyframe mode only; zero value in mutator mode
	mutator schedule.FrameMutator
	total   time.Duration

	delay    time.Duration
	endDelay time.Duration
	rate     float64

	current   time.Duration
	playing   bool
	cancelled bool

	lastTickMillis float64
	haveLastTick   bool

	notifications []notification

	frameID  js.Value
	easingFn func(float64) float64
}

func newAnimation(opts schedule.AnimationOptions) *animation {
	fn, ok := easing.Lookup(opts.Easing)
	if !ok {
		fn = easing.Linear
	}
	if opts.Reverse {
		fn = easing.Invert(fn)
	}
	return &animation{
		delay:    opts.Delay,
		endDelay: opts.EndDelay,
		rate:     1,
		easingFn: fn,
	}
}

// animate creates a keyframe-mode animation via the real Web Animations
// API, one entry per forward/backward HostAnimation ClipAnimation owns.
func animate(el *Element, frames []schedule.Keyframe, opts schedule.AnimationOptions) *animation {
	a := newAnimation(opts)
	a.total = opts.Delay + opts.Duration + opts.EndDelay

	jsFrames := keyframesToJS(frames)
	timing := map[string]interface{}{
		"duration": float64(opts.Duration) / float64(time.Millisecond),
		"delay":    float64(opts.Delay) / float64(time.Millisecond),
		"endDelay": float64(opts.EndDelay) / float64(time.Millisecond),
		"fill":     "both",
		"easing":   "linear", // keyframe mode always runs linear; the named curve (easingFn) is applied only in mutator mode
	}
	switch opts.Composite {
	case schedule.CompositeAccumulate:
		timing["composite"] = "accumulate"
	case schedule.CompositeAdd:
		timing["composite"] = "add"
	}

	a.native = el.v.Call("animate", jsFrames, timing)
	a.native.Call("pause")
	a.startTicker()
	return a
}

// animateMutator creates a mutator-mode animation with no native backing;
// every tick computes progress through [0,1] across the full phase set
// (delay+active+endDelay) and invokes mutator directly.
func animateMutator(opts schedule.AnimationOptions, mutator schedule.FrameMutator) *animation {
	a := newAnimation(opts)
	a.total = opts.Delay + opts.Duration + opts.EndDelay
	a.mutator = mutator
	a.startTicker()
	return a
}

func keyframesToJS(frames []schedule.Keyframe) []interface{} {
	n := len(frames)
	out := make([]interface{}, n)
	for i, kf := range frames {
		obj := map[string]interface{}{}
		for k, v := range kf {
			obj[k] = v
		}
		if _, ok := obj["offset"]; !ok && n > 1 {
			obj["offset"] = float64(i) / float64(n-1)
		}
		out[i] = obj
	}
	return out
}

func (a *animation) startTicker() {
	a.frameID = renderer.RequestFrame(a.tick)
}

// tick advances current by the time since the last tick (scaled by rate)
// while the animation is playing, drives the mutator, and fires any
// NotifyAt callbacks just crossed. A keyframe-mode native animation runs
// on the browser's own clock; tick does not set its currentTime.
func (a *animation) tick(nowMillis float64) {
	a.mu.Lock()
	if a.cancelled {
		a.mu.Unlock()
		return
	}

	prev, seen := a.lastTickMillis, a.haveLastTick
	a.lastTickMillis, a.haveLastTick = nowMillis, true

	if a.playing && seen {
		deltaMs := nowMillis - prev
		if deltaMs > 0 {
			a.current += time.Duration(deltaMs * a.rate * float64(time.Millisecond))
			if a.current > a.total {
				a.current = a.total
			}
			if a.current < 0 {
				a.current = 0
			}
		}
	}

	current := a.current
	total := a.total
	mutator := a.mutator
	fired := a.collectCrossed(current)
	a.mu.Unlock()

	if mutator != nil && total > 0 {
		progress := float64(current) / float64(total)
		mutator(a.easingFn(clamp01(progress)))
	}
	for _, cb := range fired {
		cb()
	}

	if !a.cancelled {
		a.frameID = renderer.RequestFrame(a.tick)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// collectCrossed must be called with a.mu held; returns callbacks whose
// registered position is now <= current, removing them from the pending
// list, in list order (ascending position; NotifyAt keeps it sorted).
func (a *animation) collectCrossed(current time.Duration) []func() {
	var fired []func()
	remaining := a.notifications[:0]
	for _, n := range a.notifications {
		if n.at <= current {
			fired = append(fired, n.cb)
		} else {
			remaining = append(remaining, n)
		}
	}
	a.notifications = remaining
	return fired
}

func (a *animation) Play() {
	a.mu.Lock()
	a.playing = true
	a.mu.Unlock()
	if a.native.Truthy() {
		a.native.Call("play")
	}
}

func (a *animation) Pause() {
	a.mu.Lock()
	a.playing = false
	a.mu.Unlock()
	if a.native.Truthy() {
		a.native.Call("pause")
	}
}

func (a *animation) Finish() {
	a.mu.Lock()
	a.current = a.total
	current := a.current
	total := a.total
	mutator := a.mutator
	fired := a.collectCrossed(current)
	a.mu.Unlock()
	if a.native.Truthy() {
		a.native.Call("finish")
	}
	if mutator != nil && total > 0 {
		mutator(1)
	}
	for _, cb := range fired {
		cb()
	}
}

func (a *animation) Cancel() {
	a.mu.Lock()
	a.cancelled = true
	a.mu.Unlock()
	if a.native.Truthy() {
		a.native.Call("cancel")
	}
	renderer.CancelFrame(a.frameID)
}

func (a *animation) SetPlaybackRate(rate float64) {
	a.mu.Lock()
	a.rate = rate
	a.mu.Unlock()
	if a.native.Truthy() {
		a.native.Call("updatePlaybackRate", rate)
	}
}

func (a *animation) CurrentTime() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *animation) NotifyAt(at time.Duration, cb func()) {
	a.mu.Lock()
	if at <= a.current {
		a.mu.Unlock()
		cb()
		return
	}
	a.notifications = append(a.notifications, notification{at: at, cb: cb})
	sort.SliceStable(a.notifications, func(i, j int) bool {
		return a.notifications[i].at < a.notifications[j].at
	})
	a.mu.Unlock()
}

func (a *animation) SetKeyframes(kf []schedule.Keyframe) {
	if a.native.Truthy() {
		a.native.Call("effect").Call("setKeyframes", keyframesToJS(kf))
	}
}
