// Package schedulefakes provides in-memory stand-ins for pkg/schedule's
// Host/Element/Connector interfaces, so the scheduler's core algorithms
// can be driven deterministically by plain `go test` instead of a real
// browser runtime.
package schedulefakes

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/windrift/stagehand/pkg/schedule"
)

// FakeElement is an in-memory stand-in for schedule.Element.
type FakeElement struct {
	mu         sync.Mutex
	tag        string
	classes    map[string]bool
	styles     map[string]string
	rect       schedule.Rect
	rendered   bool
	committed  []string
	commitErr  error
}

func NewFakeElement(tag string, classes ...string) *FakeElement {
	el := &FakeElement{
		tag:      tag,
		classes:  make(map[string]bool),
		styles:   make(map[string]string),
		rendered: true,
	}
	for _, c := range classes {
		el.classes[c] = true
	}
	return el
}

func (e *FakeElement) Tag() string { return e.tag }

func (e *FakeElement) OuterHTML() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	classList := ""
	for c := range e.classes {
		classList += c + " "
	}
	return fmt.Sprintf("<%s class=%q>", e.tag, classList)
}

func (e *FakeElement) ClassListAdd(classes ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range classes {
		e.classes[c] = true
	}
}

func (e *FakeElement) ClassListRemove(classes ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range classes {
		delete(e.classes, c)
	}
}

func (e *FakeElement) ClassListContains(class string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.classes[class]
}

func (e *FakeElement) GetStyleProperty(prop string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.styles[prop]
}

func (e *FakeElement) SetStyleProperty(prop, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.styles[prop] = value
}

func (e *FakeElement) RemoveStyleProperty(prop string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.styles, prop)
}

func (e *FakeElement) BoundingClientRect() schedule.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rect
}

func (e *FakeElement) SetBoundingClientRect(r schedule.Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rect = r
}

func (e *FakeElement) IsRendered() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rendered
}

func (e *FakeElement) SetRendered(rendered bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rendered = rendered
}

func (e *FakeElement) SetCommitError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commitErr = err
}

func (e *FakeElement) CommitComputedStyles(properties []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.rendered {
		return fmt.Errorf("element not rendered")
	}
	if e.commitErr != nil {
		return e.commitErr
	}
	e.committed = append(e.committed, properties...)
	return nil
}

func (e *FakeElement) Committed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.committed...)
}

// FakeConnector is an in-memory stand-in for schedule.Connector.
type FakeConnector struct {
	*FakeElement
	pointA, pointB     schedule.Element
	updateCount        int
	continuousRunning  bool
}

func NewFakeConnector(pointA, pointB schedule.Element) *FakeConnector {
	return &FakeConnector{
		FakeElement: NewFakeElement("svg-connector"),
		pointA:      pointA,
		pointB:      pointB,
	}
}

func (c *FakeConnector) PointA() schedule.Element { return c.pointA }
func (c *FakeConnector) PointB() schedule.Element { return c.pointB }

func (c *FakeConnector) UpdateEndpoints() { c.updateCount++ }

func (c *FakeConnector) UpdateCount() int { return c.updateCount }

func (c *FakeConnector) ContinuouslyUpdateEndpoints() { c.continuousRunning = true }
func (c *FakeConnector) CancelContinuousUpdates()     { c.continuousRunning = false }
func (c *FakeConnector) ContinuousUpdatesRunning() bool { return c.continuousRunning }

// notification is one registered NotifyAt callback.
type notification struct {
	at    time.Duration
	cb    func()
	fired bool
}

// FakeHostAnimation is a manually-steppable virtual clock standing in
// for a real Web Animations API Animation (or a mutator-driven virtual
// one). Advance is the test-only hook that plays the role of the host's
// frame tick.
type FakeHostAnimation struct {
	mu       sync.Mutex
	opts     schedule.AnimationOptions
	frames   []schedule.Keyframe
	mutator  schedule.FrameMutator

	current time.Duration
	rate    float64
	playing bool
	cancelled bool

	notifications []*notification
}

func newFakeHostAnimation(frames []schedule.Keyframe, mutator schedule.FrameMutator, opts schedule.AnimationOptions) *FakeHostAnimation {
	return &FakeHostAnimation{frames: frames, mutator: mutator, opts: opts, rate: 1}
}

func (a *FakeHostAnimation) totalDuration() time.Duration {
	return a.opts.Delay + a.opts.Duration + a.opts.EndDelay
}

func (a *FakeHostAnimation) Play() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.cancelled {
		a.playing = true
	}
}

func (a *FakeHostAnimation) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = false
}

func (a *FakeHostAnimation) Finish() {
	a.mu.Lock()
	target := a.totalDuration()
	a.mu.Unlock()
	a.advanceTo(target)
	a.mu.Lock()
	a.playing = false
	a.mu.Unlock()
}

func (a *FakeHostAnimation) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelled = true
	a.playing = false
}

func (a *FakeHostAnimation) SetPlaybackRate(rate float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rate = rate
}

func (a *FakeHostAnimation) CurrentTime() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *FakeHostAnimation) SetKeyframes(kf []schedule.Keyframe) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frames = kf
}

// NotifyAt fires cb once CurrentTime crosses at; immediately (inline,
// synchronously) if at has already been crossed, matching the interface
// contract.
func (a *FakeHostAnimation) NotifyAt(at time.Duration, cb func()) {
	a.mu.Lock()
	if a.current >= at {
		a.mu.Unlock()
		cb()
		return
	}
	a.notifications = append(a.notifications, &notification{at: at, cb: cb})
	a.mu.Unlock()
}

// Advance moves the virtual clock forward by d*rate if playing, runs the
// mutator (if any) with fractional progress, and fires every
// newly-crossed NotifyAt callback in ascending `at` order.
func (a *FakeHostAnimation) Advance(d time.Duration) {
	a.mu.Lock()
	if !a.playing || a.cancelled {
		a.mu.Unlock()
		return
	}
	scaled := time.Duration(float64(d) * a.rate)
	a.mu.Unlock()
	a.advanceTo(a.CurrentTime() + scaled)
}

func (a *FakeHostAnimation) advanceTo(target time.Duration) {
	a.mu.Lock()
	total := a.totalDuration()
	if target > total {
		target = total
	}
	if target < a.current {
		target = a.current
	}
	a.current = target
	mutator := a.mutator
	progress := 0.0
	if total > 0 {
		progress = float64(target) / float64(total)
	}
	sort.SliceStable(a.notifications, func(i, j int) bool {
		return a.notifications[i].at < a.notifications[j].at
	})
	var toFire []func()
	for _, n := range a.notifications {
		if !n.fired && n.at <= target {
			n.fired = true
			toFire = append(toFire, n.cb)
		}
	}
	a.mu.Unlock()

	if mutator != nil {
		mutator(progress)
	}
	for _, cb := range toFire {
		cb()
	}
}

// FakeHost is an in-memory stand-in for schedule.Host. It tracks every
// animation it creates so tests can drive them all at once with
// AdvanceAll.
type FakeHost struct {
	mu   sync.Mutex
	now  time.Time
	anims []*FakeHostAnimation
}

func NewFakeHost() *FakeHost {
	return &FakeHost{now: time.Unix(0, 0)}
}

func (h *FakeHost) Animate(el schedule.Element, frames []schedule.Keyframe, opts schedule.AnimationOptions) schedule.HostAnimation {
	a := newFakeHostAnimation(frames, nil, opts)
	h.mu.Lock()
	h.anims = append(h.anims, a)
	h.mu.Unlock()
	return a
}

func (h *FakeHost) AnimateMutator(el schedule.Element, mutator schedule.FrameMutator, opts schedule.AnimationOptions) schedule.HostAnimation {
	a := newFakeHostAnimation(nil, mutator, opts)
	h.mu.Lock()
	h.anims = append(h.anims, a)
	h.mu.Unlock()
	return a
}

func (h *FakeHost) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

// AdvanceAll steps every animation created so far by d and advances the
// host clock alongside it — the test-suite's stand-in for a sequence of
// real requestAnimationFrame ticks.
func (h *FakeHost) AdvanceAll(d time.Duration) {
	h.mu.Lock()
	h.now = h.now.Add(d)
	anims := append([]*FakeHostAnimation(nil), h.anims...)
	h.mu.Unlock()
	for _, a := range anims {
		a.Advance(d)
	}
}

// FinishAll immediately finishes every animation created so far, in
// creation order.
func (h *FakeHost) FinishAll() {
	h.mu.Lock()
	anims := append([]*FakeHostAnimation(nil), h.anims...)
	h.mu.Unlock()
	for _, a := range anims {
		a.Finish()
	}
}
