package schedule

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// --- process-wide scroll-anchor stack ----------------------------------

// Scroll-anchor state is process-wide rather than per-Root (spec §9
// "process-wide scroll-anchor state"): a Scroller clip needs to know
// what to restore the viewport against regardless of which timeline or
// sequence it was launched from, mirroring a single browser tab's
// single scroll position.
var (
	scrollAnchorMu    sync.Mutex
	scrollAnchorStack []Element
)

// PushScrollAnchor records el as the element future Scroller clips
// should scroll relative to, until popped.
func PushScrollAnchor(el Element) {
	scrollAnchorMu.Lock()
	defer scrollAnchorMu.Unlock()
	scrollAnchorStack = append(scrollAnchorStack, el)
}

// PopScrollAnchor removes and returns the most recently pushed anchor,
// or nil if the stack is empty.
func PopScrollAnchor() Element {
	scrollAnchorMu.Lock()
	defer scrollAnchorMu.Unlock()
	n := len(scrollAnchorStack)
	if n == 0 {
		return nil
	}
	el := scrollAnchorStack[n-1]
	scrollAnchorStack = scrollAnchorStack[:n-1]
	return el
}

// CurrentScrollAnchor returns the top of the stack without popping it.
func CurrentScrollAnchor() Element {
	scrollAnchorMu.Lock()
	defer scrollAnchorMu.Unlock()
	n := len(scrollAnchorStack)
	if n == 0 {
		return nil
	}
	return scrollAnchorStack[n-1]
}

// --- Root façade ---------------------------------------------------------

// Root (C5) is the single entry point an application holds: it owns the
// effect bank and host binding, and mints timelines, sequences, and
// clips.
type Root struct {
	bank *EffectBank
	host Host
	log  Logger

	debugSink DebugSink

	nextClipID       uint64
	factoriesCreated int32 // guards CreateAnimationClipFactories' single-use token
}

func NewRoot(bank *EffectBank, host Host, log Logger) *Root {
	if log == nil {
		log = NopLogger{}
	}
	return &Root{bank: bank, host: host, log: log}
}

func (r *Root) SetDebugSink(sink DebugSink) { r.debugSink = sink }

// NewTimeline mints an independent AnimTimeline. It may be called any
// number of times; unlike CreateAnimationClipFactories it is not
// limited to one use, and there is no hidden shared state to collide
// across calls.
func (r *Root) NewTimeline(cfg TimelineConfig) *AnimTimeline {
	tl := NewAnimTimeline(cfg, r.log)
	if r.debugSink != nil {
		tl.SetDebugSink(r.debugSink)
	}
	return tl
}

// NewSequence mints an independent AnimSequence; like NewTimeline it
// may be called any number of times.
func (r *Root) NewSequence(tag, description string) *AnimSequence {
	return NewAnimSequence(tag, description, r.log)
}

func (r *Root) newClipID() string {
	n := atomic.AddUint64(&r.nextClipID, 1)
	return fmt.Sprintf("clip-%d", n)
}

// ClipFactories is the bound set of per-category clip constructors
// handed back by CreateAnimationClipFactories.
type ClipFactories struct {
	root *Root
}

// CreateAnimationClipFactories is a single-use constructor token (spec
// §4.5): a Root can only ever hand out one ClipFactories set, so two
// unrelated parts of an application can't each believe they exclusively
// own clip-construction.
func (r *Root) CreateAnimationClipFactories() (*ClipFactories, error) {
	if !atomic.CompareAndSwapInt32(&r.factoriesCreated, 0, 1) {
		return nil, fmt.Errorf("animation clip factories already created for this root")
	}
	return &ClipFactories{root: r}, nil
}

func builtinDefaultFor(cat Category) ClipConfig {
	switch cat {
	case Entrance, Exit:
		return ClipConfig{Modifiers: Modifiers{CommitsStyles: true}}
	case Transition:
		return ClipConfig{Modifiers: Modifiers{CommitsStyles: true}, RemoveInlineStylesOnFinish: false}
	case ConnectorEntrance, ConnectorExit:
		return ClipConfig{PointTrackingEnabled: true}
	default:
		return ClipConfig{}
	}
}

func (f *ClipFactories) build(cat Category, el Element, effectName string, args []interface{}, author *PartialClipConfig) (*AnimClip, error) {
	entry, err := f.root.bank.Lookup(cat, effectName)
	if err != nil {
		return nil, err
	}
	cfg := MergeConfig(builtinDefaultFor(cat), entry, author)
	return newAnimClip(f.root.newClipID(), cat, el, effectName, args, cfg, entry.Generator.Mode, *entry.Generator, f.root.host, f.root.log)
}

func (f *ClipFactories) Entrance(el Element, effectName string, args []interface{}, cfg *PartialClipConfig) (*AnimClip, error) {
	return f.build(Entrance, el, effectName, args, cfg)
}
func (f *ClipFactories) Exit(el Element, effectName string, args []interface{}, cfg *PartialClipConfig) (*AnimClip, error) {
	return f.build(Exit, el, effectName, args, cfg)
}
func (f *ClipFactories) Emphasis(el Element, effectName string, args []interface{}, cfg *PartialClipConfig) (*AnimClip, error) {
	return f.build(Emphasis, el, effectName, args, cfg)
}
func (f *ClipFactories) Motion(el Element, effectName string, args []interface{}, cfg *PartialClipConfig) (*AnimClip, error) {
	return f.build(Motion, el, effectName, args, cfg)
}
func (f *ClipFactories) Transition(el Element, effectName string, args []interface{}, cfg *PartialClipConfig) (*AnimClip, error) {
	return f.build(Transition, el, effectName, args, cfg)
}
func (f *ClipFactories) Scroller(el Element, effectName string, args []interface{}, cfg *PartialClipConfig) (*AnimClip, error) {
	return f.build(Scroller, el, effectName, args, cfg)
}
func (f *ClipFactories) ConnectorSetter(conn Connector, effectName string, args []interface{}, cfg *PartialClipConfig) (*AnimClip, error) {
	return f.build(ConnectorSetter, conn, effectName, args, cfg)
}
func (f *ClipFactories) ConnectorEntrance(conn Connector, effectName string, args []interface{}, cfg *PartialClipConfig) (*AnimClip, error) {
	return f.build(ConnectorEntrance, conn, effectName, args, cfg)
}
func (f *ClipFactories) ConnectorExit(conn Connector, effectName string, args []interface{}, cfg *PartialClipConfig) (*AnimClip, error) {
	return f.build(ConnectorExit, conn, effectName, args, cfg)
}
