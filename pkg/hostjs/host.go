//go:build js && wasm

package hostjs

import (
	"time"

	"github.com/windrift/stagehand/pkg/schedule"
)

// Host implements schedule.Host against the real browser runtime. Exactly
// one should exist per wasm process — construct it once in main() and
// pass it to schedule.NewRoot.
type Host struct{}

func New() *Host { return &Host{} }

func (h *Host) Animate(el schedule.Element, frames []schedule.Keyframe, opts schedule.AnimationOptions) schedule.HostAnimation {
	jsEl, ok := el.(*Element)
	if !ok {
		panic("hostjs: Host.Animate called with a schedule.Element not produced by hostjs")
	}
	return animate(jsEl, frames, opts)
}

func (h *Host) AnimateMutator(el schedule.Element, mutator schedule.FrameMutator, opts schedule.AnimationOptions) schedule.HostAnimation {
	return animateMutator(opts, mutator)
}

func (h *Host) Now() time.Time { return time.Now() }
