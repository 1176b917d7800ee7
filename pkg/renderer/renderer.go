//go:build js && wasm

// Package renderer owns the single <style> element the scheduler injects
// generated CSS into. A virtual-DOM patch/diff half used to live beside
// this style-injection logic, rendering a component tree — but clips
// bind to elements the author already has in the document, so only
// style injection survives here, generalized to take raw CSS directly.
package renderer

import (
	"sync"
	"syscall/js"
)

// StyleInjector owns one <style> element per document and de-duplicates
// injected class rules by name, mirroring the bookkeeping the original
// renderer.Renderer did around injectedClasses.
type StyleInjector struct {
	mu              sync.Mutex
	styleElement    js.Value
	injectedClasses map[string]bool
}

// NewStyleInjector creates (or reuses) a <style id="stagehand-styles">
// element under <head>.
func NewStyleInjector() *StyleInjector {
	document := js.Global().Get("document")
	head := document.Get("head")

	existing := document.Call("getElementById", "stagehand-styles")
	var styleEl js.Value
	if existing.Truthy() {
		styleEl = existing
	} else {
		styleEl = document.Call("createElement", "style")
		styleEl.Set("id", "stagehand-styles")
		head.Call("appendChild", styleEl)
	}

	return &StyleInjector{
		styleElement:    styleEl,
		injectedClasses: make(map[string]bool),
	}
}

// InjectOnce appends css under the given key the first time it is seen;
// subsequent calls with the same key are no-ops.
func (si *StyleInjector) InjectOnce(key, css string) {
	si.mu.Lock()
	defer si.mu.Unlock()

	if si.injectedClasses[key] {
		return
	}
	current := si.styleElement.Get("innerHTML").String()
	si.styleElement.Set("innerHTML", current+css)
	si.injectedClasses[key] = true
}

// RequestFrame schedules callback on the next animation frame and
// returns the request id (for CancelFrame).
func RequestFrame(callback func(nowMillis float64)) js.Value {
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		defer fn.Release()
		now := 0.0
		if len(args) > 0 {
			now = args[0].Float()
		}
		callback(now)
		return nil
	})
	return js.Global().Call("requestAnimationFrame", fn)
}

// CancelFrame cancels a pending requestAnimationFrame request.
func CancelFrame(id js.Value) {
	if id.Truthy() {
		js.Global().Call("cancelAnimationFrame", id)
	}
}
