//go:build js && wasm

// Package hostjs is the production schedule.Host: a thin syscall/js
// wrapper binding the scheduler to the real DOM and Web Animations API.
package hostjs

import (
	"fmt"
	"strings"
	"syscall/js"

	"github.com/windrift/stagehand/pkg/schedule"
)

// Element wraps one syscall/js.Value DOM node, implementing
// schedule.Element directly against className/style/getBoundingClientRect
// rather than through any virtual-DOM layer — clips bind to elements the
// author already put in the document.
type Element struct {
	v js.Value
}

// Wrap adapts an existing DOM node into a schedule.Element.
func Wrap(v js.Value) *Element { return &Element{v: v} }

// Query wraps document.querySelector(selector); returns nil if nothing matched.
func Query(selector string) *Element {
	v := js.Global().Get("document").Call("querySelector", selector)
	if !v.Truthy() {
		return nil
	}
	return &Element{v: v}
}

func (e *Element) Tag() string { return strings.ToLower(e.v.Get("tagName").String()) }

func (e *Element) OuterHTML() string { return e.v.Get("outerHTML").String() }

func (e *Element) ClassListAdd(classes ...string) {
	list := e.v.Get("classList")
	for _, c := range classes {
		list.Call("add", c)
	}
}

func (e *Element) ClassListRemove(classes ...string) {
	list := e.v.Get("classList")
	for _, c := range classes {
		list.Call("remove", c)
	}
}

func (e *Element) ClassListContains(class string) bool {
	return e.v.Get("classList").Call("contains", class).Bool()
}

func (e *Element) GetStyleProperty(prop string) string {
	return e.v.Get("style").Call("getPropertyValue", prop).String()
}

func (e *Element) SetStyleProperty(prop, value string) {
	e.v.Get("style").Call("setProperty", prop, value)
}

func (e *Element) RemoveStyleProperty(prop string) {
	e.v.Get("style").Call("removeProperty", prop)
}

func (e *Element) BoundingClientRect() schedule.Rect {
	r := e.v.Call("getBoundingClientRect")
	return schedule.Rect{
		X:      r.Get("x").Float(),
		Y:      r.Get("y").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}
}

func (e *Element) IsRendered() bool {
	// offsetParent is null for display:none elements (and for
	// position:fixed ones, which getBoundingClientRect still handles
	// fine — checking client rects catches that case too).
	if !e.v.Get("offsetParent").Truthy() {
		r := e.BoundingClientRect()
		if r.Width == 0 && r.Height == 0 {
			return false
		}
	}
	return true
}

func (e *Element) CommitComputedStyles(properties []string) error {
	if !e.IsRendered() {
		return fmt.Errorf("hostjs: cannot commit computed styles on an unrendered element")
	}
	computed := js.Global().Call("getComputedStyle", e.v)
	for _, prop := range properties {
		value := computed.Call("getPropertyValue", prop).String()
		e.SetStyleProperty(prop, value)
	}
	return nil
}

// Value exposes the underlying syscall/js.Value for callers (e.g.
// pkg/connector) that need direct DOM access beyond schedule.Element.
func (e *Element) Value() js.Value { return e.v }
