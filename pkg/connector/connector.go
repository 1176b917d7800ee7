//go:build js && wasm

// Package connector implements schedule.Connector against an SVG <line>
// whose endpoints track the center points of two other elements —
// the concrete connector the ConnectorSetter/ConnectorEntrance/
// ConnectorExit clip categories animate.
package connector

import (
	"fmt"
	"syscall/js"

	"github.com/windrift/stagehand/pkg/hostjs"
	"github.com/windrift/stagehand/pkg/renderer"
	"github.com/windrift/stagehand/pkg/schedule"
)

// Line is a schedule.Connector backed by an SVG <line> element placed in
// a full-viewport <svg> overlay, one per connector instance.
type Line struct {
	*hostjs.Element
	line js.Value

	a, b schedule.Element
	aVal js.Value
	bVal js.Value

	frameID js.Value
	running bool
}

// New creates an SVG <line> overlay connecting the center points of a
// and b, appended to svgParent (typically a full-viewport <svg> the
// caller maintains). a and b must be hostjs elements (or anything
// exposing the same Value() method) so their real bounding rects are
// reachable.
func New(svgParent js.Value, a, b schedule.Element) (*Line, error) {
	aVal, ok := valueOf(a)
	if !ok {
		return nil, fmt.Errorf("connector: endpoint A is not a hostjs element")
	}
	bVal, ok := valueOf(b)
	if !ok {
		return nil, fmt.Errorf("connector: endpoint B is not a hostjs element")
	}

	doc := js.Global().Get("document")
	line := doc.Call("createElementNS", "http://www.w3.org/2000/svg", "line")
	line.Call("setAttribute", "stroke", "currentColor")
	line.Call("setAttribute", "stroke-width", "2")
	svgParent.Call("appendChild", line)

	c := &Line{
		Element: hostjs.Wrap(line),
		line:    line,
		a:       a,
		b:       b,
		aVal:    aVal,
		bVal:    bVal,
	}
	c.UpdateEndpoints()
	return c, nil
}

type valuer interface{ Value() js.Value }

func valueOf(el schedule.Element) (js.Value, bool) {
	v, ok := el.(valuer)
	if !ok {
		return js.Value{}, false
	}
	return v.Value(), true
}

func (c *Line) PointA() schedule.Element { return c.a }
func (c *Line) PointB() schedule.Element { return c.b }

func center(rect schedule.Rect) (x, y float64) {
	return rect.X + rect.Width/2, rect.Y + rect.Height/2
}

func (c *Line) UpdateEndpoints() {
	ax, ay := center(c.a.BoundingClientRect())
	bx, by := center(c.b.BoundingClientRect())
	c.line.Call("setAttribute", "x1", fmt.Sprintf("%g", ax))
	c.line.Call("setAttribute", "y1", fmt.Sprintf("%g", ay))
	c.line.Call("setAttribute", "x2", fmt.Sprintf("%g", bx))
	c.line.Call("setAttribute", "y2", fmt.Sprintf("%g", by))
}

func (c *Line) ContinuouslyUpdateEndpoints() {
	if c.running {
		return
	}
	c.running = true
	var tick func(float64)
	tick = func(float64) {
		if !c.running {
			return
		}
		c.UpdateEndpoints()
		c.frameID = renderer.RequestFrame(tick)
	}
	c.frameID = renderer.RequestFrame(tick)
}

func (c *Line) CancelContinuousUpdates() {
	if !c.running {
		return
	}
	c.running = false
	renderer.CancelFrame(c.frameID)
}
