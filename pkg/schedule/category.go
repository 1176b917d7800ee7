package schedule

import (
	"fmt"

	"github.com/windrift/stagehand/pkg/style"
)

const (
	forceOverrideClassName    = style.ClassForceOverride
	hideDisplayNoneClassName  = style.ClassHideDisplayNone
	hideVisibilityHiddenName  = style.ClassHideVisibilityHidden
)

// categoryBehavior is the closed tagged variant spec.md §9 asks for in
// place of open inheritance: one small interface, one implementation
// per Category, switched on at construction time (behaviorFor) rather
// than subclassed.
type categoryBehavior interface {
	// Initialize runs once, at clip construction, to prepare
	// category-specific state (e.g. Entrance applies hideNowType). Checks
	// on the element's hidden state run later, in the phase hooks.
	Initialize(c *AnimClip) error
	OnStartForward(c *AnimClip) error
	OnFinishForward(c *AnimClip) error
	OnStartBackward(c *AnimClip) error
	OnFinishBackward(c *AnimClip) error
}

func behaviorFor(cat Category) categoryBehavior {
	switch cat {
	case Entrance:
		return entranceBehavior{}
	case Exit:
		return exitBehavior{}
	case ConnectorSetter:
		return connectorSetterBehavior{}
	case ConnectorEntrance:
		return connectorEntranceBehavior{}
	case ConnectorExit:
		return connectorExitBehavior{}
	case Transition:
		return transitionBehavior{}
	default:
		// Emphasis, Motion, Scroller need no category-specific hooks
		// beyond the generic phase/CSS-class handling AnimClip.run
		// already performs.
		return genericBehavior{}
	}
}

// --- generic (Emphasis, Motion, Scroller) -----------------------------

type genericBehavior struct{}

func (genericBehavior) Initialize(*AnimClip) error      { return nil }
func (genericBehavior) OnStartForward(*AnimClip) error  { return nil }
func (genericBehavior) OnFinishForward(*AnimClip) error { return nil }
func (genericBehavior) OnStartBackward(*AnimClip) error { return nil }
func (genericBehavior) OnFinishBackward(*AnimClip) error { return nil }

// --- Entrance ----------------------------------------------------------

// entranceBehavior requires its element start out hidden via one of the
// two recognized classes (spec §4.2 "entrance requires a hidden
// element"): a bare inline display:none/visibility:hidden does not
// count, since the clip needs to know which hide class to remove.
type entranceBehavior struct{}

func (entranceBehavior) Initialize(c *AnimClip) error {
	if c.Element == nil {
		return &InvalidElementError{Reason: "entrance clip has no target element"}
	}
	return nil
}

// OnStartForward is where the not-hidden check actually happens (spec
// §4.2): deferred from construction time to forward-start so a failure
// surfaces through the clip's play promise, letting it propagate up
// through the sequence and pause the timeline instead of erroring out
// before anything is even scheduled.
func (entranceBehavior) OnStartForward(c *AnimClip) error {
	switch {
	case c.Element.ClassListContains(hideDisplayNoneClassName):
		c.rememberedHideClass = hideDisplayNoneClassName
	case c.Element.ClassListContains(hideVisibilityHiddenName):
		c.rememberedHideClass = hideVisibilityHiddenName
	default:
		return &InvalidEntranceAttempt{
			Reason:    "element is not hidden via a recognized hide class",
			OuterHTML: c.Element.OuterHTML(),
		}
	}
	c.Element.ClassListRemove(c.rememberedHideClass)
	return nil
}

func (entranceBehavior) OnFinishForward(*AnimClip) error { return nil }

func (entranceBehavior) OnStartBackward(*AnimClip) error { return nil }

func (entranceBehavior) OnFinishBackward(c *AnimClip) error {
	c.Element.ClassListAdd(c.rememberedHideClass)
	return nil
}

// --- Exit ---------------------------------------------------------------

type exitBehavior struct{}

func (exitBehavior) Initialize(c *AnimClip) error {
	if c.Element == nil {
		return &InvalidElementError{Reason: "exit clip has no target element"}
	}
	return nil
}

// ensureNotHidden runs the not-already-hidden check at the two
// DOM-mutation points Exit actually hides/reveals the element, rather
// than at construction (spec §4.2), mirroring entranceBehavior's
// deferred check. It is idempotent: once rememberedHideClass has been
// determined by an earlier call, later calls skip straight through.
func ensureNotHidden(c *AnimClip) error {
	if c.rememberedHideClass != "" {
		return nil
	}
	if c.Element.ClassListContains(hideDisplayNoneClassName) || c.Element.ClassListContains(hideVisibilityHiddenName) {
		return &InvalidExitAttempt{
			Reason:    "element is already hidden",
			OuterHTML: c.Element.OuterHTML(),
		}
	}
	switch c.Config.ExitType {
	case HideVisibilityHidden:
		c.rememberedHideClass = hideVisibilityHiddenName
	default:
		c.rememberedHideClass = hideDisplayNoneClassName
	}
	return nil
}

func (exitBehavior) OnStartForward(*AnimClip) error { return nil }

func (exitBehavior) OnFinishForward(c *AnimClip) error {
	if err := ensureNotHidden(c); err != nil {
		return err
	}
	c.Element.ClassListAdd(c.rememberedHideClass)
	return nil
}

func (exitBehavior) OnStartBackward(c *AnimClip) error {
	if err := ensureNotHidden(c); err != nil {
		return err
	}
	c.Element.ClassListRemove(c.rememberedHideClass)
	return nil
}

func (exitBehavior) OnFinishBackward(*AnimClip) error { return nil }

// --- Transition ----------------------------------------------------------

type transitionBehavior struct{}

func (transitionBehavior) Initialize(c *AnimClip) error {
	if c.Element == nil {
		return &InvalidElementError{Reason: "transition clip has no target element"}
	}
	return nil
}
func (transitionBehavior) OnStartForward(*AnimClip) error { return nil }

func (transitionBehavior) OnFinishForward(c *AnimClip) error {
	if c.Config.RemoveInlineStylesOnFinish {
		for prop := range committablePropertySet(c.forwardFrames) {
			c.Element.RemoveStyleProperty(prop)
		}
	}
	return nil
}
func (transitionBehavior) OnStartBackward(*AnimClip) error  { return nil }
func (transitionBehavior) OnFinishBackward(*AnimClip) error { return nil }

func committablePropertySet(frames []Keyframe) map[string]bool {
	set := map[string]bool{}
	for _, prop := range committableProperties(frames) {
		set[prop] = true
	}
	return set
}

// --- Connector* ----------------------------------------------------------

type connectorSetterBehavior struct{}

func (connectorSetterBehavior) asConnector(c *AnimClip) (Connector, error) {
	if c.Connector == nil {
		return nil, &InvalidElementError{Reason: fmt.Sprintf("%s clip requires a Connector target", c.Category)}
	}
	return c.Connector, nil
}

func (b connectorSetterBehavior) Initialize(c *AnimClip) error {
	_, err := b.asConnector(c)
	if err != nil {
		return err
	}
	// A setter clip repositions endpoints instantaneously; it carries no
	// duration of its own and always starts together with the clip after
	// it in sequence order (spec §4.2).
	c.Config.Timing.Duration = 0
	c.Config.Sequencing.StartsNextClipToo = true
	return nil
}

func (b connectorSetterBehavior) OnStartForward(c *AnimClip) error {
	conn, err := b.asConnector(c)
	if err != nil {
		return err
	}
	conn.UpdateEndpoints()
	return nil
}
func (connectorSetterBehavior) OnFinishForward(*AnimClip) error  { return nil }
func (connectorSetterBehavior) OnStartBackward(*AnimClip) error  { return nil }
func (b connectorSetterBehavior) OnFinishBackward(c *AnimClip) error {
	conn, err := b.asConnector(c)
	if err != nil {
		return err
	}
	conn.UpdateEndpoints()
	return nil
}

type connectorEntranceBehavior struct{}

func (connectorEntranceBehavior) asConnector(c *AnimClip) (Connector, error) {
	if c.Connector == nil {
		return nil, &InvalidElementError{Reason: "ConnectorEntrance clip requires a Connector target"}
	}
	return c.Connector, nil
}

func (b connectorEntranceBehavior) Initialize(c *AnimClip) error {
	_, err := b.asConnector(c)
	return err
}

func (b connectorEntranceBehavior) OnStartForward(c *AnimClip) error {
	conn, err := b.asConnector(c)
	if err != nil {
		return err
	}
	if c.Config.PointTrackingEnabled {
		conn.ContinuouslyUpdateEndpoints()
		c.connectorStash.continuousUpdatesStarted = true
	}
	return nil
}
func (connectorEntranceBehavior) OnFinishForward(*AnimClip) error { return nil }
func (b connectorEntranceBehavior) OnStartBackward(c *AnimClip) error {
	if c.connectorStash.continuousUpdatesStarted {
		conn, err := b.asConnector(c)
		if err != nil {
			return err
		}
		conn.CancelContinuousUpdates()
		c.connectorStash.continuousUpdatesStarted = false
	}
	return nil
}
func (connectorEntranceBehavior) OnFinishBackward(*AnimClip) error { return nil }

type connectorExitBehavior struct{}

func (connectorExitBehavior) asConnector(c *AnimClip) (Connector, error) {
	if c.Connector == nil {
		return nil, &InvalidElementError{Reason: "ConnectorExit clip requires a Connector target"}
	}
	return c.Connector, nil
}

func (b connectorExitBehavior) Initialize(c *AnimClip) error {
	_, err := b.asConnector(c)
	return err
}
func (connectorExitBehavior) OnStartForward(*AnimClip) error { return nil }
func (b connectorExitBehavior) OnFinishForward(c *AnimClip) error {
	if c.connectorStash.continuousUpdatesStarted {
		conn, err := b.asConnector(c)
		if err != nil {
			return err
		}
		conn.CancelContinuousUpdates()
		c.connectorStash.continuousUpdatesStarted = false
	}
	return nil
}
func (b connectorExitBehavior) OnStartBackward(c *AnimClip) error {
	conn, err := b.asConnector(c)
	if err != nil {
		return err
	}
	if c.Config.PointTrackingEnabled {
		conn.ContinuouslyUpdateEndpoints()
		c.connectorStash.continuousUpdatesStarted = true
	}
	return nil
}
func (connectorExitBehavior) OnFinishBackward(*AnimClip) error { return nil }
