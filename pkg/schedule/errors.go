package schedule

import "fmt"

// Location is the append-only context every error kind in §7 carries:
// timeline name, step number, sequence index/tag/description, clip
// category/effect, and the target element's opening tag.
type Location struct {
	TimelineName        string
	StepNumber          int
	SequenceIndex        int
	SequenceTag          string
	SequenceDescription string
	ClipCategory        Category
	ClipEffectName       string
	ElementOpeningTag    string
}

func (l Location) String() string {
	s := ""
	if l.TimelineName != "" {
		s += fmt.Sprintf(" timeline=%q step=%d", l.TimelineName, l.StepNumber)
	}
	if l.SequenceTag != "" || l.SequenceDescription != "" {
		s += fmt.Sprintf(" sequence[%d tag=%q desc=%q]", l.SequenceIndex, l.SequenceTag, l.SequenceDescription)
	}
	if l.ClipEffectName != "" {
		s += fmt.Sprintf(" clip[%s %s]", l.ClipCategory, l.ClipEffectName)
	}
	if l.ElementOpeningTag != "" {
		s += fmt.Sprintf(" element=%s", l.ElementOpeningTag)
	}
	return s
}

// located is implemented by every error kind below so Annotate can
// attach Location context uniformly regardless of concrete kind.
type located interface {
	error
	withLocation(Location) error
}

// Annotate attaches loc to err if err itself is one of the kinds below
// (wrapped errors are not unwrapped); otherwise it wraps err in a
// generic locatedError.
func Annotate(err error, loc Location) error {
	if err == nil {
		return nil
	}
	if le, ok := err.(located); ok {
		return le.withLocation(loc)
	}
	return &locatedError{inner: err, loc: loc}
}

type locatedError struct {
	inner error
	loc   Location
}

func (e *locatedError) Error() string { return e.inner.Error() + e.loc.String() }
func (e *locatedError) Unwrap() error { return e.inner }

// --- concrete error kinds (spec §7) -----------------------------------

// InvalidElementError — a null/undefined target, or a wrong element
// subtype (e.g. a non-connector passed to a connector clip).
type InvalidElementError struct {
	Reason string
	loc    Location
}

func (e *InvalidElementError) Error() string {
	return fmt.Sprintf("invalid element: %s%s", e.Reason, e.loc.String())
}
func (e *InvalidElementError) withLocation(l Location) error {
	e2 := *e
	e2.loc = l
	return &e2
}

// InvalidEntranceAttempt — Entrance on a not-hidden element, or hidden
// via inline CSS rather than a recognized class.
type InvalidEntranceAttempt struct {
	Reason        string
	OuterHTML string
	loc           Location
}

func (e *InvalidEntranceAttempt) Error() string {
	return fmt.Sprintf("invalid entrance attempt: %s (element=%s)%s", e.Reason, e.OuterHTML, e.loc.String())
}
func (e *InvalidEntranceAttempt) withLocation(l Location) error {
	e2 := *e
	e2.loc = l
	return &e2
}

// InvalidExitAttempt — Exit on an already-hidden element, or hidden via
// inline CSS rather than a recognized class.
type InvalidExitAttempt struct {
	Reason    string
	OuterHTML string
	loc       Location
}

func (e *InvalidExitAttempt) Error() string {
	return fmt.Sprintf("invalid exit attempt: %s (element=%s)%s", e.Reason, e.OuterHTML, e.loc.String())
}
func (e *InvalidExitAttempt) withLocation(l Location) error {
	e2 := *e
	e2.loc = l
	return &e2
}

// InvalidPhasePositionError — a phase-position literal whose numeric or
// percentage value is out of its phase.
type InvalidPhasePositionError struct {
	Literal interface{}
	loc     Location
}

func (e *InvalidPhasePositionError) Error() string {
	return fmt.Sprintf("invalid phase position %v%s", e.Literal, e.loc.String())
}
func (e *InvalidPhasePositionError) withLocation(l Location) error {
	e2 := *e
	e2.loc = l
	return &e2
}

// LockedOperationError — structural mutation attempted while animating
// or jumping.
type LockedOperationError struct {
	Operation string
	loc       Location
}

func (e *LockedOperationError) Error() string {
	return fmt.Sprintf("locked operation %q: timeline is animating or jumping%s", e.Operation, e.loc.String())
}
func (e *LockedOperationError) withLocation(l Location) error {
	e2 := *e
	e2.loc = l
	return &e2
}

// TimeParadoxError — insertion/removal strictly behind loadedSeqIndex.
type TimeParadoxError struct {
	Operation string
	loc       Location
}

func (e *TimeParadoxError) Error() string {
	return fmt.Sprintf("time paradox: %q would mutate timeline history%s", e.Operation, e.loc.String())
}
func (e *TimeParadoxError) withLocation(l Location) error {
	e2 := *e
	e2.loc = l
	return &e2
}

// ChildPlaybackError — direct play/rewind/pause/unpause/finish on a clip
// while it is owned by a sequence.
type ChildPlaybackError struct {
	Operation string
	loc       Location
}

func (e *ChildPlaybackError) Error() string {
	return fmt.Sprintf("%q called directly on a clip owned by a sequence%s", e.Operation, e.loc.String())
}
func (e *ChildPlaybackError) withLocation(l Location) error {
	e2 := *e
	e2.loc = l
	return &e2
}

// InvalidChildError — adding a sequence that already has a parent or is
// in a forward-finished state.
type InvalidChildError struct {
	Reason string
	loc    Location
}

func (e *InvalidChildError) Error() string {
	return fmt.Sprintf("invalid child: %s%s", e.Reason, e.loc.String())
}
func (e *InvalidChildError) withLocation(l Location) error {
	e2 := *e
	e2.loc = l
	return &e2
}

// CommitStylesError — commit failed and forceful-commit was off or also
// failed.
type CommitStylesError struct {
	Reason    string
	OuterHTML string
	loc       Location
}

func (e *CommitStylesError) Error() string {
	return fmt.Sprintf("commit styles failed: %s (element=%s)%s", e.Reason, e.OuterHTML, e.loc.String())
}
func (e *CommitStylesError) withLocation(l Location) error {
	e2 := *e
	e2.loc = l
	return &e2
}
