// This file defines the small set of fixed, well-known CSS classes and
// custom properties the animation scheduler relies on to recognize
// element hidden-state and to mark connector endpoints. Unlike the rest
// of this package, these classes must have STABLE, predictable names —
// scheduler code checks `classList.contains(...)` against them — so they
// bypass the hash-based GetClassName machinery in generator.go.

package style

const (
	// ClassHideDisplayNone is applied to an element hidden via display:none.
	ClassHideDisplayNone = "stagehand-hide--display-none"
	// ClassHideVisibilityHidden is applied to an element hidden via visibility:hidden.
	ClassHideVisibilityHidden = "stagehand-hide--visibility-hidden"
	// ClassForceOverride temporarily makes a hidden element rendered so its
	// computed styles can be committed (commitStylesForcefully).
	ClassForceOverride = "stagehand-force-show"
	// ClassHighlightable marks an element as a valid ~highlight/~un-highlight target.
	ClassHighlightable = "stagehand-highlightable"
)

// HideClasses lists the classes recognized as "this element is hidden"
// by EntranceClip/ExitClip. Order matches hideNowType/exitType enumeration.
func HideClasses() []string {
	return []string{ClassHideDisplayNone, ClassHideVisibilityHidden}
}

func newFixedClass(className string, opts ...StyleOption) *Style {
	s := New(opts...)
	s.className = className
	return s
}

// HideDisplayNoneStyle returns the Style backing ClassHideDisplayNone.
func HideDisplayNoneStyle() *Style {
	return newFixedClass(ClassHideDisplayNone, Display(DisplayNone))
}

// HideVisibilityHiddenStyle returns the Style backing ClassHideVisibilityHidden.
func HideVisibilityHiddenStyle() *Style {
	return newFixedClass(ClassHideVisibilityHidden, Visibility(VisibilityHidden))
}

// ForceOverrideStyle returns the Style backing ClassForceOverride. It
// must win over either hide class so styles can be measured/committed,
// hence the !important rules.
func ForceOverrideStyle() *Style {
	return newFixedClass(ClassForceOverride,
		CustomStyle("display", "revert !important"),
		CustomStyle("visibility", "visible !important"),
	)
}

// HighlightableStyle returns the Style backing ClassHighlightable, driven
// by the registered --a-marker-opacity custom property so authors can
// fade the marker in/out from CSS (--b-marker-opacity is not used here).
func HighlightableStyle() *Style {
	return newFixedClass(ClassHighlightable,
		CustomStyle("outline", "2px solid rgba(255, 174, 0, var(--a-marker-opacity, 1))"),
		CustomStyle("outline-offset", "2px"),
	)
}

// CustomProperty is one of the two global CSS custom properties the
// scheduler registers for author stylesheets to key off of (§6).
type CustomProperty struct {
	Name      string
	Syntax    string
	Inherits  bool
	InitialValue string
}

// RegisteredCustomProperties returns the custom properties to register
// (via CSS.registerProperty or an @property rule) once, globally. The
// schedule package does not register them itself.
func RegisteredCustomProperties() []CustomProperty {
	return []CustomProperty{
		{Name: "--a-marker-opacity", Syntax: "<number>", Inherits: true, InitialValue: "1"},
		{Name: "--b-marker-opacity", Syntax: "<number>", Inherits: true, InitialValue: "1"},
	}
}

// AtPropertyCSS renders the @property at-rules for RegisteredCustomProperties.
func AtPropertyCSS() string {
	out := ""
	for _, p := range RegisteredCustomProperties() {
		out += "@property " + p.Name + " {\n" +
			"  syntax: \"" + p.Syntax + "\";\n" +
			"  inherits: " + boolToCSS(p.Inherits) + ";\n" +
			"  initial-value: " + p.InitialValue + ";\n" +
			"}\n"
	}
	return out
}

func boolToCSS(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// SchedulerStylesheet renders every fixed class plus the @property rules
// as one CSS string. Nothing in the scheduler injects it; the
// application injects it once, e.g. with renderer.StyleInjector.InjectOnce.
func SchedulerStylesheet() string {
	return AtPropertyCSS() +
		HideDisplayNoneStyle().ToCSS() +
		HideVisibilityHiddenStyle().ToCSS() +
		ForceOverrideStyle().ToCSS() +
		HighlightableStyle().ToCSS()
}
