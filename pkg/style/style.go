// Package style builds the small, fixed set of CSS the animation
// scheduler itself needs: the hide/force-override/highlightable classes
// and custom-property declarations it relies on (see
// scheduler_classes.go; the application injects them), using the box-model option builders (box_model.go,
// types.go) and the class-name/CSS generator (generator.go) for it.
//
// Basic usage:
//
//   s := style.New(
//       style.Display(style.DisplayNone),
//       style.CustomStyle("outline-offset", "2px"),
//   )
//   css := s.ToCSS()

package style

// Property is a simple alias for a CSS property
// Ex: "color" -> "blue"
type Property map[string]string

// Style is the object that contains the full definition of a the style of a component
type Style struct {
	Base         Property
	Pseudos      map[string]Property // ":hover", ":active", ":focus", etc.
	MediaQueries map[string]Property // "screen and (max-width: 768px)", "screen and (min-width: 769px)"

	// For caching
	className string
	css       string
}

// StyleOption is a function that modifies the style
type StyleOption func(*Style)

// New creates a new style object applying the given options
func New(options ...StyleOption) *Style {
	s := &Style{
		Base:         make(Property),
		Pseudos:      make(map[string]Property),
		MediaQueries: make(map[string]Property),
	}
	for _, option := range options {
		s.Update(option)
	}
	return s
}

func (s *Style) List() []StyleOption {
	options := []StyleOption{}
	for _, option := range s.Base {
		options = append(options, CustomStyle(option, s.Base[option]))
	}
	for _, pseudo := range s.Pseudos {
		for key, value := range pseudo {
			options = append(options, CustomStyle(key, value))
		}
	}
	for _, mediaQuery := range s.MediaQueries {
		for key, value := range mediaQuery {
			options = append(options, CustomStyle(key, value))
		}
	}
	return options
}

func Extend(baseStyle *Style, options ...StyleOption) *Style {
	// 1. Create a deep copy of the base style
	s := &Style{
		Base:         make(Property),
		Pseudos:      make(map[string]Property),
		MediaQueries: make(map[string]Property),
	}

	// 2. Deep copy the base properties
	for key, value := range baseStyle.Base {
		s.Base[key] = value
	}

	// 3. Deep copy the pseudo properties
	for pseudo, properties := range baseStyle.Pseudos {
		newPseudoProps := make(Property)
		for key, value := range properties {
			newPseudoProps[key] = value
		}
		s.Pseudos[pseudo] = newPseudoProps
	}

	// 4. Deep copy the media queries
	for mediaQuery, properties := range baseStyle.MediaQueries {
		newMediaProps := make(Property)
		for key, value := range properties {
			newMediaProps[key] = value
		}
		s.MediaQueries[mediaQuery] = newMediaProps
	}

	// 5. Apply the options
	s.Update(options...)
	return s
}

func (s *Style) Update(options ...StyleOption) {
	for _, option := range options {
		option(s)
	}
}

// Function to apply a style which is not in the function already defined
func CustomStyle(property string, value string) StyleOption {
	return func(s *Style) {
		s.Base[property] = value
	}
}
