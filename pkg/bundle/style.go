package bundle

// Style annotates a result for painting. The engine never reads it.
type Style struct {
	Stroke  string  `json:"stroke,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Default style values, used for any field an accessor or table leaves empty.
const (
	DefaultStroke  = "#4682b4"
	DefaultWidth   = 1.0
	DefaultOpacity = 0.6
)

// DefaultStyle returns the style applied when no accessor is configured.
func DefaultStyle() Style {
	return Style{Stroke: DefaultStroke, Width: DefaultWidth, Opacity: DefaultOpacity}
}

// StyleAccessors map an input edge (and its index) to style attributes.
// Nil accessors keep the default for that attribute.
type StyleAccessors struct {
	Stroke  func(e Edge, i int) string
	Width   func(e Edge, i int) float64
	Opacity func(e Edge, i int) float64
}

func (a *StyleAccessors) resolve(e Edge, i int) Style {
	st := DefaultStyle()
	if a == nil {
		return st
	}
	if a.Stroke != nil {
		st.Stroke = a.Stroke(e, i)
	}
	if a.Width != nil {
		st.Width = a.Width(e, i)
	}
	if a.Opacity != nil {
		st.Opacity = a.Opacity(e, i)
	}
	return st
}

// Merge overlays the non-zero fields of o onto s.
func (s Style) Merge(o Style) Style {
	if o.Stroke != "" {
		s.Stroke = o.Stroke
	}
	if o.Width != 0 {
		s.Width = o.Width
	}
	if o.Opacity != 0 {
		s.Opacity = o.Opacity
	}
	return s
}
