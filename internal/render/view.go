package render

// Style is the visual tier applied to an indicator or status label
type Style string

const (
	StyleNone    Style = ""
	StyleSuccess Style = "success"
	StyleWarning Style = "warning"
	StyleFailure Style = "failure"
)

// Icon marks a checklist row as passed or failed
type Icon string

const (
	IconNone  Icon = ""
	IconCheck Icon = "check"
	IconCross Icon = "cross"
)

// IndicatorKind selects between the pass/fail badge and the score gauge
type IndicatorKind string

const (
	IndicatorBadge IndicatorKind = "badge"
	IndicatorScore IndicatorKind = "score"
)

// ErrorMessage is the text of the generic error card.
const ErrorMessage = "Error processing image. Please try again."

// View is everything a surface needs to paint one scan result. A View is
// built fresh for every render and never mutated afterwards.
type View struct {
	Indicator *Indicator `json:"indicator,omitempty" yaml:"indicator,omitempty"`
	Product   *Row       `json:"product,omitempty" yaml:"product,omitempty"`
	Rows      []Row      `json:"rows" yaml:"rows"`
	Message   string     `json:"message,omitempty" yaml:"message,omitempty"`
	Preview   *Preview   `json:"preview,omitempty" yaml:"preview,omitempty"`
	Error     *ErrorCard `json:"error,omitempty" yaml:"error,omitempty"`
}

// Indicator is the headline compliance verdict
type Indicator struct {
	Kind        IndicatorKind `json:"kind" yaml:"kind"`
	Text        string        `json:"text" yaml:"text"`
	Style       Style         `json:"style" yaml:"style"`
	StatusLabel string        `json:"status_label,omitempty" yaml:"status_label,omitempty"`
	StatusStyle Style         `json:"status_style,omitempty" yaml:"status_style,omitempty"`
}

// Row is one line of the details checklist
type Row struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	Icon  Icon   `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Preview binds the captured image returned by the server
type Preview struct {
	URL string `json:"url" yaml:"url"`
}

// ErrorCard replaces the result when a scan fails
type ErrorCard struct {
	Message string `json:"message" yaml:"message"`
	Detail  string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Failed reports whether the view is an error card
func (v View) Failed() bool {
	return v.Error != nil
}
