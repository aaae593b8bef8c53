package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cleartag/cleartag/internal/models"
)

// Render turns a scan result into a view. It is deterministic for a given
// result and clock reading.
func Render(r models.Result, now time.Time) View {
	switch r.Kind {
	case models.KindSimple:
		if r.Simple != nil {
			return renderSimple(r.Simple)
		}
	case models.KindScored:
		if r.Scored != nil {
			return renderScored(r.Scored, now)
		}
	}
	return Failure(fmt.Errorf("unrecognised scan result (%s)", r.Kind))
}

// Failure builds the generic error card, keeping the raw error text when
// there is one.
func Failure(err error) View {
	card := &ErrorCard{Message: ErrorMessage}
	if err != nil {
		card.Detail = err.Error()
	}
	return View{Rows: []Row{}, Error: card}
}

// Label derives a row label from a details key.
func Label(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// ScoreStyle maps a compliance score onto its tier.
func ScoreStyle(score int) Style {
	switch {
	case score >= 100:
		return StyleSuccess
	case score >= 70:
		return StyleWarning
	default:
		return StyleFailure
	}
}

// StatusStyle maps a tri-state compliance status onto its tier.
func StatusStyle(status string) Style {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "fully compliant":
		return StyleSuccess
	case "partially compliant":
		return StyleWarning
	default:
		return StyleFailure
	}
}

// CacheBust appends a t=<unix millis> parameter so a repeated scan reloads
// the preview instead of showing a cached copy.
func CacheBust(rawURL string, now time.Time) string {
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	u, err := url.Parse(rawURL)
	if err != nil {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return rawURL + sep + "t=" + stamp
	}
	q := u.Query()
	q.Set("t", stamp)
	u.RawQuery = q.Encode()
	return u.String()
}

func renderSimple(r *models.SimpleResult) View {
	status := r.ComplianceStatus.String()
	style := StyleFailure
	if r.ComplianceStatus.Set && status == "Compliant" {
		style = StyleSuccess
	}

	rows := make([]Row, 0, len(r.Details))
	for _, e := range r.Details {
		rows = append(rows, Row{
			Label: Label(e.Key),
			Value: e.Value.String(),
		})
	}

	return View{
		Indicator: &Indicator{
			Kind:  IndicatorBadge,
			Text:  status,
			Style: style,
		},
		Product: &Row{Label: "Product", Value: r.ProductName.String()},
		Rows:    rows,
		Message: r.Message.String(),
	}
}

func renderScored(r *models.ScoredResult, now time.Time) View {
	indicator := &Indicator{
		Kind:        IndicatorScore,
		Text:        r.ComplianceScore.String() + "%",
		Style:       StyleFailure,
		StatusLabel: r.ComplianceStatus.String(),
		StatusStyle: StatusStyle(r.ComplianceStatus.Value),
	}
	if r.ComplianceScore.Set {
		indicator.Style = ScoreStyle(r.ComplianceScore.Value)
	}

	rows := make([]Row, 0, len(r.Details))
	for _, c := range r.Details {
		label := Label(c.Key)
		if c.Label.Set {
			label = c.Label.Value
		}
		icon := IconCross
		if c.Found {
			icon = IconCheck
		}
		rows = append(rows, Row{
			Label: label,
			Value: c.Value.String(),
			Icon:  icon,
		})
	}

	view := View{
		Indicator: indicator,
		Rows:      rows,
		Message:   r.Message.String(),
	}
	if r.ImageURL != "" {
		view.Preview = &Preview{URL: CacheBust(r.ImageURL, now)}
	}
	return view
}
