package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/panel"
	"github.com/cleartag/cleartag/internal/render"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

type palette struct {
	info    func(a ...interface{}) string
	success func(a ...interface{}) string
	warning func(a ...interface{}) string
	failure func(a ...interface{}) string
	dim     func(a ...interface{}) string
	bold    func(a ...interface{}) string
}

func newPalette(noColor bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if noColor {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		info:    mk(color.FgBlue),
		success: mk(color.FgGreen),
		warning: mk(color.FgYellow),
		failure: mk(color.FgRed),
		dim:     mk(color.Faint),
		bold:    mk(color.Bold),
	}
}

func (p palette) styled(s render.Style) func(a ...interface{}) string {
	switch s {
	case render.StyleSuccess:
		return p.success
	case render.StyleWarning:
		return p.warning
	case render.StyleFailure:
		return p.failure
	default:
		return fmt.Sprint
	}
}

// TextWriter prints coloured, human readable output
type TextWriter struct {
	w     io.Writer
	color palette
}

// NewTextWriter creates a text output writer. noColor disables ANSI escape
// codes.
func NewTextWriter(w io.Writer, noColor bool) *TextWriter {
	return &TextWriter{w: w, color: newPalette(noColor)}
}

func (t *TextWriter) WriteCamera(st camera.Status) error {
	if st.Live {
		return t.printf("%s Camera live (%s, %s)\n", t.color.info("[*]"), st.Facing, st.Mode)
	}
	switch st.Notice.Kind {
	case camera.NoticeAlert:
		return t.printf("%s %s\n", t.color.warning("[!]"), st.Notice.Text)
	case camera.NoticePlaceholder:
		return t.printf("%s %s\n", t.color.info("[*]"), st.Notice.Text)
	}
	return nil
}

func (t *TextWriter) WritePanel(snap panel.Snapshot) error {
	if !snap.Visible {
		return t.printf("%s Results closed\n", t.color.dim("[*]"))
	}
	if snap.Loading {
		return t.printf("%s Analyzing...\n", t.color.info("[*]"))
	}
	if snap.Content == nil {
		return nil
	}
	v := snap.Content

	if v.Error != nil {
		if err := t.printf("%s %s\n", t.color.failure("[-]"), v.Error.Message); err != nil {
			return err
		}
		if v.Error.Detail != "" {
			return t.printf("    %s\n", t.color.dim(v.Error.Detail))
		}
		return nil
	}

	if v.Product != nil {
		if err := t.printf("%-10s %s\n", v.Product.Label, t.color.bold(v.Product.Value)); err != nil {
			return err
		}
	}
	if ind := v.Indicator; ind != nil {
		var err error
		switch ind.Kind {
		case render.IndicatorScore:
			err = t.printf("%-10s %s  %s\n", "Score", t.color.styled(ind.Style)(ind.Text), t.color.styled(ind.StatusStyle)(ind.StatusLabel))
		default:
			err = t.printf("%-10s %s\n", "Status", t.color.styled(ind.Style)(ind.Text))
		}
		if err != nil {
			return err
		}
	}

	if len(v.Rows) > 0 {
		if err := t.printf("\n%s\n", t.color.info("Details")); err != nil {
			return err
		}
		labels := make([]string, len(v.Rows))
		width := 0
		for i, row := range v.Rows {
			labels[i] = titleCaser.String(row.Label)
			if n := utf8.RuneCountInString(labels[i]); n > width {
				width = n
			}
		}
		for i, row := range v.Rows {
			pad := strings.Repeat(" ", width-utf8.RuneCountInString(labels[i]))
			if err := t.printf("  %s%s%s  %s\n", t.icon(row.Icon), labels[i], pad, row.Value); err != nil {
				return err
			}
		}
	}

	if v.Preview != nil && snap.PreviewVisible {
		if err := t.printf("\n%-10s %s\n", "Image", v.Preview.URL); err != nil {
			return err
		}
	}
	if strings.TrimSpace(v.Message) != "" {
		return t.printf("\n%s\n", t.color.dim(v.Message))
	}
	return nil
}

func (t *TextWriter) icon(icon render.Icon) string {
	switch icon {
	case render.IconCheck:
		return t.color.success("✔") + " "
	case render.IconCross:
		return t.color.failure("✘") + " "
	default:
		return ""
	}
}

func (t *TextWriter) printf(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(t.w, format, args...)
	return err
}
