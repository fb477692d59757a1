package lang

import (
	"errors"
	"strconv"
	"strings"
)

// Diagnostic is a located, printable error report.
type Diagnostic struct {
	File    string
	Line    int // 1-based
	Col     int // 1-based, in runes
	Length  int // bytes underlined, at least 1
	Message string
	Excerpt string // the source line containing the error
}

// Diagnose locates err in its source. It reports false if err carries no
// source location.
func Diagnose(err error) (Diagnostic, bool) {
	var (
		pe   *ParseError
		re   *RenderError
		span Span
	)

	switch {
	case errors.As(err, &pe) && pe.Source != nil:
		span = pe.Span()

	case errors.As(err, &re) && !re.Span.IsZero():
		span = re.Span

	default:
		return Diagnostic{Message: errMessage(err)}, false
	}

	line, col := span.Source.Position(span.Offset)

	return Diagnostic{
		File:    span.Source.Name,
		Line:    line,
		Col:     col,
		Length:  max(span.Length, 1),
		Message: errMessage(err),
		Excerpt: span.Source.Line(line),
	}, true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

// location formats file:line:col.
func location(file string, line, col int) string {
	return file + ":" + strconv.Itoa(line) + ":" + strconv.Itoa(col)
}

// Location returns the file:line:col prefix of d.
func (d Diagnostic) Location() string { return location(d.File, d.Line, d.Col) }

// String formats d as a header line followed by the numbered source line and
// a caret underline:
//
//	index.polly:3:5: unexpected token: close brace "}"
//	  3 | /p{a}}
//	    |     ^
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.File == "" && d.Line == 0 {
		return d.Message
	}

	b.WriteString(d.Location())
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteString("\n")

	num := strconv.Itoa(d.Line)
	gutter := strings.Repeat(" ", len(num)+2)

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(d.Excerpt)
	b.WriteString("\n")

	b.WriteString(gutter)
	b.WriteString(" | ")
	b.WriteString(caretPadding(d.Excerpt, d.Col))
	b.WriteString("^")

	if d.Length > 1 {
		b.WriteString(strings.Repeat("~", d.Length-1))
	}

	return b.String()
}

// caretPadding returns whitespace reaching column col of line, keeping tabs
// so the caret lines up under tab-indented source.
func caretPadding(line string, col int) string {
	var b strings.Builder

	n := 1
	for _, r := range line {
		if n >= col {
			break
		}

		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}

		n++
	}

	for ; n < col; n++ {
		b.WriteByte(' ')
	}

	return b.String()
}
