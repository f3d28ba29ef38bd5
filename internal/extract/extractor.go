package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Modes recorded in unit metadata. "positioned" is the coordinate-aware
// primary path, "plain" the whole-document fallback loader.
const (
	ModePositioned = "positioned"
	ModePlain      = "plain"
)

// defaultLineTolerance is the maximum vertical distance (in PDF points)
// between two fragments that still belong to the same visual line.
const defaultLineTolerance = 2.0

type Meta struct {
	TotalPages int
	Mode       string
}

// Unit is one page worth of extracted text.
type Unit struct {
	Page int
	Text string
	Meta Meta
}

type Extractor struct {
	// LineTolerance overrides defaultLineTolerance when > 0.
	LineTolerance float64
}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFile reads a PDF and returns one Unit per page, in page order.
// The primary path reconstructs lines from positioned fragments; if it fails
// for any reason the plain-text loader is tried before giving up. A document
// with no pages yields an empty slice, not an error.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]Unit, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	units, primaryErr := e.extractPositioned(r)
	if primaryErr == nil {
		return units, nil
	}

	slog.WarnContext(ctx, "positioned extraction failed, falling back to plain text loader", "error", primaryErr)

	units, fallbackErr := e.extractPlain(r)
	if fallbackErr != nil {
		return nil, fmt.Errorf("extraction failed: positioned: %v, plain: %w", primaryErr, fallbackErr)
	}
	return units, nil
}

// extractPositioned is the primary mode. The pdf library panics on some
// malformed documents, so the whole pass runs under recover and reports the
// panic as an ordinary error.
func (e *Extractor) extractPositioned(r *pdf.Reader) (units []Unit, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			units = nil
			err = fmt.Errorf("pdf content parsing panicked: %v", rec)
		}
	}()

	total := r.NumPage()
	units = make([]Unit, 0, total)
	meta := Meta{TotalPages: total, Mode: ModePositioned}

	for i := 1; i <= total; i++ {
		page := r.Page(i)
		unit := Unit{Page: i, Meta: meta}
		if !page.V.IsNull() {
			unit.Text = e.assemblePage(page.Content().Text)
		}
		units = append(units, unit)
	}
	return units, nil
}

func (e *Extractor) extractPlain(r *pdf.Reader) (units []Unit, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			units = nil
			err = fmt.Errorf("pdf plain text parsing panicked: %v", rec)
		}
	}()

	total := r.NumPage()
	units = make([]Unit, 0, total)
	meta := Meta{TotalPages: total, Mode: ModePlain}

	for i := 1; i <= total; i++ {
		page := r.Page(i)
		unit := Unit{Page: i, Meta: meta}
		if !page.V.IsNull() {
			text, perr := page.GetPlainText(nil)
			if perr != nil {
				// One unreadable page should not sink the document here.
				slog.Warn("plain text extraction failed for page, emitting empty unit", "page", i, "error", perr)
			} else {
				unit.Text = text
			}
		}
		units = append(units, unit)
	}
	return units, nil
}

// assemblePage turns a page's positioned fragments into text: fragments are
// ordered top-to-bottom then left-to-right, grouped into lines by vertical
// proximity, and within a line a synthetic space is inserted wherever the
// horizontal gap exceeds the preceding fragment's average glyph width. The
// raw fragment stream loses word boundaries; the gap heuristic restores them.
func (e *Extractor) assemblePage(frags []pdf.Text) string {
	if len(frags) == 0 {
		return ""
	}

	tol := e.LineTolerance
	if tol <= 0 {
		tol = defaultLineTolerance
	}

	sorted := make([]pdf.Text, len(frags))
	copy(sorted, frags)
	// PDF origin is bottom-left, so larger Y means higher on the page.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]pdf.Text
	for _, t := range sorted {
		if t.S == "" {
			continue
		}
		if len(lines) == 0 {
			lines = append(lines, []pdf.Text{t})
			continue
		}
		current := lines[len(lines)-1]
		if abs(current[0].Y-t.Y) <= tol {
			lines[len(lines)-1] = append(current, t)
		} else {
			lines = append(lines, []pdf.Text{t})
		}
	}

	var sb strings.Builder
	for li, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
		if li > 0 {
			sb.WriteByte('\n')
		}
		for fi, t := range line {
			if fi > 0 {
				prev := line[fi-1]
				gap := t.X - (prev.X + prev.W)
				if gap > avgGlyphWidth(prev) {
					sb.WriteByte(' ')
				}
			}
			sb.WriteString(t.S)
		}
	}
	return sb.String()
}

func avgGlyphWidth(t pdf.Text) float64 {
	n := len([]rune(t.S))
	if n == 0 {
		return 0
	}
	return t.W / float64(n)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
