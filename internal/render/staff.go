// Package render draws drill notes: a PNG staff for the chat front ends
// and a styled terminal staff for the console loop.
package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"github.com/csoneira/solfeo-bot/internal/music"
)

// Staff geometry, in staff units: the five lines sit at y = 0..4, one
// staff index step is half a unit. The drawing covers y in [-2, 6] so
// two ledger lines fit above and below.
const (
	unitPx     = 28.0 // pixels per staff unit
	staffLeft  = 1.3
	staffRight = 10.0
	noteX      = 8.0
	clefX      = 0.6
	widthUnits = 10.7
	topUnit    = 6.0
	lowUnit    = -2.0
)

// StaffPNG renders the note on a five-line staff as an in-memory PNG:
// black staff lines, the clef label centered on its reference line, a
// slightly rotated filled note head, and ledger lines for positions
// outside the staff.
func StaffPNG(n music.Note) ([]byte, error) {
	if _, err := music.NoteAt(n.Clef, n.StaffIndex); err != nil {
		return nil, fmt.Errorf("rendering note: %w", err)
	}

	w := int(math.Ceil(widthUnits * unitPx))
	h := int(math.Ceil((topUnit - lowUnit) * unitPx))
	dc := gg.NewContext(w, h)

	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	// Staff lines at y = 0..4.
	dc.SetLineWidth(1.8)
	for y := 0; y <= 4; y++ {
		py := toPixelY(float64(y))
		dc.DrawLine(staffLeft*unitPx, py, staffRight*unitPx, py)
		dc.Stroke()
	}

	// Clef label centered on the reference line.
	clefY := float64(n.Clef.ReferenceIndex()) * 0.5
	dc.DrawStringAnchored(n.Clef.Label(), clefX*unitPx, toPixelY(clefY), 0.5, 0.5)

	// Note head: rotated filled ellipse.
	noteY := float64(n.StaffIndex) * 0.5
	px, py := noteX*unitPx, toPixelY(noteY)
	const headScale = 1.35
	rx := 0.45 * headScale * unitPx
	ry := 0.30 * headScale * unitPx
	dc.Push()
	dc.RotateAbout(gg.Radians(-20), px, py)
	dc.DrawEllipse(px, py, rx, ry)
	dc.Fill()
	dc.Pop()

	// Ledger lines: even indices above 8 and below 0, up to the note,
	// spanning just past the note head.
	dc.SetLineWidth(1.5)
	for _, idx := range LedgerIndices(n.StaffIndex) {
		ly := toPixelY(float64(idx) * 0.5)
		dc.DrawLine((noteX-0.9)*unitPx, ly, (noteX+0.9)*unitPx, ly)
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding staff png: %w", err)
	}
	return buf.Bytes(), nil
}

// toPixelY maps a staff-unit y (lines at 0..4, top of drawing at 6) to
// an image y coordinate.
func toPixelY(unitY float64) float64 {
	return (topUnit - unitY) * unitPx
}

// LedgerIndices returns the even staff indices that need ledger lines
// for a note at staffIndex, nearest the staff first. Positions within
// the staff need none.
func LedgerIndices(staffIndex int) []int {
	var out []int
	switch {
	case staffIndex > 8:
		for idx := 10; idx <= staffIndex; idx += 2 {
			out = append(out, idx)
		}
	case staffIndex < 0:
		for idx := -2; idx >= staffIndex; idx -= 2 {
			out = append(out, idx)
		}
	}
	return out
}
