// Package music holds the note tables and answer parsing for the drill.
//
// Positions on the staff are expressed as diatonic staff indices:
// index 0 is the bottom staff line, 1 the first space, 2 the second line,
// and so on up to 8 (top line). Negative indices and indices above 8 are
// ledger positions. Each clef maps a contiguous run of indices onto a
// diatonic pitch sequence.
package music

import (
	"fmt"
	"math/rand"
	"strings"
)

// Clef identifies the staff context that fixes the pitch mapping.
type Clef string

const (
	ClefTreble Clef = "treble"
	ClefBass   Clef = "bass"
)

// Clefs lists the supported clefs in drill order.
var Clefs = []Clef{ClefTreble, ClefBass}

// ReferenceIndex returns the staff index of the clef's reference line:
// the G4 line for treble, the F3 line for bass. The clef label is drawn
// centered on this line.
func (c Clef) ReferenceIndex() int {
	if c == ClefBass {
		return 6
	}
	return 2
}

// Label returns the solfège name of the clef's reference note.
func (c Clef) Label() string {
	if c == ClefBass {
		return "Fa"
	}
	return "Sol"
}

// Diatonic pitch runs per clef. The run starts two diatonic steps below
// the bottom staff line, so staffIndex+2 indexes into it.
var (
	treblePitches = []string{
		"C4", "D4", "E4", "F4", "G4", "A4", "B4",
		"C5", "D5", "E5", "F5", "G5", "A5", "B5", "C6",
	}
	bassPitches = []string{
		"E2", "F2", "G2", "A2", "B2", "C3", "D3", "E3",
		"F3", "G3", "A3", "B3", "C4", "D4", "E4", "F4",
	}
)

// LetterOrder is the display order for per-note aggregation and charts.
var LetterOrder = []string{"C", "D", "E", "F", "G", "A", "B"}

var letterToSolfege = map[string]string{
	"C": "Do", "D": "Re", "E": "Mi", "F": "Fa", "G": "Sol", "A": "La", "B": "Si",
}

var solfegeToLetter = map[string]string{
	"do": "C", "re": "D", "mi": "E", "fa": "F", "sol": "G", "la": "A", "si": "B",
}

// Note is a concrete drill question: a staff position in a clef together
// with its resolved pitch, letter name and solfège name.
type Note struct {
	Clef       Clef
	StaffIndex int
	Pitch      string // e.g. "C4"
	Letter     string // e.g. "C"
	Solfege    string // e.g. "Do"
}

// NoteAt resolves the note at a staff index in the given clef.
// Indices outside the clef's pitch run are an error.
func NoteAt(clef Clef, staffIndex int) (Note, error) {
	var pitches []string
	switch clef {
	case ClefTreble:
		pitches = treblePitches
	case ClefBass:
		pitches = bassPitches
	default:
		return Note{}, fmt.Errorf("unknown clef %q", clef)
	}

	idx := staffIndex + 2
	if idx < 0 || idx >= len(pitches) {
		return Note{}, fmt.Errorf("staff index %d out of range for %s clef", staffIndex, clef)
	}

	pitch := pitches[idx]
	letter := pitch[:1]
	return Note{
		Clef:       clef,
		StaffIndex: staffIndex,
		Pitch:      pitch,
		Letter:     letter,
		Solfege:    letterToSolfege[letter],
	}, nil
}

// RandomNote picks a random clef and a random staff index within
// [minIndex, maxIndex], re-drawing until the position is valid for the
// chosen clef's pitch table.
func RandomNote(rng *rand.Rand, minIndex, maxIndex int) Note {
	for {
		clef := Clefs[rng.Intn(len(Clefs))]
		staffIndex := minIndex + rng.Intn(maxIndex-minIndex+1)
		n, err := NoteAt(clef, staffIndex)
		if err == nil {
			return n
		}
	}
}

// SolfegeFor returns the solfège name for a letter, or "" if unknown.
func SolfegeFor(letter string) string {
	return letterToSolfege[strings.ToUpper(letter)]
}

var accentReplacer = strings.NewReplacer(
	"ó", "o", "á", "a", "é", "e", "í", "i", "ú", "u",
)

// NormalizeAnswer reduces a typed answer to a canonical note letter
// (C..B). It accepts solfège names ("do".."si") and English letters, with
// or without an octave digit, and tolerates the usual Spanish accents.
// The second return is false when the text is not recognizable as a note.
func NormalizeAnswer(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	t = accentReplacer.Replace(t)

	// Strip octave digits ("do4", "C5").
	var b strings.Builder
	for _, r := range t {
		if r < '0' || r > '9' {
			b.WriteRune(r)
		}
	}
	t = b.String()

	if letter, ok := solfegeToLetter[t]; ok {
		return letter, true
	}

	if t == "" {
		return "", false
	}

	first := t[0]
	if first >= 'a' && first <= 'g' {
		return strings.ToUpper(string(first)), true
	}

	return "", false
}
