package analytics

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/csoneira/solfeo-bot/internal/history"
	"github.com/csoneira/solfeo-bot/internal/music"
	"github.com/csoneira/solfeo-bot/internal/session"
)

func sampleAggregation() history.Aggregation {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rounds := []session.Round{
		{Timestamp: ts, Clef: music.ClefTreble, Letter: "C", Solfege: "do", Correct: true, Seconds: 2.5},
		{Timestamp: ts, Clef: music.ClefTreble, Letter: "C", Solfege: "do", Correct: true, Seconds: 3.5},
		{Timestamp: ts, Clef: music.ClefTreble, Letter: "C", Solfege: "do", Correct: false, Seconds: 8},
		{Timestamp: ts, Clef: music.ClefBass, Letter: "G", Solfege: "sol", Correct: true, Seconds: 1.25},
	}
	return history.Aggregate(rounds)
}

// --- series extraction ---

func TestTimeSeries(t *testing.T) {
	s := timeSeries(sampleAggregation(), music.ClefTreble)
	if s.Len() != len(music.LetterOrder) {
		t.Fatalf("series length = %d, want %d", s.Len(), len(music.LetterOrder))
	}
	// C is the first letter in display order.
	if got := s.means[0]; got != 3.0 {
		t.Errorf("treble C mean = %v, want 3.0", got)
	}
	if got := s.errs[0]; got != 0.5 {
		t.Errorf("treble C spread = %v, want 0.5", got)
	}
	// No treble G attempts were made.
	if got := s.means[4]; got != 0 {
		t.Errorf("treble G mean = %v, want 0", got)
	}
}

func TestSuccessSeries(t *testing.T) {
	s := successSeries(sampleAggregation(), music.ClefTreble)
	want := 2.0 / 3.0 * 100
	if math.Abs(s.means[0]-want) > 1e-9 {
		t.Errorf("treble C success = %v, want %v", s.means[0], want)
	}
	if s.errs[0] <= 0 {
		t.Errorf("treble C standard error = %v, want > 0", s.errs[0])
	}
}

func TestTimeYMax(t *testing.T) {
	panels := []series{
		{means: []float64{3.0}, errs: []float64{0.5}},
		{means: []float64{1.25}, errs: []float64{0}},
	}
	want := 3.5 * 1.10
	if got := timeYMax(panels); math.Abs(got-want) > 1e-9 {
		t.Errorf("timeYMax = %v, want %v", got, want)
	}
	if got := timeYMax([]series{{means: []float64{0.1}, errs: []float64{0}}}); got != 1.0 {
		t.Errorf("timeYMax floor = %v, want 1.0", got)
	}
}

// --- charts ---

func TestTimeChart(t *testing.T) {
	data, err := TimeChart(sampleAggregation())
	if err != nil {
		t.Fatalf("TimeChart: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("TimeChart output is not a PNG")
	}
}

func TestSuccessChart(t *testing.T) {
	data, err := SuccessChart(sampleAggregation())
	if err != nil {
		t.Fatalf("SuccessChart: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("SuccessChart output is not a PNG")
	}
}

func TestChartsNoData(t *testing.T) {
	empty := history.Aggregate(nil)
	if _, err := TimeChart(empty); err != ErrNoData {
		t.Errorf("TimeChart(empty) error = %v, want ErrNoData", err)
	}
	if _, err := SuccessChart(empty); err != ErrNoData {
		t.Errorf("SuccessChart(empty) error = %v, want ErrNoData", err)
	}
}
