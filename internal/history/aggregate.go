package history

import (
	"math"

	"github.com/csoneira/solfeo-bot/internal/music"
	"github.com/csoneira/solfeo-bot/internal/session"
)

// NoteStats holds the per-note aggregates for one clef/letter bucket.
type NoteStats struct {
	Attempts int
	Corrects int
	// AvgSeconds and StdSeconds describe the latency of correct answers
	// only (population standard deviation; zero with fewer than two
	// correct answers).
	AvgSeconds float64
	StdSeconds float64
	// SuccessRate is in percent; SuccessSE is its binomial standard
	// error, also in percent.
	SuccessRate float64
	SuccessSE   float64
}

// Aggregation indexes note stats by clef and then by letter.
type Aggregation map[music.Clef]map[string]NoteStats

// Get returns the stats bucket for a clef and letter; the zero value
// when the bucket has no attempts.
func (a Aggregation) Get(clef music.Clef, letter string) NoteStats {
	if letters, ok := a[clef]; ok {
		return letters[letter]
	}
	return NoteStats{}
}

// Aggregate buckets rounds per clef and letter and derives latency and
// success statistics for each bucket.
func Aggregate(rounds []session.Round) Aggregation {
	attempts := map[music.Clef]map[string]int{}
	corrects := map[music.Clef]map[string]int{}
	times := map[music.Clef]map[string][]float64{}

	bump := func(m map[music.Clef]map[string]int, clef music.Clef, letter string) {
		if m[clef] == nil {
			m[clef] = map[string]int{}
		}
		m[clef][letter]++
	}

	for _, r := range rounds {
		bump(attempts, r.Clef, r.Letter)
		if r.Correct {
			bump(corrects, r.Clef, r.Letter)
			if times[r.Clef] == nil {
				times[r.Clef] = map[string][]float64{}
			}
			times[r.Clef][r.Letter] = append(times[r.Clef][r.Letter], r.Seconds)
		}
	}

	agg := Aggregation{}
	for clef, letters := range attempts {
		agg[clef] = map[string]NoteStats{}
		for letter, n := range letters {
			c := corrects[clef][letter]
			ts := times[clef][letter]

			stats := NoteStats{Attempts: n, Corrects: c}
			stats.AvgSeconds = mean(ts)
			if len(ts) > 1 {
				stats.StdSeconds = pstdev(ts)
			}
			rate := float64(c) / float64(n)
			stats.SuccessRate = rate * 100
			stats.SuccessSE = math.Sqrt(rate*(1-rate)/float64(n)) * 100

			agg[clef][letter] = stats
		}
	}
	return agg
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// pstdev is the population standard deviation.
func pstdev(xs []float64) float64 {
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
