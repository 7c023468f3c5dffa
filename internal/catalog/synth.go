package catalog

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/zeebo/xxh3"
)

// Synth fills in values the datasets do not carry. It is seeded from a
// record's natural key, so the same record always gets the same values.
type Synth struct {
	rand    *rand.Rand
	counter int
}

func NewSynth(seed string) *Synth {
	return &Synth{
		rand: rand.New(rand.NewSource(int64(xxh3.HashString(seed)))),
	}
}

// Price returns a value in [min, max) rounded to two decimals.
func (g *Synth) Price(min, max float64) float64 {
	v := min + g.rand.Float64()*(max-min)
	return math.Round(v*100) / 100
}

// IntBetween returns a value in [min, max].
func (g *Synth) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.rand.Intn(max-min+1)
}

func (g *Synth) Bool() bool {
	return g.rand.Intn(2) == 1
}

// SKU builds "<prefix>-<6 digits>". Consecutive calls on one Synth never repeat.
func (g *Synth) SKU(prefix string) string {
	g.counter++
	return fmt.Sprintf("%s-%06d", prefix, (g.rand.Intn(9000)+1000)*100+g.counter%100)
}

// DurationMinutes picks a plausible workshop slot length.
func (g *Synth) DurationMinutes() int {
	slots := []int{30, 45, 60, 90, 120, 180}
	return slots[g.rand.Intn(len(slots))]
}
