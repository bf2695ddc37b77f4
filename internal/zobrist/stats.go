package zobrist

import (
	"math"
	"math/bits"
)

// Report summarizes the statistical health of a table.
type Report struct {
	Keys         int
	BitCounts    [64]int // number of keys with each bit set
	Zeros        int     // keys equal to zero
	Duplicates   int     // keys that repeat an earlier key
	MeanPopcount float64
	// SquarePopcount is the mean popcount of the 256 keys of each square.
	SquarePopcount [Ranks][Files]float64
}

// Analyze computes a Report for t.
func Analyze(t *Table) Report {
	rep := Report{Keys: Size}
	seen := make(map[uint64]struct{}, Size)
	total := 0

	for r := 0; r < Ranks; r++ {
		for f := 0; f < Files; f++ {
			square := 0
			for s := 0; s < States; s++ {
				k := t[r][f][s]
				if k == 0 {
					rep.Zeros++
				}
				if _, ok := seen[k]; ok {
					rep.Duplicates++
				} else {
					seen[k] = struct{}{}
				}
				for x := k; x != 0; x &= x - 1 {
					rep.BitCounts[bits.TrailingZeros64(x)]++
				}
				square += bits.OnesCount64(k)
			}
			rep.SquarePopcount[r][f] = float64(square) / States
			total += square
		}
	}
	rep.MeanPopcount = float64(total) / Size
	return rep
}

// BitBalance returns the fraction of keys with bit i set.
func (r Report) BitBalance(i int) float64 {
	if r.Keys == 0 {
		return 0
	}
	return float64(r.BitCounts[i]) / float64(r.Keys)
}

// MaxBitBias returns the largest distance of any bit's balance from 0.5.
func (r Report) MaxBitBias() float64 {
	var worst float64
	for i := range r.BitCounts {
		worst = math.Max(worst, math.Abs(r.BitBalance(i)-0.5))
	}
	return worst
}
