package stats

// Band is a letter-grade bucket.
type Band string

// Grade bands from best to worst.
const (
	BandAPlus Band = "A+"
	BandA     Band = "A"
	BandBPlus Band = "B+"
	BandB     Band = "B"
	BandCPlus Band = "C+"
	BandC     Band = "C"
	BandD     Band = "D"
	BandF     Band = "F"
)

// Bands lists every band in descending order.
var Bands = []Band{BandAPlus, BandA, BandBPlus, BandB, BandCPlus, BandC, BandD, BandF}

var thresholds = []struct {
	min  float64
	band Band
}{
	{95, BandAPlus},
	{90, BandA},
	{85, BandBPlus},
	{80, BandB},
	{75, BandCPlus},
	{70, BandC},
	{60, BandD},
}

// GradeOf maps a percentage onto exactly one band. Anything that clears no
// threshold, NaN included, is an F.
func GradeOf(percentage float64) Band {
	for _, t := range thresholds {
		if percentage >= t.min {
			return t.band
		}
	}
	return BandF
}

// Distribution counts scores per band.
type Distribution struct {
	APlus int `json:"A+"`
	A     int `json:"A"`
	BPlus int `json:"B+"`
	B     int `json:"B"`
	CPlus int `json:"C+"`
	C     int `json:"C"`
	D     int `json:"D"`
	F     int `json:"F"`
}

// Add increments the counter for band.
func (d *Distribution) Add(band Band) {
	switch band {
	case BandAPlus:
		d.APlus++
	case BandA:
		d.A++
	case BandBPlus:
		d.BPlus++
	case BandB:
		d.B++
	case BandCPlus:
		d.CPlus++
	case BandC:
		d.C++
	case BandD:
		d.D++
	default:
		d.F++
	}
}

// Count returns the counter for band.
func (d Distribution) Count(band Band) int {
	switch band {
	case BandAPlus:
		return d.APlus
	case BandA:
		return d.A
	case BandBPlus:
		return d.BPlus
	case BandB:
		return d.B
	case BandCPlus:
		return d.CPlus
	case BandC:
		return d.C
	case BandD:
		return d.D
	default:
		return d.F
	}
}

// Total sums every band.
func (d Distribution) Total() int {
	return d.APlus + d.A + d.BPlus + d.B + d.CPlus + d.C + d.D + d.F
}

// ScoreDistribution buckets each individual score into its band.
func ScoreDistribution(scores []float64) Distribution {
	var d Distribution
	for _, s := range scores {
		d.Add(GradeOf(s))
	}
	return d
}
