package model

// ConfidenceBand classifies a confidence score.
type ConfidenceBand string

// Confidence bands.
const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)

// Band cutoffs. These are the only place the thresholds are defined;
// every call site that bands a confidence score goes through BandFor.
const (
	HighConfidenceCutoff   = 0.85
	MediumConfidenceCutoff = 0.60
)

// BandFor returns the confidence band for a score.
func BandFor(confidence float64) ConfidenceBand {
	switch {
	case confidence >= HighConfidenceCutoff:
		return BandHigh
	case confidence >= MediumConfidenceCutoff:
		return BandMedium
	default:
		return BandLow
	}
}
