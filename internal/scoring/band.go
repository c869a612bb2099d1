package scoring

// ReadinessThreshold is the percentage at which an organization is
// presented as ready. It is a display convention, separate from the
// qualifying assessment threshold.
const ReadinessThreshold = 60

// Band is a coarse readiness level derived from the total percentage.
type Band string

const (
	BandInitial    Band = "initial"
	BandDeveloping Band = "developing"
	BandReady      Band = "ready"
	BandAdvanced   Band = "advanced"
)

// BandFor maps a 0–100 percentage to its readiness band.
func BandFor(percentage int) Band {
	switch {
	case percentage >= 80:
		return BandAdvanced
	case percentage >= ReadinessThreshold:
		return BandReady
	case percentage >= 40:
		return BandDeveloping
	default:
		return BandInitial
	}
}

// Band returns the readiness band of the snapshot.
func (s Snapshot) Band() Band {
	return BandFor(s.Percentage)
}

// MeetsReadiness reports whether the total reaches ReadinessThreshold.
func (s Snapshot) MeetsReadiness() bool {
	return s.Percentage >= ReadinessThreshold
}
