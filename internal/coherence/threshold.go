package coherence

import (
	"math"
	"strconv"
	"strings"
)

// DefaultThreshold is the minimum coherence power a record needs to pass the
// gate. Record construction and the veto message both read it from here.
const DefaultThreshold = 0.7

// Phase is an angle in hundredths of a degree.
type Phase int

// ManifestPhase is the phase stamped on every manifest (180 degrees).
const ManifestPhase Phase = 18000

const fullTurn = 36000

// PhaseFromDegrees wraps degrees into [0, 360) and rounds to hundredths.
func PhaseFromDegrees(degrees float64) Phase {
	wrapped := math.Mod(degrees, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	p := Phase(math.Round(wrapped * 100))
	if p >= fullTurn {
		p -= fullTurn
	}
	return p
}

func (p Phase) Degrees() float64 {
	return float64(p) / 100
}

// formatThreshold renders the threshold with at least one decimal place.
func formatThreshold(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
