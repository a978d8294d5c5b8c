// Package fraud estimates transaction risk with a fixed rule set. It is
// deterministic and performs no I/O.
package fraud

import (
	"net"
	"strings"
)

// Amount thresholds in cents.
const (
	highValueThreshold     = 5_000_00
	veryHighValueThreshold = 10_000_00
)

const (
	baseProbability = 0.05
	maxProbability  = 0.99
)

// RiskProbability returns a fraud probability in [0.05, 0.99] for a
// transaction of amount cents originating from originAddr. The origin
// address is a reserved policy hook: it is parsed but does not currently
// alter the result.
func RiskProbability(amount int64, originAddr string) float64 {
	p := baseProbability
	if amount > highValueThreshold {
		p += 0.30
	}
	if amount > veryHighValueThreshold {
		p += 0.20
	}

	// Reserved: origin-based adjustments (blocklists, geo rules) would land
	// here. Private ranges are recognized so the hook has a stable notion of
	// internal traffic, but neither branch changes the score.
	if ip := net.ParseIP(strings.TrimSpace(originAddr)); ip != nil {
		_ = ip.IsPrivate() || ip.IsLoopback()
	}

	if p > maxProbability {
		p = maxProbability
	}
	return p
}
