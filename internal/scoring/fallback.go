package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trustflow-service/internal/models"
)

// Terms that mark a listing as likely fraudulent when they appear in the
// title or description.
var suspiciousTerms = []string{
	"western union",
	"wire transfer",
	"gift card",
	"crypto only",
	"no refunds",
	"urgent sale",
	"act now",
	"whatsapp only",
	"outside the platform",
}

// High-value brands and product lines used by the unrealistic-price rule.
var luxuryKeywords = []string{
	"rolex",
	"omega",
	"cartier",
	"gucci",
	"louis vuitton",
	"iphone",
	"macbook",
	"playstation",
	"rtx",
	"gold",
}

// Cents below which a luxury-keyword listing is considered unrealistically
// cheap.
const lowPriceThreshold = 50_00

const (
	shortDescriptionLen     = 20
	shortDescriptionPenalty = 15
	suspiciousTermPenalty   = 20
	lowPricePenalty         = 40
)

// Fallback is the deterministic scoring policy used whenever no remote
// backend is configured or the remote path fails. It starts from the
// seller's reputation and applies penalty rules in a fixed order.
func Fallback(in Input) models.TrustAssessment {
	score := int(in.SellerReputation)
	flags := []string{}

	if len(in.Description) < shortDescriptionLen {
		score -= shortDescriptionPenalty
		flags = append(flags, "short description")
	}

	haystack := strings.ToLower(in.Title + " " + in.Description)
	for _, term := range suspiciousTerms {
		if strings.Contains(haystack, term) {
			score -= suspiciousTermPenalty
			flags = append(flags, "suspicious term: "+term)
		}
	}

	if in.Price < lowPriceThreshold && containsLuxuryKeyword(in.Title) {
		score -= lowPricePenalty
		flags = append(flags, "unrealistically low price")
	}

	score = clampScore(score)
	level, escrow := riskLevelFor(score)

	return models.TrustAssessment{
		TrustScore:        score,
		RiskLevel:         level,
		RedFlags:          flags,
		Reasoning:         fmt.Sprintf("Heuristic assessment from seller reputation %.0f with %d red flags.", in.SellerReputation, len(flags)),
		RecommendedEscrow: escrow,
	}
}

func containsLuxuryKeyword(title string) bool {
	title = strings.ToLower(title)
	for _, kw := range luxuryKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// HeuristicScorer scores with the deterministic policy only.
type HeuristicScorer struct{}

func (HeuristicScorer) Score(_ context.Context, in Input) models.TrustAssessment {
	start := time.Now()
	defer observe("heuristic", start)
	return Fallback(in)
}
