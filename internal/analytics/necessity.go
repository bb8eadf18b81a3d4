package analytics

import (
	"math"
	"strings"
)

// Necessity decisions.
const (
	DecisionBuy   = "BUY"
	DecisionDelay = "DELAY"
	DecisionAvoid = "AVOID"
)

// PurchaseRequest describes a proposed purchase to score. Type is "need" or
// anything else ("want"); Frequency is "high", "medium" or "low".
type PurchaseRequest struct {
	Type      string  `json:"type"`
	Frequency string  `json:"frequency"`
	Amount    float64 `json:"amount"`
	Budget    float64 `json:"budget"`
}

// PurchaseScore is the 0-100 necessity score and the derived decision.
type PurchaseScore struct {
	Score    int    `json:"score"`
	Decision string `json:"decision"`
}

// ScorePurchase scores a proposed purchase: needs beat wants, frequent use
// beats rare use, and cheap-relative-to-budget beats expensive. The raw sum
// can exceed 100 and is capped. Invalid numeric inputs count as 0 rather
// than failing.
func ScorePurchase(req PurchaseRequest) PurchaseScore {
	score := 0

	if strings.EqualFold(strings.TrimSpace(req.Type), "need") {
		score += 50
	} else {
		score += 20
	}

	switch strings.ToLower(strings.TrimSpace(req.Frequency)) {
	case "high":
		score += 30
	case "medium":
		score += 20
	default:
		score += 10
	}

	amount := sanitizeAmount(req.Amount)
	budget := sanitizeAmount(req.Budget)
	if budget > 0 {
		switch ratio := amount / budget; {
		case ratio < 0.05:
			score += 40
		case ratio < 0.15:
			score += 25
		default:
			score += 10
		}
	} else {
		score += 20
	}

	if score > 100 {
		score = 100
	}

	decision := DecisionAvoid
	switch {
	case score >= 85:
		decision = DecisionBuy
	case score >= 45:
		decision = DecisionDelay
	}

	return PurchaseScore{Score: score, Decision: decision}
}

// sanitizeAmount coerces NaN, infinite and negative values to 0.
func sanitizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
