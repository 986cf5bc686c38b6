package models

import (
	"time"
)

// EligibilityDecision is the outcome of a single compliance
// evaluation: age verification or shipping-state eligibility. A hard
// policy violation (under-age, denylisted state) always carries a risk
// score of 1.0; soft signals accumulate without blocking until the
// high-risk threshold is crossed.
type EligibilityDecision struct {
	IsValid   bool     `json:"is_valid"`
	RiskScore float64  `json:"risk_score"`
	Reasons   []string `json:"reasons,omitempty"`
}

// FraudLogEntry is one record in the bounded high-risk submission log.
// Observability only; entries never block a flow by themselves.
type FraudLogEntry struct {
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	UserAgent string    `bson:"user_agent" json:"user_agent"`
	RiskScore float64   `bson:"risk_score" json:"risk_score"`
	Reasons   []string  `bson:"reasons" json:"reasons"`
}

// ShopperSession is the client-scoped session the engines decorate:
// whether the shopper passed the age gate and which state they ship to.
type ShopperSession struct {
	SessionID     string    `bson:"session_id" json:"session_id"`
	AgeVerified   bool      `bson:"age_verified" json:"age_verified"`
	SelectedState string    `bson:"selected_state" json:"selected_state"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
