package controllers

import (
	"encoding/json"
	"go-dispensary/compliance"
	"go-dispensary/middleware"
	"go-dispensary/session"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// ComplianceController exposes the eligibility engine over HTTP. The
// engine itself never errors on bad input; every response is an
// EligibilityDecision and the HTTP status is always 200 — blocking is
// the client's job, driven by is_valid.
type ComplianceController struct {
	Engine   *compliance.Engine
	Sessions *session.Manager
}

// NewComplianceController creates a new ComplianceController
func NewComplianceController(eng *compliance.Engine, sessions *session.Manager) *ComplianceController {
	return &ComplianceController{
		Engine:   eng,
		Sessions: sessions,
	}
}

// VerifyAge evaluates one age-verification submission for the session
func (cc *ComplianceController) VerifyAge(w http.ResponseWriter, r *http.Request) {
	var input struct {
		BirthDate string `json:"birth_date"` // YYYY-MM-DD, optional
		Timestamp int64  `json:"timestamp"`  // epoch milliseconds, optional
	}
	// An unreadable body degrades to an empty submission; missing data
	// is a risk signal here, not a request error.
	_ = json.NewDecoder(r.Body).Decode(&input)

	ageInput := compliance.AgeInput{
		UserAgent: r.UserAgent(),
		Timestamp: input.Timestamp,
	}
	if input.BirthDate != "" {
		if birthDate, err := time.Parse("2006-01-02", input.BirthDate); err == nil {
			ageInput.BirthDate = &birthDate
		}
	}
	if ageInput.Timestamp == 0 {
		ageInput.Timestamp = time.Now().UnixMilli()
	}

	sessionID := middleware.SessionID(r.Context())
	decision := cc.Engine.VerifyAge(sessionID, ageInput)

	if decision.IsValid {
		state := cc.Sessions.Get(r.Context(), sessionID)
		state.MarkAgeVerified()
		cc.Sessions.Save(r.Context(), state)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decision)
}

// CheckState evaluates shipping eligibility for a state code given in
// the path.
func (cc *ComplianceController) CheckState(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	cc.evaluateState(w, r, params["code"])
}

// CheckStateFallback evaluates shipping eligibility from the request
// body; an absent state code falls back to IP geolocation.
func (cc *ComplianceController) CheckStateFallback(w http.ResponseWriter, r *http.Request) {
	var input struct {
		State string `json:"state"`
	}
	_ = json.NewDecoder(r.Body).Decode(&input)
	cc.evaluateState(w, r, input.State)
}

func (cc *ComplianceController) evaluateState(w http.ResponseWriter, r *http.Request, stateCode string) {
	decision := cc.Engine.CheckStateCompliance(stateCode, clientIP(r))

	if decision.IsValid && strings.TrimSpace(stateCode) != "" {
		state := cc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))
		state.SetShippingState(strings.ToUpper(strings.TrimSpace(stateCode)))
		cc.Sessions.Save(r.Context(), state)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decision)
}

// GetFraudLog returns the bounded high-risk submission log (Admin only)
func (cc *ComplianceController) GetFraudLog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cc.Engine.FraudLog())
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
