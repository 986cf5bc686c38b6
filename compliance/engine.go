package compliance

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go-dispensary/models"
)

// MinimumAge is the legal purchase age. Submissions below it are the
// one unconditional hard block in age verification.
const MinimumAge = 21

const (
	youngAdultMaxAge = 25
	rapidRetryMs     = int64(5000)
	fraudLogCap      = 50

	youngAdultRisk         = 0.2
	missingBirthDateRisk   = 0.4
	shortUserAgentRisk     = 0.3
	automatedAgentRisk     = 0.4
	legacyAgentRisk        = 0.2
	userAgentRiskCap       = 0.5
	rapidRetryRisk         = 0.3
	missingTimestampRisk   = 0.1
	missingStateRisk       = 0.3
	minPlausibleAgentChars = 10
)

var automationKeywords = []string{"bot", "crawler", "spider", "automation"}
var legacySignatures = []string{"msie", "trident"}

// AgeInput is one age-verification submission. Every field is allowed
// to be absent or malformed; missing data raises risk, it never raises
// an error.
type AgeInput struct {
	BirthDate *time.Time
	UserAgent string
	Timestamp int64 // submission time, epoch milliseconds
}

// Engine evaluates age and shipping-state eligibility. Construct one
// per process with NewEngine and share it by reference; it carries no
// package-level state, so tests can run isolated instances.
type Engine struct {
	threshold float64
	blocked   map[string]struct{}
	geo       GeoResolver
	nowFn     func() time.Time

	mu          sync.Mutex
	lastAttempt map[string]int64
	fraudLog    []models.FraudLogEntry
}

// Option configures an Engine.
type Option func(*Engine)

// WithGeoResolver wires a geolocation fallback for state checks.
func WithGeoResolver(geo GeoResolver) Option {
	return func(e *Engine) { e.geo = geo }
}

// WithClock overrides the engine's clock.
func WithClock(nowFn func() time.Time) Option {
	return func(e *Engine) { e.nowFn = nowFn }
}

// NewEngine creates an eligibility engine for the given rule set.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		threshold:   cfg.HighRiskThreshold,
		blocked:     cfg.blockedSet(),
		geo:         NoopResolver{},
		nowFn:       time.Now,
		lastAttempt: make(map[string]int64),
	}
	if e.threshold <= 0 {
		e.threshold = 0.8
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// VerifyAge evaluates one age-verification submission for a session.
// Under-age is the only unconditional block; everything else feeds a
// risk score clamped to [0,1]. The submission timestamp is recorded as
// the session's last attempt regardless of outcome.
func (e *Engine) VerifyAge(sessionID string, input AgeInput) models.EligibilityDecision {
	now := e.nowFn()
	var risk float64
	var reasons []string

	if input.BirthDate != nil {
		age := wholeYears(*input.BirthDate, now)
		if age < MinimumAge {
			e.recordAttempt(sessionID, input.Timestamp)
			return models.EligibilityDecision{
				IsValid:   false,
				RiskScore: 1.0,
				Reasons:   []string{"User is under 21 years old"},
			}
		}
		if age < youngAdultMaxAge {
			risk += youngAdultRisk
			reasons = append(reasons, fmt.Sprintf("Young adult (age %d): additional verification scrutiny", age))
		}
	} else {
		risk += missingBirthDateRisk
		reasons = append(reasons, "No birth date provided")
	}

	uaRisk, uaReasons := scoreUserAgent(input.UserAgent)
	risk += uaRisk
	reasons = append(reasons, uaReasons...)

	if input.Timestamp <= 0 {
		risk += missingTimestampRisk
		reasons = append(reasons, "Missing or malformed submission timestamp")
	} else if last, ok := e.swapAttempt(sessionID, input.Timestamp); ok {
		delta := input.Timestamp - last
		if delta < 0 {
			delta = -delta
		}
		if delta < rapidRetryMs {
			risk += rapidRetryRisk
			reasons = append(reasons, "Rapid successive verification attempts")
		}
	}

	risk = clampScore(risk)
	if risk > e.threshold {
		e.logHighRisk(now, input.UserAgent, risk, reasons)
	}
	return models.EligibilityDecision{
		IsValid:   risk < e.threshold,
		RiskScore: risk,
		Reasons:   reasons,
	}
}

// CheckStateCompliance evaluates shipping eligibility for a state
// code. An empty code falls back to IP geolocation when an address is
// supplied; a missing or unresolvable state is a soft risk signal, not
// a block.
func (e *Engine) CheckStateCompliance(stateCode, ipAddress string) models.EligibilityDecision {
	code := strings.ToUpper(strings.TrimSpace(stateCode))
	if code != "" {
		if _, bad := e.blocked[code]; bad {
			return models.EligibilityDecision{
				IsValid:   false,
				RiskScore: 1.0,
				Reasons:   []string{fmt.Sprintf("Shipping to %s is not permitted", code)},
			}
		}
		return models.EligibilityDecision{IsValid: true, RiskScore: 0}
	}

	risk := missingStateRisk
	reasons := []string{"No state information provided"}
	if strings.TrimSpace(ipAddress) != "" && e.geo != nil {
		inferred, uncertainty := e.geo.StateForIP(ipAddress)
		inferred = strings.ToUpper(strings.TrimSpace(inferred))
		if inferred != "" {
			if _, bad := e.blocked[inferred]; bad {
				return models.EligibilityDecision{
					IsValid:   false,
					RiskScore: 1.0,
					Reasons:   []string{fmt.Sprintf("Shipping to %s (inferred from IP address) is not permitted", inferred)},
				}
			}
		}
		risk += uncertainty
	}
	return models.EligibilityDecision{
		IsValid:   true,
		RiskScore: clampScore(risk),
		Reasons:   reasons,
	}
}

// FraudLog returns a copy of the bounded high-risk submission log,
// oldest first.
func (e *Engine) FraudLog() []models.FraudLogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.FraudLogEntry, len(e.fraudLog))
	copy(out, e.fraudLog)
	return out
}

// recordAttempt stores the submission timestamp for a session.
func (e *Engine) recordAttempt(sessionID string, ts int64) {
	if ts <= 0 {
		return
	}
	e.mu.Lock()
	e.lastAttempt[sessionID] = ts
	e.mu.Unlock()
}

// swapAttempt records the new timestamp and returns the previous one,
// if any.
func (e *Engine) swapAttempt(sessionID string, ts int64) (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	last, ok := e.lastAttempt[sessionID]
	e.lastAttempt[sessionID] = ts
	return last, ok
}

func (e *Engine) logHighRisk(now time.Time, userAgent string, score float64, reasons []string) {
	entry := models.FraudLogEntry{
		Timestamp: now,
		UserAgent: userAgent,
		RiskScore: score,
		Reasons:   append([]string(nil), reasons...),
	}
	e.mu.Lock()
	e.fraudLog = append(e.fraudLog, entry)
	if len(e.fraudLog) > fraudLogCap {
		e.fraudLog = e.fraudLog[len(e.fraudLog)-fraudLogCap:]
	}
	e.mu.Unlock()
}

// scoreUserAgent accumulates independent user-agent risk signals. The
// combined contribution is capped at userAgentRiskCap.
func scoreUserAgent(ua string) (float64, []string) {
	var risk float64
	var reasons []string

	trimmed := strings.TrimSpace(ua)
	if len(trimmed) < minPlausibleAgentChars {
		risk += shortUserAgentRisk
		reasons = append(reasons, "Missing or implausibly short user agent")
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range automationKeywords {
		if strings.Contains(lower, kw) {
			risk += automatedAgentRisk
			reasons = append(reasons, "Automated browser detected")
			break
		}
	}
	for _, sig := range legacySignatures {
		if strings.Contains(lower, sig) {
			risk += legacyAgentRisk
			reasons = append(reasons, "Legacy browser signature")
			break
		}
	}
	if risk > userAgentRiskCap {
		risk = userAgentRiskCap
	}
	return risk, reasons
}

// wholeYears computes age in completed calendar years, not day counts.
func wholeYears(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
