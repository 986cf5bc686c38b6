package compliance

import (
	"math"
	"testing"
	"time"
)

const desktopAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewEngine(DefaultConfig(), opts...)
}

func birthDateForAge(age int) *time.Time {
	d := testNow.AddDate(-age, 0, -30)
	return &d
}

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", got, want)
	}
}

func TestVerifyAgeUnderageHardBlock(t *testing.T) {
	eng := newTestEngine()
	decision := eng.VerifyAge("s1", AgeInput{
		BirthDate: birthDateForAge(19),
		UserAgent: desktopAgent,
		Timestamp: testNow.UnixMilli(),
	})
	if decision.IsValid {
		t.Fatalf("expected under-age submission to be blocked")
	}
	approx(t, decision.RiskScore, 1.0)
	if len(decision.Reasons) != 1 || decision.Reasons[0] != "User is under 21 years old" {
		t.Fatalf("unexpected reasons: %v", decision.Reasons)
	}
}

func TestVerifyAgeUnderageBlockIgnoresOtherSignals(t *testing.T) {
	eng := newTestEngine()
	// Even a pristine submission cannot rescue an under-age birth date,
	// and a terrible one cannot push the score past 1.0.
	decision := eng.VerifyAge("s1", AgeInput{BirthDate: birthDateForAge(20), UserAgent: "curl-bot", Timestamp: -5})
	if decision.IsValid || decision.RiskScore != 1.0 {
		t.Fatalf("got valid=%v score=%v, want hard block", decision.IsValid, decision.RiskScore)
	}
}

func TestVerifyAgeExactlyTwentyOneBirthdayBoundary(t *testing.T) {
	eng := newTestEngine()

	// 21st birthday is today: exactly of age.
	onBirthday := testNow.AddDate(-21, 0, 0)
	decision := eng.VerifyAge("s1", AgeInput{BirthDate: &onBirthday, UserAgent: desktopAgent, Timestamp: testNow.UnixMilli()})
	if !decision.IsValid {
		t.Fatalf("expected 21st birthday to pass, got %v", decision.Reasons)
	}

	// 21st birthday is tomorrow: still 20.
	dayShort := testNow.AddDate(-21, 0, 1)
	decision = eng.VerifyAge("s2", AgeInput{BirthDate: &dayShort, UserAgent: desktopAgent, Timestamp: testNow.UnixMilli()})
	if decision.IsValid {
		t.Fatalf("expected day-before-birthday submission to be blocked")
	}
}

func TestVerifyAgeAdultCleanSubmission(t *testing.T) {
	eng := newTestEngine()
	decision := eng.VerifyAge("s1", AgeInput{
		BirthDate: birthDateForAge(34),
		UserAgent: desktopAgent,
		Timestamp: testNow.UnixMilli(),
	})
	if !decision.IsValid {
		t.Fatalf("expected clean adult submission to pass, got %v", decision.Reasons)
	}
	approx(t, decision.RiskScore, 0)
	if len(decision.Reasons) != 0 {
		t.Fatalf("expected no reasons, got %v", decision.Reasons)
	}
}

func TestVerifyAgeYoungAdultScrutiny(t *testing.T) {
	eng := newTestEngine()
	decision := eng.VerifyAge("s1", AgeInput{
		BirthDate: birthDateForAge(22),
		UserAgent: desktopAgent,
		Timestamp: testNow.UnixMilli(),
	})
	if !decision.IsValid {
		t.Fatalf("expected young adult to pass")
	}
	approx(t, decision.RiskScore, 0.2)
	if len(decision.Reasons) != 1 {
		t.Fatalf("expected one reason, got %v", decision.Reasons)
	}
}

func TestVerifyAgeMissingBirthDate(t *testing.T) {
	eng := newTestEngine()
	decision := eng.VerifyAge("s1", AgeInput{UserAgent: desktopAgent, Timestamp: testNow.UnixMilli()})
	if !decision.IsValid {
		t.Fatalf("missing birth date alone must not block")
	}
	approx(t, decision.RiskScore, 0.4)
	if decision.Reasons[0] != "No birth date provided" {
		t.Fatalf("unexpected reasons: %v", decision.Reasons)
	}
}

func TestVerifyAgeUserAgentContributionCapped(t *testing.T) {
	eng := newTestEngine()
	// "bot" is both implausibly short (0.3) and an automation keyword
	// (0.4); the combined contribution must cap at 0.5.
	decision := eng.VerifyAge("s1", AgeInput{
		BirthDate: birthDateForAge(40),
		UserAgent: "bot",
		Timestamp: testNow.UnixMilli(),
	})
	approx(t, decision.RiskScore, 0.5)
	if !decision.IsValid {
		t.Fatalf("capped user-agent risk alone must not block")
	}
}

func TestVerifyAgeAutomatedAgentDetected(t *testing.T) {
	eng := newTestEngine()
	decision := eng.VerifyAge("s1", AgeInput{
		BirthDate: birthDateForAge(40),
		UserAgent: "Googlebot/2.1 (+http://www.google.com/bot.html)",
		Timestamp: testNow.UnixMilli(),
	})
	approx(t, decision.RiskScore, 0.4)
	found := false
	for _, reason := range decision.Reasons {
		if reason == "Automated browser detected" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected automation reason, got %v", decision.Reasons)
	}
}

func TestVerifyAgeLegacyBrowserSignature(t *testing.T) {
	eng := newTestEngine()
	decision := eng.VerifyAge("s1", AgeInput{
		BirthDate: birthDateForAge(40),
		UserAgent: "Mozilla/4.0 (compatible; MSIE 6.0; Windows NT 5.1)",
		Timestamp: testNow.UnixMilli(),
	})
	approx(t, decision.RiskScore, 0.2)
	if !decision.IsValid {
		t.Fatalf("legacy browser alone must not block")
	}
}

func TestVerifyAgeRapidRetry(t *testing.T) {
	eng := newTestEngine()
	first := eng.VerifyAge("s1", AgeInput{BirthDate: birthDateForAge(40), UserAgent: desktopAgent, Timestamp: testNow.UnixMilli()})
	approx(t, first.RiskScore, 0)

	second := eng.VerifyAge("s1", AgeInput{BirthDate: birthDateForAge(40), UserAgent: desktopAgent, Timestamp: testNow.UnixMilli() + 1000})
	approx(t, second.RiskScore, 0.3)
	if second.Reasons[0] != "Rapid successive verification attempts" {
		t.Fatalf("unexpected reasons: %v", second.Reasons)
	}

	// Sessions are independent.
	other := eng.VerifyAge("s2", AgeInput{BirthDate: birthDateForAge(40), UserAgent: desktopAgent, Timestamp: testNow.UnixMilli() + 2000})
	approx(t, other.RiskScore, 0)

	// Outside the window the signal clears.
	third := eng.VerifyAge("s1", AgeInput{BirthDate: birthDateForAge(40), UserAgent: desktopAgent, Timestamp: testNow.UnixMilli() + 60000})
	approx(t, third.RiskScore, 0)
}

func TestVerifyAgeMalformedTimestampDegrades(t *testing.T) {
	eng := newTestEngine()
	decision := eng.VerifyAge("s1", AgeInput{BirthDate: birthDateForAge(40), UserAgent: desktopAgent, Timestamp: 0})
	if !decision.IsValid {
		t.Fatalf("malformed timestamp must degrade, not block")
	}
	approx(t, decision.RiskScore, 0.1)
}

func TestVerifyAgeHighRiskSoftBlock(t *testing.T) {
	eng := newTestEngine()
	// Missing birth date (0.4) + capped bad user agent (0.5) = 0.9:
	// over the threshold without being a hard block.
	decision := eng.VerifyAge("s1", AgeInput{UserAgent: "bot", Timestamp: testNow.UnixMilli()})
	if decision.IsValid {
		t.Fatalf("expected high-risk submission to be blocked")
	}
	approx(t, decision.RiskScore, 0.9)

	entries := eng.FraudLog()
	if len(entries) != 1 {
		t.Fatalf("expected one fraud log entry, got %d", len(entries))
	}
	if entries[0].UserAgent != "bot" {
		t.Fatalf("unexpected log entry: %+v", entries[0])
	}
}

func TestFraudLogBounded(t *testing.T) {
	eng := newTestEngine()
	for i := 0; i < 60; i++ {
		eng.VerifyAge("s1", AgeInput{UserAgent: "bot", Timestamp: 0})
	}
	if got := len(eng.FraudLog()); got != 50 {
		t.Fatalf("fraud log length = %d, want 50", got)
	}
}

func TestCheckStateComplianceDenylisted(t *testing.T) {
	eng := newTestEngine()
	decision := eng.CheckStateCompliance("ID", "")
	if decision.IsValid {
		t.Fatalf("expected denylisted state to block")
	}
	approx(t, decision.RiskScore, 1.0)
	if decision.Reasons[0] != "Shipping to ID is not permitted" {
		t.Fatalf("unexpected reasons: %v", decision.Reasons)
	}
}

func TestCheckStateComplianceCaseInsensitive(t *testing.T) {
	eng := newTestEngine()
	lower := eng.CheckStateCompliance("id", "")
	upper := eng.CheckStateCompliance("ID", "")
	if lower.IsValid != upper.IsValid || lower.RiskScore != upper.RiskScore {
		t.Fatalf("case sensitivity leak: %+v vs %+v", lower, upper)
	}
	if lower.Reasons[0] != upper.Reasons[0] {
		t.Fatalf("reasons differ: %q vs %q", lower.Reasons[0], upper.Reasons[0])
	}
}

func TestCheckStateComplianceAllowed(t *testing.T) {
	eng := newTestEngine()
	decision := eng.CheckStateCompliance("CA", "")
	if !decision.IsValid {
		t.Fatalf("expected CA to be eligible, got %v", decision.Reasons)
	}
	approx(t, decision.RiskScore, 0)
}

func TestCheckStateComplianceMissingState(t *testing.T) {
	eng := newTestEngine()
	decision := eng.CheckStateCompliance("", "")
	if !decision.IsValid {
		t.Fatalf("missing state must be a soft signal")
	}
	approx(t, decision.RiskScore, 0.3)
	if decision.Reasons[0] != "No state information provided" {
		t.Fatalf("unexpected reasons: %v", decision.Reasons)
	}
}

func TestCheckStateComplianceGeoFallbackBlocks(t *testing.T) {
	eng := newTestEngine(WithGeoResolver(StaticResolver{
		ByPrefix:    map[string]string{"10.": "ID"},
		Uncertainty: 0.1,
	}))
	decision := eng.CheckStateCompliance("", "10.20.30.40")
	if decision.IsValid {
		t.Fatalf("expected IP-inferred denylisted state to block")
	}
	approx(t, decision.RiskScore, 1.0)
	if decision.Reasons[0] != "Shipping to ID (inferred from IP address) is not permitted" {
		t.Fatalf("unexpected reasons: %v", decision.Reasons)
	}
}

func TestCheckStateComplianceGeoFallbackUncertain(t *testing.T) {
	eng := newTestEngine(WithGeoResolver(StaticResolver{
		ByPrefix:    map[string]string{"10.": "CA"},
		Uncertainty: 0.15,
	}))

	// Inferred state is eligible: uncertainty accumulates, no block.
	decision := eng.CheckStateCompliance("", "10.20.30.40")
	if !decision.IsValid {
		t.Fatalf("expected eligible inferred state to pass")
	}
	approx(t, decision.RiskScore, 0.45)

	// Unresolvable IP: the uncertainty still accumulates.
	decision = eng.CheckStateCompliance("", "192.168.1.1")
	if !decision.IsValid {
		t.Fatalf("expected unresolvable IP to pass")
	}
	approx(t, decision.RiskScore, 0.45)
}
