package compliance

// GeoResolver infers a shipping state from an IP address when the
// shopper has not selected one. The uncertainty value is a risk
// contribution in [0,1] reflecting how much the inference should be
// trusted; it is added to the decision's risk score when the inferred
// state is not denylisted.
type GeoResolver interface {
	StateForIP(ipAddress string) (state string, uncertainty float64)
}

// NoopResolver never infers a state and reports a fixed uncertainty.
// Used when no geolocation backend is wired in.
type NoopResolver struct{}

func (NoopResolver) StateForIP(string) (string, float64) {
	return "", 0.2
}

// StaticResolver resolves from a fixed IP-prefix table. Useful for
// tests and for deployments that pin known corporate egress ranges.
type StaticResolver struct {
	// ByPrefix maps an IP prefix (simple string prefix match) to a
	// two-letter state code.
	ByPrefix    map[string]string
	Uncertainty float64
}

func (r StaticResolver) StateForIP(ip string) (string, float64) {
	for prefix, state := range r.ByPrefix {
		if len(ip) >= len(prefix) && ip[:len(prefix)] == prefix {
			return state, r.Uncertainty
		}
	}
	return "", r.Uncertainty
}
