package tournament

import (
	"strings"

	"github.com/pkg/errors"
)

// PendingPolicy decides what Predict does when the previous prediction has
// not been resolved by Update yet.
type PendingPolicy int

const (
	// PolicyStrict rejects a second Predict with ErrUpdatePending.
	PolicyStrict PendingPolicy = iota
	// PolicyOverwrite replaces the outstanding context. The replaced context
	// becomes stale and its branch is never trained.
	PolicyOverwrite
)

var policyNames = map[PendingPolicy]string{
	PolicyStrict:    "strict",
	PolicyOverwrite: "overwrite",
}

// String returns the policy name used in config files and flags.
func (p PendingPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePendingPolicy converts a policy name into a PendingPolicy.
func ParsePendingPolicy(s string) (PendingPolicy, error) {
	for p, name := range policyNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return PolicyStrict, errors.Errorf("unknown pending policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p PendingPolicy) MarshalText() ([]byte, error) {
	if _, ok := policyNames[p]; !ok {
		return nil, errors.Errorf("unknown pending policy %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PendingPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParsePendingPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Config holds the predictor options. Table geometry is fixed by the package
// constants and is not configurable.
type Config struct {
	// Policy controls back-to-back Predict calls. Default is PolicyStrict.
	Policy PendingPolicy `json:"policy"`
}

// DefaultConfig returns the default predictor configuration.
func DefaultConfig() Config {
	return Config{
		Policy: PolicyStrict,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, ok := policyNames[c.Policy]; !ok {
		return errors.Errorf("invalid pending policy %d", int(c.Policy))
	}
	return nil
}
