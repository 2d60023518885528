// Package stabilizer smooths a per-frame stream of raw labels into a stable
// label. Each stream owns its own instance; instances are not safe for
// concurrent use.
package stabilizer

import (
	"fmt"

	"github.com/ayusman/librasio/internal/gesture"
)

// Policy names a smoothing strategy.
type Policy string

const (
	// PolicyMajority outputs the most frequent label of a sliding window.
	PolicyMajority Policy = "majority"
	// PolicyDebounce commits a label after a run of identical frames.
	PolicyDebounce Policy = "debounce"
)

// Defaults shared by both policies.
const (
	DefaultWindow = 5
	DefaultHold   = 5
)

// Stabilizer turns raw labels into a stable label.
type Stabilizer interface {
	// Push records one raw label and returns the stable label.
	Push(raw gesture.Label) gesture.Label
	// Current returns the stable label without recording anything.
	Current() gesture.Label
	// Reset returns to the initial unknown state.
	Reset()
}

// Config selects and sizes a policy.
type Config struct {
	Policy Policy `yaml:"policy"`
	Window int    `yaml:"window"`
	Hold   int    `yaml:"hold"`
}

// DefaultConfig returns a five-frame majority window.
func DefaultConfig() Config {
	return Config{Policy: PolicyMajority, Window: DefaultWindow, Hold: DefaultHold}
}

// Validate checks the policy name and sizes.
func (c Config) Validate() error {
	switch c.Policy {
	case PolicyMajority:
		if c.Window < 1 {
			return fmt.Errorf("stabilizer: window must be positive, got %d", c.Window)
		}
	case PolicyDebounce:
		if c.Hold < 0 {
			return fmt.Errorf("stabilizer: hold must not be negative, got %d", c.Hold)
		}
	default:
		return fmt.Errorf("stabilizer: unknown policy %q", c.Policy)
	}
	return nil
}

// New builds the stabilizer described by c.
func New(c Config) (Stabilizer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Policy == PolicyDebounce {
		return NewDebounceHold(c.Hold), nil
	}
	return NewMajorityWindow(c.Window), nil
}
