package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openvtb/fifovh/internal/config"
)

// Scenario defines one verification scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config optionally overrides bench parameters for this scenario.
	Config *ConfigOverride `yaml:"config,omitempty"`

	// Flow is the ordered list of steps the scenario performs.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace and device state.
	Assertions []Assertion `yaml:"assertions"`
}

// ConfigOverride holds per-scenario bench parameter overrides. Nil fields
// keep the base configuration's value.
type ConfigOverride struct {
	Depth        *int `yaml:"depth,omitempty"`
	WrPeriod     *int `yaml:"wr_period,omitempty"`
	RdPeriod     *int `yaml:"rd_period,omitempty"`
	ResetEdges   *int `yaml:"reset_edges,omitempty"`
	SettleEdges  *int `yaml:"settle_edges,omitempty"`
	MaxWaitEdges *int `yaml:"max_wait_edges,omitempty"`
	EdgeBudget   *int `yaml:"edge_budget,omitempty"`
}

// Apply layers the override onto base.
func (o *ConfigOverride) Apply(base config.Bench) config.Bench {
	if o == nil {
		return base
	}
	if o.Depth != nil {
		base.Depth = *o.Depth
	}
	if o.WrPeriod != nil {
		base.WrPeriod = uint64(*o.WrPeriod)
	}
	if o.RdPeriod != nil {
		base.RdPeriod = uint64(*o.RdPeriod)
	}
	if o.ResetEdges != nil {
		base.ResetEdges = *o.ResetEdges
	}
	if o.SettleEdges != nil {
		base.SettleEdges = *o.SettleEdges
	}
	if o.MaxWaitEdges != nil {
		base.MaxWaitEdges = *o.MaxWaitEdges
	}
	if o.EdgeBudget != nil {
		base.EdgeBudget = uint64(*o.EdgeBudget)
	}
	return base
}

// Step is one flow step. Exactly one field must be set.
type Step struct {
	Write *WriteStep `yaml:"write,omitempty"`
	Read  *ReadStep  `yaml:"read,omitempty"`
	Wait  *WaitStep  `yaml:"wait,omitempty"`
	Reset *ResetStep `yaml:"reset,omitempty"`
}

// WriteStep enqueues one write transaction per value.
type WriteStep struct {
	// Values are the payload bytes, in order. YAML hex literals (0x11) work.
	Values []int `yaml:"values"`
}

// ReadStep enqueues Count read transactions.
type ReadStep struct {
	Count int `yaml:"count"`
}

// WaitStep advances one clock domain a number of edges.
type WaitStep struct {
	// Domain is "write" or "read".
	Domain string `yaml:"domain"`
	Edges  int    `yaml:"edges"`
}

// ResetStep drains in-flight transactions, then runs the reset coordinator.
type ResetStep struct{}

// Assertion validates the trace or final device state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Values is the expected read data (read_sequence).
	Values []int `yaml:"values,omitempty"`

	// Kind is the event kind (event_count): "write", "read" or "reset".
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected occurrence count (event_count).
	Count int `yaml:"count,omitempty"`

	// Flag is the device flag (flag_state): "empty" or "full".
	Flag string `yaml:"flag,omitempty"`

	// Value is the expected flag value (flag_state).
	Value bool `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertReadSequence = "read_sequence"
	AssertEventCount   = "event_count"
	AssertFlagState    = "flag_state"
	AssertNoPending    = "no_pending"
)

// LoadScenario reads and parses a scenario YAML file. It rejects unknown
// fields (typos) and validates required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks that exactly one step field is set and its payload
// is well-formed.
func validateStep(index int, step *Step) error {
	set := 0
	if step.Write != nil {
		set++
	}
	if step.Read != nil {
		set++
	}
	if step.Wait != nil {
		set++
	}
	if step.Reset != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("flow[%d]: exactly one of write/read/wait/reset is required", index)
	}

	switch {
	case step.Write != nil:
		if len(step.Write.Values) == 0 {
			return fmt.Errorf("flow[%d].write: values is required and must be non-empty", index)
		}
		for j, v := range step.Write.Values {
			if v < 0 || v > 0xFF {
				return fmt.Errorf("flow[%d].write.values[%d]: %d is out of byte range", index, j, v)
			}
		}
	case step.Read != nil:
		if step.Read.Count <= 0 {
			return fmt.Errorf("flow[%d].read: count must be positive", index)
		}
	case step.Wait != nil:
		if step.Wait.Domain != "write" && step.Wait.Domain != "read" {
			return fmt.Errorf("flow[%d].wait: domain must be \"write\" or \"read\", got %q", index, step.Wait.Domain)
		}
		if step.Wait.Edges <= 0 {
			return fmt.Errorf("flow[%d].wait: edges must be positive", index)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertReadSequence:
		if len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: values list is required for read_sequence", index)
		}
		for j, v := range a.Values {
			if v < 0 || v > 0xFF {
				return fmt.Errorf("assertions[%d].values[%d]: %d is out of byte range", index, j, v)
			}
		}
	case AssertEventCount:
		if a.Kind != "write" && a.Kind != "read" && a.Kind != "reset" {
			return fmt.Errorf("assertions[%d]: kind must be write/read/reset for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertFlagState:
		if a.Flag != "empty" && a.Flag != "full" {
			return fmt.Errorf("assertions[%d]: flag must be \"empty\" or \"full\" for flag_state", index)
		}
	case AssertNoPending:
		// No parameters.
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
