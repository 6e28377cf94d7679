// Package config loads bench configuration through the CUE SDK.
//
// The embedded schema carries the defaults and constraints; a user file is
// unified against it, so partial overrides ("bench: depth: 16") are valid
// and everything else falls back to the schema defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// Bench is the resolved bench configuration.
type Bench struct {
	// Depth is the FIFO's logical capacity.
	Depth int

	// WrPeriod and RdPeriod are the virtual-time clock periods of the two
	// domains. Unrelated values exercise the asynchronous crossing.
	WrPeriod uint64
	RdPeriod uint64

	// ResetEdges and SettleEdges parameterize the reset coordinator.
	ResetEdges  int
	SettleEdges int

	// MaxWaitEdges bounds every driver readiness poll.
	MaxWaitEdges int

	// EdgeBudget bounds the whole run.
	EdgeBudget uint64
}

// Default returns the schema defaults. Kept in sync with schema.cue.
func Default() Bench {
	return Bench{
		Depth:        8,
		WrPeriod:     10,
		RdPeriod:     14,
		ResetEdges:   4,
		SettleEdges:  4,
		MaxWaitEdges: 1000,
		EdgeBudget:   1_000_000,
	}
}

// ConfigError is a structured CUE configuration failure with position info.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("config %s: %s (%s)", e.Field, e.Message, e.Pos)
	}
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

// benchFile mirrors the schema's bench struct; CUE's Decode maps the json
// tags onto the unified value.
type benchFile struct {
	Depth        int `json:"depth"`
	WrPeriod     int `json:"wr_period"`
	RdPeriod     int `json:"rd_period"`
	ResetEdges   int `json:"reset_edges"`
	SettleEdges  int `json:"settle_edges"`
	MaxWaitEdges int `json:"max_wait_edges"`
	EdgeBudget   int `json:"edge_budget"`
}

// Load reads a CUE config file and resolves it against the embedded schema.
// An empty path returns the schema defaults.
func Load(path string) (Bench, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Bench{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, data)
}

// Parse resolves raw CUE source against the embedded schema. filename is
// used for error positions only.
func Parse(filename string, data []byte) (Bench, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Bench{}, fmt.Errorf("embedded schema: %w", err)
	}

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Bench{}, formatCUEError(err)
	}

	unified := schema.Unify(user)
	if err := unified.Validate(); err != nil {
		return Bench{}, formatCUEError(err)
	}

	var raw benchFile
	if err := unified.LookupPath(cue.ParsePath("bench")).Decode(&raw); err != nil {
		return Bench{}, formatCUEError(err)
	}

	cfg := Bench{
		Depth:        raw.Depth,
		WrPeriod:     uint64(raw.WrPeriod),
		RdPeriod:     uint64(raw.RdPeriod),
		ResetEdges:   raw.ResetEdges,
		SettleEdges:  raw.SettleEdges,
		MaxWaitEdges: raw.MaxWaitEdges,
		EdgeBudget:   uint64(raw.EdgeBudget),
	}
	return cfg, nil
}

// formatCUEError extracts the first positioned error from a CUE error list.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := cueerrors.Positions(first)
	if len(positions) > 0 {
		return &ConfigError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
