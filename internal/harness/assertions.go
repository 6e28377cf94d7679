package harness

import (
	"fmt"
	"strings"

	"github.com/openvtb/fifovh/internal/dut"
	"github.com/openvtb/fifovh/internal/tb"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s data=0x%02x seq=%d\n", i+1, event.Kind, event.Data, event.Seq)
	}

	return buf.String()
}

// assertReadSequence checks that the data values observed on the read side,
// in trace order, equal the expected values exactly.
func assertReadSequence(trace []TraceEvent, assertion Assertion) error {
	var got []int
	for _, event := range trace {
		if event.Kind == "read" {
			got = append(got, event.Data)
		}
	}

	if len(got) != len(assertion.Values) {
		return &AssertionError{
			Type:     AssertReadSequence,
			Expected: fmt.Sprintf("%d reads with values %v", len(assertion.Values), formatBytes(assertion.Values)),
			Actual:   fmt.Sprintf("%d reads with values %v", len(got), formatBytes(got)),
			Trace:    trace,
		}
	}

	for i := range got {
		if got[i] != assertion.Values[i] {
			return &AssertionError{
				Type:     AssertReadSequence,
				Expected: fmt.Sprintf("read %d = 0x%02x", i, assertion.Values[i]),
				Actual:   fmt.Sprintf("read %d = 0x%02x", i, got[i]),
				Trace:    trace,
			}
		}
	}

	return nil
}

// assertEventCount checks that events of the given kind appear exactly the
// specified number of times in the trace.
func assertEventCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Kind == assertion.Kind {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d %s events", assertion.Count, assertion.Kind),
			Actual:   fmt.Sprintf("%d %s events", count, assertion.Kind),
			Trace:    trace,
		}
	}

	return nil
}

// assertFlagState checks the final registered value of a status flag after
// the run settled.
func assertFlagState(bus *dut.Bus, trace []TraceEvent, assertion Assertion) error {
	var actual bool
	switch assertion.Flag {
	case "full":
		actual = bus.Full
	case "empty":
		actual = bus.Empty
	default:
		return fmt.Errorf("flag_state assertion: unknown flag %q", assertion.Flag)
	}

	if actual != assertion.Value {
		return &AssertionError{
			Type:     AssertFlagState,
			Expected: fmt.Sprintf("%s = %t", assertion.Flag, assertion.Value),
			Actual:   fmt.Sprintf("%s = %t", assertion.Flag, actual),
			Trace:    trace,
		}
	}

	return nil
}

// assertNoPending checks that the reference queue drained completely: every
// accepted write was observed on the read side.
func assertNoPending(verdict tb.Verdict, trace []TraceEvent) error {
	if verdict.Pending != 0 {
		return &AssertionError{
			Type:     AssertNoPending,
			Expected: "0 pending reference entries",
			Actual:   fmt.Sprintf("%d pending reference entries", verdict.Pending),
			Trace:    trace,
		}
	}

	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, verdict tb.Verdict, bus *dut.Bus) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertReadSequence:
			err = assertReadSequence(result.Trace, assertion)
		case AssertEventCount:
			err = assertEventCount(result.Trace, assertion)
		case AssertFlagState:
			err = assertFlagState(bus, result.Trace, assertion)
		case AssertNoPending:
			err = assertNoPending(verdict, result.Trace)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// formatBytes renders a value list in hex, matching the waveform convention.
func formatBytes(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("0x%02x", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
