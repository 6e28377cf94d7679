package harness

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/openvtb/fifovh/internal/tb"
)

// TraceEvent is one observed transfer (or verified reset) in the merged
// stream, in scoreboard arrival order. Data is 0 for reset markers.
type TraceEvent struct {
	Kind string `json:"kind"` // "write", "read" or "reset"
	Data int    `json:"data"`
	Seq  int64  `json:"seq"`
}

// Result is the outcome of one scenario execution.
type Result struct {
	// Pass is the overall verdict: scoreboard clean and every assertion met.
	Pass bool `json:"pass"`

	// Trace contains all observed events in arrival order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists every failure: mismatches, protocol violations, wait
	// timeouts and assertion failures. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Writes and Reads count accepted transfers; Pending is the reference
	// queue length at the end of the run.
	Writes  int `json:"writes"`
	Reads   int `json:"reads"`
	Pending int `json:"pending"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []TraceEvent{}, Errors: []string{}}
}

// AddError records a failure and fails the result.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// traceFromEvents converts scoreboard events to the serializable form.
func traceFromEvents(events []tb.Event) []TraceEvent {
	trace := make([]TraceEvent, 0, len(events))
	for _, ev := range events {
		trace = append(trace, TraceEvent{
			Kind: ev.Kind.String(),
			Data: int(ev.Data),
			Seq:  ev.Seq,
		})
	}
	return trace
}

// ReadData extracts the data of every read event, in order.
func (r *Result) ReadData() []int {
	var data []int
	for _, ev := range r.Trace {
		if ev.Kind == "read" {
			data = append(data, ev.Data)
		}
	}
	return data
}

// CanonicalName normalizes a scenario name for use as a golden-file or
// run-record key: Unicode NFC, lower case, spaces folded to dashes.
func CanonicalName(name string) string {
	s := norm.NFC.String(name)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}
