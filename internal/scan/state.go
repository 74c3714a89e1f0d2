// Package scan turns barcode detections into confirmed book records. A
// Coordinator runs one lookup at a time and, in batch mode, collects results
// in a de-duplicated buffer until they are saved together.
package scan

import (
	"fmt"

	"github.com/mrlokans/bookscanner/internal/metadata"
)

// Kind identifies the active variant of a State.
type Kind int

const (
	Idle Kind = iota
	Loading
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText lets JSON and YAML show the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ReasonNotFound is the message key for every failed single-mode lookup.
const ReasonNotFound = "scan_not_found"

// State is the coordinator's current status. Book is set only for Success
// and Reason only for Error.
type State struct {
	Kind   Kind             `json:"kind" yaml:"kind"`
	Book   metadata.Summary `json:"book,omitempty" yaml:"book,omitempty"`
	Reason string           `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func (s State) String() string {
	switch s.Kind {
	case Success:
		return fmt.Sprintf("success(%s)", s.Book.ISBN)
	case Error:
		return fmt.Sprintf("error(%s)", s.Reason)
	default:
		return s.Kind.String()
	}
}

func idleState() State { return State{Kind: Idle} }

func loadingState() State { return State{Kind: Loading} }

func successState(book metadata.Summary) State { return State{Kind: Success, Book: book} }

func errorState(reason string) State { return State{Kind: Error, Reason: reason} }

// Outcome reports what OnScanDetected did with a detection.
type Outcome int

const (
	// OutcomeAccepted means a lookup was started.
	OutcomeAccepted Outcome = iota
	// OutcomeBusy means the coordinator was not idle and dropped the detection.
	OutcomeBusy
	// OutcomeDuplicate means the identifier is already in the batch buffer.
	OutcomeDuplicate
	// OutcomeClosed means the coordinator has been closed.
	OutcomeClosed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeBusy:
		return "busy"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeClosed:
		return "closed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Snapshot is a consistent view of the coordinator.
type Snapshot struct {
	State     State              `json:"state" yaml:"state"`
	BatchMode bool               `json:"batch_mode" yaml:"batch_mode"`
	Buffer    []metadata.Summary `json:"buffer" yaml:"buffer"`
}
