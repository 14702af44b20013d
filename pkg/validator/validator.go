// Package validator implements the validator (C2): a pluggable classifier
// that turns an incoming event into an Accept or a Reject(DeleteRequest).
package validator

import (
	"context"

	"github.com/nostrtools/eventdeleter/pkg/model"
)

// Verdict is the outcome of validating one event.
type Verdict struct {
	Rejected bool
	Request  model.DeleteRequest
}

// Accept is the zero Verdict: the event passed every check.
var Accept = Verdict{}

// Reject builds a Verdict carrying the DeleteRequest to issue for a rejected
// event.
func Reject(req model.DeleteRequest) Verdict {
	return Verdict{Rejected: true, Request: req}
}

// Validator is the pluggable capability C4 drives. Implementations must be
// safe for concurrent use: a single instance is shared across every worker
// in the pool (§4.3, §5).
type Validator interface {
	Validate(ctx context.Context, event *model.Event) (Verdict, error)
}
