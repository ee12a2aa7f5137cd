// Listing status state machine.
//
// Valid status graph:
//
//	pending ──► approved ──► generating_docs ──► ready_to_apply
//	   │            │               │
//	   │            │               └──► failed ──► approved (re-approve)
//	   │            └──► manual_required
//	   ├──► skipped
//	   └──► manual_required
//
// ready_to_apply, skipped and manual_required have no automated outgoing
// transitions.
package models

import "fmt"

// Status values mirror the job_listings.status column.
type Status string

const (
	StatusPending        Status = "pending"
	StatusApproved       Status = "approved"
	StatusSkipped        Status = "skipped"
	StatusManualRequired Status = "manual_required"
	StatusGeneratingDocs Status = "generating_docs"
	StatusReadyToApply   Status = "ready_to_apply"
	StatusFailed         Status = "failed"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusPending:        {StatusApproved, StatusSkipped, StatusManualRequired},
	StatusApproved:       {StatusGeneratingDocs, StatusManualRequired},
	StatusGeneratingDocs: {StatusReadyToApply, StatusFailed},
	StatusFailed:         {StatusApproved},
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusApproved, StatusSkipped, StatusManualRequired,
		StatusGeneratingDocs, StatusReadyToApply, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown listing status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
