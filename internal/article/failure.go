package article

import (
	"fmt"
)

// FailureKind classifies a contained pipeline failure.
type FailureKind string

const (
	NetworkFailure    FailureKind = "network"
	ParseFailure      FailureKind = "parse"
	EnrichmentFailure FailureKind = "enrichment"
	AnalysisFailure   FailureKind = "analysis"
)

// Failure is a failure that was recovered at the smallest unit (one
// endpoint, one entry, one article, one analysis) instead of aborting
// the batch.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Subject string      `json:"subject"`
	Err     error       `json:"-"`
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s failure: %s", f.Kind, f.Subject)
	}
	return fmt.Sprintf("%s failure: %s: %v", f.Kind, f.Subject, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure builds a Failure of the given kind.
func NewFailure(kind FailureKind, subject string, err error) *Failure {
	return &Failure{Kind: kind, Subject: subject, Err: err}
}
