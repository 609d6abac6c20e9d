package popularity

import (
	"fmt"
	"net/http"
)

// Status tells how a metrics lookup concluded
type Status int

const (
	StatusOK Status = iota
	StatusCredentialUnavailable
	StatusCredentialRejected
	StatusUpstreamNotFound
	StatusUpstreamError
	StatusTransportFailure
)

// Fixed reasons reported for failures the remote did not describe itself
const (
	ReasonNoCredential       = "PERSONAL TOKEN NOT GRANTED ON SERVER"
	ReasonCredentialRejected = "PERSONAL TOKEN DID NOT AUTHORIZE"
	ReasonTransportFailure   = "FAILED TO CONNECT TO GITHUB API"
	ReasonMalformedResponse  = "UNREADABLE RESPONSE FROM GITHUB API"
)

var statusNames = map[Status]string{
	StatusOK:                    "ok",
	StatusCredentialUnavailable: "credential_unavailable",
	StatusCredentialRejected:    "credential_rejected",
	StatusUpstreamNotFound:      "upstream_not_found",
	StatusUpstreamError:         "upstream_error",
	StatusTransportFailure:      "transport_failure",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Failure describes why a lookup produced no classification
type Failure struct {
	Status Status
	Reason string
	// UpstreamCode is the remote HTTP status for upstream failures, zero otherwise
	UpstreamCode int
	// Err is the underlying error, kept for logs only
	Err error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", f.Status, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Status, f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// HTTPStatus maps the failure onto the code reported to API clients.
// A rejected credential is reported exactly like a missing one.
func (f *Failure) HTTPStatus() int {
	switch f.Status {
	case StatusCredentialUnavailable, StatusCredentialRejected:
		return http.StatusServiceUnavailable
	case StatusUpstreamNotFound:
		return http.StatusNotFound
	case StatusUpstreamError:
		if f.UpstreamCode > 0 {
			return f.UpstreamCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Outcome is the result of one lookup: either a classification or a Failure
type Outcome struct {
	result  Result
	metrics Metrics
	failure *Failure
}

// Succeeded builds a success outcome for the given snapshot
func Succeeded(m Metrics) Outcome {
	return Outcome{result: m.Classify(), metrics: m}
}

// Failed builds a failure outcome
func Failed(f *Failure) Outcome {
	return Outcome{failure: f}
}

// OK reports whether the outcome carries a classification
func (o Outcome) OK() bool {
	return o.failure == nil
}

// Result returns the classification and true on success
func (o Outcome) Result() (Result, bool) {
	if o.failure != nil {
		return "", false
	}
	return o.result, true
}

// Metrics returns the snapshot the classification was computed from
func (o Outcome) Metrics() (Metrics, bool) {
	if o.failure != nil {
		return Metrics{}, false
	}
	return o.metrics, true
}

// Failure returns the failure branch, nil on success
func (o Outcome) Failure() *Failure {
	return o.failure
}

// Status returns StatusOK or the failure status
func (o Outcome) Status() Status {
	if o.failure != nil {
		return o.failure.Status
	}
	return StatusOK
}

// HTTPStatus returns the code a transport layer should answer with
func (o Outcome) HTTPStatus() int {
	if o.failure != nil {
		return o.failure.HTTPStatus()
	}
	return http.StatusOK
}

// Message returns the result string on success and the failure reason otherwise
func (o Outcome) Message() string {
	if o.failure != nil {
		return o.failure.Reason
	}
	return o.result.String()
}
