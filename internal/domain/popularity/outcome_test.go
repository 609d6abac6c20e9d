package popularity_test

import (
	"errors"
	"net/http"
	"testing"

	"repo-popularity/internal/domain/popularity"
)

func TestSucceeded(t *testing.T) {
	o := popularity.Succeeded(popularity.Metrics{Stars: 500, Forks: 200})

	if !o.OK() {
		t.Fatal("OK() = false, want true")
	}
	result, ok := o.Result()
	if !ok || result != popularity.Popular {
		t.Errorf("Result() = (%v, %v), want (popular, true)", result, ok)
	}
	if o.Status() != popularity.StatusOK {
		t.Errorf("Status() = %v, want ok", o.Status())
	}
	if o.HTTPStatus() != http.StatusOK {
		t.Errorf("HTTPStatus() = %d, want 200", o.HTTPStatus())
	}
	if o.Message() != "popular" {
		t.Errorf("Message() = %q, want popular", o.Message())
	}
	if o.Failure() != nil {
		t.Error("Failure() should be nil on success")
	}
}

func TestFailedHTTPStatus(t *testing.T) {
	tests := []struct {
		name    string
		failure popularity.Failure
		want    int
	}{
		{"no credential", popularity.Failure{Status: popularity.StatusCredentialUnavailable}, http.StatusServiceUnavailable},
		{"rejected credential", popularity.Failure{Status: popularity.StatusCredentialRejected}, http.StatusServiceUnavailable},
		{"not found", popularity.Failure{Status: popularity.StatusUpstreamNotFound, UpstreamCode: 404}, http.StatusNotFound},
		{"remote error passes through", popularity.Failure{Status: popularity.StatusUpstreamError, UpstreamCode: 451}, 451},
		{"remote error without code", popularity.Failure{Status: popularity.StatusUpstreamError}, http.StatusBadGateway},
		{"transport", popularity.Failure{Status: popularity.StatusTransportFailure}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.failure
			o := popularity.Failed(&f)
			if o.OK() {
				t.Fatal("OK() = true, want false")
			}
			if _, ok := o.Result(); ok {
				t.Error("Result() should report false on failure")
			}
			if got := o.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFailureUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	f := &popularity.Failure{Status: popularity.StatusTransportFailure, Reason: popularity.ReasonTransportFailure, Err: cause}

	if !errors.Is(f, cause) {
		t.Error("Failure should unwrap to its cause")
	}
	if popularity.Failed(f).Message() != popularity.ReasonTransportFailure {
		t.Errorf("Message() = %q", popularity.Failed(f).Message())
	}
}

func TestParseCredentialPolicy(t *testing.T) {
	if popularity.ParseCredentialPolicy("distinguish") != popularity.DistinguishRejectedCredential {
		t.Error("distinguish should parse to DistinguishRejectedCredential")
	}
	for _, s := range []string{"", "fold", "anything"} {
		if popularity.ParseCredentialPolicy(s) != popularity.FoldRejectedCredential {
			t.Errorf("ParseCredentialPolicy(%q) should fold", s)
		}
	}
}
