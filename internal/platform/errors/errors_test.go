package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrs.New("boom")
	err := Wrap(cause, ErrorCodeDB, "query failed")

	if got := err.Error(); got != "query failed: boom" {
		t.Fatalf("Error() = %q", got)
	}
	if Root(err) != cause {
		t.Fatalf("Root should return the deepest cause")
	}
	if CodeOf(err) != ErrorCodeDB {
		t.Fatalf("CodeOf = %v", CodeOf(err))
	}
}

func TestCodeOfForeignError(t *testing.T) {
	if CodeOf(stderrs.New("plain")) != ErrorCodeUnknown {
		t.Fatalf("foreign errors default to unknown")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeLookup, http.StatusBadGateway},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeUnknown, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("code %v -> %d, want %d", c.code, got, c.want)
		}
	}
}

func TestLookupFailureDistinct(t *testing.T) {
	err := Lookupf("reference store unreachable")
	if !IsLookupFailure(err) {
		t.Fatalf("expected lookup failure")
	}
	if IsLookupFailure(NotFoundf("no such row")) {
		t.Fatalf("not-found must not classify as lookup failure")
	}

	wrapped := LookupWrap(stderrs.New("dial tcp: refused"), "list candidates")
	if !IsLookupFailure(wrapped) {
		t.Fatalf("wrapped lookup failure lost its code")
	}
}

func TestWithFieldAndOp(t *testing.T) {
	err := Validationf("bad value")
	err = WithField(err, "country")
	err = WithOp(err, "resolve")

	e, ok := As(err)
	if !ok {
		t.Fatalf("expected project error")
	}
	if e.Field() != "country" || e.Op() != "resolve" {
		t.Fatalf("field/op = %q/%q", e.Field(), e.Op())
	}

	w := e.ToWire()
	if w.Field != "country" || w.Code != ErrorCodeValidation {
		t.Fatalf("wire = %+v", w)
	}
}

func TestWireFromForeign(t *testing.T) {
	w := WireFrom(stderrs.New("oops"))
	if w.Code != ErrorCodeUnknown || w.Message != "oops" {
		t.Fatalf("wire = %+v", w)
	}
	if (WireFrom(nil) != Wire{}) {
		t.Fatalf("nil should map to zero wire")
	}
}
