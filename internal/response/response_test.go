package response

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncode_Success_EmptyObject(t *testing.T) {
	got := Success(map[string]any{}).Encode()
	want := map[string]any{"data": map[string]any{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got["errors"]; ok {
		t.Fatal("success envelope must not carry an errors key")
	}
}

func TestEncode_PreExecutionFailure(t *testing.T) {
	got := PreExecutionFailure(Error{Message: "syntax error", StatusCode: 400}).Encode()
	want := map[string]any{
		"errors": []map[string]any{
			{"message": "syntax error", "statusCode": 400},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got["data"]; ok {
		t.Fatal("pre-execution failure must not carry a data key")
	}
}

func TestEncode_ExecutionFailure_NullData(t *testing.T) {
	got := ExecutionFailure(Error{Message: "boom", StatusCode: 500}).Encode()
	data, ok := got["data"]
	if !ok {
		t.Fatal("execution failure must carry a data key")
	}
	if data != nil {
		t.Fatalf("execution failure data must be nil, got %v", data)
	}
	if len(got["errors"].([]map[string]any)) != 1 {
		t.Fatalf("expected one error, got %v", got["errors"])
	}
}

func TestEncode_PartialSuccess(t *testing.T) {
	got := PartialSuccess(
		map[string]any{"a": 1},
		Error{Message: "b failed", StatusCode: 500},
	).Encode()
	want := map[string]any{
		"data": map[string]any{"a": 1},
		"errors": []map[string]any{
			{"message": "b failed", "statusCode": 500},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_Extensions(t *testing.T) {
	got := Success(map[string]any{}).WithExtensions(map[string]any{"requestId": "42"}).Encode()
	if diff := cmp.Diff(map[string]any{"requestId": "42"}, got["extensions"]); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	// An empty map must not introduce the key.
	got = Success(map[string]any{}).WithExtensions(nil).Encode()
	if _, ok := got["extensions"]; ok {
		t.Fatal("nil extensions must not appear in the envelope")
	}
}

func TestErrorEncode_Locations(t *testing.T) {
	e := Error{Message: "m", StatusCode: 500}
	if _, ok := e.Encode()["locations"]; ok {
		t.Fatal("empty location list must omit the locations key")
	}

	e.Locations = []Location{{Line: 3, Column: 7}}
	want := map[string]any{
		"message":    "m",
		"statusCode": 500,
		"locations":  []map[string]any{{"line": 3, "column": 7}},
	}
	if diff := cmp.Diff(want, e.Encode()); diff != "" {
		t.Fatalf("error encoding mismatch (-want +got):\n%s", diff)
	}
}

type formattedError struct{}

func (formattedError) Error() string       { return "raw" }
func (formattedError) FormatError() string { return "formatted" }

type coercedError struct{}

func (coercedError) Error() string { return "coerced" }
func (coercedError) ToError() Error {
	return Error{Message: "coerced", Locations: []Location{{Line: 1, Column: 2}}, StatusCode: 404}
}

func TestToError(t *testing.T) {
	got := ToError(errors.New("plain"))
	want := Error{Message: "plain", StatusCode: DefaultStatusCode}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("plain error (-want +got):\n%s", diff)
	}

	got = ToError(formattedError{})
	if got.Message != "formatted" || got.StatusCode != DefaultStatusCode {
		t.Fatalf("formatter not applied: %+v", got)
	}

	got = ToError(coercedError{})
	if got.StatusCode != 404 || len(got.Locations) != 1 {
		t.Fatalf("coercer not applied: %+v", got)
	}

	// An Error passes through unchanged.
	in := Error{Message: "as-is", StatusCode: 418}
	if diff := cmp.Diff(in, ToError(in)); diff != "" {
		t.Fatalf("identity conversion (-want +got):\n%s", diff)
	}
}

func TestSingleError_LengthOne(t *testing.T) {
	errs := SingleError(errors.New("x"))
	if len(errs) != 1 {
		t.Fatalf("expected a single-element list, got %d", len(errs))
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindSuccess:             "success",
		KindPreExecutionFailure: "pre_execution_failure",
		KindExecutionFailure:    "execution_failure",
		KindPartialSuccess:      "partial_success",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
