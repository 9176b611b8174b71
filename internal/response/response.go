// Package response defines the error model and the four-variant result
// envelope that every executed query is reported through.
//
// The envelope determines which of the "data" and "errors" keys appear in
// the encoded output:
//
//	Success             {"data": ...}
//	PreExecutionFailure {"errors": [...]}
//	ExecutionFailure    {"data": null, "errors": [...]}
//	PartialSuccess      {"data": ..., "errors": [...]}
//
// No other keys besides "data", "errors" and "extensions" are ever present.
// The variant constructors take (first Error, rest ...Error) so that a
// failure envelope with an empty error list cannot be expressed.
package response

// Kind discriminates the four envelope variants.
type Kind int

const (
	KindSuccess Kind = iota
	KindPreExecutionFailure
	KindExecutionFailure
	KindPartialSuccess
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindPreExecutionFailure:
		return "pre_execution_failure"
	case KindExecutionFailure:
		return "execution_failure"
	case KindPartialSuccess:
		return "partial_success"
	}
	return "unknown"
}

// Response is an immutable result envelope. Construct it through one of the
// four variant constructors.
type Response struct {
	kind       Kind
	data       any
	errors     []Error
	extensions map[string]any
}

// Success wraps data that resolved without any errors.
func Success(data any) *Response {
	return &Response{kind: KindSuccess, data: data}
}

// PreExecutionFailure reports a failure that occurred before any field
// resolution began, such as a parse or validation error. No "data" key
// appears in the output.
func PreExecutionFailure(first Error, rest ...Error) *Response {
	return &Response{kind: KindPreExecutionFailure, errors: errorList(first, rest)}
}

// ExecutionFailure reports a failure during resolution that produced no
// data at all; the output carries an explicit null "data" key.
func ExecutionFailure(first Error, rest ...Error) *Response {
	return &Response{kind: KindExecutionFailure, errors: errorList(first, rest)}
}

// PartialSuccess wraps data that resolved alongside one or more errors.
func PartialSuccess(data any, first Error, rest ...Error) *Response {
	return &Response{kind: KindPartialSuccess, data: data, errors: errorList(first, rest)}
}

func errorList(first Error, rest []Error) []Error {
	return append([]Error{first}, rest...)
}

func (r *Response) Kind() Kind      { return r.kind }
func (r *Response) Data() any       { return r.data }
func (r *Response) Errors() []Error { return r.errors }

// WithExtensions returns a copy of r carrying the given extensions map.
// A nil or empty map leaves the output unchanged.
func (r *Response) WithExtensions(ext map[string]any) *Response {
	out := *r
	out.extensions = ext
	return &out
}

// Encode returns the canonical map form of the envelope. Serializing the
// map to a wire format is the caller's concern.
func (r *Response) Encode() map[string]any {
	m := make(map[string]any, 3)
	switch r.kind {
	case KindSuccess:
		m["data"] = r.data
	case KindPreExecutionFailure:
		m["errors"] = encodeErrors(r.errors)
	case KindExecutionFailure:
		m["data"] = nil
		m["errors"] = encodeErrors(r.errors)
	case KindPartialSuccess:
		m["data"] = r.data
		m["errors"] = encodeErrors(r.errors)
	}
	if len(r.extensions) > 0 {
		m["extensions"] = r.extensions
	}
	return m
}

func encodeErrors(errs []Error) []map[string]any {
	out := make([]map[string]any, len(errs))
	for i, e := range errs {
		out[i] = e.Encode()
	}
	return out
}
