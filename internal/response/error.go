package response

import "fmt"

// DefaultStatusCode is used when an error type does not supply its own.
const DefaultStatusCode = 500

// Location points at a position in the query source. Line and Column are
// 1-indexed.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is a single entry in a response's error list.
type Error struct {
	Message    string     `json:"message"`
	Locations  []Location `json:"locations,omitempty"`
	StatusCode int        `json:"statusCode"`
}

func (e Error) Error() string { return e.Message }

// Encode returns the canonical map form of the error. The "locations" key
// is omitted entirely when the location list is empty.
func (e Error) Encode() map[string]any {
	m := map[string]any{
		"message":    e.Message,
		"statusCode": e.StatusCode,
	}
	if len(e.Locations) > 0 {
		locs := make([]map[string]any, len(e.Locations))
		for i, l := range e.Locations {
			locs[i] = map[string]any{"line": l.Line, "column": l.Column}
		}
		m["locations"] = locs
	}
	return m
}

// Formatter supplies the message text for an error. Error types that do not
// implement it fall back to their Error() string.
type Formatter interface {
	FormatError() string
}

// Coercer lets an error type supply its own locations and status code
// instead of the ToError defaults.
type Coercer interface {
	ToError() Error
}

// ToError converts err into an Error. A Coercer implementation wins; a
// Formatter overrides the message; everything else becomes a bare Error
// with DefaultStatusCode and no locations.
func ToError(err error) Error {
	switch v := err.(type) {
	case Error:
		return v
	case Coercer:
		return v.ToError()
	}
	msg := err.Error()
	if f, ok := err.(Formatter); ok {
		msg = f.FormatError()
	}
	return Error{Message: msg, StatusCode: DefaultStatusCode}
}

// SingleError wraps one error into a length-1 error list.
func SingleError(err error) []Error {
	return []Error{ToError(err)}
}

// Errorf builds an Error with a formatted message and the given status code.
func Errorf(statusCode int, format string, args ...any) Error {
	return Error{Message: fmt.Sprintf(format, args...), StatusCode: statusCode}
}
