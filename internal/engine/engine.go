// Package engine drives a root schema node against client queries and
// wraps the outcome in a response envelope.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/quarrygql/quarry/internal/eventbus"
	"github.com/quarrygql/quarry/internal/events"
	"github.com/quarrygql/quarry/internal/language"
	"github.com/quarrygql/quarry/internal/resolve"
	"github.com/quarrygql/quarry/internal/response"
)

// Engine executes queries against an immutable root object node. It is
// safe for concurrent use; per-query state lives on the stack of Run.
type Engine struct {
	root *resolve.Object
}

func New(root *resolve.Object) *Engine {
	return &Engine{root: root}
}

// Run resolves a top-level selection set and selects the envelope variant:
// no errors means Success, data plus errors means PartialSuccess. A panic
// escaping a handler is reified as ExecutionFailure so the client always
// receives a well-formed envelope.
func (e *Engine) Run(ctx context.Context, sel language.SelectionSet) (resp *response.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = response.ExecutionFailure(
				response.Errorf(response.DefaultStatusCode, "panic during resolution: %v", r),
			)
		}
	}()

	data, errs := e.root.Resolve(ctx, sel)
	if len(errs) == 0 {
		return response.Success(data)
	}
	return response.PartialSuccess(data, errs[0], errs[1:]...)
}

// Execute parses source, picks the requested operation and runs it.
// Parse and operation-selection failures become PreExecutionFailure; only
// query operations are accepted.
func (e *Engine) Execute(ctx context.Context, source, operationName string) *response.Response {
	doc, err := language.ParseQuery(source)
	if err != nil {
		return response.PreExecutionFailure(parseError(err))
	}

	// ForName("") would match an anonymous operation, so the
	// one-operation restriction on unnamed execution must come first.
	if operationName == "" && len(doc.Operations) > 1 {
		return response.PreExecutionFailure(
			response.Errorf(400, "document defines %d operations; an operation name is required", len(doc.Operations)),
		)
	}
	op := doc.Operations.ForName(operationName)
	if op == nil {
		return response.PreExecutionFailure(
			response.Errorf(400, "operation %q not found", operationName),
		)
	}
	if op.Operation != language.Query {
		return response.PreExecutionFailure(
			response.Errorf(400, "%s operations are not supported", op.Operation),
		)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.QueryStart{Source: source, OperationName: operationName})
	resp := e.Run(ctx, op.SelectionSet)
	eventbus.Publish(ctx, events.QueryFinish{
		Source:        source,
		OperationName: operationName,
		ResponseKind:  resp.Kind().String(),
		ErrorCount:    len(resp.Errors()),
		Duration:      time.Since(start),
	})
	return resp
}

// parseError converts a gqlparser failure into a located Error.
func parseError(err error) response.Error {
	var gqlErr *gqlerror.Error
	if !errors.As(err, &gqlErr) {
		var list gqlerror.List
		if errors.As(err, &list) && len(list) > 0 {
			gqlErr = list[0]
		}
	}
	if gqlErr == nil {
		return response.Errorf(400, "invalid query: %s", err.Error())
	}
	e := response.Error{Message: gqlErr.Message, StatusCode: 400}
	for _, loc := range gqlErr.Locations {
		e.Locations = append(e.Locations, response.Location{Line: loc.Line, Column: loc.Column})
	}
	return e
}
