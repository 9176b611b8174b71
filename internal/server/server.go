// Package server binds the engine to HTTP. It parses GET and POST
// requests, runs the engine, and writes the encoded response envelope as
// JSON. Routing, CORS and rate limiting live with the caller.
package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/quarrygql/quarry/internal/engine"
	"github.com/quarrygql/quarry/internal/eventbus"
	"github.com/quarrygql/quarry/internal/events"
	"github.com/quarrygql/quarry/internal/reqid"
	"github.com/quarrygql/quarry/internal/response"
)

// Handler is an http.Handler serving a query endpoint.
type Handler struct {
	engine *engine.Engine
	opt    Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has
	// none. 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses.
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }

// New creates an HTTP handler around the given engine.
func New(e *engine.Engine, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{engine: e, opt: op}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, _ = reqid.NewContext(ctx)
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		h.writeJSON(w, status, failure(status, "method not allowed"))
		return
	}

	req, batch, berr := parseRequest(r, h.opt.MaxBodyBytes)
	if berr != nil {
		status = http.StatusBadRequest
		if berr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		h.writeJSON(w, status, response.PreExecutionFailure(*berr).Encode())
		return
	}

	if batch != nil {
		out := make([]map[string]any, len(batch))
		for i := range batch {
			out[i] = h.executeOne(ctx, batch[i])
		}
		h.writeJSON(w, status, out)
		return
	}

	h.writeJSON(w, status, h.executeOne(ctx, req))
}

func (h *Handler) executeOne(ctx context.Context, req Request) map[string]any {
	if len(req.Variables) > 0 {
		return failure(400, "variables are not supported")
	}
	return h.engine.Execute(ctx, req.Query, req.OperationName).Encode()
}

// Request is the JSON body (or query-string form) of one query.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

const errBodyTooLargeMessage = "body too large"

func parseRequest(r *http.Request, maxBody int64) (Request, []Request, *response.Error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return Request{}, nil, requestError("missing 'query'")
		}
		var vars map[string]any
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &vars); err != nil {
				return Request{}, nil, requestError("invalid 'variables' JSON")
			}
		}
		op := r.URL.Query().Get("operationName")
		return Request{Query: q, Variables: vars, OperationName: op}, nil, nil
	}

	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return Request{}, nil, requestError("unsupported Content-Type")
	}

	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return Request{}, nil, requestError("failed to read body")
	}
	defer r.Body.Close()
	if maxBody > 0 && int64(len(body)) > maxBody {
		return Request{}, nil, requestError(errBodyTooLargeMessage)
	}

	if len(body) > 0 && body[0] == '[' {
		var batch []Request
		if err := json.Unmarshal(body, &batch); err != nil {
			return Request{}, nil, requestError("invalid JSON")
		}
		if len(batch) == 0 {
			return Request{}, nil, requestError("empty batch")
		}
		return Request{}, batch, nil
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, nil, requestError("invalid JSON")
	}
	if req.Query == "" {
		return Request{}, nil, requestError("missing 'query'")
	}
	return req, nil, nil
}

func requestError(msg string) *response.Error {
	e := response.Errorf(400, "%s", msg)
	return &e
}

func failure(status int, msg string) map[string]any {
	return response.PreExecutionFailure(response.Errorf(status, "%s", msg)).Encode()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if h.opt.Pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
