package tool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/leofalp/substack-tools/core/parse"
	"github.com/leofalp/substack-tools/internal/jsonschema"
)

// Validator is implemented by inputs that check and normalize themselves
// before the tool function runs. Validate is called on a pointer to the
// decoded input, so it may rewrite fields in place.
type Validator interface {
	Validate() error
}

// ErrorRenderer turns a tool failure into the text returned to the caller.
type ErrorRenderer func(err error) string

// DefaultErrorRenderer prefixes the error message with "Error: ".
func DefaultErrorRenderer(err error) string {
	return "Error: " + err.Error()
}

// Info describes a tool to clients.
type Info struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// GenericTool is the type-erased view of a [Tool] used by catalogs and
// transports.
type GenericTool interface {
	// ToolInfo returns the metadata advertised to clients.
	ToolInfo() Info

	// Call runs the tool on a JSON-encoded input. The returned string is
	// always displayable: on failure it holds the rendered error, and the
	// error is returned alongside it so transports can tag the outcome.
	Call(ctx context.Context, inputJSON string) (string, error)
}

// Tool is a named, documented function from a typed input to text.
// Use [NewTool] to construct one.
type Tool[I any] struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Function    func(ctx context.Context, input I) (string, error)

	renderError ErrorRenderer
}

type funcToolOptions struct {
	Description string
	RenderError ErrorRenderer
}

// WithDescription sets the description clients use to decide when to call
// the tool.
func WithDescription(description string) func(*funcToolOptions) {
	return func(o *funcToolOptions) {
		o.Description = description
	}
}

// WithErrorRenderer replaces [DefaultErrorRenderer] for this tool.
func WithErrorRenderer(render ErrorRenderer) func(*funcToolOptions) {
	return func(o *funcToolOptions) {
		o.RenderError = render
	}
}

// NewTool constructs a [Tool]. The parameter schema is derived from I.
//
// Example:
//
//	getPosts := tool.NewTool("substack_get_posts", tools.GetPosts,
//	    tool.WithDescription("Fetch posts from a Substack newsletter."),
//	    tool.WithErrorRenderer(substack.RenderError),
//	)
func NewTool[I any](name string, function func(ctx context.Context, input I) (string, error), options ...func(*funcToolOptions)) *Tool[I] {
	opts := &funcToolOptions{RenderError: DefaultErrorRenderer}
	for _, option := range options {
		option(opts)
	}
	if opts.RenderError == nil {
		opts.RenderError = DefaultErrorRenderer
	}

	return &Tool[I]{
		Name:        name,
		Description: opts.Description,
		Parameters:  jsonschema.GenerateJSONSchema[I](),
		Function:    function,
		renderError: opts.RenderError,
	}
}

// ToolInfo returns the tool's name, description and parameter schema.
func (t *Tool[I]) ToolInfo() Info {
	return Info{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Call decodes inputJSON into I, validates it when I implements [Validator],
// and runs the tool function. Decoding, validation and execution failures
// are rendered with the tool's error renderer; panics are recovered and
// rendered the same way.
func (t *Tool[I]) Call(ctx context.Context, inputJSON string) (output string, err error) {
	logger := slogctx.FromCtx(ctx).With(slog.String("tool", t.Name))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", t.Name, r)
			output = t.renderError(err)
		}
		if err != nil {
			logger.WarnContext(ctx, "tool call failed",
				slog.Duration("duration", time.Since(start)),
				slog.String("error", err.Error()),
			)
			return
		}
		logger.InfoContext(ctx, "tool call completed",
			slog.Duration("duration", time.Since(start)),
			slog.Int("output_chars", len(output)),
		)
	}()

	logger.DebugContext(ctx, "tool call started", slog.Int("input_bytes", len(inputJSON)))

	input, err := parse.DecodeInput[I](inputJSON)
	if err != nil {
		return t.renderError(err), err
	}

	if v, ok := any(&input).(Validator); ok {
		if err := v.Validate(); err != nil {
			return t.renderError(err), err
		}
	}

	output, err = t.Function(ctx, input)
	if err != nil {
		return t.renderError(err), err
	}
	return output, nil
}
