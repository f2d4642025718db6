package handler

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
)

// RequestProcessor inspects an incoming request before it's decoded. It can
// reject the request by returning an error, or return an updated context.
type RequestProcessor func(ctx context.Context, r *http.Request) (context.Context, error)

// Pipeline defines the processing stages shared by HTTP handlers.
type Pipeline struct {
	logger            *slog.Logger
	requestProcessors []RequestProcessor
}

// NewPipeline creates a new pipeline without request processors. Internal
// errors are logged with logger.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// ProcessRequest returns a copy of the pipeline with the processors appended.
// The receiver is left unchanged, so a base pipeline can be shared by
// handlers that need different processors.
func (p *Pipeline) ProcessRequest(processor ...RequestProcessor) *Pipeline {
	return &Pipeline{
		logger:            p.logger,
		requestProcessors: append(slices.Clip(p.requestProcessors), processor...),
	}
}

func (p *Pipeline) writeError(w http.ResponseWriter, r *http.Request, err error) {
	problem := ProblemFor(err)
	if problem.Status >= http.StatusInternalServerError {
		p.logger.Error("failed handling request",
			"method", r.Method, "path", r.URL.Path, "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/problem+json")
	if werr := WriteJSON(w, problem.Status, problem); werr != nil {
		p.logger.Error("failed writing error response", "error", werr.Error())
	}
}
