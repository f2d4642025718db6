package handler

import (
	"net/http"

	"go.hackfix.me/todo/mediator"
)

// Decoder builds the mediator request from an HTTP request.
type Decoder[Req any] func(r *http.Request) (Req, error)

// Responder writes the mediator response to the client.
type Responder[Resp any] func(w http.ResponseWriter, r *http.Request, resp Resp) error

// Handle creates an HTTP handler function that runs a request through the
// pipeline p and then the mediator handler fn.
//
// The stages are:
//  1. request processing (e.g. content type checks)
//  2. request decoding
//  3. the mediator handler, which authorizes and validates the request
//  4. response writing
//
// Any error stops processing and is written as a problem response.
func Handle[Req, Resp any](
	p *Pipeline,
	fn mediator.HandlerFunc[Req, Resp],
	decode Decoder[Req],
	respond Responder[Resp],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			ctx = r.Context()
			err error
		)

		for _, process := range p.requestProcessors {
			if ctx, err = process(ctx, r); err != nil {
				p.writeError(w, r, err)
				return
			}
		}
		r = r.WithContext(ctx)

		req, err := decode(r)
		if err != nil {
			p.writeError(w, r, err)
			return
		}

		resp, err := fn(ctx, req)
		if err != nil {
			p.writeError(w, r, err)
			return
		}

		if err = respond(w, r, resp); err != nil {
			p.logger.Error("failed writing response", "error", err.Error())
		}
	}
}
