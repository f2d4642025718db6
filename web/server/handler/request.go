package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"go.hackfix.me/todo/web/server/types"
)

// MaxBodySize is the maximum accepted size of a request body in bytes.
const MaxBodySize = 1 << 20

// None returns a decoder for requests that carry no data.
func None[Req any]() Decoder[Req] {
	return func(*http.Request) (Req, error) {
		var req Req
		return req, nil
	}
}

// DecodeJSON decodes the JSON request body into a new Req value.
func DecodeJSON[Req any](r *http.Request) (Req, error) {
	var req Req
	body := http.MaxBytesReader(nil, r.Body, MaxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, types.NewProblem(http.StatusBadRequest, "request body is empty")
		}
		return req, types.NewProblem(http.StatusBadRequest,
			fmt.Sprintf("malformed request body: %s", err))
	}

	return req, nil
}

// idBits is the size of record IDs, which are positive signed 64-bit
// integers in the database.
const idBits = 63

// PathID parses the named path value as a record ID.
func PathID(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, idBits)
	if err != nil || id == 0 {
		return 0, types.NewProblem(http.StatusBadRequest,
			fmt.Sprintf("invalid path parameter '%s'", name))
	}

	return id, nil
}

// QueryInt parses the named query parameter as an integer. It returns def if
// the parameter is absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return def, nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, types.NewProblem(http.StatusBadRequest,
			fmt.Sprintf("invalid query parameter '%s'", name))
	}

	return n, nil
}

// QueryUint parses the named query parameter as a record ID. It returns 0 if
// the parameter is absent.
func QueryUint(r *http.Request, name string) (uint64, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return 0, nil
	}

	n, err := strconv.ParseUint(val, 10, idBits)
	if err != nil {
		return 0, types.NewProblem(http.StatusBadRequest,
			fmt.Sprintf("invalid query parameter '%s'", name))
	}

	return n, nil
}

// RequireJSON rejects requests whose body isn't declared as JSON.
func RequireJSON(ctx context.Context, r *http.Request) (context.Context, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return ctx, types.NewProblem(http.StatusUnsupportedMediaType,
			"request body must be application/json")
	}

	return ctx, nil
}
