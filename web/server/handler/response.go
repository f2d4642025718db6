package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.hackfix.me/todo/web/server/types"
)

// WriteJSON writes v as a JSON response with the given status code. A
// Content-Type header set by the caller is preserved.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)

	//nolint:wrapcheck // Wrapped by caller.
	return json.NewEncoder(w).Encode(v)
}

// JSON returns a responder that writes the response as JSON.
func JSON[Resp any](status int) Responder[Resp] {
	return func(w http.ResponseWriter, _ *http.Request, resp Resp) error {
		return WriteJSON(w, status, resp)
	}
}

// NoContent returns a responder that discards the response and replies with
// 204 No Content.
func NoContent[Resp any]() Responder[Resp] {
	return func(w http.ResponseWriter, _ *http.Request, _ Resp) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// Created returns a responder for handlers that return the ID of a new
// record. The Location header is set to the record URL under basePath.
func Created(basePath string) Responder[uint64] {
	return func(w http.ResponseWriter, _ *http.Request, id uint64) error {
		w.Header().Set("Location", fmt.Sprintf("%s/%s", basePath, strconv.FormatUint(id, 10)))
		return WriteJSON(w, http.StatusCreated, types.Created{ID: id})
	}
}
