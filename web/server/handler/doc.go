// Package handler adapts mediator handlers to HTTP.
//
// Every endpoint is created with Handle, which decodes the HTTP request into
// a mediator request, runs it, and writes either the response or a problem
// details body derived from the returned error.
package handler
