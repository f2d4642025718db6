// Package mediator dispatches request values to their handlers through an
// ordered chain of cross-cutting behaviours.
//
// A handler is registered by wrapping it with [Handle], which composes the
// pipeline's behaviours around it once. The standard pipeline returned by
// [Default] runs, from outermost to innermost:
//
//   - [UnhandledError]: logs failures once and returns them unchanged
//   - [Authorization]: enforces the request type's [AuthorizationRule]
//   - [Validation]: runs the validators registered for the request type
//   - [Logging]: records every request
//   - [Performance]: warns about requests slower than [LongRunningThreshold]
//
// Failures are reported with the error types in this package, which callers
// can match with errors.As.
package mediator
