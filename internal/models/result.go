package models

// ResultKind tags whether an answer came from complete inputs or a degraded path
type ResultKind string

const (
	ResultLive     ResultKind = "live"
	ResultFallback ResultKind = "fallback"
)

// Result wraps a value with its provenance so callers can tell degraded
// answers from authoritative ones
type Result[T any] struct {
	Kind  ResultKind `json:"kind"`
	Value T          `json:"value"`
}

// Live wraps an authoritative value
func Live[T any](v T) Result[T] {
	return Result[T]{Kind: ResultLive, Value: v}
}

// Fallback wraps a value computed from partial inputs
func Fallback[T any](v T) Result[T] {
	return Result[T]{Kind: ResultFallback, Value: v}
}

// IsFallback reports whether the value is degraded
func (r Result[T]) IsFallback() bool {
	return r.Kind == ResultFallback
}
