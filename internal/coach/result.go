package coach

// Source records whether a value came from the model or from a template.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is a generated value together with its provenance. Reason explains
// why a fallback was used and is empty for model output.
type Result[T any] struct {
	Value  T      `json:"value"`
	Source Source `json:"source"`
	Reason string `json:"reason,omitempty"`
}

// Ok wraps a value produced by the model.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v, Source: SourceModel}
}

// Fallback wraps a deterministic value used in place of model output.
func Fallback[T any](v T, reason string) Result[T] {
	return Result[T]{Value: v, Source: SourceFallback, Reason: reason}
}

// IsFallback reports whether the value came from a template.
func (r Result[T]) IsFallback() bool {
	return r.Source == SourceFallback
}
