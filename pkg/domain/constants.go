package domain

const (
	// DefaultMaxDepth bounds tree exploration when the caller does not pick a depth.
	DefaultMaxDepth = 7

	// MinOutcomeTextLen is the trimmed length a line must exceed to count as an outcome.
	MinOutcomeTextLen = 3

	// FailureMarker is matched case-insensitively against governing conditions.
	FailureMarker = "== false"
)
