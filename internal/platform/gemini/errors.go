package gemini

import "errors"

// Package-specific errors.
var (
	// ErrNilTask is returned when GenerateStory receives a nil task.
	ErrNilTask = errors.New("task cannot be nil")

	// ErrEmptyResponse is returned when the API yields no usable text.
	ErrEmptyResponse = errors.New("empty response from Gemini API")
)
