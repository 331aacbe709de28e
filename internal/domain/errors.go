package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyPrompt     = errors.New("prompt is required")
	ErrEmptyPayload    = errors.New("image payload is empty")
	ErrEmptyLocator    = errors.New("content locator is empty")
	ErrWorkflowBusy    = errors.New("a submission is already in progress")
	ErrProviderFailure = errors.New("provider failure")
)
