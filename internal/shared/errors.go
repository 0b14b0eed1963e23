package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Upload and transport errors
	ErrTransport          = fmt.Errorf("upload transport failed")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrInvalidState       = fmt.Errorf("invalid state transition")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUnexpectedStatus   = fmt.Errorf("unexpected response status")

	// Persistence errors
	ErrNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
