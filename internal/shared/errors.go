package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Instance and selection errors
	ErrNoInstance      = fmt.Errorf("no active instance")
	ErrOriginDisabled  = fmt.Errorf("labeling disabled for this origin")
	ErrNoAuthToken     = fmt.Errorf("no auth token available")
	ErrNoItemsSelected = fmt.Errorf("no photos selected")

	// API and resolution errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrResolution         = fmt.Errorf("label resolution failed")
	ErrLabelNotFound      = fmt.Errorf("label not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
