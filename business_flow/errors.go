// Package businessflow contains the core business logic and use cases for the marketing operations workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account-related errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrFeatureNotEnabled    = errors.New("this feature is not enabled on your account")
	ErrAccountNotConfigured = errors.New("account is missing ad platform or call tracking configuration")
	ErrNoAdAccounts         = errors.New("no ad platform accounts configured")
	ErrPhoneRequired        = errors.New("phone number is required")

	// Mutation-related errors
	ErrNoActiveCampaigns = errors.New("no active campaigns found")
	ErrInvalidDuration   = errors.New("invalid duration code")
	ErrMutationApply     = errors.New("failed to apply mutation")
	ErrNoOptedInCustomer = errors.New("no opted-in chat customer found")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error checking helper functions
func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrPhoneRequired)
}

func IsFeatureNotEnabled(err error) bool {
	return errors.Is(err, ErrFeatureNotEnabled)
}

func IsAccountNotConfigured(err error) bool {
	return errors.Is(err, ErrAccountNotConfigured) || errors.Is(err, ErrNoAdAccounts)
}

func IsNoActiveCampaigns(err error) bool {
	return errors.Is(err, ErrNoActiveCampaigns)
}

func IsInvalidDuration(err error) bool {
	return errors.Is(err, ErrInvalidDuration)
}

func IsNoOptedInCustomer(err error) bool {
	return errors.Is(err, ErrNoOptedInCustomer)
}
