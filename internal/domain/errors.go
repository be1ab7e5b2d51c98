package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Lead errors
	ErrLeadNotFound      = errors.New("lead not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown status")

	// Status graph errors
	ErrBadStatusGraph = errors.New("invalid status graph")

	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUserInactive  = errors.New("user is inactive")
	ErrInvalidToken  = errors.New("invalid authentication token")
	ErrNoUserForRole = errors.New("no active user with requested role")

	// Permission errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrInvalidRole   = errors.New("invalid user role")
	ErrInvalidSource = errors.New("invalid lead source")
	ErrEmptyContact  = errors.New("lead requires a name and an email or phone")
)
