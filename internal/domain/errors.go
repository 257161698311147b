package domain

import "errors"

var (
	// ErrUnauthorized indicates no authenticated identity was present where one is required.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrForbidden indicates the identity is present but lacks permission for the resource.
	ErrForbidden = errors.New("not authorized")
	// ErrNotFound indicates a well-formed identifier matched no record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument indicates a malformed identifier or missing required field.
	ErrInvalidArgument = errors.New("invalid argument")
)
