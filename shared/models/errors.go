package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource Errors
	ErrNotFound       = errors.New("resource not found")
	ErrLessonNotFound = errors.New("lesson not found")

	// User & Authentication Errors
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized") // Authentication required or failed

	// Backend Response Errors
	ErrMalformedResponse = errors.New("malformed response from backend")

	// Lesson Generation Errors
	ErrGenerationFailed = errors.New("lesson generation failed")

	// General Request Errors
	ErrInvalidInput = errors.New("invalid input data")
)
