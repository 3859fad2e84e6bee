package kgerrors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmptyDocument signals source text below the minimum usable length.
	ErrEmptyDocument = errors.New("document content too short to extract knowledge")
)
