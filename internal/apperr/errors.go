// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrRequestFailed = errors.New("request failed")
	ErrStale         = errors.New("stale response discarded")
)
