package models

import "errors"

var (
	// ErrInvalidProfile rejects a request before any membership is computed.
	ErrInvalidProfile = errors.New("invalid user profile")
	// ErrRuleBaseConfig is fatal at startup.
	ErrRuleBaseConfig = errors.New("rule base configuration error")
	// ErrEmptyResultSet means no recipe survived scoring. It is reported as a
	// warning, never returned as a request failure.
	ErrEmptyResultSet = errors.New("no matching recipes found")
	// ErrMalformedRecipe marks a single catalog row that is skipped.
	ErrMalformedRecipe = errors.New("malformed recipe row")
)
