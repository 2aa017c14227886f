package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the domain model
var (
	ErrInvalidSeverity = goerr.New("invalid severity")
	ErrInvalidResponse = goerr.New("invalid backend response")
	ErrNotFound        = goerr.New("not found")
)

// Context keys for error values
const (
	EndpointKey = "endpoint"
	FieldKey    = "field"
	IndexKey    = "index"
)
