package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid query execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Monitoring lifecycle errors
	ErrAlreadyMonitoring = errors.New("user is already monitoring")
	ErrNotMonitoring     = errors.New("user is not monitoring")
	ErrNoSteamToken      = errors.New("steam session token not set")
	ErrFindLimitReached  = errors.New("find limit reached")

	// Settings validation errors
	ErrInvalidSteamToken = errors.New("steam session token looks invalid")
	ErrPriceOutOfRange   = errors.New("max price out of allowed range")
)
