package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoURL is returned when no panorama URL is given.
	ErrNoURL = errors.New("no URL specified: provide at least one tile URL")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the retry count is negative.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrInvalidBackoff is returned when the backoff is not positive or exceeds its cap.
	ErrInvalidBackoff = errors.New("invalid backoff: must be positive and not exceed the maximum backoff")

	// ErrInvalidWorkers is returned when face workers or the column window is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: face workers and column window must be positive")

	// ErrInvalidLimit is returned when the grid extent or zoom cap is not positive.
	ErrInvalidLimit = errors.New("invalid probe limit: max extent and max zoom must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxTileSize is returned when the tile size limit is not positive.
	ErrInvalidMaxTileSize = errors.New("invalid max tile size: must be positive")

	// ErrInvalidQuality is returned when the JPEG quality is outside 1..100.
	ErrInvalidQuality = errors.New("invalid quality: must be between 1 and 100")

	// ErrInvalidRotation is returned when the rotation is not yaw,pitch,roll.
	ErrInvalidRotation = errors.New("invalid rotation: expected three values yaw,pitch,roll")

	// ErrUnknownStore is returned for a store backend other than sqlite or bbolt.
	ErrUnknownStore = errors.New("unknown store backend: must be sqlite or bbolt")

	// ErrConflictingProxy is returned when both --proxy and --tor are given.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrConflictingReportFormats is returned when both --json and --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
