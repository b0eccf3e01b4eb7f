package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMalformedInput       ErrorCode = 102
	ErrCodeDuplicateColumn      ErrorCode = 103
	ErrCodeUnknownColumn        ErrorCode = 104
	ErrCodeInvalidPeriod        ErrorCode = 105
	ErrCodeInvalidMultiplier    ErrorCode = 106
	ErrCodeInvalidWindowLength  ErrorCode = 107
	ErrCodeInvalidNormalization ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidTimeRange     ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeInsufficientHistory   ErrorCode = 200
	ErrCodeDataNotFound          ErrorCode = 201
	ErrCodeDataSourceUnavailable ErrorCode = 202
	ErrCodeQueryFailed           ErrorCode = 203
	ErrCodeDatasetWriteFailed    ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeUnknownIndicator     ErrorCode = 300
	ErrCodeIndicatorCalculation ErrorCode = 301

	// Feature/schema errors (400-499)
	ErrCodeSchemaIncompatible ErrorCode = 400
	ErrCodeInvalidTensorShape ErrorCode = 401

	// Market data errors (500-599)
	ErrCodeMarketDataFetchFailed ErrorCode = 500
	ErrCodeMarketDataWriteFailed ErrorCode = 501
	ErrCodeMarketDataParseFailed ErrorCode = 502
	ErrCodeInvalidTimespan       ErrorCode = 503
	ErrCodeInvalidProvider       ErrorCode = 504
)
