package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Pricing error codes
const (
	CodeInvalidConfiguration  Code = "INVALID_CONFIGURATION"
	CodeShippingUnavailable   Code = "SHIPPING_UNAVAILABLE"
	CodeSolverNonConvergence  Code = "SOLVER_NON_CONVERGENCE"
	CodeUnknownShippingMethod Code = "UNKNOWN_SHIPPING_METHOD"
	CodeRateTableInvalid      Code = "RATE_TABLE_INVALID"
)

// Storage error codes
const (
	CodeSettingsNotFound Code = "SETTINGS_NOT_FOUND"
	CodeStorageError     Code = "STORAGE_ERROR"
)

// Research error codes
const (
	CodeKeywordGenerationFailed Code = "KEYWORD_GENERATION_FAILED"
	CodeInvalidAPIKey           Code = "INVALID_API_KEY"
	CodeListingParseFailed      Code = "LISTING_PARSE_FAILED"
)

// Circuit breaker errors
const (
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
