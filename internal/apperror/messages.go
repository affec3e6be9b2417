package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeInvalidConfiguration:  "Pricing configuration is invalid",
	CodeShippingUnavailable:   "Shipping method cannot carry this package",
	CodeSolverNonConvergence:  "Price solver did not converge",
	CodeUnknownShippingMethod: "Unknown shipping method",
	CodeRateTableInvalid:      "Shipping rate table is invalid",

	CodeSettingsNotFound: "No saved pricing settings",
	CodeStorageError:     "Storage operation failed",

	CodeKeywordGenerationFailed: "Keyword generation failed",
	CodeInvalidAPIKey:           "Language model API key is invalid",
	CodeListingParseFailed:      "Could not parse sold listings",

	CodeCircuitOpen: "Circuit breaker is open",
}
