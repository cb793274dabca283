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

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	CodeSourceUnavailable:   "Market data source unreachable",
	CodeSourceAPIError:      "Market data source returned an error",
	CodeSourceNotConnected:  "Market data source not connected",
	CodeSourceStale:         "Market data is stale",
	CodeInvalidQuote:        "Invalid quote data",
	CodeSyntheticBatch:      "Quote batch looks synthetic",
	CodeUnsupportedExchange: "Exchange not supported",

	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",

	CodeIdentityUnresolved: "Asset chain could not be resolved",
	CodeIdentityAmbiguous:  "Asset identity is ambiguous",
	CodeLookupFailed:       "Contract lookup failed",
	CodeInvalidChain:       "Unknown chain identifier",
	CodeInvalidAddress:     "Invalid contract address",
	CodeEVMRPCError:        "EVM RPC call failed",

	CodeNetworkInfoUnsupported: "Exchange does not expose network information",
	CodeNetworkInfoFailed:      "Network information lookup failed",

	CodeCacheMiss:       "Cache miss",
	CodeCacheError:      "Cache backend error",
	CodeDatabaseError:   "Database error",
	CodeMigrationFailed: "Database migration failed",

	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
