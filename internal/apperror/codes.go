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

	// Configuration
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

// Market data (source adapters, quote cache)
const (
	CodeSourceUnavailable   Code = "SOURCE_UNAVAILABLE"
	CodeSourceAPIError      Code = "SOURCE_API_ERROR"
	CodeSourceNotConnected  Code = "SOURCE_NOT_CONNECTED"
	CodeSourceStale         Code = "SOURCE_STALE"
	CodeInvalidQuote        Code = "INVALID_QUOTE"
	CodeSyntheticBatch      Code = "SYNTHETIC_BATCH"
	CodeUnsupportedExchange Code = "UNSUPPORTED_EXCHANGE"
)

// WebSocket errors
const (
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
)

// Asset identity
const (
	CodeIdentityUnresolved Code = "IDENTITY_UNRESOLVED"
	CodeIdentityAmbiguous  Code = "IDENTITY_AMBIGUOUS"
	CodeLookupFailed       Code = "CONTRACT_LOOKUP_FAILED"
	CodeInvalidChain       Code = "INVALID_CHAIN"
	CodeInvalidAddress     Code = "INVALID_ADDRESS"
	CodeEVMRPCError        Code = "EVM_RPC_ERROR"
)

// Transfer availability
const (
	CodeNetworkInfoUnsupported Code = "NETWORK_INFO_UNSUPPORTED"
	CodeNetworkInfoFailed      Code = "NETWORK_INFO_FAILED"
)

// Storage
const (
	CodeCacheMiss       Code = "CACHE_MISS"
	CodeCacheError      Code = "CACHE_ERROR"
	CodeDatabaseError   Code = "DATABASE_ERROR"
	CodeMigrationFailed Code = "MIGRATION_FAILED"
)

// Circuit breaker errors
const (
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
