package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"

	// Configuration errors
	ErrInvalidConfig ErrorCode = "invalid_configuration"
	ErrBindFlags     ErrorCode = "bind_flags_failed"
	ErrParseFlags    ErrorCode = "parse_flags_failed"
	ErrReadConfig    ErrorCode = "read_config_failed"
	ErrDecodeConfig  ErrorCode = "decode_config_failed"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Calculation errors
	ErrUnstableQueue ErrorCode = "unstable_queue"
	ErrNumeric       ErrorCode = "numeric_failure"

	// Search errors
	ErrInvalidGrid  ErrorCode = "invalid_grid"
	ErrSearchFailed ErrorCode = "search_failed"

	// Output errors
	ErrInvalidFormat ErrorCode = "invalid_format"
	ErrRender        ErrorCode = "render_failed"

	// Application errors
	ErrInitApp ErrorCode = "init_app_failed"
	ErrRunApp  ErrorCode = "run_app_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrInvalidConfig:   "Invalid configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrParseFlags:      "Failed to parse flags",
	ErrReadConfig:      "Failed to read config file",
	ErrDecodeConfig:    "Failed to decode configuration",
	ErrInvalidLogLevel: "Invalid log level",
	ErrUnstableQueue:   "Queue is unstable",
	ErrNumeric:         "Numeric failure",
	ErrInvalidGrid:     "Invalid search grid",
	ErrSearchFailed:    "Server search failed",
	ErrInvalidFormat:   "Invalid output format",
	ErrRender:          "Failed to render report",
	ErrInitApp:         "Failed to initialize application",
	ErrRunApp:          "Failed to run application",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
