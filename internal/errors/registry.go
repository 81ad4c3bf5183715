package errors

import "sort"

// Registered error codes.
const (
	ConfigNotFound     = "E100"
	ConfigInvalidJSON  = "E101"
	ConfigBadDuration  = "E102"
	ConfigInvalidValue = "E103"
	ConfigExists       = "E104"

	ServerListenFailed   = "E200"
	ServerShutdownFailed = "E201"
	UnknownPayloadMode   = "E202"
	InvalidBinaryArg     = "E203"
	EncodeFailed         = "E204"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Config Errors (E100-E199)

	ConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The config file passed with --config does not exist.",
	},
	ConfigInvalidJSON: {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The config file is not valid JSON.",
	},
	ConfigBadDuration: {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		Detail:   "Durations are written as Go duration strings such as \"25s\" or \"1m30s\".",
	},
	ConfigInvalidValue: {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A config value is out of range.",
	},
	ConfigExists: {
		Category: CategoryConfig,
		Message:  "Config file already exists",
		Detail:   "init does not overwrite an existing enginepoll.json.",
	},

	// Server and CLI Errors (E200-E299)

	ServerListenFailed: {
		Category: CategoryServer,
		Message:  "Failed to listen",
		Detail:   "The HTTP server could not bind its address. Another process may be using the port.",
	},
	ServerShutdownFailed: {
		Category: CategoryServer,
		Message:  "Shutdown did not complete",
		Detail:   "Open requests did not finish before the shutdown deadline.",
	},
	UnknownPayloadMode: {
		Category: CategoryCLI,
		Message:  "Unknown payload mode",
		Detail:   "The payload mode must be one of v4, v3 or v3-string.",
	},
	InvalidBinaryArg: {
		Category: CategoryCLI,
		Message:  "Invalid binary packet",
		Detail:   "Binary packets are given as hex strings, for example 01020304.",
	},
	EncodeFailed: {
		Category: CategoryProtocol,
		Message:  "Payload encoding failed",
		Detail:   "A packet could not be converted to its text form.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
