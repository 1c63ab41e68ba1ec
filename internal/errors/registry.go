package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "WebSocket connection failed",
		Detail:   "The WebSocket upgrade was rejected or the connection dropped during the handshake.",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Invalid event",
		Detail:   "The client sent an event the server could not decode or that failed validation.",
	},
	"E062": {
		Category:   CategoryProtocol,
		Message:    "Session limit reached",
		Detail:     "The server already holds the maximum number of sessions.",
		Suggestion: "Raise server.max_sessions or add instances behind the load balancer",
	},
	"E063": {
		Category: CategoryProtocol,
		Message:  "Event queue full",
		Detail:   "A session produced events faster than its loop could handle them.",
	},

	// ============================================
	// Validation Errors (E080-E099)
	// ============================================

	"E080": {
		Category: CategoryValidation,
		Message:  "Missing contact fields",
		Detail:   "Full name, phone and email are all required.",
	},
	"E081": {
		Category: CategoryValidation,
		Message:  "Invalid email address",
	},
	"E082": {
		Category: CategoryValidation,
		Message:  "Invalid phone number",
		Detail:   "Phone numbers must contain exactly 10 digits.",
	},

	// ============================================
	// Configuration Errors (E100-E119)
	// ============================================

	"E100": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Detail:     "The configuration file is not valid TOML.",
		Suggestion: "Run 'catsite check' to validate the file",
	},
	"E101": {
		Category:   CategoryConfig,
		Message:    "Invalid duration",
		Suggestion: `Use a Go duration such as "5s" or "300ms"`,
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Value out of range",
	},
	"E103": {
		Category:   CategoryConfig,
		Message:    "Unknown log format",
		Suggestion: `Use "auto", "text" or "json"`,
	},
	"E104": {
		Category:   CategoryConfig,
		Message:    "Unknown cache strategy",
		Suggestion: `Use "none" or "production"`,
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Configuration file not readable",
	},
	"E106": {
		Category:   CategoryConfig,
		Message:    "Unknown log level",
		Suggestion: `Use "debug", "info", "warn" or "error"`,
	},
	"E107": {
		Category: CategoryConfig,
		Message:  "Invalid listen address",
	},
	"E108": {
		Category:   CategoryConfig,
		Message:    "Unknown configuration key",
		Suggestion: "Check the key's spelling and section",
	},

	// ============================================
	// Asset Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryAssets,
		Message:  "Asset directory not found",
	},
	"E121": {
		Category:   CategoryAssets,
		Message:    "Unknown asset source",
		Suggestion: `Use "embedded", "dir" or "s3"`,
	},
	"E122": {
		Category:   CategoryAssets,
		Message:    "Missing S3 bucket",
		Suggestion: "Set assets.bucket when assets.source is \"s3\"",
	},
	"E123": {
		Category: CategoryAssets,
		Message:  "Page index missing",
		Detail:   "The asset source has no index.html.",
	},

	// ============================================
	// Action Table Errors (E130-E139)
	// ============================================

	"E130": {
		Category: CategoryActions,
		Message:  "Invalid action table",
	},
	"E131": {
		Category: CategoryActions,
		Message:  "Action table not found",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Server failed",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
}

// GetAllCodes returns all registered error codes, sorted.
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

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
