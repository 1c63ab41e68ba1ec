// Package errors provides structured, actionable errors for the catsite CLI.
//
// Errors carry a registered code, a category, a plain-language message, and
// optionally the file location that caused them and a suggestion for fixing
// it.
//
// # Error Categories
//
//   - config: configuration file problems (syntax, bad durations, ranges)
//   - assets: page source problems (missing directory, bucket errors)
//   - actions: action table problems
//   - protocol: WebSocket and event errors
//   - validation: contact form input errors
//   - cli: command-line usage errors
//
// # Usage
//
//	err := errors.New("E101").
//	    WithLocation("catsite.toml", 12, 11).
//	    WithSuggestion(`Use a Go duration such as "5s" or "300ms"`)
//
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR E101: Invalid duration
//	//
//	//   catsite.toml:12:11
//	//
//	//     11 │ [toast]
//	//   → 12 │ display = "five"
//	//        │           ^
//	//
//	//   Hint: Use a Go duration such as "5s" or "300ms"
package errors
