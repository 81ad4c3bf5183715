// Package errors provides coded, actionable errors for the enginepoll
// command and its config loader.
//
// # Error Codes
//
// Each error has a code that maps to a short message and a detail line:
//   - E1xx: config file errors
//   - E2xx: server and command errors
//
// # Usage
//
//	err := errors.New(errors.ConfigBadDuration).
//	    WithField("pollTimeout").
//	    WithSuggestion(`Use a value like "30s"`)
//
//	errors.PrintError(err)
//	// ERROR E102: pollTimeout: Invalid duration
//	//
//	//   Durations are written as Go duration strings such as "25s" or "1m30s".
//	//
//	//   Hint: Use a value like "30s"
package errors
