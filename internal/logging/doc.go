// Package logging provides a unified logging interface for postchain.
// It abstracts the underlying logging implementation so that the orchestrators,
// the remote client and the application layer log through one interface while
// the backend (zerolog by default, the standard library logger as a fallback)
// stays interchangeable.
package logging
