// Package logging builds the process logger and carries request-scoped
// loggers through contexts.
package logging
