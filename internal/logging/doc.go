// Package logging builds the slog loggers used across clipo. It provides a
// human-oriented console handler, a JSON handler for machine consumption, and
// small helpers for attribute construction and component-scoped loggers.
package logging
