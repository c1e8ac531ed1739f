package log

import "io"

// LoggerBuilderOption is a functional option applied to a Logger during construction via New.
type LoggerBuilderOption func(*loggerConfig)

// WithLevel sets the minimum level recorded: "debug", "info", "warn" or "error".
//
// Parameters:
//   - level: the level name
//
// Returns:
//   - LoggerBuilderOption: option function to apply
func WithLevel(level string) LoggerBuilderOption {
	return func(c *loggerConfig) {
		c.level = level
	}
}

// WithDir sets the directory the rotated log file is written to.
//
// Parameters:
//   - dir: directory path; created by the rotating writer on first write
//
// Returns:
//   - LoggerBuilderOption: option function to apply
func WithDir(dir string) LoggerBuilderOption {
	return func(c *loggerConfig) {
		c.dir = dir
	}
}

// WithFileName overrides the rotated log file name.
func WithFileName(name string) LoggerBuilderOption {
	return func(c *loggerConfig) {
		if name != "" {
			c.file = name
		}
	}
}

// WithStderr mirrors every record to stderr in addition to the log file.
func WithStderr(enabled bool) LoggerBuilderOption {
	return func(c *loggerConfig) {
		c.stderr = enabled
	}
}

// WithWriter replaces the rotated file with w. Mostly useful in tests.
func WithWriter(w io.Writer) LoggerBuilderOption {
	return func(c *loggerConfig) {
		c.writer = w
	}
}
