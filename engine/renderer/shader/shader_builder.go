package shader

import "github.com/Carmen-Shannon/oxy-sprite/engine/log"

// ProgramBuilderOption is a functional option applied to a Program during Build or BuildFromFiles.
type ProgramBuilderOption func(*program)

// WithLogger sets the logger used for build diagnostics and warnings.
//
// Parameters:
//   - logger: the logger; nil discards debug and info records
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithLogger(logger *log.Logger) ProgramBuilderOption {
	return func(p *program) {
		p.logger = logger
	}
}

// WithLabel names the program in log records.
//
// Parameters:
//   - label: a human-readable name
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithLabel(label string) ProgramBuilderOption {
	return func(p *program) {
		p.label = label
	}
}

// WithDebug enables validation of uniform array lengths at link time: a contract uniform declared
// with the wrong length fails the build with ErrBuild. Defaults to on in spritedebug builds.
//
// Parameters:
//   - enabled: true to validate
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithDebug(enabled bool) ProgramBuilderOption {
	return func(p *program) {
		p.debug = enabled
	}
}
