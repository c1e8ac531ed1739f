package texture

import "github.com/Carmen-Shannon/oxy-sprite/engine/log"

// LoaderBuilderOption is a functional option applied to a Loader during construction via NewLoader.
type LoaderBuilderOption func(*loader)

// WithCacheSize sets how many textures the loader keeps resident. Values <= 0 are ignored.
//
// Parameters:
//   - size: maximum number of cached textures
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithCacheSize(size int) LoaderBuilderOption {
	return func(l *loader) {
		if size > 0 {
			l.size = size
		}
	}
}

// WithWorkers sets the number of decode workers used by LoadAll. Values <= 0 are ignored.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets the logger for load and eviction records.
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logger
	}
}
