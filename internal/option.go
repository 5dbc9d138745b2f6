package internal

import "github.com/starford/cardex/internal/extract"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	extractor extract.Extractor
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithExtractor overrides the extraction client. Used by tests to avoid
// talking to the real vision service.
func WithExtractor(ex extract.Extractor) Option {
	return func(a *application) {
		a.extractor = ex
	}
}
