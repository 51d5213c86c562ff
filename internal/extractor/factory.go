package extractor

import (
	"fmt"

	"invoflow/internal/config"
	"invoflow/internal/port"
)

// ProviderFactory is a function that creates a StructuredExtractor from an
// extractor config.
type ProviderFactory func(cfg *config.ExtractorConfig) (port.StructuredExtractor, error)

// registry of extraction provider factories, populated by init() in each
// provider package.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// New creates a StructuredExtractor from the configured provider.
func New(cfg *config.ExtractorConfig) (port.StructuredExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
