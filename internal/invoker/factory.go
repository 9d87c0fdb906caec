package invoker

import (
	"fmt"

	"docextract/internal/config"
	"docextract/internal/port"
)

// ProviderFactory is a function that creates a ModelInvoker from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.ModelInvoker, error)

// registry of provider factories, populated via RegisterProvider at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewInvoker creates a ModelInvoker for a named provider using the registered factory.
func NewInvoker(name string, cfg *config.ProviderConfig) (port.ModelInvoker, error) {
	factory, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown model provider: %s", name)
	}
	return factory(cfg)
}

// NewBindings resolves every configured model to an invoker, in configured order.
// Models sharing a provider share one invoker.
func NewBindings(models []config.ModelConfig, cfgs *config.ProvidersConfig) ([]port.ModelBinding, error) {
	byProvider := make(map[string]port.ModelInvoker)
	bindings := make([]port.ModelBinding, 0, len(models))

	for _, m := range models {
		inv, ok := byProvider[m.Provider]
		if !ok {
			pcfg := cfgs.Get(m.Provider)
			if pcfg == nil {
				return nil, fmt.Errorf("model %s: unknown model provider: %s", m.ID, m.Provider)
			}
			var err error
			inv, err = NewInvoker(m.Provider, pcfg)
			if err != nil {
				return nil, fmt.Errorf("model %s: %w", m.ID, err)
			}
			byProvider[m.Provider] = inv
		}
		bindings = append(bindings, port.ModelBinding{Model: m.ID, Invoker: inv})
	}
	return bindings, nil
}
