package daemon

import (
	"fmt"
	"slices"

	"github.com/1broseidon/tilevim/internal/config"
	"github.com/1broseidon/tilevim/internal/monitor"
	"github.com/1broseidon/tilevim/internal/service"
)

// SettingsFromConfig converts the configuration into service settings.
// Action names and their arguments are checked here. The prefix key is
// always bound to the prompt, ahead of every other binding.
func SettingsFromConfig(cfg *config.Config) (service.Settings, error) {
	var bindings []service.Binding
	if cfg.Keys == nil {
		for _, b := range service.DefaultBindings() {
			if b.Action != service.ActionPrompt {
				bindings = append(bindings, b)
			}
		}
	} else {
		bindings = make([]service.Binding, 0, len(cfg.Keys))
		for i, kb := range cfg.Keys {
			id, err := service.ParseAction(kb.Action)
			if err != nil {
				return service.Settings{}, fmt.Errorf("keys.%d: %w", i, err)
			}
			b := service.Binding{
				Keys:   slices.Clone(kb.Keys),
				Action: id,
				Args:   slices.Clone(kb.Args),
			}
			if err := b.Validate(); err != nil {
				return service.Settings{}, fmt.Errorf("keys.%d: %w", i, err)
			}
			bindings = append(bindings, b)
		}
	}

	prefix := service.Binding{Keys: []string{cfg.PrefixKey}, Action: service.ActionPrompt}
	bindings = append([]service.Binding{prefix}, bindings...)

	return service.Settings{
		Gaps: monitor.Gaps{Inner: cfg.InnerGap, Outer: cfg.OuterGap},
		Defaults: monitor.Defaults{
			Layout:  cfg.LayoutKey(),
			NMaster: cfg.DefaultNMaster,
			MFact:   cfg.DefaultMFact,
		},
		RemoveDecorations: cfg.RemoveDecorations,
		AutoHint:          cfg.AutoHint,
		Bindings:          bindings,
	}, nil
}
