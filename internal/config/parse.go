package config

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Parse reads a YAML configuration document and returns the server port
// (taken only from the root — never from an override) and the fully
// resolved Config, with every subgraph_overrides entry already deep-merged
// onto a clone of the base and parsed as a complete config in its own
// right.
func Parse(raw []byte, logger *zap.Logger) (uint16, *Config, error) {
	var root map[string]interface{}
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return 0, nil, fmt.Errorf("parse config yaml: %w", err)
	}
	if root == nil {
		root = map[string]interface{}{}
	}

	overridesRaw, hasOverrides := root["subgraph_overrides"]
	delete(root, "subgraph_overrides")

	base, err := parseOne(root)
	if err != nil {
		return 0, nil, fmt.Errorf("parse base config: %w", err)
	}

	overrides := map[string]*Config{}
	if hasOverrides && overridesRaw != nil {
		overridesMap, ok := asStringMap(overridesRaw)
		if !ok {
			return 0, nil, fmt.Errorf("subgraph_overrides must be a mapping")
		}
		for name, raw := range overridesMap {
			overrideRaw, ok := asStringMap(raw)
			if !ok {
				return 0, nil, fmt.Errorf("subgraph_overrides[%s] must be a mapping", name)
			}
			if _, has := overrideRaw["port"]; has {
				logger.Warn("port is ignored inside subgraph_overrides", zap.String("subgraph", name))
				delete(overrideRaw, "port")
			}

			merged := deepCopyMap(root)
			deepMerge(merged, overrideRaw)

			cfg, err := parseOne(merged)
			if err != nil {
				return 0, nil, fmt.Errorf("parse subgraph_overrides[%s]: %w", name, err)
			}
			overrides[name] = cfg
		}
	}
	base.SubgraphOverrides = overrides

	return base.Port, base, nil
}

// parseOne round-trips a generic YAML mapping through a typed Config,
// applying defaults for anything left unset and validating headers.
func parseOne(raw map[string]interface{}) (*Config, error) {
	cfg := Default()
	// SubgraphOverrides is parsed separately by the caller; never let a
	// stray key re-enter typed parsing here.
	delete(raw, "subgraph_overrides")

	bytes, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-marshal config fragment: %w", err)
	}
	if err := yaml.Unmarshal(bytes, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config fragment: %w", err)
	}

	if cfg.ResponseGeneration.Scalars == nil {
		cfg.ResponseGeneration.Scalars = DefaultScalars()
	} else {
		defaults := DefaultScalars()
		for name, gen := range defaults {
			if _, overridden := cfg.ResponseGeneration.Scalars[name]; !overridden {
				cfg.ResponseGeneration.Scalars[name] = gen
			}
		}
	}

	if err := validateHeaders(cfg.Headers); err != nil {
		return nil, err
	}

	return cfg, nil
}
