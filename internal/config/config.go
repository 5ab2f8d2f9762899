// Package config holds the engine-wide tunables exposed to callers:
// shared knobs and defaults the rest of the engine reads at startup.
package config

import "gopkg.in/yaml.v3"

// DefaultMaxLookahead is the match-tree compiler's default depth
// budget K.
const DefaultMaxLookahead = 32

// EngineConfig is the set of knobs an embedder can override.
type EngineConfig struct {
	// MaxLookahead is K, the maximum number of bytes the match-tree
	// compiler explores before declaring two alternatives ambiguous.
	MaxLookahead int `yaml:"max_lookahead"`
}

// Default returns the EngineConfig a caller gets without supplying any
// configuration of their own.
func Default() EngineConfig {
	return EngineConfig{MaxLookahead: DefaultMaxLookahead}
}

// Load parses an EngineConfig from YAML bytes, filling any field the
// document omits with its default rather than the zero value (a bare
// `{}` document, or one that only sets unrelated keys, still yields a
// usable lookahead depth).
func Load(data []byte) (EngineConfig, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, err
	}
	if cfg.MaxLookahead <= 0 {
		cfg.MaxLookahead = DefaultMaxLookahead
	}
	return cfg, nil
}
