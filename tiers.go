package evaluation

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTier is returned for malformed tier configuration.
var ErrInvalidTier = errors.New("invalid priority tier")

// TierConfig is the YAML layout of a tier file:
//
//	tiers:
//	  activeWorkbenchWindow: 2
//	  activePart: 8
type TierConfig struct {
	Tiers map[string]uint32 `yaml:"tiers"`
}

// LoadTiers decodes a tier configuration.
func LoadTiers(r io.Reader) (map[string]uint32, error) {
	var cfg TierConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]uint32{}, nil
		}
		return nil, fmt.Errorf("decode tiers: %w", err)
	}

	for name := range cfg.Tiers {
		if name == "" {
			return nil, fmt.Errorf("%w: empty variable name", ErrInvalidTier)
		}
	}

	if cfg.Tiers == nil {
		cfg.Tiers = map[string]uint32{}
	}

	return cfg.Tiers, nil
}

// LoadTiersFile reads a tier configuration from path.
func LoadTiersFile(path string) (map[string]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tiers: %w", err)
	}
	defer f.Close()

	tiers, err := LoadTiers(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return tiers, nil
}
