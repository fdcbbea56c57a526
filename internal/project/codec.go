package project

import (
	"encoding/json"
	"fmt"

	"listing-forge/internal/listing"
)

func encodeProject(p *listing.Project) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	return data, nil
}

// decodeProject reads a stored project, migrating first-generation
// 4-slot palettes to the current 8-slot scheme on the fly. The stored
// record is rewritten in canonical form on the next save.
func decodeProject(data []byte) (*listing.Project, error) {
	var p listing.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if p.Brand == nil {
		return &p, nil
	}

	// A legacy record has "primary" but no "primary1" in its palette.
	var probe struct {
		Brand struct {
			Palette map[string]json.RawMessage `json:"palette"`
		} `json:"brand"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode project palette: %w", err)
	}
	_, hasLegacy := probe.Brand.Palette["primary"]
	_, hasCurrent := probe.Brand.Palette["primary1"]
	if hasLegacy && !hasCurrent {
		var legacy struct {
			Brand struct {
				Palette listing.LegacyPalette `json:"palette"`
			} `json:"brand"`
		}
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("decode legacy palette: %w", err)
		}
		p.Brand.Palette = listing.MigrateLegacyPalette(legacy.Brand.Palette)
	}
	return &p, nil
}
