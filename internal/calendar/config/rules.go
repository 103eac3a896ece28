// Package config loads the operator-tunable calendar rules from a TOML file.
package config

import (
	"fmt"
	"strings"

	"vistoria/internal/calendar/decoration"
	"vistoria/pkg/duration"
	"vistoria/pkg/logger"

	"github.com/BurntSushi/toml"
)

const DefaultDailyCapHours = 6

type Colors struct {
	Default string            `toml:"default"`
	Palette map[string]string `toml:"palette"`
}

type Rules struct {
	DailyCapHours float64 `toml:"daily_cap_hours"`
	Colors        Colors  `toml:"colors"`
}

func DefaultRules() *Rules {
	palette := make(map[string]string, len(decoration.DefaultPalette))
	for k, v := range decoration.DefaultPalette {
		palette[k] = v
	}
	return &Rules{
		DailyCapHours: DefaultDailyCapHours,
		Colors: Colors{
			Default: decoration.DefaultColor,
			Palette: palette,
		},
	}
}

// LoadRules reads path over the defaults. An empty path yields the defaults.
// Palette entries in the file are merged into the default palette.
func LoadRules(path string, log *logger.Logger) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	var file Rules
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rules file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		log.Warn("Unknown keys in rules file", "path", path, "keys", strings.Join(keys, ","))
	}

	if md.IsDefined("daily_cap_hours") {
		rules.DailyCapHours = file.DailyCapHours
	}
	if file.Colors.Default != "" {
		rules.Colors.Default = file.Colors.Default
	}
	for name, color := range file.Colors.Palette {
		rules.Colors.Palette[name] = color
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}

	log.Info("Calendar rules loaded",
		"path", path,
		"daily_cap_hours", rules.DailyCapHours,
		"palette_size", len(rules.Colors.Palette),
	)
	return rules, nil
}

func (r *Rules) Validate() error {
	if r.DailyCapHours <= 0 || r.DailyCapHours > 24 {
		return fmt.Errorf("daily_cap_hours must be in (0, 24], got: %v", r.DailyCapHours)
	}
	for name, color := range r.Colors.Palette {
		if !strings.HasPrefix(color, "#") {
			return fmt.Errorf("color for %q must be a hex value, got: %s", name, color)
		}
	}
	return nil
}

func (r *Rules) DailyCapSeconds() int64 {
	return duration.FromHours(r.DailyCapHours)
}
