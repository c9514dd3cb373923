package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"jutsuclash/domain"
)

//go:embed jutsu.yaml
var defaultCatalogYAML []byte

type jutsuYAML struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	HandSigns   []string `yaml:"hand_signs"`
	Type        string   `yaml:"type"`
	Rarity      string   `yaml:"rarity"`
	Description string   `yaml:"description"`

	Damage       int     `yaml:"damage"`
	Healing      int     `yaml:"healing"`
	ShieldAmount int     `yaml:"shield_amount"`
	StunSeconds  float64 `yaml:"stun_seconds"`

	ChakraCost     int     `yaml:"chakra_cost"`
	CooldownSec    float64 `yaml:"cooldown_seconds"`
	CastTimeSec    float64 `yaml:"cast_time_seconds"`
	EffectDuration float64 `yaml:"effect_duration_seconds"`

	UnlockLevel int `yaml:"unlock_level"`
}

type catalogFile struct {
	Jutsu []jutsuYAML `yaml:"jutsu"`
}

// Load reads a jutsu catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jutsu catalog: %w", err)
	}
	return parse(raw)
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return parse(defaultCatalogYAML)
}

func parse(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse jutsu catalog: %w", err)
	}
	if len(f.Jutsu) == 0 {
		return nil, fmt.Errorf("catalog: no jutsu entries")
	}

	c := &Catalog{byID: make(map[string]Definition, len(f.Jutsu))}
	for _, j := range f.Jutsu {
		signs := make([]domain.HandSign, 0, len(j.HandSigns))
		for _, s := range j.HandSigns {
			signs = append(signs, domain.HandSign(s))
		}
		def := Definition{
			ID:             j.ID,
			Name:           j.Name,
			HandSigns:      signs,
			Type:           JutsuType(j.Type),
			Rarity:         Rarity(j.Rarity),
			Description:    j.Description,
			Damage:         j.Damage,
			Healing:        j.Healing,
			ShieldAmount:   j.ShieldAmount,
			StunDuration:   secondsToDuration(j.StunSeconds),
			ChakraCost:     j.ChakraCost,
			Cooldown:       secondsToDuration(j.CooldownSec),
			CastTime:       secondsToDuration(j.CastTimeSec),
			EffectDuration: secondsToDuration(j.EffectDuration),
			UnlockLevel:    j.UnlockLevel,
		}
		if err := validate(def); err != nil {
			return nil, err
		}
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate jutsu id %s", def.ID)
		}
		c.byID[def.ID] = def
		c.order = append(c.order, def.ID)
	}
	return c, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
