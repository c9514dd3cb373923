package catalog

import (
	"fmt"
	"time"

	"jutsuclash/domain"
)

// JutsuType classifies what a jutsu primarily does.
type JutsuType string

const (
	TypeAttack  JutsuType = "attack"
	TypeDefense JutsuType = "defense"
	TypeUtility JutsuType = "utility"
	TypeHeal    JutsuType = "heal"
)

// Rarity is the unlock tier of a jutsu.
type Rarity string

const (
	RarityBasic    Rarity = "basic"
	RarityAdvanced Rarity = "advanced"
	RarityUltimate Rarity = "ultimate"
)

// Definition is one catalog entry. Immutable after load.
type Definition struct {
	ID          string
	Name        string
	HandSigns   []domain.HandSign
	Type        JutsuType
	Rarity      Rarity
	Description string

	Damage       int
	Healing      int
	ShieldAmount int
	StunDuration time.Duration

	ChakraCost     int
	Cooldown       time.Duration
	CastTime       time.Duration
	EffectDuration time.Duration

	UnlockLevel int
}

// Catalog is a read-only jutsu lookup table.
type Catalog struct {
	byID  map[string]Definition
	order []string // load order, for stable iteration
}

// ByID returns the definition for id.
func (c *Catalog) ByID(id string) (Definition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// ByLevel returns all jutsu unlocked at or below level, in load order.
func (c *Catalog) ByLevel(level int) []Definition {
	var defs []Definition
	for _, id := range c.order {
		if def := c.byID[id]; def.UnlockLevel <= level {
			defs = append(defs, def)
		}
	}
	return defs
}

// ByRarity returns all jutsu of the given rarity, in load order.
func (c *Catalog) ByRarity(r Rarity) []Definition {
	var defs []Definition
	for _, id := range c.order {
		if def := c.byID[id]; def.Rarity == r {
			defs = append(defs, def)
		}
	}
	return defs
}

// Len returns the number of loaded definitions.
func (c *Catalog) Len() int {
	return len(c.byID)
}

func validate(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("catalog: jutsu with empty id")
	}
	if def.ChakraCost <= 0 {
		return fmt.Errorf("catalog: jutsu %s: chakra cost must be positive", def.ID)
	}
	if def.Damage <= 0 && def.Healing <= 0 && def.ShieldAmount <= 0 && def.StunDuration <= 0 {
		return fmt.Errorf("catalog: jutsu %s: no effect magnitude", def.ID)
	}
	for _, sign := range def.HandSigns {
		if !domain.ValidSign(sign) {
			return fmt.Errorf("catalog: jutsu %s: unknown hand sign %q", def.ID, sign)
		}
	}
	return nil
}
