package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jutsuclash/domain"
)

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, c.Len(), 10)

	fireball, ok := c.ByID("fireball")
	require.True(t, ok)
	assert.Equal(t, "Fireball", fireball.Name)
	assert.Equal(t, TypeAttack, fireball.Type)
	assert.Equal(t, 25, fireball.Damage)
	assert.Equal(t, 20, fireball.ChakraCost)
	assert.Equal(t, 1, fireball.UnlockLevel)

	bind, ok := c.ByID("shadow_bind")
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, bind.StunDuration)

	_, ok = c.ByID("nonexistent")
	assert.False(t, ok)
}

func TestByLevel_FiltersOnUnlockLevel(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	level1 := c.ByLevel(1)
	require.NotEmpty(t, level1)
	for _, def := range level1 {
		assert.LessOrEqual(t, def.UnlockLevel, 1, "jutsu %s locked above level 1", def.ID)
	}
	assert.Greater(t, len(c.ByLevel(20)), len(level1))
}

func TestByRarity(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, def := range c.ByRarity(RarityUltimate) {
		assert.Equal(t, RarityUltimate, def.Rarity, "jutsu %s", def.ID)
	}
	assert.NotEmpty(t, c.ByRarity(RarityBasic))
}

func TestDefault_HandSignsAreValid(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, def := range c.ByLevel(100) {
		require.NotEmpty(t, def.HandSigns, "jutsu %s has no hand signs", def.ID)
		for _, sign := range def.HandSigns {
			assert.True(t, domain.ValidSign(sign), "jutsu %s sign %q", def.ID, sign)
		}
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jutsu.yaml")
	data := `jutsu:
  - id: spark
    name: Spark
    hand_signs: [rat]
    type: attack
    rarity: basic
    damage: 5
    chakra_cost: 5
    unlock_level: 1
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	spark, ok := c.ByID("spark")
	require.True(t, ok)
	assert.Equal(t, 5, spark.Damage)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_Rejections(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{
			name: "duplicate id",
			yaml: `jutsu:
  - {id: a, name: A, hand_signs: [rat], type: attack, rarity: basic, damage: 1, chakra_cost: 1}
  - {id: a, name: A, hand_signs: [rat], type: attack, rarity: basic, damage: 1, chakra_cost: 1}
`,
		},
		{
			name: "zero chakra cost",
			yaml: `jutsu:
  - {id: a, name: A, hand_signs: [rat], type: attack, rarity: basic, damage: 1, chakra_cost: 0}
`,
		},
		{
			name: "no effect magnitude",
			yaml: `jutsu:
  - {id: a, name: A, hand_signs: [rat], type: utility, rarity: basic, chakra_cost: 10}
`,
		},
		{
			name: "unknown hand sign",
			yaml: `jutsu:
  - {id: a, name: A, hand_signs: [phoenix], type: attack, rarity: basic, damage: 1, chakra_cost: 1}
`,
		},
		{
			name: "empty catalog",
			yaml: `jutsu: []`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}
