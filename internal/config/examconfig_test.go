package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labstats/pkg/contracts/domain"
)

func TestDefaultExamConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultExamConfig().Validate())
}

func TestLoadExamConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadExamConfig(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultExamConfig(), cfg)
}

func TestLoadExamConfigUndecodableFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config_examenes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	cfg, err := LoadExamConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultExamConfig(), cfg)
}

func TestLoadExamConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config_examenes.json")
	content := `{
		"multipliers": {"EXAMEN NUEVO": 4},
		"cultivo_multiplier": 12
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadExamConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cfg.Multipliers["EXAMEN NUEVO"])
	assert.Equal(t, int64(12), cfg.CultivoMultiplier)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultExamConfig().SeccionCategories, cfg.SeccionCategories)
}

func TestLoadExamConfigInvalidValuesFail(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "zero multiplier",
			content: `{"multipliers": {"EXAMEN": 0}}`,
		},
		{
			name:    "negative cultivo multiplier",
			content: `{"cultivo_multiplier": -1}`,
		},
		{
			name:    "mapped category missing from order",
			content: `{"exam_categories": {"EXAMEN": "Patología"}}`,
		},
		{
			name:    "order without the synthetic total",
			content: `{"category_order": ["Hematologico", "Other"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config_examenes.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadExamConfig(path, nil)
			require.Error(t, err)
		})
	}
}

func TestDefaultCategoryOrderEndsWithTotal(t *testing.T) {
	order := DefaultExamConfig().CategoryOrder
	require.NotEmpty(t, order)
	assert.Equal(t, domain.TotalCategory, order[len(order)-1])
	assert.Contains(t, order, domain.OtherCategory)
}
