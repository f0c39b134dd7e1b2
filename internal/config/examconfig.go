package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"

	apperrors "labstats/internal/errors"
	"labstats/pkg/contracts/domain"
)

// ExamConfig holds the exam lookup tables: per-exam quantity multipliers, the
// substring-matched cultivo multiplier, and the two-tier category maps. It is
// loaded once at pipeline start and passed into the stages as an immutable
// value; stages never read it from shared state.
type ExamConfig struct {
	Multipliers       map[string]int64  `json:"multipliers" validate:"dive,gt=0"`
	CultivoMultiplier int64             `json:"cultivo_multiplier" validate:"gt=0"`
	ExamCategories    map[string]string `json:"exam_categories"`
	SeccionCategories map[string]string `json:"seccion_categories"`
	CategoryOrder     []string          `json:"category_order" validate:"min=1"`
}

// DefaultExamConfig returns the built-in lookup tables matching the hospital's
// standard exam catalogue. Used when no config file exists or it cannot be
// read.
func DefaultExamConfig() *ExamConfig {
	return &ExamConfig{
		Multipliers: map[string]int64{
			"BIOMETRÍA HEMÁTICA":                18,
			"COPROPARASITARIO":                  2,
			"ELEMENTAL Y MICROSCÓPICO DE ORINA": 3,
			"GASOMETRIA ARTERIAL":               14,
			"GASOMETRIA VENOSA":                 14,
			"TIPIFICACION SANGUINEA RH (D)":     3,
		},
		CultivoMultiplier: 10,
		ExamCategories: map[string]string{
			"LEISHMANIA":               "Hematologico",
			"CRISTALOGRAFÍA":           "Bacteriológico",
			"GRAM (GOTA FRESCA) ORINA": "Bacteriológico",
			"GASOMETRIA ARTERIAL":      "Quimica sanguinea",
			"GASOMETRIA VENOSA":        "Quimica sanguinea",
		},
		SeccionCategories: map[string]string{
			"Autoinmunes e Infecciosas": "Serologicos",
			"Drogas y Fármacos":         "Serologicos",
			"Serología":                 "Serologicos",
			"Bioquímica":                "Quimica sanguinea",
			"Electrolitos":              "Quimica sanguinea",
			"Inmunoquímica Sanguínea":   "Quimica sanguinea",
			"Química Clínica en Orina":  "Quimica sanguinea",
			"Uroanálisis":               "Orina",
			"Coproanálisis":             "Materias fecales",
			"Biología Molecular":        "Hormonales",
			"Estudios Hormonales":       "Hormonales",
			"Marcadores Tumorales":      "Hormonales",
			"Coagulación":               "Hematologico",
			"Hematología":               "Hematologico",
			"Inmunohematología":         "Hematologico",
			"Microbiología":             "Bacteriológico",
		},
		CategoryOrder: []string{
			"Hematologico",
			"Bacteriológico",
			"Quimica sanguinea",
			"Materias fecales",
			"Orina",
			"Hormonales",
			"Serologicos",
			domain.OtherCategory,
			domain.TotalCategory,
		},
	}
}

// LoadExamConfig reads the exam lookup tables from a JSON file. A missing
// file yields the defaults; an unreadable or undecodable file is logged and
// also falls back to the defaults, matching the lenient behavior users expect
// from a hand-edited config. A decodable but invalid config is an error.
func LoadExamConfig(path string, logger *slog.Logger) (*ExamConfig, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("exam config file not found, using defaults",
				slog.String("path", path))
			return DefaultExamConfig(), nil
		}
		logger.Warn("could not read exam config, using defaults",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return DefaultExamConfig(), nil
	}

	cfg := DefaultExamConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		logger.Warn("could not decode exam config, using defaults",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return DefaultExamConfig(), nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("invalid exam config %s", path), err)
	}

	return cfg, nil
}

// Validate checks multiplier positivity and that every category referenced by
// the exam and section maps belongs to the declared category order.
func (c *ExamConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	known := make(map[string]bool, len(c.CategoryOrder))
	for _, cat := range c.CategoryOrder {
		known[cat] = true
	}
	if !known[domain.TotalCategory] {
		return fmt.Errorf("category order must include %q", domain.TotalCategory)
	}
	if !known[domain.OtherCategory] {
		return fmt.Errorf("category order must include %q", domain.OtherCategory)
	}

	for exam, cat := range c.ExamCategories {
		if !known[cat] {
			return fmt.Errorf("exam %q mapped to unknown category %q", exam, cat)
		}
	}
	for seccion, cat := range c.SeccionCategories {
		if !known[cat] {
			return fmt.Errorf("section %q mapped to unknown category %q", seccion, cat)
		}
	}

	return nil
}
