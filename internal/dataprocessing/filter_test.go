package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"labstats/pkg/contracts/domain"
)

func TestFilterRecords(t *testing.T) {
	records := []domain.ExamRecord{
		{Seccion: "Hematología", Examen: "BIOMETRÍA HEMÁTICA"},
		{Seccion: "Hematología", Examen: ""},
		{Seccion: "Hematología", Examen: "Total órdenes: 120"},
		{Seccion: "Hematología", Examen: "Generado el 2025-03-01 08:00"},
		{Seccion: "", Examen: "BIOMETRÍA HEMÁTICA"},
		{Seccion: "Uroanálisis", Examen: "ELEMENTAL Y MICROSCÓPICO DE ORINA"},
	}

	kept := FilterRecords(context.Background(), records, nil)

	assert.Len(t, kept, 2)
	assert.Equal(t, "BIOMETRÍA HEMÁTICA", kept[0].Examen)
	assert.Equal(t, "ELEMENTAL Y MICROSCÓPICO DE ORINA", kept[1].Examen)
}

func TestFilterRecordsKeepsExamContainingPrefixMidString(t *testing.T) {
	// The boilerplate match is a prefix match, not a substring match.
	records := []domain.ExamRecord{
		{Seccion: "Hematología", Examen: "RECUENTO Total órdenes"},
	}

	kept := FilterRecords(context.Background(), records, nil)
	assert.Len(t, kept, 1)
}

func TestFilterRecordsEmptyInput(t *testing.T) {
	kept := FilterRecords(context.Background(), nil, nil)
	assert.Empty(t, kept)
}
