package corteservice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cortestock/internal/service/corteservice"
)

// TestDataPrevistaRecebimento_SeteDiasCorridos verifica o prazo padrão a
// partir de cada dia da semana: sempre 7 dias corridos, sem pular fim de
// semana.
func TestDataPrevistaRecebimento_SeteDiasCorridos(t *testing.T) {
	// 2025-06-02 é uma segunda-feira.
	for i := 0; i < 7; i++ {
		envio := time.Date(2025, 6, 2+i, 10, 0, 0, 0, time.UTC)
		prevista := corteservice.DataPrevistaRecebimento(envio)

		assert.Equal(t, envio.AddDate(0, 0, 7), prevista)
		assert.Equal(t, envio.Weekday(), prevista.Weekday(), "7 dias corridos caem no mesmo dia da semana")
	}
}

// TestDataPrevistaRecebimento_ViradaDeMes cobre a normalização de datas na
// virada de mês e de ano.
func TestDataPrevistaRecebimento_ViradaDeMes(t *testing.T) {
	casos := []struct {
		envio    time.Time
		esperada time.Time
	}{
		{time.Date(2025, 1, 28, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)}, // ano bissexto
	}

	for _, c := range casos {
		assert.Equal(t, c.esperada, corteservice.DataPrevistaRecebimento(c.envio))
	}
}
