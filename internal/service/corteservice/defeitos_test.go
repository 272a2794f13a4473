package corteservice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cortestock/internal/domain"
	"cortestock/internal/service/corteservice"
)

// TestCombinarDefeitos_SomaColisaoDeNomes verifica que defeitos de catálogo
// e manuais com o mesmo nome acumulam no mesmo balde.
func TestCombinarDefeitos_SomaColisaoDeNomes(t *testing.T) {
	padrao := map[string]int{"Mancha": 2, "Furo": 1}
	manuais := []domain.DefeitoManual{
		{Nome: "Mancha", Quantidade: 3},
		{Nome: "Barra Desfiada", Quantidade: 1},
	}

	defeitos := corteservice.CombinarDefeitos(padrao, manuais)

	assert.Equal(t, map[string]int{
		"Mancha":         5,
		"Furo":           1,
		"Barra Desfiada": 1,
	}, defeitos)
	assert.Equal(t, 7, corteservice.TotalDefeitos(defeitos))
}

// TestCombinarDefeitos_DescartaZeradosEEmBranco verifica o filtro de
// entradas sem nome ou sem quantidade.
func TestCombinarDefeitos_DescartaZeradosEEmBranco(t *testing.T) {
	padrao := map[string]int{"Mancha": 0, "Furo": -2, "Sujidade": 1}
	manuais := []domain.DefeitoManual{
		{Nome: "", Quantidade: 4},
		{Nome: "   ", Quantidade: 2},
		{Nome: "Rasgo", Quantidade: 0},
	}

	defeitos := corteservice.CombinarDefeitos(padrao, manuais)

	assert.Equal(t, map[string]int{"Sujidade": 1}, defeitos)
}

// TestCombinarDefeitos_AparaNomes verifica que nomes com espaços nas pontas
// caem no mesmo balde do nome aparado.
func TestCombinarDefeitos_AparaNomes(t *testing.T) {
	padrao := map[string]int{"Mancha": 1}
	manuais := []domain.DefeitoManual{{Nome: "  Mancha  ", Quantidade: 2}}

	defeitos := corteservice.CombinarDefeitos(padrao, manuais)

	assert.Equal(t, map[string]int{"Mancha": 3}, defeitos)
}

// TestCombinarDefeitos_Vazio garante mapa vazio (não nil) sem entradas.
func TestCombinarDefeitos_Vazio(t *testing.T) {
	defeitos := corteservice.CombinarDefeitos(nil, nil)

	assert.NotNil(t, defeitos)
	assert.Empty(t, defeitos)
	assert.Equal(t, 0, corteservice.TotalDefeitos(defeitos))
}
