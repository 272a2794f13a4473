package corteservice

import (
	"strings"

	"cortestock/internal/domain"
)

// CombinarDefeitos funde os defeitos de catálogo e os manuais num único
// razão por nome. Os dois vivem no mesmo namespace: um manual "Mancha"
// acumula com o catálogo "Mancha". Entradas com nome em branco ou
// quantidade não positiva são descartadas.
func CombinarDefeitos(padrao map[string]int, manuais []domain.DefeitoManual) map[string]int {
	defeitos := map[string]int{}

	for nome, qtd := range padrao {
		nome = strings.TrimSpace(nome)
		if nome == "" || qtd <= 0 {
			continue
		}
		defeitos[nome] += qtd
	}

	for _, m := range manuais {
		nome := strings.TrimSpace(m.Nome)
		if nome == "" || m.Quantidade <= 0 {
			continue
		}
		defeitos[nome] += m.Quantidade
	}

	return defeitos
}

// TotalDefeitos soma todas as contagens do razão de defeitos.
func TotalDefeitos(defeitos map[string]int) int {
	total := 0
	for _, qtd := range defeitos {
		total += qtd
	}
	return total
}
