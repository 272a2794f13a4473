package syncservice

import "cortestock/internal/domain"

// Alocacao é uma linha do plano de distribuição: quantas peças boas creditar
// no SKU de uma cor e tamanho.
type Alocacao struct {
	Cor        string
	Tamanho    string
	Quantidade int
}

// PlanoDistribuicao reparte as peças boas proporcionalmente à grade recebida.
//
// Cada célula da grade recebida com quantidade positiva vira uma linha do
// plano, na ordem cor-a-cor da grade. A base de cada linha é o piso da
// proporção (qtd * boas / recebidas, em aritmética inteira); a sobra do
// arredondamento é distribuída uma peça por vez, em rodízio, na mesma ordem.
// A soma das linhas resulta exatamente em totalBoas.
func PlanoDistribuicao(itens []domain.ItemCorte, totalRecebido, totalBoas int) []Alocacao {
	if totalRecebido <= 0 || totalBoas <= 0 {
		return nil
	}

	plano := []Alocacao{}
	distribuido := 0
	for _, item := range itens {
		for _, tq := range item.GradeRecebida {
			if tq.Quantidade <= 0 {
				continue
			}
			base := tq.Quantidade * totalBoas / totalRecebido
			plano = append(plano, Alocacao{
				Cor:        item.Cor,
				Tamanho:    tq.Tamanho,
				Quantidade: base,
			})
			distribuido += base
		}
	}
	if len(plano) == 0 {
		return nil
	}

	// Sobra do piso: no máximo len(plano)-1 peças, uma por linha em rodízio.
	sobra := totalBoas - distribuido
	for i := 0; i < sobra; i++ {
		plano[i%len(plano)].Quantidade++
	}

	return plano
}
