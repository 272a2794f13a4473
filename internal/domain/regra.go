package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegraConsumo é a regra de consumo de tecido/aviamentos por peça de uma
// referência, opcionalmente específica por tamanho. Consumo e custo usam
// decimal para não acumular erro de ponto flutuante no planejamento.
type RegraConsumo struct {
	ID              string          `json:"id"`
	Referencia      string          `json:"referencia"`
	TamanhoID       string          `json:"tamanhoId,omitempty"`
	ConsumoUnitario decimal.Decimal `json:"consumoUnitario"` // metros por peça
	TecidoNome      string          `json:"tecidoNome,omitempty"`
	TecidoComposicao string         `json:"tecidoComposicao,omitempty"`
	TecidoLargura   string          `json:"tecidoLargura,omitempty"`
	TecidoFornecedor string         `json:"tecidoFornecedor,omitempty"`
	TecidoCusto     decimal.Decimal `json:"tecidoCusto"` // custo por metro
	Acessorios      string          `json:"acessorios,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PlanejamentoCorte é a necessidade de material calculada para cortar uma
// quantidade de peças de uma referência.
type PlanejamentoCorte struct {
	Referencia      string          `json:"referencia"`
	QtdPecas        int             `json:"qtdPecas"`
	TecidoNecessario decimal.Decimal `json:"tecidoNecessario"` // metros
	CustoEstimado   decimal.Decimal `json:"custoEstimado"`
}
