package domain

import "time"

// Produto é a entidade de catálogo do módulo de estoque. A referência é a
// chave natural, comparada sem distinção de caixa e sem espaços nas pontas.
type Produto struct {
	ID         string    `json:"id"`
	Referencia string    `json:"referencia"`
	Descricao  string    `json:"descricao"`
	Categoria  string    `json:"categoria"`
	Ativo      bool      `json:"ativo"`
	CreatedAt  time.Time `json:"created_at"`
}

// Cor é uma dimensão do SKU, identificada pelo nome.
type Cor struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
	Hex  string `json:"hex,omitempty"`
}

// Tamanho é uma dimensão do SKU. Ordem controla a exibição da grade;
// tamanhos criados automaticamente recebem a ordem padrão 99.
type Tamanho struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Ordem int    `json:"ordem"`
}

// Sku é a unidade de controle de estoque: um Produto numa Cor e Tamanho.
// Version suporta o controle de concorrência otimista dos ajustes.
type Sku struct {
	ID        string `json:"id"`
	ProdutoID string `json:"produtoId"`
	CorID     string `json:"corId"`
	TamanhoID string `json:"tamanhoId"`

	SaldoDisponivel int `json:"saldoDisponivel"`
	SaldoReservado  int `json:"saldoReservado"`
	SaldoFisico     int `json:"saldoFisico"`

	EstoqueMinimo int `json:"estoqueMinimo"`
	EstoqueAlvo   int `json:"estoqueAlvo"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TipoMovimentacao classifica um movimento de estoque.
type TipoMovimentacao string

const (
	EntradaCompra    TipoMovimentacao = "ENTRADA_COMPRA"
	EntradaProducao  TipoMovimentacao = "ENTRADA_PRODUCAO"
	EntradaDevolucao TipoMovimentacao = "ENTRADA_DEVOLUCAO"
	SaidaVenda       TipoMovimentacao = "SAIDA_VENDA"
	AjustePositivo   TipoMovimentacao = "AJUSTE_POSITIVO"
	AjusteNegativo   TipoMovimentacao = "AJUSTE_NEGATIVO"
	Ajuste           TipoMovimentacao = "AJUSTE"
)

// MovimentacaoEstoque registra cada ajuste aplicado a um SKU. Para entradas
// de produção, ReferenciaDocumento carrega o id do Corte de origem e serve
// de razão por linha: a sincronia de um mesmo corte nunca credita o mesmo
// SKU duas vezes.
type MovimentacaoEstoque struct {
	ID                  string           `json:"id"`
	SkuID               string           `json:"skuId"`
	Tipo                TipoMovimentacao `json:"tipo"`
	Quantidade          int              `json:"quantidade"`
	DataMovimentacao    time.Time        `json:"dataMovimentacao"`
	ReferenciaDocumento string           `json:"referenciaDocumento,omitempty"`
	Observacao          string           `json:"observacao,omitempty"`
	UsuarioID           string           `json:"usuarioId,omitempty"`
}

// AjusteEstoqueRequest é o pedido de ajuste de saldo de um SKU. Delta pode
// ser negativo (saída/estorno). Documento é opcional e, quando presente em
// entradas de produção, participa da deduplicação por linha.
type AjusteEstoqueRequest struct {
	SkuID      string           `json:"sku_id"`
	Delta      int              `json:"delta"`
	Tipo       TipoMovimentacao `json:"tipo"`
	Observacao string           `json:"observacao"`
	Documento  string           `json:"documento,omitempty"`
}

// SyncResult resume o desfecho de uma sincronia ou estorno de corte.
// Falhas parciais não são erros: viram mensagem ("diga o que aconteceu").
type SyncResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
