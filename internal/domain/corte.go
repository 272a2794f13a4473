package domain

import "time"

// CorteStatus representa o estado de um Corte no ciclo de vida.
// O fluxo normal conhece apenas duas transições: criação em ENVIADO e
// recebimento em RECEBIDO. PENDENTE existe no dado legado e é mantido
// como variante válida, mas nenhuma operação atual o produz.
type CorteStatus string

const (
	CorteEnviado  CorteStatus = "ENVIADO"
	CorteRecebido CorteStatus = "RECEBIDO"
	CortePendente CorteStatus = "PENDENTE"
)

// TamanhoQuantidade é uma célula da grade: um tamanho (P, M, G...) e a
// quantidade de peças naquele tamanho.
type TamanhoQuantidade struct {
	Tamanho    string `json:"tamanho"`
	Quantidade int    `json:"quantidade"`
}

// ItemCorte agrupa a grade de uma cor dentro do Corte. QuantidadeTotalCor é
// redundante por design (soma da grade), preservada para compatibilidade com
// os dados já armazenados. GradeRecebida é preenchida apenas no recebimento
// e é paralela à grade de envio (mesmos tamanhos, quantidades independentes).
type ItemCorte struct {
	Cor                string              `json:"cor"`
	Grade              []TamanhoQuantidade `json:"grade"`
	QuantidadeTotalCor int                 `json:"quantidadeTotalCor"`
	GradeRecebida      []TamanhoQuantidade `json:"gradeRecebida,omitempty"`
}

// Corte é o lote de peças cortadas enviado a uma facção.
// A referência NÃO é única: o negócio permite duplicatas para a mesma ou
// para facções diferentes.
type Corte struct {
	ID                      string      `json:"id"`
	Referencia              string      `json:"referencia"`
	FaccaoID                string      `json:"faccaoId"`
	DataEnvio               time.Time   `json:"dataEnvio"`
	DataPrevistaRecebimento time.Time   `json:"dataPrevistaRecebimento"`
	DataRecebimento         *time.Time  `json:"dataRecebimento,omitempty"`
	Status                  CorteStatus `json:"status"`

	Itens            []ItemCorte `json:"itens"`
	QtdTotalEnviada  int         `json:"qtdTotalEnviada"`
	ObservacoesEnvio string      `json:"observacoesEnvio,omitempty"`

	// Campos de recebimento. DefeitosPorTipo mapeia o NOME do tipo de
	// defeito (de catálogo ou manual, mesmo namespace) para a contagem.
	QtdTotalRecebida       int            `json:"qtdTotalRecebida"`
	QtdTotalDefeitos       int            `json:"qtdTotalDefeitos"`
	DefeitosPorTipo        map[string]int `json:"defeitosPorTipo"`
	ObservacoesRecebimento string         `json:"observacoesRecebimento,omitempty"`

	// SincronizadoEm é o token de idempotência da sincronia com o estoque:
	// nulo até o primeiro sync bem-sucedido.
	SincronizadoEm *time.Time `json:"sincronizadoEm,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnvioCorteRequest é o payload de criação de um Corte (operação de envio).
type EnvioCorteRequest struct {
	Referencia  string      `json:"referencia"`
	FaccaoID    string      `json:"faccaoId"`
	DataEnvio   time.Time   `json:"dataEnvio"`
	Itens       []ItemEnvio `json:"itens"`
	Observacoes string      `json:"observacoes,omitempty"`
}

// ItemEnvio é uma cor com sua grade, como informada no formulário de envio.
type ItemEnvio struct {
	Cor   string              `json:"cor"`
	Grade []TamanhoQuantidade `json:"grade"`
}

// DefeitoManual é um defeito de texto livre informado no recebimento.
// Nomes que coincidem com tipos de catálogo acumulam no mesmo balde.
type DefeitoManual struct {
	Nome       string `json:"nome"`
	Quantidade int    `json:"quantidade"`
}

// RecebimentoCorteRequest é o payload do recebimento de um Corte.
// GradeRecebida de cada item parte da grade enviada e pode ser editada
// tamanho a tamanho; itens omitidos assumem a grade de envio.
type RecebimentoCorteRequest struct {
	DataRecebimento time.Time         `json:"dataRecebimento"`
	Itens           []ItemRecebimento `json:"itens"`
	DefeitosPadrao  map[string]int    `json:"defeitosPadrao"`
	DefeitosManuais []DefeitoManual   `json:"defeitosManuais"`
	Observacoes     string            `json:"observacoes"`
}

// ItemRecebimento informa as quantidades recebidas de uma cor.
type ItemRecebimento struct {
	Cor           string              `json:"cor"`
	GradeRecebida []TamanhoQuantidade `json:"gradeRecebida"`
}

// CorteFilter define os parâmetros de busca da listagem de cortes.
type CorteFilter struct {
	Referencia string
	DataInicio *time.Time
	DataFim    *time.Time
}
