package domain

// TipoDefeito é uma entrada do catálogo de defeitos, dado de referência
// somente leitura usado para agrupar o formulário de recebimento.
type TipoDefeito struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Categoria string `json:"categoria"`
}
