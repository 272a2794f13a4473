package fiscal

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
)

// Client consulta o registro fiscal público (BrasilAPI) para pré-preencher
// o cadastro de facções a partir do CNPJ. É um utilitário de busca e
// mapeamento, sem lógica de negócio.
type Client struct {
	http *resty.Client
}

var nonDigits = regexp.MustCompile(`\D`)

// NewClient cria o cliente HTTP com timeout e retry básicos.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Client{http: c}
}

// cnpjResponse é o shape da resposta da BrasilAPI (somente os campos usados).
type cnpjResponse struct {
	CNPJ               string `json:"cnpj"`
	RazaoSocial        string `json:"razao_social"`
	NomeFantasia       string `json:"nome_fantasia"`
	DDDTelefone1       string `json:"ddd_telefone_1"`
	Municipio          string `json:"municipio"`
	UF                 string `json:"uf"`
	DescricaoSituacao  string `json:"descricao_situacao_cadastral"`
}

// ConsultarCNPJ busca a ficha cadastral de um CNPJ. O número é normalizado
// para dígitos antes da consulta; CNPJs com tamanho inválido falham com
// ValidationError sem ir à rede.
func (c *Client) ConsultarCNPJ(ctx context.Context, cnpj string) (domain.FichaCadastral, error) {
	digits := nonDigits.ReplaceAllString(cnpj, "")
	if len(digits) != 14 {
		return domain.FichaCadastral{}, apperror.NewValidationError("CNPJ deve conter 14 dígitos.")
	}

	var body cnpjResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("/api/cnpj/v1/%s", digits))
	if err != nil {
		return domain.FichaCadastral{}, apperror.NewInternalError("Falha na consulta ao registro fiscal.", err)
	}
	if resp.StatusCode() == 404 {
		return domain.FichaCadastral{}, apperror.NewNotFoundError(fmt.Sprintf("CNPJ %s não encontrado no registro fiscal.", digits))
	}
	if resp.IsError() {
		return domain.FichaCadastral{}, apperror.NewInternalError(fmt.Sprintf("Registro fiscal respondeu %d.", resp.StatusCode()), nil)
	}

	return domain.FichaCadastral{
		CNPJ:         body.CNPJ,
		RazaoSocial:  body.RazaoSocial,
		NomeFantasia: body.NomeFantasia,
		Telefone:     body.DDDTelefone1,
		Municipio:    body.Municipio,
		UF:           body.UF,
		Situacao:     body.DescricaoSituacao,
	}, nil
}
