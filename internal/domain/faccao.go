package domain

import "time"

// FaccaoStatus indica se a facção pode receber novos cortes.
type FaccaoStatus string

const (
	FaccaoAtiva   FaccaoStatus = "ATIVA"
	FaccaoInativa FaccaoStatus = "INATIVA"
)

// Faccao é o parceiro de costura terceirizado que recebe os cortes.
type Faccao struct {
	ID          string       `json:"id"`
	Nome        string       `json:"nome"`
	CNPJ        string       `json:"cnpj,omitempty"`
	Telefone    string       `json:"telefone,omitempty"`
	Cidade      string       `json:"cidade,omitempty"`
	Estado      string       `json:"estado,omitempty"`
	Observacoes string       `json:"observacoes,omitempty"`
	Status      FaccaoStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

// FichaCadastral é o resultado da consulta ao registro fiscal (CNPJ),
// usado para pré-preencher o cadastro de uma facção.
type FichaCadastral struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia"`
	Telefone     string `json:"telefone,omitempty"`
	Municipio    string `json:"municipio,omitempty"`
	UF           string `json:"uf,omitempty"`
	Situacao     string `json:"situacao,omitempty"`
}
