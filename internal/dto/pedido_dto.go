package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarPedidoRequest struct {
	HospitalID string `json:"hospital_id" validate:"required,uuid"`
}

type ConcluirPedidoRequest struct {
	// EnviarEmail dispatches the PDF report to the hospital contact address.
	EnviarEmail bool `json:"enviar_email"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type PedidoFilter struct {
	HospitalID string `form:"hospital_id" validate:"omitempty,uuid"`
	Status     string `form:"status"      validate:"omitempty,oneof=aberta processando revisao concluida"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemReposicaoResponse struct {
	ID                  string   `json:"id"`
	Descricao           string   `json:"descricao"`
	Codigo              *string  `json:"codigo"`
	Lote                *string  `json:"lote"`
	ObservacaoMesclada  *string  `json:"observacao_mesclada"`
	QuantidadeConsumida int      `json:"quantidade_consumida"`
	QuantidadeRepor     int      `json:"quantidade_repor"`
	DocumentosOrigem    []string `json:"documentos_origem"`
	Contaminado         bool     `json:"contaminado"`
	NotaSugestao        string   `json:"nota_sugestao"`
}

type PedidoResponse struct {
	ID         string                  `json:"id"`
	Numero     int                     `json:"numero"`
	HospitalID string                  `json:"hospital_id"`
	Hospital   *HospitalResponse       `json:"hospital,omitempty"`
	Status     string                  `json:"status"`
	Documentos []DocumentoResponse     `json:"documentos,omitempty"`
	Itens      []ItemReposicaoResponse `json:"itens,omitempty"`
	CreatedAt  string                  `json:"created_at"`
}

type PedidoListResponse struct {
	Data       []PedidoResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}
