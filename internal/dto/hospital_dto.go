package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarHospitalRequest struct {
	Nome         string  `json:"nome"          validate:"required,min=2,max=200"`
	CNPJ         *string `json:"cnpj"          validate:"omitempty,min=14,max=18"`
	EmailContato *string `json:"email_contato" validate:"omitempty,email"`
}

type AtualizarHospitalRequest struct {
	Nome         *string `json:"nome"          validate:"omitempty,min=2,max=200"`
	CNPJ         *string `json:"cnpj"          validate:"omitempty,min=14,max=18"`
	EmailContato *string `json:"email_contato" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type HospitalResponse struct {
	ID           string  `json:"id"`
	Nome         string  `json:"nome"`
	CNPJ         *string `json:"cnpj"`
	EmailContato *string `json:"email_contato"`
	Ativo        bool    `json:"ativo"`
}
