package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarMaterialRequest struct {
	Descricao string  `json:"descricao" validate:"required,min=2,max=250"`
	Codigo    *string `json:"codigo"    validate:"omitempty,min=1,max=60"`
}

type AtualizarMaterialRequest struct {
	Descricao *string `json:"descricao" validate:"omitempty,min=2,max=250"`
	Codigo    *string `json:"codigo"    validate:"omitempty,max=60"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type MaterialFilter struct {
	Busca string `form:"busca"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MaterialResponse struct {
	ID        string  `json:"id"`
	Descricao string  `json:"descricao"`
	Codigo    *string `json:"codigo"`
}

type MaterialListResponse struct {
	Data       []MaterialResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
