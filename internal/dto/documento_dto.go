package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MaterialConsumidoInput is one corrected/extracted line in reviewer input.
type MaterialConsumidoInput struct {
	Descricao         string  `json:"descricao"          validate:"required,min=1,max=250"`
	Codigo            *string `json:"codigo"             validate:"omitempty,max=60"`
	Lote              *string `json:"lote"               validate:"omitempty,max=60"`
	Quantidade        int     `json:"quantidade"         validate:"min=0"`
	Observacao        *string `json:"observacao"`
	ObservacaoUsuario *string `json:"observacao_usuario"`
	Contaminado       bool    `json:"contaminado"`
}

// CorrigirDocumentoRequest replaces a document's extracted data with the
// reviewer's version. Aprender=true feeds the corrections into the master
// catalog learning pass.
type CorrigirDocumentoRequest struct {
	PacienteNome       *string                  `json:"paciente_nome"`
	PacienteNascimento *string                  `json:"paciente_nascimento"`
	DataCirurgia       *string                  `json:"data_cirurgia"`
	Procedimento       *string                  `json:"procedimento"`
	Medico             *string                  `json:"medico"`
	Materiais          []MaterialConsumidoInput `json:"materiais" validate:"required,dive"`
	Aprender           bool                     `json:"aprender"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MaterialConsumidoResponse struct {
	ID                string  `json:"id"`
	Descricao         string  `json:"descricao"`
	Codigo            *string `json:"codigo"`
	Lote              *string `json:"lote"`
	Quantidade        int     `json:"quantidade"`
	Observacao        *string `json:"observacao"`
	ObservacaoUsuario *string `json:"observacao_usuario"`
	Contaminado       bool    `json:"contaminado"`
}

type DocumentoResponse struct {
	ID                 string                      `json:"id"`
	PedidoID           string                      `json:"pedido_id"`
	NomeArquivo        string                      `json:"nome_arquivo"`
	Status             string                      `json:"status"`
	ErroMensagem       *string                     `json:"erro_mensagem"`
	PacienteNome       *string                     `json:"paciente_nome"`
	PacienteNascimento *string                     `json:"paciente_nascimento"`
	DataCirurgia       *string                     `json:"data_cirurgia"`
	Procedimento       *string                     `json:"procedimento"`
	Medico             *string                     `json:"medico"`
	Materiais          []MaterialConsumidoResponse `json:"materiais"`
}
