package infra

// extraction.go — OpenAI vision client that turns a scanned OPME consumption
// form into structured data. The model is instructed to answer strict JSON;
// the response is still decoded defensively because vision output drifts:
// missing quantities default to 1, unknown fields become empty strings, and
// anything that is not valid JSON is reported as a single extraction error.

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// ErrRespostaInvalida marks a provider answer that could not be parsed.
var ErrRespostaInvalida = errors.New("resposta da extração em formato inválido")

const extractionSystemPrompt = `Você é um extrator de dados de fichas de consumo de OPME (Órteses, Próteses e Materiais Especiais) de hospitais brasileiros.
Analise a imagem da ficha (manuscrita ou impressa) e responda SOMENTE com um objeto JSON, sem texto adicional, no formato:
{
  "paciente_nome": string|null,
  "paciente_nascimento": string|null,
  "data_cirurgia": string|null,
  "procedimento": string|null,
  "medico": string|null,
  "materiais": [
    {
      "descricao": string,
      "codigo": string|null,
      "lote": string|null,
      "quantidade": number,
      "observacao": string|null,
      "contaminado": boolean
    }
  ]
}
Regras: quantidade é um inteiro positivo (1 quando ilegível); marque contaminado=true apenas quando a ficha indicar contaminação/descarte; não invente materiais que não estejam na ficha.`

// ExtracaoMaterial is one material line as returned by the provider.
type ExtracaoMaterial struct {
	Descricao   string
	Codigo      string
	Lote        string
	Quantidade  int
	Observacao  string
	Contaminado bool
}

// ExtracaoResultado is the structured reading of one consumption form.
type ExtracaoResultado struct {
	PacienteNome       string
	PacienteNascimento string
	DataCirurgia       string
	Procedimento       string
	Medico             string
	Materiais          []ExtracaoMaterial
}

// ExtractionClient calls the OpenAI chat-completions vision endpoint.
type ExtractionClient struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

func NewExtractionClient(apiKey, model string) *ExtractionClient {
	return &ExtractionClient{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log.With().Str("component", "extraction-openai").Logger(),
	}
}

// Extrair sends one document image (plus optional OCR supplementary text)
// and returns the coerced structured result.
func (c *ExtractionClient) Extrair(ctx context.Context, imagem []byte, mimeType, textoApoio string) (*ExtracaoResultado, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imagem))

	parts := []openai.ChatMessagePart{
		{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: dataURI, Detail: openai.ImageURLDetailHigh},
		},
	}
	if textoApoio != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: "Texto OCR de apoio (pode conter erros):\n" + textoApoio,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("extração: chamada ao provedor: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrRespostaInvalida
	}

	resultado, err := parseExtracao(resp.Choices[0].Message.Content)
	if err != nil {
		c.log.Warn().Err(err).Str("model", c.model).Msg("unparseable provider answer")
		return nil, err
	}

	c.log.Debug().
		Int("materiais", len(resultado.Materiais)).
		Str("procedimento", resultado.Procedimento).
		Msg("document extracted")
	return resultado, nil
}

// rawExtracao mirrors the provider JSON with loose types so a drifting
// answer degrades into null-filled fields instead of a decode failure.
type rawExtracao struct {
	PacienteNome       *string       `json:"paciente_nome"`
	PacienteNascimento *string       `json:"paciente_nascimento"`
	DataCirurgia       *string       `json:"data_cirurgia"`
	Procedimento       *string       `json:"procedimento"`
	Medico             *string       `json:"medico"`
	Materiais          []rawMaterial `json:"materiais"`
}

type rawMaterial struct {
	Descricao   string      `json:"descricao"`
	Codigo      *string     `json:"codigo"`
	Lote        *string     `json:"lote"`
	Quantidade  interface{} `json:"quantidade"`
	Observacao  *string     `json:"observacao"`
	Contaminado interface{} `json:"contaminado"`
}

func parseExtracao(content string) (*ExtracaoResultado, error) {
	// Models occasionally wrap the object in a markdown fence despite the
	// JSON response format.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw rawExtracao
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRespostaInvalida, err)
	}

	resultado := &ExtracaoResultado{
		PacienteNome:       deref(raw.PacienteNome),
		PacienteNascimento: deref(raw.PacienteNascimento),
		DataCirurgia:       deref(raw.DataCirurgia),
		Procedimento:       deref(raw.Procedimento),
		Medico:             deref(raw.Medico),
	}
	for _, m := range raw.Materiais {
		descricao := strings.TrimSpace(m.Descricao)
		if descricao == "" {
			continue // a material without description is unusable
		}
		resultado.Materiais = append(resultado.Materiais, ExtracaoMaterial{
			Descricao:   descricao,
			Codigo:      strings.TrimSpace(deref(m.Codigo)),
			Lote:        strings.TrimSpace(deref(m.Lote)),
			Quantidade:  coerceQuantidade(m.Quantidade),
			Observacao:  strings.TrimSpace(deref(m.Observacao)),
			Contaminado: coerceBool(m.Contaminado),
		})
	}
	return resultado, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// coerceQuantidade accepts number, numeric string or nothing; anything that
// does not parse to a positive integer becomes 1.
func coerceQuantidade(v interface{}) int {
	switch q := v.(type) {
	case float64:
		if q >= 1 {
			return int(q)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(q)); err == nil && n >= 1 {
			return n
		}
	}
	return 1
}

func coerceBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true") || strings.EqualFold(strings.TrimSpace(b), "sim")
	}
	return false
}
