package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const oracleLogPrefix = "host:oracle"

// Oracle decides which tool a query should go to. A nil decision with a nil
// error means the oracle declined; the router falls back to the heuristic.
type Oracle interface {
	Decide(ctx context.Context, query string, tools []ToolEntry) (*Decision, error)
}

// LLMOracle asks an OpenAI-compatible chat endpoint for a routing decision.
type LLMOracle struct {
	client openai.Client
	model  string
}

// LLMOracleConfig holds connection settings for the decision endpoint.
type LLMOracleConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// NewLLMOracle creates an oracle against an OpenAI-compatible endpoint.
func NewLLMOracle(cfg LLMOracleConfig) *LLMOracle {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	return &LLMOracle{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Decide sends the tool catalog and query to the model and parses its JSON
// answer. Any transport or parse failure yields a nil decision so routing can
// continue without the oracle.
func (o *LLMOracle) Decide(ctx context.Context, query string, tools []ToolEntry) (*Decision, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(decisionSystemPrompt(tools)),
			openai.UserMessage(query),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s - chat completion failed: %w", oracleLogPrefix, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s - chat completion returned no choices", oracleLogPrefix)
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug(fmt.Sprintf("%s - raw model output: %s", oracleLogPrefix, raw))

	decision := ParseDecision(raw)
	if decision == nil {
		slog.Info(fmt.Sprintf("%s - model declined or produced no usable decision", oracleLogPrefix))
	}
	return decision, nil
}

// decisionSystemPrompt describes the discovered tools and the required JSON
// answer shape.
func decisionSystemPrompt(tools []ToolEntry) string {
	toolsJSON, err := json.MarshalIndent(tools, "", "  ")
	if err != nil {
		toolsJSON = []byte("[]")
	}
	return fmt.Sprintf(`Você é um agente roteador mestre. Sua tarefa é analisar a pergunta do usuário e determinar qual das ferramentas disponíveis é a mais adequada para respondê-la.

Ferramentas Descobertas:
%s

Analise a pergunta e escolha a melhor ferramenta. Sua resposta DEVE ser APENAS um objeto JSON contendo a ferramenta escolhida. Se nenhuma ferramenta for claramente adequada para a pergunta, você deve responder com um JSON indicando que nenhuma ferramenta foi encontrada.

Se a pergunta for uma saudação, um agradecimento ou algo que não se encaixa em nenhuma ferramenta, responda com: {"tool_to_use": "none", "owner_agent_id": "none", "agent_execute_url": "none"}

O formato da resposta para uma ferramenta válida deve ser: {"tool_to_use": "nome_da_ferramenta", "owner_agent_id": "id_do_agente_dono", "agent_execute_url": "url_para_execucao"}.`, string(toolsJSON))
}
