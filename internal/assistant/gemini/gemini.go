// Package gemini implements the assistant port on the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"brokemate/internal/assistant"
	"brokemate/internal/core"

	"google.golang.org/genai"
)

const (
	DefaultModel     = "gemini-2.5-pro"
	DefaultFastModel = "gemini-2.5-flash"
)

const chatInstruction = "You are the assistant of a personal finance and time management dashboard " +
	"used by Filipinos. Quote amounts in Philippine Peso (₱). Help the user read their spending, " +
	"plan their day and stay productive. Keep answers short and practical."

var errEmptyResponse = errors.New("empty response from model")

type Config struct {
	APIKey string
	// Model handles reasoning and vision; FastModel the short workflow tip.
	Model     string
	FastModel string
}

// generator is the subset of *genai.Models the adapter uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type chatSession interface {
	Send(ctx context.Context, parts ...*genai.Part) (*genai.GenerateContentResponse, error)
}

type chatStarter func(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)

type Adapter struct {
	models    generator
	startChat chatStarter
	model     string
	fastModel string
}

var _ assistant.Adapter = (*Adapter)(nil)

func New(ctx context.Context, cfg Config) (*Adapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	start := func(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
		chat, err := client.Chats.Create(ctx, model, config, history)
		if err != nil {
			return nil, err
		}
		return chat, nil
	}
	return newAdapter(client.Models, start, cfg), nil
}

func newAdapter(models generator, start chatStarter, cfg Config) *Adapter {
	a := &Adapter{
		models:    models,
		startChat: start,
		model:     cfg.Model,
		fastModel: cfg.FastModel,
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	if a.fastModel == "" {
		a.fastModel = DefaultFastModel
	}
	return a
}

func (a *Adapter) ParseReceipt(ctx context.Context, image []byte, mimeType string) (assistant.ReceiptData, error) {
	if len(image) == 0 {
		return assistant.ReceiptData{}, errors.New("empty receipt image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{{
		Role: string(genai.RoleUser),
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			{Text: receiptPrompt},
		},
	}}

	var out assistant.ReceiptData
	if err := a.generateJSON(ctx, "parse receipt", a.model, contents, receiptSchema, &out); err != nil {
		return assistant.ReceiptData{}, err
	}
	return out, nil
}

func (a *Adapter) PrioritizeTasks(ctx context.Context, tasks []core.Task) ([]core.Task, error) {
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	prompt := fmt.Sprintf(prioritizePrompt, data)

	var out []core.Task
	if err := a.generateJSON(ctx, "prioritize tasks", a.model, genai.Text(prompt), taskListSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) GenerateSchedule(ctx context.Context, pending []core.Task, opts assistant.ScheduleOptions) ([]core.TimeBlock, error) {
	data, err := json.Marshal(pending)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	prompt := fmt.Sprintf(schedulePrompt, opts.WorkStart, opts.WorkEnd, opts.EnergyLevel, data)

	var out []core.TimeBlock
	if err := a.generateJSON(ctx, "generate schedule", a.model, genai.Text(prompt), scheduleSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) GenerateInsights(ctx context.Context, txs []core.Transaction, tasks []core.Task) (core.InsightResult, error) {
	data, err := json.Marshal(struct {
		Transactions []core.Transaction `json:"transactions"`
		Tasks        []core.Task        `json:"tasks"`
	}{txs, tasks})
	if err != nil {
		return core.InsightResult{}, fmt.Errorf("encode insight data: %w", err)
	}
	prompt := fmt.Sprintf(insightsPrompt, data)

	var out core.InsightResult
	if err := a.generateJSON(ctx, "generate insights", a.model, genai.Text(prompt), insightSchema, &out); err != nil {
		return core.InsightResult{}, err
	}
	return out, nil
}

func (a *Adapter) GoalAdvice(ctx context.Context, goal core.FinancialGoal, totals core.Totals) (string, error) {
	prompt := fmt.Sprintf(goalPrompt, goal.Title, goal.TargetAmount, goal.Deadline, totals.Income, totals.Expense)
	return a.generateText(ctx, "goal advice", a.model, prompt)
}

func (a *Adapter) SuggestWorkflow(ctx context.Context, tasks []core.Task) (string, error) {
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("encode tasks: %w", err)
	}
	return a.generateText(ctx, "suggest workflow", a.fastModel, fmt.Sprintf(workflowPrompt, data))
}

func (a *Adapter) Chat(ctx context.Context, history []assistant.ChatMessage, message string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: chatInstruction}}},
	}
	chat, err := a.startChat(ctx, a.model, config, toContents(history))
	if err != nil {
		return "", fmt.Errorf("start chat: %w", err)
	}
	resp, err := chat.Send(ctx, &genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("chat: %w", errEmptyResponse)
	}
	return text, nil
}

func (a *Adapter) generateText(ctx context.Context, op, model, prompt string) (string, error) {
	resp, err := a.models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, errEmptyResponse)
	}
	return text, nil
}

// generateJSON asks for a JSON answer matching schema and decodes it into out.
func (a *Adapter) generateJSON(ctx context.Context, op, model string, contents []*genai.Content, schema *genai.Schema, out any) error {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	resp, err := a.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s: %w", op, errEmptyResponse)
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), out); err != nil {
		slog.DebugContext(ctx, "Undecodable model output", "operation", op, "raw", raw)
		return fmt.Errorf("%s: decode model output: %w", op, err)
	}
	return nil
}

func toContents(history []assistant.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		role := genai.RoleUser
		if m.Role == assistant.RoleModel {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{Role: string(role), Parts: []*genai.Part{{Text: m.Text}}})
	}
	return out
}

// cleanModelJSON strips Markdown fences and any text around the outermost
// JSON object or array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	closer := "]"
	if s[start] == '{' {
		closer = "}"
	}
	if end := strings.LastIndex(s, closer); end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}
