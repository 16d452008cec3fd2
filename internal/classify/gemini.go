package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/tally-dev/tally/internal/model"
)

// DefaultModel is the Gemini model used when the config names none.
const DefaultModel = "gemini-2.0-flash"

// suggestTimeout caps one classifier round trip; the call is best-effort
// and the caller falls back to no suggestions on expiry.
const suggestTimeout = 30 * time.Second

// Gemini classifies pending transactions with a Gemini model. The API
// key is read from the environment by the genai client.
type Gemini struct {
	model string
}

// NewGemini creates a Gemini classifier. An empty model selects
// DefaultModel.
func NewGemini(modelName string) *Gemini {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Gemini{model: modelName}
}

type promptTransaction struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type promptCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type promptExpense struct {
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
}

// Suggest asks the model for one category per transaction. The model is
// instructed to return strict JSON; anything else surfaces as an error
// the caller treats as "no suggestions".
func (g *Gemini) Suggest(ctx context.Context, txns []model.PendingTransaction, recent []model.Expense, categories []model.Category) ([]Suggestion, error) {
	if len(txns) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, suggestTimeout)
	defer cancel()

	prompt, err := buildPrompt(txns, recent, categories)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generating suggestions: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &suggestions); err != nil {
		return nil, fmt.Errorf("unmarshaling suggestions: %w", err)
	}

	// Drop hallucinated category IDs rather than letting them into the
	// pending set.
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}
	kept := suggestions[:0]
	for _, s := range suggestions {
		if s.TransactionID != "" && known[s.CategoryID] {
			kept = append(kept, s)
		}
	}
	return kept, nil
}

func buildPrompt(txns []model.PendingTransaction, recent []model.Expense, categories []model.Category) (string, error) {
	pt := make([]promptTransaction, 0, len(txns))
	for _, t := range txns {
		pt = append(pt, promptTransaction{ID: t.ID, Description: t.Description, Amount: t.Amount.StringFixed(2)})
	}
	pc := make([]promptCategory, 0, len(categories))
	for _, c := range categories {
		pc = append(pc, promptCategory{ID: c.ID, Name: c.Name})
	}
	pe := make([]promptExpense, 0, len(recent))
	for _, e := range recent {
		pe = append(pe, promptExpense{Description: e.Description, CategoryID: e.CategoryID})
	}

	txnJSON, err := json.Marshal(pt)
	if err != nil {
		return "", fmt.Errorf("marshaling transactions: %w", err)
	}
	catJSON, err := json.Marshal(pc)
	if err != nil {
		return "", fmt.Errorf("marshaling categories: %w", err)
	}
	recentJSON, err := json.Marshal(pe)
	if err != nil {
		return "", fmt.Errorf("marshaling recent expenses: %w", err)
	}

	return "You are a personal-finance transaction classifier.\n\n" +
		"Task:\n" +
		"- Assign each transaction below the best-fitting category.\n" +
		"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
		"- Output a JSON array of objects with fields \"transaction_id\" and \"category_id\".\n" +
		"- \"category_id\" must be one of the category IDs listed below.\n" +
		"- Omit transactions you cannot classify confidently.\n\n" +
		"Categories:\n" + string(catJSON) + "\n\n" +
		"Recent categorized expenses (for context):\n" + string(recentJSON) + "\n\n" +
		"Transactions:\n" + string(txnJSON) + "\n\n" +
		"Return ONLY valid raw JSON.\n" +
		"Do NOT wrap the response in code fences.\n" +
		"Output must begin with \"[\" and end with \"]\".\n", nil
}

// cleanModelJSON strips markdown fences the model sometimes adds despite
// instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
