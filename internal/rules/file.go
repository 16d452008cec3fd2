package rules

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tally-dev/tally/internal/model"
)

// ruleFile is the on-disk shape of rules/rules.yaml.
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

// ruleEntry is a tagged variant: modern entries carry conditions, legacy
// entries carry a single description pattern. Exactly one form should be
// present; legacy entries are migrated at load time rather than branched
// on at every use site.
type ruleEntry struct {
	ID         string           `yaml:"id"`
	Name       string           `yaml:"name"`
	Category   string           `yaml:"category"`
	Enabled    *bool            `yaml:"enabled,omitempty"`
	Logic      string           `yaml:"logic,omitempty"`
	Conditions []conditionEntry `yaml:"conditions,omitempty"`
	CreatedAt  time.Time        `yaml:"created_at,omitempty"`

	// Legacy single-pattern form.
	Pattern string `yaml:"pattern,omitempty"`
}

type conditionEntry struct {
	ID     string `yaml:"id"`
	Field  string `yaml:"field"`
	Match  string `yaml:"match"`
	Value  string `yaml:"value"`
	Value2 string `yaml:"value2,omitempty"`
}

// Load reads a rule file and returns rules in file order, migrating any
// legacy single-pattern entries to the modern multi-condition form.
func Load(path string) ([]model.TransactionRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rule file: %w", err)
	}

	out := make([]model.TransactionRule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		rule, err := migrate(entry)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, entry.Name, err)
		}
		out = append(out, rule)
	}
	return out, nil
}

// Save writes rules back to disk in the modern form.
func Save(path string, ruleList []model.TransactionRule) error {
	file := ruleFile{Rules: make([]ruleEntry, 0, len(ruleList))}
	for _, rule := range ruleList {
		entry := ruleEntry{
			ID:        rule.ID,
			Name:      rule.Name,
			Category:  rule.CategoryID,
			Enabled:   boolPtr(rule.Enabled),
			Logic:     string(rule.Logic),
			CreatedAt: rule.CreatedAt,
		}
		for _, cond := range rule.Conditions {
			entry.Conditions = append(entry.Conditions, conditionEntry{
				ID:     cond.ID,
				Field:  string(cond.Field),
				Match:  string(cond.Match),
				Value:  cond.Value,
				Value2: cond.Value2,
			})
		}
		file.Rules = append(file.Rules, entry)
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rule file: %w", err)
	}
	return nil
}

// migrate converts a file entry to a model rule. A legacy pattern entry
// becomes a single case-insensitive contains condition on description.
func migrate(entry ruleEntry) (model.TransactionRule, error) {
	if entry.ID == "" {
		return model.TransactionRule{}, fmt.Errorf("missing id")
	}
	if entry.Category == "" {
		return model.TransactionRule{}, fmt.Errorf("missing category")
	}

	enabled := true
	if entry.Enabled != nil {
		enabled = *entry.Enabled
	}

	rule := model.TransactionRule{
		ID:         entry.ID,
		Name:       entry.Name,
		CategoryID: entry.Category,
		Enabled:    enabled,
		Logic:      model.LogicMode(entry.Logic),
		CreatedAt:  entry.CreatedAt,
	}
	if rule.Logic == "" {
		rule.Logic = model.LogicAll
	}

	if entry.Pattern != "" {
		if len(entry.Conditions) > 0 {
			return model.TransactionRule{}, fmt.Errorf("both pattern and conditions present")
		}
		rule.Conditions = []model.RuleCondition{{
			ID:    entry.ID + "-c1",
			Field: model.FieldDescription,
			Match: model.MatchContains,
			Value: entry.Pattern,
		}}
		return rule, nil
	}

	if len(entry.Conditions) == 0 {
		return model.TransactionRule{}, fmt.Errorf("no conditions")
	}
	for _, cond := range entry.Conditions {
		rule.Conditions = append(rule.Conditions, model.RuleCondition{
			ID:     cond.ID,
			Field:  model.ConditionField(cond.Field),
			Match:  model.MatchType(cond.Match),
			Value:  cond.Value,
			Value2: cond.Value2,
		})
	}
	return rule, nil
}

func boolPtr(b bool) *bool { return &b }
