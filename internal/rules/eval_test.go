package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tally-dev/tally/internal/model"
)

func txn(description, amount string) model.PendingTransaction {
	return model.PendingTransaction{
		ID:          "2024-deadbeef",
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Status:      model.StatusUncategorized,
	}
}

func descCond(match model.MatchType, value string) model.RuleCondition {
	return model.RuleCondition{ID: "c", Field: model.FieldDescription, Match: match, Value: value}
}

func amountCond(match model.MatchType, value, value2 string) model.RuleCondition {
	return model.RuleCondition{ID: "c", Field: model.FieldAmount, Match: match, Value: value, Value2: value2}
}

func TestEvalCondition_Description(t *testing.T) {
	target := txn("Trader Joe's Market", "45.20")

	tests := []struct {
		name string
		cond model.RuleCondition
		want bool
	}{
		{"contains case-insensitive", descCond(model.MatchContains, "TRADER"), true},
		{"contains miss", descCond(model.MatchContains, "walmart"), false},
		{"starts-with", descCond(model.MatchStartsWith, "trader"), true},
		{"starts-with miss", descCond(model.MatchStartsWith, "joe"), false},
		{"ends-with", descCond(model.MatchEndsWith, "market"), true},
		{"equals", descCond(model.MatchEquals, "trader joe's market"), true},
		{"equals partial miss", descCond(model.MatchEquals, "trader"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvalCondition(tt.cond, target))
		})
	}
}

func TestEvalCondition_Amount(t *testing.T) {
	target := txn("x", "45.20")

	tests := []struct {
		name string
		cond model.RuleCondition
		want bool
	}{
		{"equals exact", amountCond(model.MatchEquals, "45.20", ""), true},
		{"equals within tolerance", amountCond(model.MatchEquals, "45.195", ""), true},
		{"equals outside tolerance", amountCond(model.MatchEquals, "45.21", ""), false},
		{"greater-than", amountCond(model.MatchGreaterThan, "45", ""), true},
		{"greater-than strict", amountCond(model.MatchGreaterThan, "45.20", ""), false},
		{"less-than", amountCond(model.MatchLessThan, "50", ""), true},
		{"between", amountCond(model.MatchBetween, "40", "50"), true},
		{"between inclusive bound", amountCond(model.MatchBetween, "45.20", "50"), true},
		{"between miss", amountCond(model.MatchBetween, "46", "50"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvalCondition(tt.cond, target))
		})
	}
}

func TestEvalCondition_BetweenBoundsOrderIndependent(t *testing.T) {
	amounts := []string{"9.99", "10.00", "25.50", "40.00", "40.01"}
	for _, a := range amounts {
		target := txn("x", a)
		forward := EvalCondition(amountCond(model.MatchBetween, "10", "40"), target)
		swapped := EvalCondition(amountCond(model.MatchBetween, "40", "10"), target)
		assert.Equal(t, forward, swapped, "amount %s", a)
	}
}

func TestEvalCondition_MalformedValueIsFalse(t *testing.T) {
	target := txn("x", "45.20")
	assert.False(t, EvalCondition(amountCond(model.MatchEquals, "not-a-number", ""), target))
	assert.False(t, EvalCondition(amountCond(model.MatchBetween, "10", "nope"), target))
	assert.False(t, EvalCondition(model.RuleCondition{Field: "bogus"}, target))
}

func TestEvalRule_LogicModes(t *testing.T) {
	target := txn("Trader Joe's", "45.20")

	both := model.TransactionRule{
		ID: "r1", Enabled: true, Logic: model.LogicAll, CategoryID: "groceries",
		Conditions: []model.RuleCondition{
			descCond(model.MatchContains, "trader"),
			amountCond(model.MatchLessThan, "100", ""),
		},
	}
	assert.True(t, EvalRule(both, target))

	oneFails := both
	oneFails.Conditions = []model.RuleCondition{
		descCond(model.MatchContains, "trader"),
		amountCond(model.MatchGreaterThan, "100", ""),
	}
	assert.False(t, EvalRule(oneFails, target))

	anyMode := oneFails
	anyMode.Logic = model.LogicAny
	assert.True(t, EvalRule(anyMode, target))
}

func TestEvalRule_DisabledOrEmptyNeverMatches(t *testing.T) {
	target := txn("anything", "1.00")

	disabled := model.TransactionRule{
		ID: "r1", Enabled: false, Logic: model.LogicAll,
		Conditions: []model.RuleCondition{descCond(model.MatchContains, "anything")},
	}
	assert.False(t, EvalRule(disabled, target))

	empty := model.TransactionRule{ID: "r2", Enabled: true, Logic: model.LogicAll}
	assert.False(t, EvalRule(empty, target))
}

func TestFirstMatch_ListOrderWins(t *testing.T) {
	target := txn("uber trip", "18.00")
	ruleList := []model.TransactionRule{
		{ID: "r1", Enabled: true, Logic: model.LogicAll, CategoryID: "transport",
			Conditions: []model.RuleCondition{descCond(model.MatchContains, "uber")}},
		{ID: "r2", Enabled: true, Logic: model.LogicAll, CategoryID: "travel",
			Conditions: []model.RuleCondition{descCond(model.MatchContains, "trip")}},
	}

	match := FirstMatch(ruleList, target)
	assert.NotNil(t, match)
	assert.Equal(t, "r1", match.ID)

	// Disabling the first rule exposes the second.
	ruleList[0].Enabled = false
	match = FirstMatch(ruleList, target)
	assert.NotNil(t, match)
	assert.Equal(t, "r2", match.ID)
}
