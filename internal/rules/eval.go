// Package rules implements the deterministic categorization engine:
// ordered multi-condition rules evaluated against pending transactions,
// first enabled match wins.
package rules

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// amountTolerance makes amount equality float-safe: |amount - value|
// below this matches.
var amountTolerance = decimal.New(1, -2) // 0.01

// EvalCondition evaluates a single condition against a transaction.
// A condition whose numeric value fails to parse evaluates to false;
// malformed rules never abort a pass.
func EvalCondition(cond model.RuleCondition, txn model.PendingTransaction) bool {
	switch cond.Field {
	case model.FieldDescription:
		return evalDescription(cond, txn.Description)
	case model.FieldAmount:
		return evalAmount(cond, txn.Amount)
	default:
		return false
	}
}

func evalDescription(cond model.RuleCondition, description string) bool {
	desc := strings.ToLower(description)
	value := strings.ToLower(cond.Value)
	switch cond.Match {
	case model.MatchContains:
		return strings.Contains(desc, value)
	case model.MatchStartsWith:
		return strings.HasPrefix(desc, value)
	case model.MatchEndsWith:
		return strings.HasSuffix(desc, value)
	case model.MatchEquals:
		return desc == value
	default:
		return false
	}
}

func evalAmount(cond model.RuleCondition, amount decimal.Decimal) bool {
	value, err := decimal.NewFromString(strings.TrimSpace(cond.Value))
	if err != nil {
		return false
	}
	switch cond.Match {
	case model.MatchEquals:
		return amount.Sub(value).Abs().LessThan(amountTolerance)
	case model.MatchGreaterThan:
		return amount.GreaterThan(value)
	case model.MatchLessThan:
		return amount.LessThan(value)
	case model.MatchBetween:
		value2, err := decimal.NewFromString(strings.TrimSpace(cond.Value2))
		if err != nil {
			return false
		}
		lo, hi := value, value2
		if lo.GreaterThan(hi) {
			lo, hi = hi, lo
		}
		return amount.GreaterThanOrEqual(lo) && amount.LessThanOrEqual(hi)
	default:
		return false
	}
}

// EvalRule reports whether a rule matches a transaction. A disabled
// rule, or one with zero conditions, never matches.
func EvalRule(rule model.TransactionRule, txn model.PendingTransaction) bool {
	if !rule.Enabled || len(rule.Conditions) == 0 {
		return false
	}
	switch rule.Logic {
	case model.LogicAny:
		for _, cond := range rule.Conditions {
			if EvalCondition(cond, txn) {
				return true
			}
		}
		return false
	default: // LogicAll
		for _, cond := range rule.Conditions {
			if !EvalCondition(cond, txn) {
				return false
			}
		}
		return true
	}
}

// FirstMatch returns the first enabled rule in list order matching the
// transaction, or nil. List order is the only tie-break.
func FirstMatch(ruleList []model.TransactionRule, txn model.PendingTransaction) *model.TransactionRule {
	for i := range ruleList {
		if EvalRule(ruleList[i], txn) {
			return &ruleList[i]
		}
	}
	return nil
}
