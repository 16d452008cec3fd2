package model

import "time"

// ConditionField selects which transaction field a condition tests.
type ConditionField string

const (
	FieldDescription ConditionField = "description"
	FieldAmount      ConditionField = "amount"
)

// MatchType is the comparison a condition applies.
//
// Description conditions use contains/starts-with/ends-with/equals;
// amount conditions use equals/greater-than/less-than/between.
type MatchType string

const (
	MatchContains    MatchType = "contains"
	MatchStartsWith  MatchType = "starts-with"
	MatchEndsWith    MatchType = "ends-with"
	MatchEquals      MatchType = "equals"
	MatchGreaterThan MatchType = "greater-than"
	MatchLessThan    MatchType = "less-than"
	MatchBetween     MatchType = "between"
)

// LogicMode combines a rule's conditions.
type LogicMode string

const (
	LogicAll LogicMode = "all" // every condition must hold
	LogicAny LogicMode = "any" // at least one condition must hold
)

// RuleCondition is a single predicate over a transaction's description
// or amount. Value2 is populated only for between and holds the second
// bound; the two bounds are order-independent.
type RuleCondition struct {
	ID     string
	Field  ConditionField
	Match  MatchType
	Value  string
	Value2 string
}

// TransactionRule assigns a category to transactions matching its
// conditions. Rules are evaluated in list order; the first enabled rule
// whose conditions hold wins. There is no priority field.
type TransactionRule struct {
	ID         string
	Name       string
	Conditions []RuleCondition
	Logic      LogicMode
	CategoryID string
	Enabled    bool
	CreatedAt  time.Time
}
