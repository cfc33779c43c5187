package fieldmatch

// Target identifies one of the four canonical metrics a source field can map to.
type Target string

const (
	TargetMonthlyBudget Target = "monthlyBudget"
	TargetMonthlySpent  Target = "monthlySpent"
	TargetDailyBudget   Target = "dailyBudget"
	TargetDailySpent    Target = "dailySpent"
)

// Targets is the fixed iteration order for greedy assignment. Earlier
// targets claim candidate fields first; the order is part of the contract.
var Targets = []Target{
	TargetMonthlyBudget,
	TargetMonthlySpent,
	TargetDailyBudget,
	TargetDailySpent,
}

// matchRule holds the keyword and alias sets for one target.
type matchRule struct {
	timeKeywords []string
	typeKeywords []string
	timeWeight   int
	typeWeight   int
	aliases      []string
}

var matchRules = map[Target]matchRule{
	TargetMonthlyBudget: {
		timeKeywords: []string{"month", "monthly", "mon"},
		typeKeywords: []string{"budget", "limit", "allowance", "quota", "allocation"},
		timeWeight:   10,
		typeWeight:   10,
		aliases:      []string{"month_budget", "monthly_budget", "monthlybudget"},
	},
	TargetMonthlySpent: {
		timeKeywords: []string{"month", "monthly", "mon"},
		typeKeywords: []string{"spent", "spend", "used", "cost", "consumed", "usage", "expense"},
		timeWeight:   10,
		typeWeight:   10,
		aliases:      []string{"month_spent", "monthly_spent", "monthlyspent", "month_used", "monthly_used"},
	},
	TargetDailyBudget: {
		timeKeywords: []string{"day", "daily", "today", "per_day"},
		typeKeywords: []string{"budget", "limit", "allowance", "quota", "allocation"},
		timeWeight:   10,
		typeWeight:   10,
		aliases:      []string{"day_budget", "daily_budget", "dailybudget", "today_budget"},
	},
	TargetDailySpent: {
		timeKeywords: []string{"day", "daily", "today", "per_day"},
		typeKeywords: []string{"spent", "spend", "used", "cost", "consumed", "usage", "expense"},
		timeWeight:   10,
		typeWeight:   10,
		aliases:      []string{"day_spent", "daily_spent", "dailyspent", "today_spent", "day_used", "daily_used"},
	},
}
