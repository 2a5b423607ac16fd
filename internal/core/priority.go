package core

import (
	"strings"

	"github.com/dbrainhq/dbrain/pkg/models"
)

// basePriorities is the per-destination default table. Team client-facing
// work defaults above personal strategic work.
var basePriorities = map[models.Destination]models.Priority{
	models.DestTeam:     models.P3,
	models.DestPersonal: models.P4,
	models.DestCalendar: models.P3,
}

// PriorityRule maps a keyword set to an override level. Rules are evaluated
// in table order; the first match replaces the base level.
type PriorityRule struct {
	Name     string
	Level    models.Priority
	Keywords []string
}

// defaultPriorityRules is the built-in override table: urgency, importance,
// routine, strategic.
var defaultPriorityRules = []PriorityRule{
	{Name: "urgency", Level: models.P1, Keywords: []string{"срочно", "срочн", "urgent", "asap", "немедленно", "горит"}},
	{Name: "importance", Level: models.P2, Keywords: []string{"важно", "важн", "important", "critical", "критичн"}},
	{Name: "routine", Level: models.P3, Keywords: []string{"рутин", "routine", "регулярн", "weekly chore"}},
	{Name: "strategic", Level: models.P4, Keywords: []string{"стратег", "strategic", "долгосрочн", "long-term"}},
}

// DecisionFilter is one of the four fixed qualifying questions. When at
// least two filters match an entry, the resolved priority is raised by
// exactly one step.
type DecisionFilter struct {
	Name     string
	Keywords []string
}

// decisionFilters holds the four fixed filters. The set size is part of the
// boost contract: the threshold is two of these four.
var decisionFilters = []DecisionFilter{
	{Name: "scalable", Keywords: []string{"масштаб", "scalab", "scale"}},
	{Name: "automatable", Keywords: []string{"автомат", "automat"}},
	{Name: "expertise-brand", Keywords: []string{"эксперт", "бренд", "brand", "expertis"}},
	{Name: "product", Keywords: []string{"продукт", "product", "тираж", "repeatable"}},
}

// PriorityResolver derives a priority level from the destination default,
// the keyword override table, and the bounded decision-filter boost,
// strictly in that order.
type PriorityResolver struct {
	rules []PriorityRule
}

// NewPriorityResolver builds a resolver over the built-in override table.
func NewPriorityResolver() *PriorityResolver {
	return &PriorityResolver{rules: defaultPriorityRules}
}

// Resolve computes the priority for one entry. The three stages must run in
// base -> override -> boost order: reordering changes the result whenever an
// override and a boost both apply.
func (r *PriorityResolver) Resolve(text string, dest models.Destination) models.Priority {
	level, ok := basePriorities[dest]
	if !ok {
		level = models.P4
	}

	folded := strings.ToLower(text)
	for _, rule := range r.rules {
		if matchesAny(folded, rule.Keywords) {
			level = rule.Level
			break
		}
	}

	if CountDecisionFilters(text) >= 2 {
		level = level.Raise()
	}

	return level
}

// CountDecisionFilters returns how many of the four fixed qualifying
// questions evaluate true for the text.
func CountDecisionFilters(text string) int {
	folded := strings.ToLower(text)
	count := 0
	for _, f := range decisionFilters {
		if matchesAny(folded, f.Keywords) {
			count++
		}
	}
	return count
}
