// Package catalog normalizes heterogeneous provider model lists into the
// common ModelInfo shape. Everything in here is pure: no state, no side
// effects, so size categorization and auto-load resolution stay testable
// without a provider in reach.
package catalog

import (
	"strings"

	"inkwell/internal/models"
)

// sizeTokens maps known parameter-count substrings to a size category.
// Order is precedence: the first token found in the model name or id
// wins. Unmatched models fall back to medium on purpose — an unknown
// model is assumed mid-sized rather than dropped or mislabeled small.
var sizeTokens = []struct {
	token    string
	category models.SizeCategory
}{
	{"405b", models.SizeLarge},
	{"180b", models.SizeLarge},
	{"70b", models.SizeLarge},
	{"72b", models.SizeLarge},
	{"65b", models.SizeLarge},
	{"40b", models.SizeLarge},
	{"34b", models.SizeLarge},
	{"33b", models.SizeLarge},
	{"30b", models.SizeLarge},
	{"1.5b", models.SizeSmall},
	{"1.1b", models.SizeSmall},
	{"0.5b", models.SizeSmall},
	{"13b", models.SizeMedium},
	{"14b", models.SizeMedium},
	{"12b", models.SizeMedium},
	{"9b", models.SizeMedium},
	{"8b", models.SizeMedium},
	{"7b", models.SizeMedium},
	{"4b", models.SizeSmall},
	{"3b", models.SizeSmall},
	{"2b", models.SizeSmall},
	{"1b", models.SizeSmall},
	{"mini", models.SizeSmall},
	{"tiny", models.SizeSmall},
	{"nano", models.SizeSmall},
	{"small", models.SizeSmall},
	{"lite", models.SizeSmall},
	{"flash", models.SizeSmall},
	{"haiku", models.SizeSmall},
	{"opus", models.SizeLarge},
	{"large", models.SizeLarge},
}

// Categorize assigns a size category from known tokens in the model's
// name. The medium fallback is policy, not an accident.
func Categorize(name string) models.SizeCategory {
	lowered := strings.ToLower(name)
	for _, entry := range sizeTokens {
		if strings.Contains(lowered, entry.token) {
			return entry.category
		}
	}
	return models.SizeMedium
}

// Normalize fills in the category for every model, keeping provider
// order. The input slice is not mutated.
func Normalize(raw []models.ModelInfo) []models.ModelInfo {
	out := make([]models.ModelInfo, len(raw))
	for i, m := range raw {
		if m.Category == "" {
			m.Category = Categorize(m.Name + " " + m.ID)
		}
		out[i] = m
	}
	return out
}

// GroupByCategory recomputes the category grouping from the current list.
// It holds no state of its own; callers re-derive it on every change.
func GroupByCategory(list []models.ModelInfo) []models.ModelGroup {
	order := []models.SizeCategory{models.SizeSmall, models.SizeMedium, models.SizeLarge}
	groups := make([]models.ModelGroup, 0, len(order))
	for _, cat := range order {
		group := models.ModelGroup{Category: cat}
		for _, m := range list {
			if m.Category == cat {
				group.Models = append(group.Models, m)
			}
		}
		if len(group.Models) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

// DefaultSelection picks the model auto-selected after a refresh when the
// user has not chosen one: the first small model, else the first model in
// catalog order.
func DefaultSelection(list []models.ModelInfo) string {
	for _, m := range list {
		if m.Category == models.SizeSmall {
			return m.ID
		}
	}
	if len(list) > 0 {
		return list[0].ID
	}
	return ""
}

// firstOfCategory returns the first model of the given category, strictly:
// no substitute category is ever returned.
func firstOfCategory(list []models.ModelInfo, cat models.SizeCategory) (string, bool) {
	for _, m := range list {
		if m.Category == cat {
			return m.ID, true
		}
	}
	return "", false
}

// ResolveAutoLoad maps an auto-load policy to a concrete model id, or
// reports that nothing should be loaded. A configured default model wins
// whenever it is present in the catalog. "smallest" and "fastest" are
// separate strategies that currently resolve identically; they are kept
// distinct as extension points.
func ResolveAutoLoad(list []models.ModelInfo, policy models.AutoLoadPolicy) (string, bool) {
	if policy.DefaultModelID != "" {
		for _, m := range list {
			if m.ID == policy.DefaultModelID {
				return m.ID, true
			}
		}
	}
	switch policy.Strategy {
	case models.StrategySmallest, models.StrategyFastest:
		return firstOfCategory(list, models.SizeSmall)
	case models.StrategyBalanced:
		return firstOfCategory(list, models.SizeMedium)
	case models.StrategyDefaultModel, models.StrategyNone:
		return "", false
	default:
		return "", false
	}
}
