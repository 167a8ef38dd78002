package scoring

import "sort"

var reasonCategories = map[string]string{
	ReasonInvalidPhone:    CategoryContact,
	ReasonMissingPhone:    CategoryContact,
	ReasonInvalidEmail:    CategoryContact,
	ReasonMissingEmail:    CategoryContact,
	ReasonDisposableEmail: CategoryContact,
	ReasonRepeatedPhone:   CategoryContact,
	ReasonRepeatedEmail:   CategoryContact,
	ReasonExactDuplicate:  CategoryDuplicate,
	ReasonGibberishName:   CategoryQuality,
	ReasonMissingFields:   CategoryQuality,
}

// ReasonCategory returns the breakdown category a reason belongs to
func ReasonCategory(reason string) string {
	if c, ok := reasonCategories[reason]; ok {
		return c
	}
	return CategoryQuality
}

// ReasonPoints returns the points a reason adds to a lead's score
func ReasonPoints(reason string) int {
	if reason == ReasonExactDuplicate {
		return duplicatePoints
	}
	return contactPoints
}

// BuildIndicators rolls the reasons of every result up into batch indicators,
// most frequent first.
func BuildIndicators(results []ScoreResult) []Indicator {
	if len(results) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, r := range results {
		for _, reason := range r.Reasons {
			counts[reason]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	total := float64(len(results))
	indicators := make([]Indicator, 0, len(counts))
	for reason, count := range counts {
		points := ReasonPoints(reason)
		indicators = append(indicators, Indicator{
			Name:              reason,
			Category:          ReasonCategory(reason),
			AffectedLeadCount: count,
			Percentage:        float64(count) / total * 100,
			PointsPerLead:     points,
			TotalPoints:       count * points,
		})
	}

	sort.Slice(indicators, func(i, j int) bool {
		if indicators[i].AffectedLeadCount != indicators[j].AffectedLeadCount {
			return indicators[i].AffectedLeadCount > indicators[j].AffectedLeadCount
		}
		return indicators[i].Name < indicators[j].Name
	})

	return indicators
}
