package scoring

import "strings"

// Point awards per triggered rule
const (
	contactPoints   = 10
	duplicatePoints = 15
	qualityPoints   = 10
)

// Scorer turns leads into scored results using a fixed set of rules
type Scorer struct {
	rules *Rules
}

// NewScorer creates a scorer. A nil rules value uses the defaults.
func NewScorer(rules *Rules) *Scorer {
	if rules == nil {
		rules = NewRules()
	}
	return &Scorer{rules: rules}
}

// Rules returns the rule predicates used by the scorer
func (s *Scorer) Rules() *Rules {
	return s.rules
}

// signals are the batch-dependent inputs to a lead's score
type signals struct {
	phoneRepeated bool
	emailRepeated bool
	duplicate     bool
}

// ScoreLead scores one lead against the batch's tracker. Leads must be passed
// in batch order; the tracker is updated as a side effect.
func (s *Scorer) ScoreLead(lead Lead, tracker *Tracker) ScoreResult {
	var sig signals
	sig.phoneRepeated, sig.emailRepeated = tracker.RecordAndCheckRepeatedContact(lead)
	sig.duplicate = tracker.RecordAndCheckDuplicate(lead)
	return s.score(lead, sig)
}

// ScoreBatch scores leads in order with a tracker created for this batch only
func (s *Scorer) ScoreBatch(leads []Lead) []ScoreResult {
	tracker := NewTracker()
	results := make([]ScoreResult, len(leads))
	for i, lead := range leads {
		results[i] = s.ScoreLead(lead, tracker)
	}
	return results
}

func (s *Scorer) score(lead Lead, sig signals) ScoreResult {
	total := 0
	reasons := make([]string, 0, 4)
	award := func(points int, reason string) int {
		total += points
		reasons = append(reasons, reason)
		return points
	}

	// Contact validation
	contact := 0
	switch {
	case lead.Phone == "":
		contact += award(contactPoints, ReasonMissingPhone)
	case !s.rules.ValidatePhoneFormat(lead.Phone):
		contact += award(contactPoints, ReasonInvalidPhone)
	}

	switch {
	case lead.Email == "":
		contact += award(contactPoints, ReasonMissingEmail)
	case !s.rules.ValidateEmailFormat(lead.Email):
		contact += award(contactPoints, ReasonInvalidEmail)
	case s.rules.IsDisposableEmail(lead.Email):
		contact += award(contactPoints, ReasonDisposableEmail)
	}

	if sig.phoneRepeated {
		contact += award(contactPoints, ReasonRepeatedPhone)
	}
	if sig.emailRepeated {
		contact += award(contactPoints, ReasonRepeatedEmail)
	}

	// Duplicate detection
	duplicate := 0
	if sig.duplicate {
		duplicate += award(duplicatePoints, ReasonExactDuplicate)
	}

	// Data quality
	quality := 0
	if lead.Name == "" || s.rules.IsGibberishName(lead.Name) {
		quality += award(qualityPoints, ReasonGibberishName)
	}

	// Only skipped when an earlier reason already mentions "Missing"; the
	// category of that reason is not considered.
	if lead.Name == "" || lead.Email == "" || lead.Phone == "" {
		if !strings.Contains(strings.Join(reasons, " "), "Missing") {
			quality += award(qualityPoints, ReasonMissingFields)
		}
	}

	result := ScoreResult{
		Score:   total,
		Reasons: reasons,
		Breakdown: Breakdown{
			Contact:   min(contact, ContactCap),
			Duplicate: min(duplicate, DuplicateCap),
			Quality:   min(quality, QualityCap),
		},
	}
	result.Classification, result.IsFraudulent = Classify(total)

	return result
}

// Classify maps an uncapped score to a classification. Only FRAUDULENT
// counts toward the batch fraud percentage.
func Classify(score int) (Classification, bool) {
	switch {
	case score >= FraudulentThreshold:
		return ClassificationFraudulent, true
	case score >= SuspiciousThreshold:
		return ClassificationSuspicious, false
	default:
		return ClassificationValid, false
	}
}
