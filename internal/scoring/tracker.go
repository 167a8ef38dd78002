package scoring

import "github.com/cespare/xxhash/v2"

// RepeatThreshold is the occurrence count at which a phone or email is flagged
const RepeatThreshold = 3

// Tracker records the contacts and fingerprints seen so far in one batch.
// Its answers for lead k depend on leads 1..k-1, so a Tracker belongs to a
// single batch and a single goroutine.
type Tracker struct {
	phones       map[string]int
	emails       map[string]int
	fingerprints map[uint64]struct{}
}

// NewTracker creates an empty batch-scoped tracker
func NewTracker() *Tracker {
	return &Tracker{
		phones:       make(map[string]int),
		emails:       make(map[string]int),
		fingerprints: make(map[uint64]struct{}),
	}
}

// Fingerprint returns the exact-duplicate identity of a lead: name|email|phone
func Fingerprint(lead Lead) string {
	return lead.Name + "|" + lead.Email + "|" + lead.Phone
}

func fingerprintHash(lead Lead) uint64 {
	return xxhash.Sum64String(Fingerprint(lead))
}

// RecordAndCheckDuplicate reports whether an identical lead was already
// recorded in this batch, then records this one. The first occurrence is never flagged.
func (t *Tracker) RecordAndCheckDuplicate(lead Lead) bool {
	h := fingerprintHash(lead)
	_, seen := t.fingerprints[h]
	t.fingerprints[h] = struct{}{}
	return seen
}

// RecordAndCheckRepeatedContact counts this lead's phone and email, then
// reports whether either has now been seen RepeatThreshold times or more.
func (t *Tracker) RecordAndCheckRepeatedContact(lead Lead) (phoneRepeated, emailRepeated bool) {
	t.phones[lead.Phone]++
	t.emails[lead.Email]++
	return t.phones[lead.Phone] >= RepeatThreshold, t.emails[lead.Email] >= RepeatThreshold
}

// PhoneCount returns how many times the phone has been recorded
func (t *Tracker) PhoneCount(phone string) int {
	return t.phones[phone]
}

// EmailCount returns how many times the email has been recorded
func (t *Tracker) EmailCount(email string) int {
	return t.emails[email]
}

// Seen returns the number of distinct fingerprints recorded
func (t *Tracker) Seen() int {
	return len(t.fingerprints)
}
