package scoring

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// DefaultDisposableDomains is the shipped denylist of throwaway mail providers
var DefaultDisposableDomains = []string{
	"guerrillamail.com", "temp-mail.org", "10minutemail.com",
	"mailinator.com", "throwaway.email", "tempmail.com",
	"getnada.com", "maildrop.cc", "yopmail.com", "fakeinbox.com",
	"emailondeck.com", "throwawaymail.com", "trashmail.com",
	"sharklasers.com", "spam4.me", "tempr.email",
}

// DefaultGibberishNames are lower-cased names treated as junk input
var DefaultGibberishNames = []string{
	"asdfgh", "qwerty", "zxcvbn", "test test", "test",
	"fake", "xxx", "aaa", "zzz", "nnn", "111", "123", "abc",
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Rules holds the stateless rule predicates and the lookup sets they consult.
// A Rules value must not be mutated while a batch is being scored.
type Rules struct {
	disposable map[string]struct{}
	gibberish  map[string]struct{}
}

// NewRules creates rule predicates loaded with the default denylists
func NewRules() *Rules {
	r := &Rules{
		disposable: make(map[string]struct{}, len(DefaultDisposableDomains)),
		gibberish:  make(map[string]struct{}, len(DefaultGibberishNames)),
	}
	r.AddDisposableDomains(DefaultDisposableDomains...)
	r.AddGibberishNames(DefaultGibberishNames...)
	return r
}

// AddDisposableDomains extends the disposable-domain denylist
func (r *Rules) AddDisposableDomains(domains ...string) {
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			r.disposable[d] = struct{}{}
		}
	}
}

// AddGibberishNames extends the gibberish-name token set
func (r *Rules) AddGibberishNames(names ...string) {
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			r.gibberish[n] = struct{}{}
		}
	}
}

// DisposableDomainCount returns the size of the denylist
func (r *Rules) DisposableDomainCount() int {
	return len(r.disposable)
}

// ValidatePhoneFormat reports whether the phone has 10 or 11 digits once
// every non-digit character is stripped. Missing phones are checked by the caller.
func (r *Rules) ValidatePhoneFormat(phone string) bool {
	digits := 0
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return digits == 10 || digits == 11
}

// ValidateEmailFormat matches local-part@domain.tld. No RFC 5322 compliance.
func (r *Rules) ValidateEmailFormat(email string) bool {
	return emailPattern.MatchString(email)
}

// IsDisposableEmail checks the domain after the last '@' against the denylist
func (r *Rules) IsDisposableEmail(email string) bool {
	if email == "" {
		return false
	}
	domain := email
	if i := strings.LastIndex(email, "@"); i >= 0 {
		domain = email[i+1:]
	}
	_, ok := r.disposable[strings.ToLower(domain)]
	return ok
}

// IsGibberishName flags empty names, known junk tokens, single characters and
// names containing digits. Superscript and other non-decimal digits count.
func (r *Rules) IsGibberishName(name string) bool {
	if name == "" {
		return true
	}

	normalized := strings.TrimSpace(strings.ToLower(name))
	if _, ok := r.gibberish[normalized]; ok {
		return true
	}

	if utf8.RuneCountInString(normalized) <= 1 {
		return true
	}

	for _, c := range normalized {
		if unicode.IsDigit(c) || unicode.Is(unicode.No, c) {
			return true
		}
	}

	return false
}

// RulesFile is the on-disk format for extending the default rule sets
type RulesFile struct {
	DisposableDomains []string `yaml:"disposable_domains"`
	GibberishNames    []string `yaml:"gibberish_names"`
}

// LoadRulesFile reads a YAML rules file and merges it into the defaults.
// An empty path returns the defaults unchanged.
func LoadRulesFile(path string) (*Rules, error) {
	rules := NewRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	rules.AddDisposableDomains(file.DisposableDomains...)
	rules.AddGibberishNames(file.GibberishNames...)
	return rules, nil
}
