package domains

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/richxcame/lead-forensics/internal/scoring"
	"github.com/richxcame/lead-forensics/pkg/logger"
	"github.com/richxcame/lead-forensics/pkg/validation"
	"go.uber.org/zap"
)

// SetKey is the redis set holding operator-added disposable domains
const SetKey = "lead_forensics:disposable_domains"

// SetStore is a string set, satisfied by pkg/redis.Client
type SetStore interface {
	AddToSet(ctx context.Context, key string, members ...string) (int64, error)
	RemoveFromSet(ctx context.Context, key string, members ...string) (int64, error)
	SetMembers(ctx context.Context, key string) ([]string, error)
	IsMember(ctx context.Context, key, member string) (bool, error)
}

// Registry manages the shared disposable-domain extension list
type Registry struct {
	store SetStore
	key   string
}

// NewRegistry creates a registry over store
func NewRegistry(store SetStore) *Registry {
	return &Registry{store: store, key: SetKey}
}

// Normalize lower-cases and trims a domain
func Normalize(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

// List returns the stored domains in sorted order
func (r *Registry) List(ctx context.Context) ([]string, error) {
	members, err := r.store.SetMembers(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("list disposable domains: %w", err)
	}
	sort.Strings(members)
	return members, nil
}

// Add stores domains after normalizing them and returns how many were new
func (r *Registry) Add(ctx context.Context, domains ...string) (int64, error) {
	normalized, err := normalizeAll(domains)
	if err != nil {
		return 0, err
	}
	added, err := r.store.AddToSet(ctx, r.key, normalized...)
	if err != nil {
		return 0, fmt.Errorf("add disposable domains: %w", err)
	}
	return added, nil
}

// Remove deletes domains and returns how many were present
func (r *Registry) Remove(ctx context.Context, domains ...string) (int64, error) {
	normalized, err := normalizeAll(domains)
	if err != nil {
		return 0, err
	}
	removed, err := r.store.RemoveFromSet(ctx, r.key, normalized...)
	if err != nil {
		return 0, fmt.Errorf("remove disposable domains: %w", err)
	}
	return removed, nil
}

// Contains reports whether domain is stored
func (r *Registry) Contains(ctx context.Context, domain string) (bool, error) {
	ok, err := r.store.IsMember(ctx, r.key, Normalize(domain))
	if err != nil {
		return false, fmt.Errorf("check disposable domain: %w", err)
	}
	return ok, nil
}

// MergeInto adds the stored domains to rules. The shipped defaults stay in place.
func (r *Registry) MergeInto(ctx context.Context, rules *scoring.Rules) (int, error) {
	domains, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	rules.AddDisposableDomains(domains...)

	logger.Info("Merged disposable domains",
		zap.Int("stored", len(domains)),
		zap.Int("denylist_size", rules.DisposableDomainCount()),
	)
	return len(domains), nil
}

// InvalidDomainError names the inputs that are not valid domains
type InvalidDomainError struct {
	Domains []string
}

func (e *InvalidDomainError) Error() string {
	return "invalid domain: " + strings.Join(e.Domains, ", ")
}

func normalizeAll(domains []string) ([]string, error) {
	out := make([]string, 0, len(domains))
	var invalid []string
	for _, d := range domains {
		n := Normalize(d)
		if !validation.IsDomain(n) {
			invalid = append(invalid, d)
			continue
		}
		out = append(out, n)
	}
	if len(invalid) > 0 {
		return nil, &InvalidDomainError{Domains: invalid}
	}
	return out, nil
}
