// Package source defines the contract every upstream fixture integration
// implements, plus the normalization helpers shared across adapters so
// per-provider packages stay small.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
)

// TeamQuery identifies the club a fetch targets. Providers spell the same
// club differently and mint their own ids, so the query carries both the
// canonical name and the per-provider identifiers.
type TeamQuery struct {
	CanonicalName string
	Aliases       []string
	// ProviderIDs maps adapter name to that provider's team identifier.
	ProviderIDs map[string]string
}

// Adapter is one upstream integration. FetchFixtures returns only records
// belonging to the queried team, already normalized into canonical matches.
// Transient upstream failures surface as an error; the caller treats them
// as an empty result and moves on.
type Adapter interface {
	Name() string
	FetchFixtures(ctx context.Context, team TeamQuery) ([]match.Match, error)
}

// BelongsTo reports whether a provider-spelled club name refers to the
// queried team.
func (q TeamQuery) BelongsTo(name string) bool {
	normalized := match.NormalizeTeamName(name)
	if normalized == "" {
		return false
	}
	if normalized == match.NormalizeTeamName(q.CanonicalName) {
		return true
	}
	for _, alias := range q.Aliases {
		if normalized == match.NormalizeTeamName(alias) {
			return true
		}
	}
	return false
}

// Canonicalize folds any spelling of the queried team into its canonical
// name and leaves other club names cleaned but otherwise untouched.
func (q TeamQuery) Canonicalize(name string) string {
	if q.BelongsTo(name) {
		return q.CanonicalName
	}
	return strings.Join(strings.Fields(strings.TrimSpace(name)), " ")
}

// ProviderID returns the provider-local team id for an adapter, if configured.
func (q TeamQuery) ProviderID(adapterName string) (string, bool) {
	id, ok := q.ProviderIDs[adapterName]
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// MatchID builds the stable adapter-scoped identity for a fixture. The same
// real-world fixture fetched twice from the same provider must produce the
// same id, or upserts would duplicate rows.
func MatchID(adapterName, date, home, away string) string {
	return fmt.Sprintf("%s:%s:%s:%s", adapterName, date, slug(home), slug(away))
}

func slug(value string) string {
	normalized := match.NormalizeTeamName(value)
	return strings.ReplaceAll(normalized, " ", "-")
}

// IsRetryableStatus reports whether an upstream HTTP status is worth another
// attempt. 429 always is; so are transient 5xx responses.
func IsRetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
