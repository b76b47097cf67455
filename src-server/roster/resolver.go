package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sam/src-server/model"
	"sam/src-server/utils"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// ErrNoMatch reports that a name scored below the match threshold
// against every roster entry.
var ErrNoMatch = errors.New("no matching roster entry")

// matchThreshold is the minimum similarity score for a fuzzy match to
// count. Below it the name is reported as unresolvable rather than
// silently matched to the closest stranger.
const matchThreshold = 0.75

// Resolver maps free-form participant names ("dr. sharma", "aniket")
// to faculty roster entries via fuzzy matching.
type Resolver struct {
	cache *Cache
}

func NewResolver(cache *Cache) *Resolver {
	return &Resolver{cache: cache}
}

// Resolve finds the roster entry that best matches the given name.
// The name is normalized first, then scored against each entry's full
// name and each of its individual tokens, so "Sharma" still finds
// "Priya Sharma".
func (r *Resolver) Resolve(ctx context.Context, name string) (model.Faculty, error) {
	cleaned := utils.CleanupString(name)
	if cleaned == "" {
		return model.Faculty{}, fmt.Errorf("Resolver.Resolve: %w: blank name", ErrNoMatch)
	}

	entries, err := r.cache.Entries(ctx)
	if err != nil {
		return model.Faculty{}, fmt.Errorf("Resolver.Resolve: can't load roster: %w", err)
	}
	if len(entries) == 0 {
		return model.Faculty{}, fmt.Errorf("Resolver.Resolve: roster is empty")
	}

	jw := metrics.NewJaroWinkler()
	var (
		best      model.Faculty
		bestScore float64
	)
	for _, entry := range entries {
		score := scoreName(jw, cleaned, entry.Name)
		if score > bestScore {
			best = entry
			bestScore = score
		}
	}

	if bestScore < matchThreshold {
		return model.Faculty{}, fmt.Errorf("Resolver.Resolve: %w for %q", ErrNoMatch, name)
	}
	return best, nil
}

// ResolveAll resolves each name, dropping the ones that match nobody on
// the roster. Dropped names are returned so callers can tell the
// requester who was left off the meeting. Roster read failures still
// fail the whole batch.
func (r *Resolver) ResolveAll(ctx context.Context, names []string) ([]model.Faculty, []string, error) {
	resolved := make([]model.Faculty, 0, len(names))
	dropped := make([]string, 0)
	for _, name := range names {
		entry, err := r.Resolve(ctx, name)
		switch {
		case err == nil:
			resolved = append(resolved, entry)
		case errors.Is(err, ErrNoMatch):
			slog.Warn("Resolver.ResolveAll: dropping unmatched name", "name", name)
			dropped = append(dropped, name)
		default:
			return nil, nil, err
		}
	}
	return resolved, dropped, nil
}

// scoreName compares the query against the full name and against each
// name token, keeping the best score. Both sides are lowercased so the
// metric only sees spelling distance.
func scoreName(jw *metrics.JaroWinkler, query, fullName string) float64 {
	q := strings.ToLower(query)
	full := strings.ToLower(fullName)

	best := strutil.Similarity(q, full, jw)
	for _, token := range strings.Fields(full) {
		if score := strutil.Similarity(q, token, jw); score > best {
			best = score
		}
	}
	return best
}
