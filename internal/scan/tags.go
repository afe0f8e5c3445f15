package scan

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/polyscan/scanner/internal/domain"
)

// TagLookup resolves a tag slug against the tag-lookup endpoint.
type TagLookup interface {
	GetTagBySlug(ctx context.Context, slug string) (domain.ResolvedTag, error)
}

// TagSet is the resolved exclusion set. Keys are lowercased tag slugs and
// labels; a market matches when any of its tags matches either form.
type TagSet map[string]struct{}

// Add inserts the slug and label of a resolved tag, lowercased.
func (s TagSet) Add(tag domain.ResolvedTag) {
	if tag.Slug != "" {
		s[strings.ToLower(tag.Slug)] = struct{}{}
	}
	if tag.Label != "" {
		s[strings.ToLower(tag.Label)] = struct{}{}
	}
}

// Matches reports whether any of the given market tags intersects the set by
// slug or label, case-insensitive.
func (s TagSet) Matches(tags []domain.Tag) bool {
	for _, t := range tags {
		if _, ok := s[strings.ToLower(t.Slug)]; ok {
			return true
		}
		if _, ok := s[strings.ToLower(t.Label)]; ok {
			return true
		}
	}
	return false
}

// TagResolver builds the exclusion TagSet from a fixed list of category slugs.
type TagResolver struct {
	lookup TagLookup
	logger *slog.Logger
}

// NewTagResolver creates a TagResolver backed by the given lookup source.
func NewTagResolver(lookup TagLookup, logger *slog.Logger) *TagResolver {
	return &TagResolver{
		lookup: lookup,
		logger: logger.With(slog.String("component", "tag_resolver")),
	}
}

// Resolve looks every slug up concurrently and returns the exclusion set plus
// the per-slug resolution results. A slug that cannot be resolved is logged and
// left out of the set; resolution misses are never fatal.
func (r *TagResolver) Resolve(ctx context.Context, slugs []string) (TagSet, map[string]domain.ResolvedTag, error) {
	set := make(TagSet)
	found := make(map[string]domain.ResolvedTag, len(slugs))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for _, slug := range slugs {
		slug := slug
		g.Go(func() error {
			tag, err := r.lookup.GetTagBySlug(ctx, slug)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					r.logger.Warn("exclusion tag not found, skipping",
						slog.String("slug", slug),
					)
					return nil
				}
				return err
			}

			mu.Lock()
			set.Add(tag)
			found[slug] = tag
			mu.Unlock()

			r.logger.Info("resolved exclusion tag",
				slog.String("slug", tag.Slug),
				slog.String("label", tag.Label),
				slog.String("id", tag.ID),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	r.logger.Info("exclusion tag set ready",
		slog.Int("resolved", len(found)),
		slog.Int("requested", len(slugs)),
	)
	return set, found, nil
}

// Terms returns the set's entries sorted, for logging and tests.
func (s TagSet) Terms() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
