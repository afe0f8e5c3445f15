package scan

import "log/slog"

// Stats counts what happened to every fetched market during one run.
type Stats struct {
	Fetched         int
	Malformed       int
	NotActive       int
	TagExcluded     int
	KeywordExcluded int
	BelowThreshold  int
	NoEndDate       int
	OutsideWindow   int
	Passed          int
	Rows            int
}

// count records one filter drop.
func (s *Stats) count(reason DropReason) {
	switch reason {
	case DropNotActive:
		s.NotActive++
	case DropTagExcluded:
		s.TagExcluded++
	case DropKeywordMatch:
		s.KeywordExcluded++
	case DropBelowThreshold:
		s.BelowThreshold++
	case DropNoEndDate:
		s.NoEndDate++
	case DropOutsideWindow:
		s.OutsideWindow++
	}
}

// LogValue lets the whole struct be attached to a slog record as one group.
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("fetched", s.Fetched),
		slog.Int("malformed", s.Malformed),
		slog.Int("not_active", s.NotActive),
		slog.Int("tag_excluded", s.TagExcluded),
		slog.Int("keyword_excluded", s.KeywordExcluded),
		slog.Int("below_threshold", s.BelowThreshold),
		slog.Int("no_end_date", s.NoEndDate),
		slog.Int("outside_window", s.OutsideWindow),
		slog.Int("passed", s.Passed),
		slog.Int("rows", s.Rows),
	)
}
