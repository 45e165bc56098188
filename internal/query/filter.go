// Package query derives the named question listings from a snapshot of questions.
// It never touches storage; repositories hand it a snapshot and it filters, sorts
// and pages in memory.
package query

import (
	"slices"
	"time"

	"stackit/internal/models"
)

// Filter names a listing.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterRecent     Filter = "recent"
	FilterPopular    Filter = "popular"
	FilterTrending   Filter = "trending"
	FilterUnanswered Filter = "unanswered"
	FilterAnswered   Filter = "answered"
	FilterMy         Filter = "my"
	FilterFollowed   Filter = "followed"
)

const (
	PopularMinVotes  = 10
	TrendingWindow   = 24 * time.Hour
	TrendingMinVotes = 5
	TrendingMinViews = 50
	DefaultLimit     = 10
	MaxLimit         = 50
)

// ParseFilter validates a filter name; empty means FilterAll.
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	f := Filter(s)
	switch f {
	case FilterAll, FilterRecent, FilterPopular, FilterTrending,
		FilterUnanswered, FilterAnswered, FilterMy, FilterFollowed:
		return f, nil
	}
	return "", models.NewFieldValidationError([]models.FieldError{{
		Field:   "filter",
		Message: "filter must be one of all, recent, popular, trending, unanswered, answered, my, followed",
	}})
}

// ParseLanguage validates a listing language; empty means both.
func ParseLanguage(s string) (string, error) {
	switch s {
	case "":
		return models.LanguageBoth, nil
	case models.LanguageEnglish, models.LanguageHindi, models.LanguageBoth:
		return s, nil
	}
	return "", models.NewFieldValidationError([]models.FieldError{{
		Field:   "language",
		Message: "language must be one of en, hi, both",
	}})
}

// RequiresActor reports whether f only yields results for an authenticated actor.
func (f Filter) RequiresActor() bool {
	return f == FilterMy || f == FilterFollowed
}

// Options parameterize Apply.
type Options struct {
	Filter   Filter
	Language string
	// ActorID is zero for anonymous callers.
	ActorID uint
	Now     time.Time
}

// Apply filters and orders snapshot. The input slice is not modified.
func Apply(snapshot []*models.Question, opts Options) []*models.Question {
	if opts.Filter == "" {
		opts.Filter = FilterAll
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Filter.RequiresActor() && opts.ActorID == 0 {
		return []*models.Question{}
	}

	out := make([]*models.Question, 0, len(snapshot))
	for _, q := range snapshot {
		if opts.Language != "" && opts.Language != models.LanguageBoth && q.Language != opts.Language {
			continue
		}
		if matches(q, opts) {
			out = append(out, q)
		}
	}

	slices.SortStableFunc(out, comparator(opts.Filter))
	return out
}

func matches(q *models.Question, opts Options) bool {
	switch opts.Filter {
	case FilterPopular:
		return q.Votes >= PopularMinVotes
	case FilterTrending:
		return isRecent(q, opts.Now) && (q.Votes > TrendingMinVotes || q.Views > TrendingMinViews)
	case FilterUnanswered:
		return len(q.Answers) == 0
	case FilterAnswered:
		return len(q.Answers) > 0
	case FilterMy:
		return q.AuthorID == opts.ActorID
	case FilterFollowed:
		return q.Followers.Contains(opts.ActorID)
	default:
		return true
	}
}

func isRecent(q *models.Question, now time.Time) bool {
	cutoff := now.Add(-TrendingWindow)
	if !q.CreatedAt.Before(cutoff) {
		return true
	}
	for i := range q.Answers {
		if !q.Answers[i].CreatedAt.Before(cutoff) {
			return true
		}
	}
	return false
}

func comparator(f Filter) func(a, b *models.Question) int {
	return func(a, b *models.Question) int {
		var c int
		switch f {
		case FilterAll:
			c = b.LastActivity().Compare(a.LastActivity())
		case FilterPopular:
			c = desc(a.Votes, b.Votes)
		case FilterTrending:
			if c = desc(a.Votes, b.Votes); c == 0 {
				c = desc(a.Views, b.Views)
			}
		}
		if c != 0 {
			return c
		}
		if c = b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return desc(int(a.ID), int(b.ID))
	}
}

func desc(a, b int) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// Page is one window of an ordered listing.
type Page struct {
	Items      []*models.Question
	Pagination *models.Pagination
}

// Paginate cuts the window for page/limit out of list.
func Paginate(list []*models.Question, page, limit int) Page {
	page, limit = NormalizePage(page, limit, DefaultLimit)
	p := models.NewPagination(page, limit, int64(len(list)))

	start := p.Offset()
	if start > len(list) {
		start = len(list)
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	return Page{Items: list[start:end], Pagination: p}
}

// NormalizePage clamps page to >= 1 and limit into [1, MaxLimit].
func NormalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}
