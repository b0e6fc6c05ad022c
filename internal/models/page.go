// Package models defines the tracked-page records, URL classes, and
// statistics row shared across the sitemap-manager service.
package models

import "time"

// Canonical page types. Anything else is treated as a person-family type
// and mapped to the generic person path.
const (
	PageTypeFilm     = "film"
	PageTypeSerie    = "serie"
	PageTypeAttore   = "attore"
	PageTypeActor    = "actor"
	PageTypeRegista  = "regista"
	PageTypeDirector = "director"
	PageTypeCast     = "cast"
	PageTypeCrew     = "crew"
	PageTypePerson   = "person"
)

// TrackedPage is one row of the generated_pages table: a content URL the
// site has served at least once. Only the sitemap generator reads this
// table; the page-serving frontend owns the visit counters.
type TrackedPage struct {
	Slug             string    `json:"slug"`
	PageType         string    `json:"page_type"`
	FirstGeneratedAt time.Time `json:"first_generated_at"`
	LastVisitedAt    time.Time `json:"last_visited_at"`
	VisitCount       int       `json:"visit_count"`
}

// PathPrefix returns the URL path prefix for a page type, without a
// trailing slash. Unrecognized types fall back to the generic person path.
func PathPrefix(pageType string) string {
	switch pageType {
	case PageTypeFilm:
		return "/film"
	case PageTypeSerie:
		return "/serie"
	case PageTypeAttore, PageTypeActor:
		return "/attore"
	case PageTypeRegista, PageTypeDirector:
		return "/regista"
	case PageTypeCast:
		return "/cast"
	case PageTypeCrew:
		return "/crew"
	default:
		return "/person"
	}
}

// IsPersonType reports whether the page type belongs to the person family
// (anything that is not film or serie).
func IsPersonType(pageType string) bool {
	return pageType != PageTypeFilm && pageType != PageTypeSerie
}

// StaticRoute is a fixed site path always present in the sitemap.
type StaticRoute struct {
	Path       string
	ChangeFreq string
	Priority   string
}

// Per-class changefreq and priority values. Static routes rank above
// film/serie entries, which rank above person pages.
const (
	ChangeFreqWeekly  = "weekly"
	ChangeFreqMonthly = "monthly"

	PriorityStatic  = "1.0"
	PriorityContent = "0.8"
	PriorityPerson  = "0.6"
)

// StaticRoutes returns the ordered fixed routes emitted at the top of every
// sitemap. The order is part of the output contract.
func StaticRoutes() []StaticRoute {
	return []StaticRoute{
		{Path: "", ChangeFreq: ChangeFreqWeekly, Priority: PriorityStatic},
		{Path: "/search", ChangeFreq: ChangeFreqWeekly, Priority: PriorityStatic},
		{Path: "/login", ChangeFreq: ChangeFreqWeekly, Priority: PriorityStatic},
		{Path: "/about", ChangeFreq: ChangeFreqWeekly, Priority: PriorityStatic},
	}
}

// ChangeFreqFor returns the change frequency for a content page type.
func ChangeFreqFor(pageType string) string {
	if IsPersonType(pageType) {
		return ChangeFreqMonthly
	}
	return ChangeFreqWeekly
}

// PriorityFor returns the priority for a content page type.
func PriorityFor(pageType string) string {
	if IsPersonType(pageType) {
		return PriorityPerson
	}
	return PriorityContent
}

// SitemapStats is the single-row statistics record (fixed id 1) describing
// the most recent generation run. On a failed run only the error fields and
// timestamp change; the counts keep the last successful values.
type SitemapStats struct {
	ID             int            `json:"id"`
	LastGeneration time.Time      `json:"last_generation"`
	URLsCount      int            `json:"urls_count"`
	FilmCount      int            `json:"film_count"`
	SerieCount     int            `json:"serie_count"`
	PersonCount    int            `json:"person_count"`
	SubtypeCounts  map[string]int `json:"subtype_counts"`
	IsError        bool           `json:"is_error"`
	ErrorMessage   string         `json:"error_message,omitempty"`
}

// StatsRowID is the fixed identifier of the single statistics row.
const StatsRowID = 1
