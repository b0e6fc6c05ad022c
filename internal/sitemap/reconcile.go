package sitemap

import (
	"strings"

	"github.com/napieracademy/sitemap-manager/internal/models"
)

// Bucket groups the tracked pages of one content type. ValidSlugs holds the
// slugs emitted into the sitemap (inclusion is permissive: any non-empty
// trimmed slug qualifies, each at most once); SkippedEmpty and
// SkippedDuplicate count records left out of the URL set during generation.
type Bucket struct {
	PageType         string
	ValidSlugs       []string
	SkippedEmpty     int
	SkippedDuplicate int
}

// Partition is the complete record set split by content family. Person
// buckets keep the order in which their type first appeared in the record
// set; that order carries through to the rendered document.
type Partition struct {
	Film  Bucket
	Serie Bucket
	// Person holds one bucket per person-subtype, including unrecognized
	// literal types.
	Person []Bucket

	// Untyped counts records with an empty page_type. They cannot be mapped
	// to a URL and are surfaced in run diagnostics rather than folded into
	// the person family.
	Untyped int

	personIdx map[string]int
	seen      map[slugKey]struct{}
}

// NewPartition splits the record set into content-family buckets.
func NewPartition(pages []models.TrackedPage) *Partition {
	p := &Partition{
		Film:      Bucket{PageType: models.PageTypeFilm},
		Serie:     Bucket{PageType: models.PageTypeSerie},
		personIdx: make(map[string]int),
		seen:      make(map[slugKey]struct{}),
	}

	for i := range pages {
		p.add(&pages[i])
	}

	return p
}

func (p *Partition) add(page *models.TrackedPage) {
	if page.PageType == "" {
		p.Untyped++
		return
	}

	bucket := p.bucketFor(page.PageType)
	if strings.TrimSpace(page.Slug) == "" {
		bucket.SkippedEmpty++
		return
	}

	// ValidSlugs is a set: a slug tracked twice under the same type is
	// emitted once.
	key := slugKey{page.PageType, page.Slug}
	if _, dup := p.seen[key]; dup {
		bucket.SkippedDuplicate++
		return
	}
	p.seen[key] = struct{}{}

	bucket.ValidSlugs = append(bucket.ValidSlugs, page.Slug)
}

// bucketFor returns the bucket for a page type, creating a person-subtype
// bucket on first appearance. Unrecognized types get their own bucket keyed
// by the literal value, never silently dropped.
func (p *Partition) bucketFor(pageType string) *Bucket {
	switch pageType {
	case models.PageTypeFilm:
		return &p.Film
	case models.PageTypeSerie:
		return &p.Serie
	}

	if idx, ok := p.personIdx[pageType]; ok {
		return &p.Person[idx]
	}
	p.Person = append(p.Person, Bucket{PageType: pageType})
	p.personIdx[pageType] = len(p.Person) - 1
	return &p.Person[len(p.Person)-1]
}

// URLCount returns the number of content URLs across all buckets.
func (p *Partition) URLCount() int {
	n := len(p.Film.ValidSlugs) + len(p.Serie.ValidSlugs)
	for i := range p.Person {
		n += len(p.Person[i].ValidSlugs)
	}
	return n
}

// PersonCount returns the number of person-family URLs across all subtypes.
func (p *Partition) PersonCount() int {
	n := 0
	for i := range p.Person {
		n += len(p.Person[i].ValidSlugs)
	}
	return n
}

// SubtypeCounts returns the per-subtype URL counts for the stats row.
func (p *Partition) SubtypeCounts() map[string]int {
	counts := make(map[string]int, len(p.Person))
	for i := range p.Person {
		counts[p.Person[i].PageType] = len(p.Person[i].ValidSlugs)
	}
	return counts
}

// Discrepancy is one tracked record absent from a published sitemap,
// annotated with its classified reason.
type Discrepancy struct {
	Slug     string          `json:"slug"`
	PageType string          `json:"page_type"`
	Reason   ExclusionReason `json:"reason"`
}

// Report is the operator-facing reconciliation of the tracked-page set
// against a published sitemap.
type Report struct {
	TrackedCount  int                     `json:"tracked_count"`
	IncludedCount int                     `json:"included_count"`
	Untyped       int                     `json:"untyped_count"`
	Discrepancies []Discrepancy           `json:"discrepancies"`
	ByReason      map[ExclusionReason]int `json:"by_reason"`
}

// Reconcile compares the tracked records against the slugs parsed out of a
// published sitemap. A record is included iff its slug literally appears in
// the published set for its content type; every other record gets exactly
// one classified reason. Classification never fails a record: anything the
// taxonomy cannot explain lands in the unknown bucket.
func Reconcile(pages []models.TrackedPage, published *ParsedSitemap) *Report {
	validator := NewSlugValidator(pages)

	report := &Report{
		TrackedCount:  len(pages),
		Discrepancies: make([]Discrepancy, 0),
		ByReason:      make(map[ExclusionReason]int),
	}

	for i := range pages {
		page := &pages[i]
		if page.PageType == "" {
			report.Untyped++
			continue
		}

		if published.Contains(models.PathPrefix(page.PageType), page.Slug) {
			report.IncludedCount++
			continue
		}

		reason := validator.Classify(*page)
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Slug:     page.Slug,
			PageType: page.PageType,
			Reason:   reason,
		})
		report.ByReason[reason]++
	}

	return report
}
