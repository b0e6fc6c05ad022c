// Package sitemap contains the reconciliation core: slug classification,
// partitioning of tracked pages, XML rendering of the sitemap document, and
// parsing of a published sitemap for the discrepancy report.
package sitemap

import (
	"regexp"
	"strings"

	"github.com/napieracademy/sitemap-manager/internal/models"
)

// ExclusionReason classifies why a tracked record is absent from the sitemap.
type ExclusionReason string

// Reasons are evaluated in the order listed below; the first match wins.
// Operators triage on these exact values, so both the names and the order
// are part of the contract.
const (
	ReasonEmptyOrNull    ExclusionReason = "empty_or_null"
	ReasonDuplicate      ExclusionReason = "duplicate_in_store"
	ReasonInvalidChars   ExclusionReason = "invalid_characters"
	ReasonXMLUnsafeChars ExclusionReason = "xml_unsafe_characters"
	ReasonTooLong        ExclusionReason = "too_long"
	ReasonLeadingDash    ExclusionReason = "leading_dash"
	ReasonUnknown        ExclusionReason = "unknown"
)

// maxSlugLength is the longest slug accepted by the frontend router.
const maxSlugLength = 200

// slugPattern accepts word characters and dashes only.
var slugPattern = regexp.MustCompile(`^[\w-]+$`)

// xmlUnsafeChars are the characters that would need escaping inside XML.
const xmlUnsafeChars = `<>&'"`

// SlugValidator classifies excluded records. Duplicate detection uses a
// frequency map precomputed over the full record set, so classification of
// each record is O(1).
type SlugValidator struct {
	freq map[slugKey]int
}

type slugKey struct {
	pageType string
	slug     string
}

// NewSlugValidator builds a validator over the complete in-memory record set.
func NewSlugValidator(pages []models.TrackedPage) *SlugValidator {
	freq := make(map[slugKey]int, len(pages))
	for i := range pages {
		freq[slugKey{pages[i].PageType, pages[i].Slug}]++
	}
	return &SlugValidator{freq: freq}
}

// Classify returns exactly one reason for a record that did not make it into
// the sitemap. Checks run in the documented order; ReasonUnknown means no
// data problem was found and signals a logic gap rather than a bad record.
func (v *SlugValidator) Classify(page models.TrackedPage) ExclusionReason {
	switch {
	case strings.TrimSpace(page.Slug) == "":
		return ReasonEmptyOrNull
	case v.freq[slugKey{page.PageType, page.Slug}] > 1:
		return ReasonDuplicate
	case !slugPattern.MatchString(page.Slug):
		return ReasonInvalidChars
	case strings.ContainsAny(page.Slug, xmlUnsafeChars):
		return ReasonXMLUnsafeChars
	case len(page.Slug) > maxSlugLength:
		return ReasonTooLong
	case strings.HasPrefix(page.Slug, "-"):
		return ReasonLeadingDash
	default:
		return ReasonUnknown
	}
}
