package sitemap

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// xmlURLSet is the root element of a sitemap XML document.
type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Count   string   `xml:"count,attr"`
	URLs    []xmlURL `xml:"url"`
}

// xmlURL is a single <url> entry inside a <urlset>.
type xmlURL struct {
	Loc string `xml:"loc"`
}

// headerCountPattern extracts the URL count from the generation header
// comment ("Generata il: ... con N URL").
var headerCountPattern = regexp.MustCompile(`Generata il: .+? con (\d+) URL`)

// ParsedSitemap is a published sitemap document broken down into per-prefix
// slug sets, used by the discrepancy report to decide whether a tracked
// record made it into the published output.
type ParsedSitemap struct {
	// URLCount is the number of <url> entries actually present.
	URLCount int
	// HeaderCount is the count parsed from the header comment, or -1 when
	// the comment is missing or unparseable.
	HeaderCount int
	// StaticPaths are the entries with no content prefix (home, /search, ...).
	StaticPaths []string

	slugs map[string]map[string]struct{}
}

// Parse reads a published sitemap document. Entries are keyed by their path
// prefix relative to baseURL; entries pointing at a different origin are
// kept under their full path so they still surface in counts.
func Parse(body []byte, baseURL string) (*ParsedSitemap, error) {
	var urlset xmlURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	parsed := &ParsedSitemap{
		URLCount:    len(urlset.URLs),
		HeaderCount: parseHeaderCount(body),
		slugs:       make(map[string]map[string]struct{}),
	}

	for i := range urlset.URLs {
		parsed.addLoc(urlset.URLs[i].Loc, baseURL)
	}

	return parsed, nil
}

func parseHeaderCount(body []byte) int {
	m := headerCountPattern.FindSubmatch(body)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return -1
	}
	return n
}

func (p *ParsedSitemap) addLoc(loc, baseURL string) {
	path := strings.TrimPrefix(strings.TrimSpace(loc), baseURL)

	trimmed := strings.TrimPrefix(path, "/")
	prefix, slug, found := strings.Cut(trimmed, "/")
	if !found || slug == "" {
		p.StaticPaths = append(p.StaticPaths, path)
		return
	}

	p.add("/"+prefix, slug)
}

func (p *ParsedSitemap) add(prefix, slug string) {
	set, ok := p.slugs[prefix]
	if !ok {
		set = make(map[string]struct{})
		p.slugs[prefix] = set
	}
	set[slug] = struct{}{}
}

// Contains reports whether the published document carries the given slug
// under the given path prefix.
func (p *ParsedSitemap) Contains(prefix, slug string) bool {
	_, ok := p.slugs[prefix][slug]
	return ok
}

// SlugCount returns the number of distinct slugs under a path prefix.
func (p *ParsedSitemap) SlugCount(prefix string) int {
	return len(p.slugs[prefix])
}
