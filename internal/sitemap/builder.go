package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/napieracademy/sitemap-manager/internal/models"
)

// sitemapNamespace is the standard sitemap protocol namespace.
const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// headerCommentFormat is the generation header embedded as an XML comment.
// Dashboards parse the URL count out of it with a regex, so the wording must
// never change.
const headerCommentFormat = "Generata il: %s con %d URL"

// Build renders the canonical sitemap document. Output is byte-for-byte
// deterministic for identical inputs except for generatedAt: static routes
// first, then films, then series, then person subtypes in first-appearance
// order. The URL count appears both in the header comment and as a count
// attribute on the root element, and always equals the number of <url>
// entries.
func Build(baseURL string, static []models.StaticRoute, part *Partition, generatedAt time.Time) []byte {
	total := len(static) + part.URLCount()

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, "<!-- "+headerCommentFormat+" -->\n",
		generatedAt.UTC().Format(time.RFC3339), total)
	fmt.Fprintf(&buf, `<urlset xmlns="%s" count="%d">`+"\n", sitemapNamespace, total)

	for _, route := range static {
		writeEntry(&buf, baseURL+route.Path, route.ChangeFreq, route.Priority)
	}

	writeBucket(&buf, baseURL, &part.Film)
	writeBucket(&buf, baseURL, &part.Serie)
	for i := range part.Person {
		writeBucket(&buf, baseURL, &part.Person[i])
	}

	buf.WriteString("</urlset>\n")
	return buf.Bytes()
}

func writeBucket(buf *bytes.Buffer, baseURL string, bucket *Bucket) {
	prefix := models.PathPrefix(bucket.PageType)
	changefreq := models.ChangeFreqFor(bucket.PageType)
	priority := models.PriorityFor(bucket.PageType)

	for _, slug := range bucket.ValidSlugs {
		writeEntry(buf, baseURL+prefix+"/"+slug, changefreq, priority)
	}
}

func writeEntry(buf *bytes.Buffer, loc, changefreq, priority string) {
	buf.WriteString("  <url><loc>")
	// Inclusion is permissive, so a slug can still carry XML-significant
	// characters; escape the loc value.
	_ = xml.EscapeText(buf, []byte(loc))
	buf.WriteString("</loc><changefreq>")
	buf.WriteString(changefreq)
	buf.WriteString("</changefreq><priority>")
	buf.WriteString(priority)
	buf.WriteString("</priority></url>\n")
}
