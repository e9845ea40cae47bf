// Package resources embeds the storefront's HTML templates.
package resources

import (
	"embed"
	"html/template"
	"net/url"
	"strconv"
	"strings"
)

//go:embed views/*.html
var viewsFS embed.FS

// Views is the parsed template set: "index" and "payment", both built on
// the layout partials.
var Views = template.Must(template.New("views").Funcs(Funcs).ParseFS(viewsFS, "views/*.html"))

// Funcs are available in every view.
var Funcs = template.FuncMap{
	"rupees":  func(n int) string { return "₹" + strconv.Itoa(n) },
	"tags":    func(tags []string) string { return strings.Join(tags, " • ") },
	"listing": listingURL,
}

// listingURL links to the product listing with the given filters,
// leaving defaults out of the query.
func listingURL(tag, q, sort string) string {
	v := url.Values{}
	if tag != "" && tag != "All" {
		v.Set("tag", tag)
	}
	if q != "" {
		v.Set("q", q)
	}
	if sort != "" && sort != "popular" {
		v.Set("sort", sort)
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}
