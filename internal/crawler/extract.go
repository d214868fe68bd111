package crawler

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors and markup constants of the club directory.
const (
	ListingRowSelector = "li"
	PrimaryImageSel    = "picture img.img-fluid"
	SecondaryImageSel  = ".card-body address img"
	LogoAltPrefix      = "Clublogo voetbalvereniging "
)

// Detail holds the enrichment fields found on a club page.
type Detail struct {
	PrimaryImageURL   string
	SecondaryImageURL string
}

// ExtractListing returns one stub per listing row that has an image and at
// least two anchors. Rows whose detail link cannot be resolved are skipped
// as well; a logo without a resolvable src only leaves LogoURL empty.
func ExtractListing(doc *goquery.Document, base *url.URL) []Stub {
	var stubs []Stub
	doc.Find(ListingRowSelector).Each(func(_ int, row *goquery.Selection) {
		if stub, ok := stubFromRow(row, base); ok {
			stubs = append(stubs, stub)
		}
	})
	return stubs
}

func stubFromRow(row *goquery.Selection, base *url.URL) (Stub, bool) {
	img := row.Find("img").First()
	anchors := row.Find("a")
	if img.Length() == 0 || anchors.Length() < 2 {
		return Stub{}, false
	}
	link := anchors.Eq(1)

	// a logo without a usable src (lazy-loaded data-src) leaves LogoURL absent
	src, _ := img.Attr("src")
	logoURL, err := ResolveURL(base, src)
	if err != nil {
		logoURL = ""
	}
	href, _ := link.Attr("href")
	detailURL, err := ResolveURL(base, href)
	if err != nil {
		return Stub{}, false
	}

	alt, _ := img.Attr("alt")
	return Stub{
		LogoURL:   logoURL,
		LogoLabel: strings.TrimSpace(strings.Replace(alt, LogoAltPrefix, "", 1)),
		Name:      strings.TrimSpace(link.Text()),
		DetailURL: detailURL,
	}, true
}

// ExtractDetail looks up the primary and secondary images of a club page.
// Each lookup fails independently with an error wrapping ErrExtractionMiss;
// the returned Detail still carries whichever field was found.
func ExtractDetail(doc *goquery.Document, pageURL *url.URL) (Detail, error) {
	var (
		detail Detail
		errs   []error
	)
	primary, err := imageSource(doc, pageURL, "primaryImageUrl", PrimaryImageSel)
	if err != nil {
		errs = append(errs, err)
	}
	detail.PrimaryImageURL = primary

	secondary, err := imageSource(doc, pageURL, "secondaryImageUrl", SecondaryImageSel)
	if err != nil {
		errs = append(errs, err)
	}
	detail.SecondaryImageURL = secondary

	return detail, errors.Join(errs...)
}

func imageSource(doc *goquery.Document, pageURL *url.URL, field, selector string) (string, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", missError(field, selector, "no match")
	}
	src, ok := sel.Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return "", missError(field, selector, "missing src")
	}
	resolved, err := ResolveURL(pageURL, src)
	if err != nil {
		return "", missError(field, selector, err.Error())
	}
	return resolved, nil
}
