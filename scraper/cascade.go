package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rankwatch/models"
)

// FieldStrategy pulls one field out of a listing container. ok is false when
// the strategy found nothing usable and the next one should be tried.
type FieldStrategy func(box *goquery.Selection) (value string, ok bool)

// SelectorText reads the trimmed text of the first element matching sel.
func SelectorText(sel string) FieldStrategy {
	return func(box *goquery.Selection) (string, bool) {
		text := strings.TrimSpace(box.Find(sel).First().Text())
		return text, text != ""
	}
}

// FirstLinkHref reads the href of the first anchor in the container.
func FirstLinkHref(box *goquery.Selection) (string, bool) {
	href, _ := box.Find("a").First().Attr("href")
	href = strings.TrimSpace(href)
	return href, href != ""
}

// Cascade is an ordered set of fallbacks. The first strategy that yields a
// value wins; order encodes preference from most to least specific.
type Cascade struct {
	Containers []string
	Name       []FieldStrategy
	Price      []FieldStrategy
	Link       FieldStrategy
}

var DefaultCascade = Cascade{
	Containers: []string{
		".item-box",
		"div.item-box",
		`[class*="item-box"]`,
		`[class*="item"]`,
		"article",
		".product",
		`[class*="product"]`,
	},
	Name: selectorStrategies(
		".item-name",
		`[class*="item-name"]`,
		`[class*="name"]`,
		"h2", "h3", "h4",
		".title",
		`[class*="title"]`,
	),
	Price: selectorStrategies(
		".item-price",
		`[class*="item-price"]`,
		`[class*="price"]`,
		".price",
	),
	Link: FirstLinkHref,
}

func selectorStrategies(selectors ...string) []FieldStrategy {
	out := make([]FieldStrategy, len(selectors))
	for i, sel := range selectors {
		out[i] = SelectorText(sel)
	}
	return out
}

func firstMatch(strategies []FieldStrategy, box *goquery.Selection) string {
	for _, s := range strategies {
		if v, ok := s(box); ok {
			return v
		}
	}
	return ""
}

// FindContainers returns the first container selector that matches anything.
func (c Cascade) FindContainers(doc *goquery.Document) (string, *goquery.Selection, error) {
	for _, sel := range c.Containers {
		boxes := doc.Find(sel)
		if boxes.Length() > 0 {
			return sel, boxes, nil
		}
	}
	return "", nil, ErrNoContainers
}

// Extract walks containers in document order and keeps those with a name, a
// price and a link, stopping at limit. Relative links resolve against base.
func (c Cascade) Extract(doc *goquery.Document, base *url.URL, limit int) (string, []models.Listing, error) {
	selector, boxes, err := c.FindContainers(doc)
	if err != nil {
		return "", nil, err
	}

	var listings []models.Listing
	boxes.EachWithBreak(func(_ int, box *goquery.Selection) bool {
		name := firstMatch(c.Name, box)
		price := firstMatch(c.Price, box)

		href, ok := c.Link(box)
		if name == "" || price == "" || !ok {
			return true
		}

		link, err := resolveLink(base, href)
		if err != nil {
			return true
		}

		listings = append(listings, models.Listing{Name: name, Price: price, URL: link})
		return limit <= 0 || len(listings) < limit
	})

	return selector, listings, nil
}

func resolveLink(base *url.URL, href string) (string, error) {
	if strings.HasPrefix(href, "http") || base == nil {
		return href, nil
	}
	u, err := base.Parse(href)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// ParseListings runs the default cascade over a serialized page.
func ParseListings(html, pageURL string, limit int) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	_, listings, err := DefaultCascade.Extract(doc, base, limit)
	return listings, err
}
