package drom

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"autoreviews-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// PageExtractor turns raw markup into typed stubs, one method per page
// kind. Implementations are pure functions of the markup, no network
// access.
type PageExtractor interface {
	ExtractBrandList(markup []byte) ([]BrandStub, error)
	ExtractModelList(markup []byte) ([]ModelStub, error)
	ExtractReviewRefs(markup []byte) ([]ReviewRef, error)
	ExtractReviewDetail(markup []byte) (ReviewDetail, error)
}

// Extractor implements PageExtractor for the drom.ru markup structure.
type Extractor struct {
	base *url.URL
}

func NewExtractor() Extractor {
	base, _ := url.Parse(DefaultBaseURL)
	return Extractor{base: base}
}

var (
	brandHrefRegex  = regexp.MustCompile(`/reviews/([a-z0-9_-]+)/$`)
	modelHrefRegex  = regexp.MustCompile(`/reviews/([a-z0-9_-]+)/([a-z0-9_-]+)/$`)
	reviewHrefRegex = regexp.MustCompile(`/reviews/[a-z0-9_-]+/[a-z0-9_-]+/(\d+)/?$`)
	digitsRegex     = regexp.MustCompile(`\d+`)
	floatRegex      = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// sections of the site that match the slug patterns but are not catalog
// entries
var nonCatalogSlugs = map[string]bool{
	"reviews": true,
	"catalog": true,
	"all":     true,
	"new":     true,
	"used":    true,
	"search":  true,
	"page":    true,
}

func (e Extractor) document(markup []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewBuffer(markup))
}

func (e Extractor) absolute(href string) string {
	link, err := e.base.Parse(href)
	if err != nil {
		return href
	}
	return link.String()
}

func (e Extractor) ExtractBrandList(markup []byte) ([]BrandStub, error) {
	doc, err := e.document(markup)
	if err != nil {
		return nil, fmt.Errorf("parse brand list markup: %w", err)
	}

	sel := doc.Find(`a[data-ftid="component_cars-list-item_hidden-link"]`)
	if sel.Length() == 0 {
		sel = doc.Find("a[href]")
	}

	seen := map[string]bool{}
	var brands []BrandStub
	sel.Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		groups := brandHrefRegex.FindStringSubmatch(href)
		if len(groups) < 2 {
			return
		}
		slug := groups[1]
		if nonCatalogSlugs[slug] || seen[slug] {
			return
		}
		name := htmlutil.NormalizeText(a.Text())
		if name == "" {
			return
		}

		stub := BrandStub{
			Slug: slug,
			Name: name,
			URL:  e.absolute(href),
		}
		// listing entries often carry the review count next to the
		// brand name, e.g. "Toyota (48213)"
		if counts := digitsRegex.FindAllString(a.Parent().Text(), -1); len(counts) > 0 {
			n, err := strconv.ParseInt(counts[len(counts)-1], 10, 64)
			if err == nil {
				stub.ReviewCount = n
				stub.Name = strings.TrimSpace(strings.TrimSuffix(name, "("+counts[len(counts)-1]+")"))
			}
		}

		seen[slug] = true
		brands = append(brands, stub)
	})

	return brands, nil
}

func (e Extractor) ExtractModelList(markup []byte) ([]ModelStub, error) {
	doc, err := e.document(markup)
	if err != nil {
		return nil, fmt.Errorf("parse model list markup: %w", err)
	}

	seen := map[string]bool{}
	var models []ModelStub
	for _, anchor := range htmlutil.GetAnchors(doc.Find("a[href]")) {
		groups := modelHrefRegex.FindStringSubmatch(anchor.Href)
		if len(groups) < 3 {
			continue
		}
		slug := groups[2]
		if nonCatalogSlugs[groups[1]] || nonCatalogSlugs[slug] || seen[slug] {
			continue
		}
		if anchor.Name == "" {
			continue
		}

		seen[slug] = true
		models = append(models, ModelStub{
			Slug: slug,
			Name: anchor.Name,
			URL:  e.absolute(anchor.Href),
		})
	}

	return models, nil
}

func (e Extractor) ExtractReviewRefs(markup []byte) ([]ReviewRef, error) {
	doc, err := e.document(markup)
	if err != nil {
		return nil, fmt.Errorf("parse review listing markup: %w", err)
	}

	cards := doc.Find(`[data-ftid="component_reviews-item"]`)
	if cards.Length() == 0 {
		cards = doc.Find(`[data-ftid="review-item"]`)
	}

	seen := map[string]bool{}
	var refs []ReviewRef
	collect := func(href, title string) {
		groups := reviewHrefRegex.FindStringSubmatch(href)
		if len(groups) < 2 || seen[groups[1]] {
			return
		}
		seen[groups[1]] = true
		refs = append(refs, ReviewRef{
			ExternalID: groups[1],
			URL:        e.absolute(href),
			Title:      title,
		})
	}

	if cards.Length() > 0 {
		cards.Each(func(_ int, card *goquery.Selection) {
			link := card.Find("h3 a")
			if link.Length() == 0 {
				link = card.Find(`a[data-ftid="component_reviews-item-title"]`)
			}
			if link.Length() == 0 {
				return
			}
			collect(link.First().AttrOr("href", ""), htmlutil.NormalizeText(link.First().Text()))
		})
		return refs, nil
	}

	// degraded markup: fall back to any anchor that looks like a review
	for _, anchor := range htmlutil.GetAnchors(doc.Find("a[href]")) {
		collect(anchor.Href, anchor.Name)
	}
	return refs, nil
}

func (e Extractor) ExtractReviewDetail(markup []byte) (ReviewDetail, error) {
	doc, err := e.document(markup)
	if err != nil {
		return ReviewDetail{}, fmt.Errorf("parse review detail markup: %w", err)
	}

	detail := ReviewDetail{}

	canonical := doc.Find(`link[rel="canonical"]`).AttrOr("href", "")
	if canonical == "" {
		canonical = doc.Find(`meta[property="og:url"]`).AttrOr("content", "")
	}
	if canonical != "" {
		detail.URL = e.absolute(canonical)
		if groups := reviewHrefRegex.FindStringSubmatch(canonical); len(groups) > 1 {
			detail.ExternalID = groups[1]
		}
	}

	detail.Title = htmlutil.NormalizeText(doc.Find("h1").First().Text())

	body := doc.Find(`[data-ftid="review-text"]`)
	if body.Length() == 0 {
		body = doc.Find(".b-media-cont")
	}
	var paragraphs []string
	body.Each(func(_ int, s *goquery.Selection) {
		text := htmlutil.NormalizeText(s.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	detail.Body = strings.Join(paragraphs, "\n")

	detail.Pros = htmlutil.NormalizeText(doc.Find(`[data-ftid="review-item-positive"]`).Text())
	detail.Cons = htmlutil.NormalizeText(doc.Find(`[data-ftid="review-item-negative"]`).Text())
	detail.Breakages = htmlutil.NormalizeText(doc.Find(`[data-ftid="review-item-breakages"]`).Text())

	detail.AuthorName = htmlutil.NormalizeText(doc.Find(`[data-ftid="review-item-author-name"]`).First().Text())
	if detail.AuthorName == "" {
		detail.AuthorName = htmlutil.NormalizeText(doc.Find(`[data-ftid="component_username"]`).First().Text())
	}
	detail.AuthorCity = htmlutil.NormalizeText(doc.Find(`[data-ftid="review-item-author-city"]`).First().Text())

	if rating := doc.Find(`[data-ftid="component_rating"]`).First(); rating.Length() > 0 {
		detail.OverallRating = parseFloat(rating.Text())
	}

	detail.ViewCount = parseInt(doc.Find(`[data-ftid="component_review-views"]`).First().Text())
	detail.LikeCount = parseInt(doc.Find(`[data-ftid="component_like-count"]`).First().Text())
	detail.DislikeCount = parseInt(doc.Find(`[data-ftid="component_dislike-count"]`).First().Text())

	if date := doc.Find(`[data-ftid="component_date"]`).First(); date.Length() > 0 {
		detail.PublishedAt = parseDate(date.AttrOr("datetime", date.Text()))
	}

	e.extractLabeledRows(doc, &detail)
	e.extractCharacteristics(doc, &detail)
	e.extractComments(doc, &detail)

	if detail.Title == "" && detail.Body == "" {
		return detail, fmt.Errorf("review detail page had no usable data")
	}
	return detail, nil
}

// extractLabeledRows walks every two-cell row on the page and picks up the
// labeled values the site renders as tables: detail ratings, owner rating
// and fuel consumption.
func (e Extractor) extractLabeledRows(doc *goquery.Document, detail *ReviewDetail) {
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th,td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(htmlutil.NormalizeText(cells.First().Text()))
		value := htmlutil.NormalizeText(cells.Last().Text())

		switch {
		case strings.Contains(label, "внешний вид"):
			detail.RatingExterior = parseInt(value)
		case strings.Contains(label, "салон") && !strings.Contains(label, "цвет"):
			detail.RatingInterior = parseInt(value)
		case strings.Contains(label, "двигатель") && !strings.Contains(label, "объем"):
			detail.RatingEngine = parseInt(value)
		case strings.Contains(label, "ходовые") || strings.Contains(label, "управлен"):
			detail.RatingHandling = parseInt(value)
		case strings.Contains(label, "оценка владельца") || strings.Contains(label, "оценка автора"):
			detail.OwnerRating = parseFloat(value)
		case strings.Contains(label, "расход") && strings.Contains(label, "город"):
			detail.FuelCityL100KM = parseFloat(value)
		case strings.Contains(label, "расход") && strings.Contains(label, "трасс"):
			detail.FuelHighwayL100KM = parseFloat(value)
		case strings.Contains(label, "расход") && strings.Contains(label, "смешан"):
			detail.FuelMixedL100KM = parseFloat(value)
		}
	})
}

func (e Extractor) extractCharacteristics(doc *goquery.Document, detail *ReviewDetail) {
	appendCharacteristic := func(name, value string) {
		if name == "" || value == "" {
			return
		}
		detail.Characteristics = append(detail.Characteristics, Characteristic{
			Name:  name,
			Value: value,
		})

		label := strings.ToLower(name)
		switch {
		case strings.Contains(label, "кузов") && !strings.Contains(label, "цвет"):
			detail.Model.BodyType = value
		case strings.Contains(label, "трансмиссия") || strings.Contains(label, "кпп"):
			detail.Model.Transmission = value
		case strings.Contains(label, "привод"):
			detail.Model.DriveType = value
		case strings.Contains(label, "топлив"):
			detail.Model.FuelType = value
		case strings.Contains(label, "объем двигателя"):
			detail.Model.EngineVolumeCC = engineVolumeCC(value)
		case strings.Contains(label, "мощность"):
			detail.Model.EnginePowerHP = parseInt(value)
		case strings.Contains(label, "год выпуска") || strings.Contains(label, "год приобретения"):
			detail.AcquisitionYear = parseInt(value)
		case strings.Contains(label, "пробег"):
			detail.MileageKM = parseInt(value)
		case strings.Contains(label, "цвет кузова"):
			detail.ExteriorColor = value
		case strings.Contains(label, "цвет салона"):
			detail.InteriorColor = value
		}
	}

	doc.Find(`[data-ftid="review-item-car-info"] tr`).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th,td")
		if cells.Length() < 2 {
			return
		}
		appendCharacteristic(
			htmlutil.NormalizeText(cells.First().Text()),
			htmlutil.NormalizeText(cells.Last().Text()),
		)
	})
	doc.Find(`[data-ftid="review-item-car-info"] dt`).Each(func(_ int, dt *goquery.Selection) {
		appendCharacteristic(
			htmlutil.NormalizeText(dt.Text()),
			htmlutil.NormalizeText(dt.Next().Text()),
		)
	})
}

func (e Extractor) extractComments(doc *goquery.Document, detail *ReviewDetail) {
	doc.Find(`[data-ftid="component_comment"]`).Each(func(_ int, c *goquery.Selection) {
		comment := CommentStub{
			AuthorName:   htmlutil.NormalizeText(c.Find(`[data-ftid="component_username"]`).First().Text()),
			Body:         htmlutil.NormalizeText(c.Find(`[data-ftid="component_comment-text"]`).First().Text()),
			LikeCount:    parseInt(c.Find(`[data-ftid="component_like-count"]`).First().Text()),
			DislikeCount: parseInt(c.Find(`[data-ftid="component_dislike-count"]`).First().Text()),
		}
		if date := c.Find(`[data-ftid="component_date"]`).First(); date.Length() > 0 {
			comment.PublishedAt = parseDate(date.AttrOr("datetime", date.Text()))
		}
		if comment.Body == "" {
			return
		}
		detail.Comments = append(detail.Comments, comment)
	})
}

func parseInt(s string) int64 {
	match := digitsRegex.FindAllString(s, -1)
	if len(match) == 0 {
		return 0
	}
	// values like "150 000 км" are split by thousand separators
	n, err := strconv.ParseInt(strings.Join(match, ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	match := floatRegex.FindString(s)
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}

// engineVolumeCC converts "1.6 л" style displacements to cubic
// centimeters; values above 100 are taken as cc already.
func engineVolumeCC(s string) int64 {
	f := parseFloat(s)
	if f == 0 {
		return 0
	}
	if f < 100 {
		return int64(f * 1000)
	}
	return int64(f)
}

var russianMonths = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

var textualDateRegex = regexp.MustCompile(`(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02", "02.01.2006"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t
		}
	}
	groups := textualDateRegex.FindStringSubmatch(s)
	if len(groups) == 4 {
		month, ok := russianMonths[strings.ToLower(groups[2])]
		if ok {
			day, _ := strconv.Atoi(groups[1])
			year, _ := strconv.Atoi(groups[3])
			return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}
