package priceprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/homepower/switchplanner/internal/apperr"
	"github.com/homepower/switchplanner/internal/cache"
	"github.com/homepower/switchplanner/internal/domain"
	"github.com/homepower/switchplanner/internal/metrics"
)

const (
	minimalRawPrice    int32 = 500
	transferCost       int32 = 9000
	dayAheadMarketBase       = "https://tge.pl/energia-elektryczna-rdn"
)

var (
	publishDateRe = regexp.MustCompile(`(\d{2}-\d{2}-\d{4})`)
	priceCellRe   = regexp.MustCompile(`(?s)<td[^>]*>[^<]*</td>\s*<td[^>]*>\s*([\d.,]+)\s*</td>`)
)

// DayAheadMarketProvider scrapes the next-day hourly price table published at
// 14:00 local for the following day. Results are cached (see cache.DayLRU)
// because the parse is not cheap and the published curve never changes
// intra-day.
type DayAheadMarketProvider struct {
	httpClient *http.Client
	lru        *cache.DayLRU
}

func NewDayAheadMarketProvider(httpClient *http.Client, backing cache.Cache, capacityDays int, ttl time.Duration) *DayAheadMarketProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &DayAheadMarketProvider{
		httpClient: httpClient,
		lru:        cache.NewDayLRU(backing, capacityDays, ttl),
	}
}

func (p *DayAheadMarketProvider) GetPriceList(ctx context.Context, forDay time.Time) ([]domain.PriceListItem, error) {
	day := CutOff(forDay)
	cacheKey := day.Format(time.RFC3339)

	if raw, ok := p.lru.Get(ctx, cacheKey); ok {
		var items []domain.PriceListItem
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			metrics.RecordPriceListCacheAccess(true)
			return items, nil
		}
	}
	metrics.RecordPriceListCacheAccess(false)

	items, err := p.fetchAndParse(ctx, day)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(items); err == nil {
		_ = p.lru.Set(ctx, cacheKey, string(encoded))
	}
	return items, nil
}

func (p *DayAheadMarketProvider) fetchAndParse(ctx context.Context, day time.Time) ([]domain.PriceListItem, error) {
	url := dayAheadMarketURL(day)
	body, err := p.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	publishDate, publishErr := parsePublishDate(body)
	if publishErr != nil || !publishDate.Equal(day) {
		today := CutOff(time.Now())
		suffix := ", price lists are published for last 2 months!"
		if day.After(today) {
			suffix = ", for tomorrow price list is published at 2pm!"
		}
		return nil, apperr.NewNotFound("Missing price list for date: %s%s", day.Local().Format("02-01-2006"), suffix)
	}

	prices, err := parsePriceTable(body)
	if err != nil {
		return nil, err
	}

	return convertToPriceListItems(day, prices), nil
}

func (p *DayAheadMarketProvider) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperr.NewSystem("failed to build day-ahead market request", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; switchplanner/1.0)")
	req.Header.Set("Accept-Language", "en-GB,en-US;q=0.9,en;q=0.8,pl;q=0.7")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", apperr.NewSystem("day-ahead market request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.NewSystem("failed to read day-ahead market response", err)
	}
	return string(body), nil
}

func dayAheadMarketURL(requestedDate time.Time) string {
	dayBefore := requestedDate.Local().AddDate(0, 0, -1)
	return fmt.Sprintf("%s?dateShow=%s&dateAction=prev", dayAheadMarketBase, dayBefore.Format("02-01-2006"))
}

func parsePublishDate(html string) (time.Time, error) {
	match := publishDateRe.FindString(html)
	if match == "" {
		return time.Time{}, apperr.NewSystem("price list date is missing on day ahead market page", nil)
	}
	return ParseDate(match)
}

func parsePriceTable(html string) ([]int32, error) {
	matches := priceCellRe.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return nil, apperr.NewSystem("price list table is missing on day ahead market page", nil)
	}

	prices := make([]int32, 0, len(matches))
	for _, m := range matches {
		normalized := strings.ReplaceAll(strings.TrimSpace(m[1]), ",", ".")
		f, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return nil, apperr.NewSystem("price list table has unparsable numbers", err)
		}
		prices = append(prices, int32(math.Round(f*100)))
	}
	return prices, nil
}

func convertToPriceListItems(requestedDate time.Time, prices []int32) []domain.PriceListItem {
	items := make([]domain.PriceListItem, len(prices))
	for i, raw := range prices {
		price := reevaluatePrice(raw)
		items[i] = domain.PriceListItem{
			StartsAt: requestedDate.Add(time.Duration(i) * time.Hour),
			Duration: time.Hour,
			Price:    price,
			Category: domain.CategorizePrice(price),
		}
	}
	return items
}

func reevaluatePrice(price int32) int32 {
	if price < 5 {
		price = minimalRawPrice
	}
	return price + transferCost
}
