package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultFoodBaseURL = "https://world.openfoodfacts.org"

// FoodInfo — первый найденный продукт: имя и калорийность на 100 грамм.
type FoodInfo struct {
	Name        string  `json:"name"`
	KcalPer100g float64 `json:"kcal_per_100g"`
}

// FoodClient ищет продукты в Open Food Facts. Побеждает первый кандидат
// из выдачи провайдера.
type FoodClient struct {
	baseURL string
	client  *http.Client

	cache    *redis.Client
	cacheTTL time.Duration
}

func NewFoodClient(baseURL string, timeout time.Duration) *FoodClient {
	if baseURL == "" {
		baseURL = defaultFoodBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FoodClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// UseRedisCache включает кеширование ответов провайдера: один и тот же
// продукт не гоняется по сети на каждый запрос.
func (c *FoodClient) UseRedisCache(rdb *redis.Client, ttl time.Duration) {
	c.cache = rdb
	c.cacheTTL = ttl
}

// Search возвращает первый найденный продукт по запросу.
func (c *FoodClient) Search(ctx context.Context, query string) (FoodInfo, error) {
	const op = "food lookup"

	cacheKey := "food:" + strings.ToLower(strings.TrimSpace(query))
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var info FoodInfo
			if json.Unmarshal(raw, &info) == nil {
				return info, nil
			}
		}
	}

	q := url.Values{}
	q.Set("action", "process")
	q.Set("search_terms", query)
	q.Set("json", "true")
	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return FoodInfo{}, &LookupError{Op: op, Kind: KindTransport, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return FoodInfo{}, &LookupError{Op: op, Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FoodInfo{}, &LookupError{Op: op, Kind: KindStatus, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload struct {
		Products []struct {
			ProductName string `json:"product_name"`
			Nutriments  struct {
				EnergyKcal100g float64 `json:"energy-kcal_100g"`
			} `json:"nutriments"`
		} `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return FoodInfo{}, &LookupError{Op: op, Kind: KindMalformed, Err: err}
	}
	if len(payload.Products) == 0 {
		return FoodInfo{}, &LookupError{Op: op, Kind: KindNotFound}
	}

	first := payload.Products[0]
	name := first.ProductName
	if name == "" {
		name = query
	}
	info := FoodInfo{Name: name, KcalPer100g: first.Nutriments.EnergyKcal100g}

	// Кеш необязателен: ошибка записи не отменяет удачный поиск.
	if c.cache != nil && c.cacheTTL > 0 {
		if raw, err := json.Marshal(info); err == nil {
			_ = c.cache.Set(ctx, cacheKey, raw, c.cacheTTL).Err()
		}
	}

	return info, nil
}
