package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultWeatherBaseURL = "http://api.openweathermap.org"

// WeatherClient опрашивает OpenWeather за текущей температурой города.
type WeatherClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewWeatherClient(baseURL, apiKey string, timeout time.Duration) *WeatherClient {
	if baseURL == "" {
		baseURL = defaultWeatherBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WeatherClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// CurrentTemp возвращает температуру в градусах Цельсия. Любой отказ
// приходит как *LookupError; вызывающий волен трактовать его как
// "корректировки по погоде нет".
func (c *WeatherClient) CurrentTemp(ctx context.Context, city string) (float64, error) {
	const op = "weather lookup"

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	reqURL := fmt.Sprintf("%s/data/2.5/weather?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, &LookupError{Op: op, Kind: KindTransport, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, &LookupError{Op: op, Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, &LookupError{Op: op, Kind: KindNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &LookupError{Op: op, Kind: KindStatus, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload struct {
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, &LookupError{Op: op, Kind: KindMalformed, Err: err}
	}
	if payload.Main.Temp == nil {
		return 0, &LookupError{Op: op, Kind: KindMalformed, Err: errors.New("missing main.temp")}
	}

	return *payload.Main.Temp, nil
}
