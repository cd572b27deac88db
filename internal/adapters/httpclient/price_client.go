package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"virdispay/internal/domain"
)

// coinIDs maps gateway asset symbols to the pricing provider's coin ids.
var coinIDs = map[domain.CryptoCurrency]string{
	domain.BTC:  "bitcoin",
	domain.ETH:  "ethereum",
	domain.USDC: "usd-coin",
	domain.USDT: "tether",
	domain.DAI:  "dai",
}

// PriceClient talks to a CoinGecko-compatible simple-price endpoint. One call
// covers every requested asset against every requested fiat currency.
type PriceClient struct {
	http    *http.Client
	baseURL string
}

func NewPriceClient(httpClient *http.Client, baseURL string) *PriceClient {
	return &PriceClient{http: httpClient, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (c *PriceClient) GetSpotPrices(ctx context.Context, assets []domain.CryptoCurrency, fiats []domain.FiatCurrency) (domain.RateTable, error) {
	u, err := url.Parse(c.baseURL + "/simple/price")
	if err != nil {
		return nil, fmt.Errorf("failed to parse price api URL: %w", err)
	}

	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		id, ok := coinIDs[a]
		if !ok {
			return nil, fmt.Errorf("no coin id mapping for asset %q", a)
		}
		ids = append(ids, id)
	}
	vs := make([]string, 0, len(fiats))
	for _, f := range fiats {
		vs = append(vs, strings.ToLower(string(f)))
	}

	q := u.Query()
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", strings.Join(vs, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create price request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute price request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from price api: %s", resp.StatusCode, resp.Status)
	}

	var body map[string]map[string]float64
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	table := make(domain.RateTable, len(assets))
	for _, a := range assets {
		prices, ok := body[coinIDs[a]]
		if !ok {
			continue // provider may omit assets it cannot price
		}
		row := make(map[domain.FiatCurrency]float64, len(fiats))
		for _, f := range fiats {
			if v, ok := prices[strings.ToLower(string(f))]; ok {
				row[f] = v
			}
		}
		table[a] = row
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("price api returned no usable rates")
	}
	return table, nil
}
