package coingecko_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pricequote/internal/currency"
	"pricequote/internal/provider"
	"pricequote/internal/provider/coingecko"
)

func newProvider(t *testing.T, httpClient coingecko.HTTPClient, cfg coingecko.Config) *coingecko.Provider {
	t.Helper()
	client, err := coingecko.NewClient("", coingecko.WithHTTPClient(httpClient))
	require.NoError(t, err)
	return coingecko.New(cfg, client, nil)
}

func TestProvider_FetchPrices(t *testing.T) {
	t.Parallel()

	// Arrange: XEC is priced in USD but not in EUR.
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "ecash", req.URL.Query().Get("ids"))
			require.Equal(t, "usd,eur", req.URL.Query().Get("vs_currencies"))
			return jsonResponse(http.StatusOK, `{"ecash":{"usd":0.00003,"last_updated_at":1717171717}}`), nil
		})

	p := newProvider(t, httpClient, coingecko.Config{})
	require.Equal(t, "coingecko", p.Name())

	// Act
	resp, err := p.FetchPrices(t.Context(), provider.PriceRequest{
		Sources: []currency.Currency{currency.XEC},
		Quotes:  []currency.Currency{currency.USD, currency.EUR},
	})

	// Assert: one point per requested pair.
	require.NoError(t, err)
	require.Len(t, resp.Prices, 2)

	usd := resp.Prices[0]
	require.Equal(t, currency.NewPair("XEC", "USD"), usd.Pair())
	require.True(t, usd.Valid())
	require.Equal(t, 0.00003, *usd.Price)
	require.Equal(t, time.Unix(1717171717, 0).UTC(), usd.LastUpdated)
	require.Equal(t, "coingecko", usd.Provider)

	eur := resp.Prices[1]
	require.Equal(t, currency.NewPair("XEC", "EUR"), eur.Pair())
	require.False(t, eur.Valid())
	require.NotEmpty(t, eur.Error)
}

func TestProvider_FetchPricesUnknownAsset(t *testing.T) {
	t.Parallel()

	// Assert: no request is made when no source maps to a coin id.
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	p := newProvider(t, httpClient, coingecko.Config{})
	_, err := p.FetchPrices(t.Context(), provider.PriceRequest{
		Sources: []currency.Currency{currency.New("DOGE")},
		Quotes:  []currency.Currency{currency.USD},
	})

	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "coingecko", perr.Provider)
}

func TestProvider_FetchPricesCustomIDs(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "dogecoin", req.URL.Query().Get("ids"))
			return jsonResponse(http.StatusOK, `{"dogecoin":{"usd":0.12}}`), nil
		})

	p := newProvider(t, httpClient, coingecko.Config{Name: "cg", IDs: map[string]string{"doge": "dogecoin"}})

	resp, err := p.FetchPrices(t.Context(), provider.PriceRequest{
		Sources: []currency.Currency{currency.New("DOGE")},
		Quotes:  []currency.Currency{currency.USD},
	})
	require.NoError(t, err)
	require.Len(t, resp.Prices, 1)
	require.Equal(t, 0.12, *resp.Prices[0].Price)
	require.Equal(t, "cg", resp.Prices[0].Provider)
}

func TestProvider_FetchPricesHTTPError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(nil, errors.New("dial tcp: timeout"))

	p := newProvider(t, httpClient, coingecko.Config{})
	_, err := p.FetchPrices(t.Context(), provider.PriceRequest{
		Sources: []currency.Currency{currency.BTC},
		Quotes:  []currency.Currency{currency.USD},
	})
	require.ErrorContains(t, err, "provider=coingecko op=fetch_prices")
}

func TestProvider_GetStatistics(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			require.Equal(t, "bitcoin", q.Get("ids"))
			require.Equal(t, "true", q.Get("include_market_cap"))
			require.Equal(t, "true", q.Get("include_24hr_vol"))
			require.Equal(t, "true", q.Get("include_24hr_change"))
			return jsonResponse(http.StatusOK, `{"bitcoin":{
				"usd": 50000,
				"usd_market_cap": 1000000000000,
				"usd_24h_vol": 30000000000,
				"usd_24h_change": 25
			}}`), nil
		})

	p := newProvider(t, httpClient, coingecko.Config{})

	// Act
	stats, err := p.GetStatistics(t.Context(), currency.NewPair("BTC", "USD"), provider.Period24h)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, stats)
	require.Equal(t, currency.BTC, stats.Source)
	require.Equal(t, currency.USD, stats.Quote)
	require.Equal(t, 50000.0, stats.CurrentPrice)
	require.Equal(t, 1e12, stats.MarketCap)
	require.Equal(t, 3e10, stats.Volume)
	require.InDelta(t, 0.25, stats.PriceChangePercent, 1e-12)
	require.InDelta(t, 10000.0, stats.PriceChangeValue, 1e-6)
}

func TestProvider_GetStatisticsOtherPeriod(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	p := newProvider(t, NewMockHTTPClient(ctrl), coingecko.Config{})

	stats, err := p.GetStatistics(t.Context(), currency.NewPair("BTC", "USD"), provider.Period7d)
	require.NoError(t, err)
	require.Nil(t, stats)
}
