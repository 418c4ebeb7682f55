// Package pricer supplies a best-effort ETH/USD quote for display purposes.
package pricer

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

const ethUsdSymbol = "ETHUSDT"

// BinancePricer reads the spot ticker from the public Binance API. Market
// data endpoints need no credentials.
type BinancePricer struct {
	client *binance.Client
}

// NewBinancePricer creates a pricer against the public Binance API.
func NewBinancePricer() *BinancePricer {
	return &BinancePricer{client: binance.NewClient("", "")}
}

// USDPrice returns the current ETH price in USD.
func (p *BinancePricer) USDPrice(ctx context.Context) (decimal.Decimal, error) {
	prices, err := p.client.NewListPricesService().Symbol(ethUsdSymbol).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, fmt.Errorf("binance API returned empty prices for %s", ethUsdSymbol)
	}
	return decimal.NewFromString(prices[0].Price)
}
