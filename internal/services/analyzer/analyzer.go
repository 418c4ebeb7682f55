// Package analyzer orchestrates one wallet analysis: history fetch, local
// statistics and badges, narrative generation, and result caching.
package analyzer

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/walletstory/walletstory/internal/badges"
	"github.com/walletstory/walletstory/internal/clients"
	"github.com/walletstory/walletstory/internal/domain"
	"github.com/walletstory/walletstory/internal/resultcache"
	"github.com/walletstory/walletstory/internal/services/promptbuilder"
)

const (
	secondsPerDay      = 24 * 60 * 60
	activeWithinDays   = 30
	moderateWithinDays = 180
)

var (
	// ErrInvalidAddress means the input is not a hex Ethereum address.
	ErrInvalidAddress = errors.New("invalid ethereum address")
	// ErrNoHistory means the wallet has no transactions to analyze.
	ErrNoHistory = errors.New("wallet has no transaction history")

	weiPerEth = decimal.NewFromInt(params.Ether)
)

// HistorySource supplies a wallet's on-chain history. Transactions must come
// back ascending by timestamp.
type HistorySource interface {
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
	Transactions(ctx context.Context, address string) ([]domain.NativeTransfer, error)
	TokenTransfers(ctx context.Context, address string) ([]domain.TokenTransfer, error)
	NFTTransfers(ctx context.Context, address string) ([]domain.NFTTransfer, error)
}

// QuotePricer supplies a best-effort ETH/USD quote.
type QuotePricer interface {
	USDPrice(ctx context.Context) (decimal.Decimal, error)
}

// Analyzer builds AnalysisResults. The pricer is optional; without it stats
// simply omit the USD balance.
type Analyzer struct {
	history   HistorySource
	narrative clients.NarrativeClient
	pricer    QuotePricer
	cache     *resultcache.Cache
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithPricer attaches an ETH/USD quote source.
func WithPricer(p QuotePricer) Option {
	return func(a *Analyzer) {
		a.pricer = p
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// New creates an Analyzer.
func New(history HistorySource, narrative clients.NarrativeClient, cache *resultcache.Cache, logger *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		history:   history,
		narrative: narrative,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces the full story for one wallet address, serving from the
// result cache when a fresh entry exists.
func (a *Analyzer) Analyze(ctx context.Context, address string) (domain.AnalysisResult, error) {
	if !common.IsHexAddress(address) {
		return domain.AnalysisResult{}, ErrInvalidAddress
	}
	normalized := strings.ToLower(common.HexToAddress(address).Hex())

	if raw, ok := a.cache.Get(normalized); ok {
		var cached domain.AnalysisResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			a.logger.Debug("serving analysis from cache", zap.String("address", normalized))
			return cached, nil
		}
		a.logger.Warn("dropping undecodable cache entry", zap.String("address", normalized))
	}

	balanceWei, err := a.history.Balance(ctx, normalized)
	if err != nil {
		return domain.AnalysisResult{}, errors.Wrap(err, "fetch balance")
	}
	txs, err := a.history.Transactions(ctx, normalized)
	if err != nil {
		return domain.AnalysisResult{}, errors.Wrap(err, "fetch transactions")
	}
	if len(txs) == 0 {
		return domain.AnalysisResult{}, ErrNoHistory
	}

	tokens, nfts := a.fetchTransfers(ctx, normalized)
	limitedData := len(tokens) == 0 && len(nfts) == 0

	now := a.now()
	firstTx := txs[0]
	lastTx := txs[len(txs)-1]
	walletAgeDays := int((now.Unix() - firstTx.Timestamp) / secondsPerDay)
	daysSinceLastTx := int((now.Unix() - lastTx.Timestamp) / secondsPerDay)

	balanceEth := balanceWei.Div(weiPerEth)

	stats := domain.WalletStats{
		WalletAgeDays:  walletAgeDays,
		TxCount:        len(txs),
		Balance:        balanceEth.StringFixed(4),
		ActivityStatus: activityStatus(daysSinceLastTx),
	}
	a.attachUSDBalance(ctx, &stats, balanceEth)

	aggregate := domain.ActivityAggregate{
		Transactions:   txs,
		TokenTransfers: tokens,
		NFTTransfers:   nfts,
		Balance:        balanceEth,
		WalletAgeDays:  walletAgeDays,
	}
	awarded := badges.Evaluate(aggregate)

	wc := promptbuilder.WalletContext{
		Address:        normalized,
		WalletAgeDays:  walletAgeDays,
		FirstTxDate:    time.Unix(firstTx.Timestamp, 0).UTC().Format("2006-01-02"),
		LastTxDate:     time.Unix(lastTx.Timestamp, 0).UTC().Format("2006-01-02"),
		TxCount:        len(txs),
		BalanceETH:     balanceEth.StringFixed(4),
		TokenSummary:   promptbuilder.TokenSummary(tokens),
		NFTSummary:     promptbuilder.NFTSummary(nfts),
		RecentActivity: promptbuilder.RecentActivitySummary(txs, daysSinceLastTx),
	}

	personality, err := a.narrative.GeneratePersonality(ctx, wc)
	if err != nil {
		return domain.AnalysisResult{}, errors.Wrap(err, "generate personality")
	}

	digest := promptbuilder.TransactionDigest(txs, tokens, nfts)
	timeline, err := a.narrative.GenerateTimeline(ctx, digest)
	if err != nil {
		return domain.AnalysisResult{}, errors.Wrap(err, "generate timeline")
	}

	result := domain.AnalysisResult{
		Personality:     personality.Title,
		Story:           personality.OneLineSummary + "\n\n" + personality.Story,
		Highlights:      personality.Traits,
		Stats:           stats,
		LimitedData:     limitedData,
		PersonalityData: personality,
		TimelineEvents:  timeline,
		Badges:          awarded,
	}

	a.cache.Set(normalized, result)
	return result, nil
}

// Compare analyzes two wallets independently. A failed side comes back nil;
// an error is returned only when both fail.
func (a *Analyzer) Compare(ctx context.Context, address1, address2 string) (domain.ComparisonResult, error) {
	var comparison domain.ComparisonResult

	result1, err1 := a.Analyze(ctx, address1)
	if err1 == nil {
		comparison.Wallet1 = &result1
	} else {
		a.logger.Warn("comparison side failed", zap.String("address", address1), zap.Error(err1))
	}

	result2, err2 := a.Analyze(ctx, address2)
	if err2 == nil {
		comparison.Wallet2 = &result2
	} else {
		a.logger.Warn("comparison side failed", zap.String("address", address2), zap.Error(err2))
	}

	if err1 != nil && err2 != nil {
		return comparison, errors.Wrap(err1, "both analyses failed")
	}
	return comparison, nil
}

// fetchTransfers pulls token and NFT history concurrently. Both are
// best-effort: a failure logs and yields an empty list.
func (a *Analyzer) fetchTransfers(ctx context.Context, address string) ([]domain.TokenTransfer, []domain.NFTTransfer) {
	var (
		wg     sync.WaitGroup
		tokens []domain.TokenTransfer
		nfts   []domain.NFTTransfer
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		if tokens, err = a.history.TokenTransfers(ctx, address); err != nil {
			a.logger.Warn("could not fetch token transfers", zap.Error(err))
			tokens = nil
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if nfts, err = a.history.NFTTransfers(ctx, address); err != nil {
			a.logger.Warn("could not fetch NFT transfers", zap.Error(err))
			nfts = nil
		}
	}()
	wg.Wait()

	return tokens, nfts
}

func (a *Analyzer) attachUSDBalance(ctx context.Context, stats *domain.WalletStats, balanceEth decimal.Decimal) {
	if a.pricer == nil {
		return
	}
	price, err := a.pricer.USDPrice(ctx)
	if err != nil {
		a.logger.Warn("could not fetch ETH/USD price", zap.Error(err))
		return
	}
	stats.BalanceUSD = balanceEth.Mul(price).StringFixed(2)
}

func activityStatus(daysSinceLastTx int) domain.ActivityStatus {
	switch {
	case daysSinceLastTx <= activeWithinDays:
		return domain.ActivityStatusActive
	case daysSinceLastTx <= moderateWithinDays:
		return domain.ActivityStatusModerate
	default:
		return domain.ActivityStatusDormant
	}
}
