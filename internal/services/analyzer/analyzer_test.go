package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/walletstory/walletstory/internal/domain"
	"github.com/walletstory/walletstory/internal/resultcache"
	"github.com/walletstory/walletstory/internal/services/promptbuilder"
	"github.com/walletstory/walletstory/internal/storage"
)

const (
	testAddress    = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	testAddressLow = "0x742d35cc6634c0532925a3b844bc454e4438f44e"
	secondAddress  = "0x53d284357ec70cE289D6D64134DfAc8E511c8a3D"
)

type fakeHistory struct {
	balance      decimal.Decimal
	balanceErr   error
	txs          []domain.NativeTransfer
	txsErr       error
	tokens       []domain.TokenTransfer
	tokensErr    error
	nfts         []domain.NFTTransfer
	nftsErr      error
	balanceCalls int
	seenAddress  string
}

func (f *fakeHistory) Balance(_ context.Context, address string) (decimal.Decimal, error) {
	f.balanceCalls++
	f.seenAddress = address
	return f.balance, f.balanceErr
}

func (f *fakeHistory) Transactions(context.Context, string) ([]domain.NativeTransfer, error) {
	return f.txs, f.txsErr
}

func (f *fakeHistory) TokenTransfers(context.Context, string) ([]domain.TokenTransfer, error) {
	return f.tokens, f.tokensErr
}

func (f *fakeHistory) NFTTransfers(context.Context, string) ([]domain.NFTTransfer, error) {
	return f.nfts, f.nftsErr
}

type fakeNarrative struct {
	personality    domain.Personality
	personalityErr error
	timeline       []domain.TimelineEvent
	timelineErr    error
}

func (f *fakeNarrative) GeneratePersonality(context.Context, promptbuilder.WalletContext) (domain.Personality, error) {
	return f.personality, f.personalityErr
}

func (f *fakeNarrative) GenerateTimeline(context.Context, string) ([]domain.TimelineEvent, error) {
	return f.timeline, f.timelineErr
}

type fakePricer struct {
	price decimal.Decimal
	err   error
}

func (f *fakePricer) USDPrice(context.Context) (decimal.Decimal, error) {
	return f.price, f.err
}

func eth(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func testPersonality() domain.Personality {
	return domain.Personality{
		Title:          "The Night Trader",
		OneLineSummary: "Never sleeps, never sells.",
		Traits:         []string{"Restless", "Bold", "Private"},
		Story:          "A creature of the small hours.",
	}
}

func newTestAnalyzer(history *fakeHistory, narrative *fakeNarrative, opts ...Option) *Analyzer {
	cache := resultcache.New(storage.NewMemory(), time.Hour, zap.NewNop())
	return New(history, narrative, cache, zap.NewNop(), opts...)
}

func TestAnalyze_InvalidAddress(t *testing.T) {
	a := newTestAnalyzer(&fakeHistory{}, &fakeNarrative{})

	for _, addr := range []string{"", "not-an-address", "0x123", "742d35cc6634c0532925a3b844bc454e4438f44e00"} {
		_, err := a.Analyze(context.Background(), addr)
		require.ErrorIs(t, err, ErrInvalidAddress, "address %q", addr)
	}
}

func TestAnalyze_NoHistory(t *testing.T) {
	a := newTestAnalyzer(&fakeHistory{balance: decimal.Zero}, &fakeNarrative{})

	_, err := a.Analyze(context.Background(), testAddress)
	require.ErrorIs(t, err, ErrNoHistory)
}

func TestAnalyze_FullResult(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	first := now.AddDate(0, 0, -2000)
	last := now.AddDate(0, 0, -10)

	history := &fakeHistory{
		balance: eth("500000000000000000"), // 0.5 ETH in wei
		txs: []domain.NativeTransfer{
			{Timestamp: first.Unix(), From: testAddressLow, To: secondAddress, ValueWei: "1"},
			{Timestamp: last.Unix(), From: testAddressLow, To: secondAddress, ValueWei: "1"},
		},
		tokens: []domain.TokenTransfer{{TokenSymbol: "USDC", ContractAddress: "0xc1"}},
	}
	narrative := &fakeNarrative{
		personality: testPersonality(),
		timeline:    []domain.TimelineEvent{{Date: "2021-01-01", Type: "Creation", Title: "Born"}},
	}

	a := newTestAnalyzer(history, narrative, WithClock(func() time.Time { return now }))

	result, err := a.Analyze(context.Background(), testAddress)
	require.NoError(t, err)

	require.Equal(t, "The Night Trader", result.Personality)
	require.Equal(t, "Never sleeps, never sells.\n\nA creature of the small hours.", result.Story)
	require.Equal(t, []string{"Restless", "Bold", "Private"}, result.Highlights)
	require.Len(t, result.TimelineEvents, 1)

	require.Equal(t, 2000, result.Stats.WalletAgeDays)
	require.Equal(t, 2, result.Stats.TxCount)
	require.Equal(t, "0.5000", result.Stats.Balance)
	require.Equal(t, domain.ActivityStatusActive, result.Stats.ActivityStatus)
	require.Empty(t, result.Stats.BalanceUSD)

	require.False(t, result.LimitedData) // token transfers exist
	require.NotEmpty(t, result.Badges)

	// the upstream source sees the lowercased address
	require.Equal(t, testAddressLow, history.seenAddress)
}

func TestAnalyze_LimitedData(t *testing.T) {
	now := time.Now()
	history := &fakeHistory{
		balance: decimal.Zero,
		txs:     []domain.NativeTransfer{{Timestamp: now.Unix() - 86400, ValueWei: "1"}},
	}
	a := newTestAnalyzer(history, &fakeNarrative{personality: testPersonality()})

	result, err := a.Analyze(context.Background(), testAddress)
	require.NoError(t, err)
	require.True(t, result.LimitedData)
}

func TestAnalyze_ActivityStatus(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		daysAgo int
		want    domain.ActivityStatus
	}{
		{1, domain.ActivityStatusActive},
		{30, domain.ActivityStatusActive},
		{31, domain.ActivityStatusModerate},
		{180, domain.ActivityStatusModerate},
		{181, domain.ActivityStatusDormant},
	}

	for _, tc := range cases {
		history := &fakeHistory{
			balance: decimal.Zero,
			txs: []domain.NativeTransfer{
				{Timestamp: now.AddDate(0, 0, -tc.daysAgo).Unix(), ValueWei: "1"},
			},
		}
		a := newTestAnalyzer(history, &fakeNarrative{personality: testPersonality()},
			WithClock(func() time.Time { return now }))

		result, err := a.Analyze(context.Background(), testAddress)
		require.NoError(t, err)
		require.Equal(t, tc.want, result.Stats.ActivityStatus, "%d days ago", tc.daysAgo)
	}
}

func TestAnalyze_ServesFromCache(t *testing.T) {
	history := &fakeHistory{
		balance: decimal.Zero,
		txs:     []domain.NativeTransfer{{Timestamp: time.Now().Unix() - 86400, ValueWei: "1"}},
	}
	a := newTestAnalyzer(history, &fakeNarrative{personality: testPersonality()})

	first, err := a.Analyze(context.Background(), testAddress)
	require.NoError(t, err)
	require.Equal(t, 1, history.balanceCalls)

	// mixed-case lookup hits the same entry, no second upstream fetch
	second, err := a.Analyze(context.Background(), testAddressLow)
	require.NoError(t, err)
	require.Equal(t, 1, history.balanceCalls)
	require.Equal(t, first.Personality, second.Personality)
}

func TestAnalyze_FailuresAreNotCached(t *testing.T) {
	history := &fakeHistory{
		balance: decimal.Zero,
		txs:     []domain.NativeTransfer{{Timestamp: time.Now().Unix() - 86400, ValueWei: "1"}},
	}
	narrative := &fakeNarrative{personalityErr: errors.New("model unavailable")}
	a := newTestAnalyzer(history, narrative)

	_, err := a.Analyze(context.Background(), testAddress)
	require.Error(t, err)

	// recovery on the next call proves no negative entry was stored
	narrative.personalityErr = nil
	narrative.personality = testPersonality()
	result, err := a.Analyze(context.Background(), testAddress)
	require.NoError(t, err)
	require.Equal(t, "The Night Trader", result.Personality)
}

func TestAnalyze_TransferFetchFailuresAreBestEffort(t *testing.T) {
	history := &fakeHistory{
		balance:   decimal.Zero,
		txs:       []domain.NativeTransfer{{Timestamp: time.Now().Unix() - 86400, ValueWei: "1"}},
		tokensErr: errors.New("token endpoint down"),
		nftsErr:   errors.New("nft endpoint down"),
	}
	a := newTestAnalyzer(history, &fakeNarrative{personality: testPersonality()})

	result, err := a.Analyze(context.Background(), testAddress)
	require.NoError(t, err)
	require.True(t, result.LimitedData)
}

func TestAnalyze_USDBalance(t *testing.T) {
	history := &fakeHistory{
		balance: eth("2000000000000000000"), // 2 ETH
		txs:     []domain.NativeTransfer{{Timestamp: time.Now().Unix() - 86400, ValueWei: "1"}},
	}
	a := newTestAnalyzer(history, &fakeNarrative{personality: testPersonality()},
		WithPricer(&fakePricer{price: eth("3000")}))

	result, err := a.Analyze(context.Background(), testAddress)
	require.NoError(t, err)
	require.Equal(t, "6000.00", result.Stats.BalanceUSD)
}

func TestAnalyze_PricerFailureIsNonFatal(t *testing.T) {
	history := &fakeHistory{
		balance: eth("1000000000000000000"),
		txs:     []domain.NativeTransfer{{Timestamp: time.Now().Unix() - 86400, ValueWei: "1"}},
	}
	a := newTestAnalyzer(history, &fakeNarrative{personality: testPersonality()},
		WithPricer(&fakePricer{err: errors.New("exchange down")}))

	result, err := a.Analyze(context.Background(), testAddress)
	require.NoError(t, err)
	require.Empty(t, result.Stats.BalanceUSD)
	require.Equal(t, "1.0000", result.Stats.Balance)
}

func TestCompare_BothSucceed(t *testing.T) {
	history := &fakeHistory{
		balance: decimal.Zero,
		txs:     []domain.NativeTransfer{{Timestamp: time.Now().Unix() - 86400, ValueWei: "1"}},
	}
	a := newTestAnalyzer(history, &fakeNarrative{personality: testPersonality()})

	comparison, err := a.Compare(context.Background(), testAddress, secondAddress)
	require.NoError(t, err)
	require.NotNil(t, comparison.Wallet1)
	require.NotNil(t, comparison.Wallet2)
}

func TestCompare_OneSideFails(t *testing.T) {
	history := &fakeHistory{
		balance: decimal.Zero,
		txs:     []domain.NativeTransfer{{Timestamp: time.Now().Unix() - 86400, ValueWei: "1"}},
	}
	a := newTestAnalyzer(history, &fakeNarrative{personality: testPersonality()})

	comparison, err := a.Compare(context.Background(), "bogus", secondAddress)
	require.NoError(t, err)
	require.Nil(t, comparison.Wallet1)
	require.NotNil(t, comparison.Wallet2)
}

func TestCompare_BothFail(t *testing.T) {
	a := newTestAnalyzer(&fakeHistory{}, &fakeNarrative{})

	_, err := a.Compare(context.Background(), "bogus", "also-bogus")
	require.Error(t, err)
}
