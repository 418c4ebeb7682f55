package promptbuilder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/walletstory/walletstory/internal/domain"
)

func TestBuildPersonalityPrompt(t *testing.T) {
	prompt := BuildPersonalityPrompt(WalletContext{
		Address:        "0xabc",
		WalletAgeDays:  2000,
		FirstTxDate:    "2019-06-01",
		LastTxDate:     "2024-11-20",
		TxCount:        150,
		BalanceETH:     "0.5000",
		TokenSummary:   "Transferred 3 different token(s) across 12 transactions.",
		NFTSummary:     "Transferred 4 NFT(s) from 2 different collection(s).",
		RecentActivity: "Last 10 transactions happened in the last 5 days.",
	})

	require.Contains(t, prompt, "Wallet age (days): 2000")
	require.Contains(t, prompt, "First transaction date: 2019-06-01")
	require.Contains(t, prompt, "Total transactions: 150")
	require.Contains(t, prompt, "ETH balance: 0.5000")
	require.Contains(t, prompt, "3 different token(s)")
	require.Contains(t, prompt, "IF IT WERE A PERSON")
}

func TestBuildPersonalityPrompt_EmptySummariesGetDefaults(t *testing.T) {
	prompt := BuildPersonalityPrompt(WalletContext{})

	require.Contains(t, prompt, "No recent activity detected.")
	require.Contains(t, prompt, "No token transfers detected.")
	require.Contains(t, prompt, "No NFT activity detected.")
}

func TestBuildTimelinePrompt(t *testing.T) {
	prompt := BuildTimelinePrompt("Total Transactions: 42")

	require.Contains(t, prompt, "Total Transactions: 42")
	require.Contains(t, prompt, "5-7 key events")
}

func TestTokenSummary(t *testing.T) {
	require.Equal(t, "No activity detected", TokenSummary(nil))

	transfers := []domain.TokenTransfer{
		{TokenSymbol: "USDC"},
		{TokenSymbol: "DAI"},
		{TokenSymbol: "USDC"},
	}
	require.Equal(t, "Transferred 2 different token(s) across 3 transactions.", TokenSummary(transfers))
}

func TestNFTSummary(t *testing.T) {
	require.Equal(t, "No activity detected", NFTSummary(nil))

	transfers := []domain.NFTTransfer{
		{TokenName: "Bored Ape Yacht Club"},
		{TokenName: "Bored Ape Yacht Club"},
		{TokenName: "CryptoPunks"},
	}
	require.Equal(t, "Transferred 3 NFT(s) from 2 different collection(s).", NFTSummary(transfers))
}

func TestRecentActivitySummary(t *testing.T) {
	txs := make([]domain.NativeTransfer, 25)

	require.Equal(t, "Wallet has been inactive for a while.", RecentActivitySummary(txs, 120))
	require.Equal(t, "Last 10 transactions happened in the last 5 days.", RecentActivitySummary(txs, 5))
	require.Equal(t, "Last 4 transactions happened in the last 5 days.", RecentActivitySummary(txs[:4], 5))
}

func TestTransactionDigest(t *testing.T) {
	txs := []domain.NativeTransfer{
		{Timestamp: 1559347200, To: "0x1111111111111111", ValueWei: "500000000000000000"},
		{Timestamp: 1609459200, To: "0x2222222222222222", ValueWei: "2000000000000000000"},
		{Timestamp: 1700000000, To: "0x3333333333333333", ValueWei: "1000000000000000000"},
	}
	tokens := []domain.TokenTransfer{
		{Timestamp: 1609459200, TokenSymbol: "USDC", To: "0x4444444444444444"},
		{Timestamp: 1610000000, TokenSymbol: "DAI", To: "0x5555555555555555"},
	}
	nfts := []domain.NFTTransfer{
		{Timestamp: 1620000000, TokenName: "CryptoPunks", TokenID: "1234567890"},
	}

	digest := TransactionDigest(txs, tokens, nfts)

	require.Contains(t, digest, "Total Transactions: 3 (from 2019-06-01 to 2023-11-14)")
	require.Contains(t, digest, "Largest transaction: a transfer of 2.0000 ETH on 2021-01-01.")
	require.Contains(t, digest, "Unique tokens: USDC, DAI")
	require.Contains(t, digest, "Unique collections: CryptoPunks")
	require.Contains(t, digest, "NFT: CryptoPunks #12345...")
	// addresses are truncated, never shown in full
	require.NotContains(t, digest, "0x1111111111111111")
	require.Contains(t, digest, "0x11111111...")
}

func TestTransactionDigest_Empty(t *testing.T) {
	require.Empty(t, TransactionDigest(nil, nil, nil))
}

func TestTransactionDigest_SamplesCapAtFive(t *testing.T) {
	txs := make([]domain.NativeTransfer, 20)
	for i := range txs {
		txs[i] = domain.NativeTransfer{Timestamp: int64(1559347200 + i*86400), To: "0xaaaaaaaaaaaa", ValueWei: "1"}
	}

	digest := TransactionDigest(txs, nil, nil)
	require.Equal(t, 5, strings.Count(digest, "- Date: "))
}
