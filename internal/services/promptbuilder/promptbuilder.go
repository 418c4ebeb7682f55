// Package promptbuilder formats wallet activity into compact prompts for the
// narrative model.
package promptbuilder

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/walletstory/walletstory/internal/domain"
)

const (
	sampleTxCount      = 5
	sampleTransfers    = 3
	dormantAfterDays   = 90
	recentWindowTxs    = 10
	shortAddressDigits = 10
)

var weiPerEth = decimal.New(1, 18)

// WalletContext is the structured summary the personality prompt is built from.
type WalletContext struct {
	Address        string
	WalletAgeDays  int
	FirstTxDate    string
	LastTxDate     string
	TxCount        int
	BalanceETH     string
	TokenSummary   string
	NFTSummary     string
	RecentActivity string
}

// BuildPersonalityPrompt renders the user prompt for the personality model.
func BuildPersonalityPrompt(wc WalletContext) string {
	var b strings.Builder

	b.WriteString("Analyze the following Ethereum wallet data and describe it as a person.\n\n")
	b.WriteString("Wallet Data:\n")
	fmt.Fprintf(&b, "- Wallet age (days): %d\n", wc.WalletAgeDays)
	fmt.Fprintf(&b, "- First transaction date: %s\n", wc.FirstTxDate)
	fmt.Fprintf(&b, "- Last transaction date: %s\n", wc.LastTxDate)
	fmt.Fprintf(&b, "- Total transactions: %d\n", wc.TxCount)
	fmt.Fprintf(&b, "- ETH balance: %s\n", wc.BalanceETH)
	fmt.Fprintf(&b, "- Recent activity summary: %s\n", orDefault(wc.RecentActivity, "No recent activity detected."))
	fmt.Fprintf(&b, "- Token activity summary: %s\n", orDefault(wc.TokenSummary, "No token transfers detected."))
	fmt.Fprintf(&b, "- NFT activity summary: %s\n", orDefault(wc.NFTSummary, "No NFT activity detected."))

	b.WriteString(`
TASK:
1. Describe who this wallet would be IF IT WERE A PERSON.
2. Give them:
   - A personality type (1 short title)
   - 3 personality traits
   - A short lifestyle description
3. Write 1 short paragraph (4-5 lines max) explaining their behavior.

STYLE RULES:
- Use metaphors and analogies
- Casual, human tone
- Curious and fun, not technical
- Do NOT mention numbers directly unless needed
- Do NOT mention "wallet", "address", or "blockchain" in the final output

If the wallet activity aligns with major crypto periods (NFT boom, bear market, post-merge), subtly reference it as life phases.
`)

	return b.String()
}

// BuildTimelinePrompt renders the user prompt for the timeline model.
func BuildTimelinePrompt(digest string) string {
	return fmt.Sprintf(`Analyze the following transaction summary and generate a timeline of 5-7 key events.

Transaction Summary:
%s

Generate a JSON array of timeline events based on this data.
`, digest)
}

// TokenSummary describes token activity in one line.
func TokenSummary(transfers []domain.TokenTransfer) string {
	if len(transfers) == 0 {
		return "No activity detected"
	}
	unique := make(map[string]struct{})
	for _, t := range transfers {
		unique[t.TokenSymbol] = struct{}{}
	}
	return fmt.Sprintf("Transferred %d different token(s) across %d transactions.", len(unique), len(transfers))
}

// NFTSummary describes NFT activity in one line.
func NFTSummary(transfers []domain.NFTTransfer) string {
	if len(transfers) == 0 {
		return "No activity detected"
	}
	unique := make(map[string]struct{})
	for _, t := range transfers {
		unique[t.TokenName] = struct{}{}
	}
	return fmt.Sprintf("Transferred %d NFT(s) from %d different collection(s).", len(transfers), len(unique))
}

// RecentActivitySummary describes the tail of the transaction list.
func RecentActivitySummary(txs []domain.NativeTransfer, daysSinceLastTx int) string {
	if daysSinceLastTx > dormantAfterDays {
		return "Wallet has been inactive for a while."
	}
	recent := len(txs)
	if recent > recentWindowTxs {
		recent = recentWindowTxs
	}
	return fmt.Sprintf("Last %d transactions happened in the last %d days.", recent, daysSinceLastTx)
}

// TransactionDigest condenses the full history for the timeline model:
// overall span, the largest transfer, a handful of samples, and the unique
// tokens and collections touched.
func TransactionDigest(txs []domain.NativeTransfer, tokens []domain.TokenTransfer, nfts []domain.NFTTransfer) string {
	var b strings.Builder

	if len(txs) > 0 {
		first := formatDate(txs[0].Timestamp)
		last := formatDate(txs[len(txs)-1].Timestamp)
		fmt.Fprintf(&b, "Total Transactions: %d (from %s to %s)\n", len(txs), first, last)

		if largest, ok := largestTransfer(txs); ok {
			fmt.Fprintf(&b, "Largest transaction: a transfer of %s ETH on %s.\n",
				weiToEth(largest.ValueWei), formatDate(largest.Timestamp))
		}

		b.WriteString("Sample Transactions (first 5):\n")
		for _, tx := range txs[:min(sampleTxCount, len(txs))] {
			fmt.Fprintf(&b, "- Date: %s, To: %s..., Value: %s ETH\n",
				formatDate(tx.Timestamp), shorten(tx.To), weiToEth(tx.ValueWei))
		}
	}

	if len(tokens) > 0 {
		fmt.Fprintf(&b, "\nFound %d token transfers. First token transfer on %s.\n",
			len(tokens), formatDate(tokens[0].Timestamp))

		var symbols []string
		seen := make(map[string]struct{})
		for _, t := range tokens {
			if _, ok := seen[t.TokenSymbol]; !ok {
				seen[t.TokenSymbol] = struct{}{}
				symbols = append(symbols, t.TokenSymbol)
			}
		}
		fmt.Fprintf(&b, "Unique tokens: %s\n", strings.Join(symbols[:min(5, len(symbols))], ", "))

		for _, t := range tokens[:min(sampleTransfers, len(tokens))] {
			fmt.Fprintf(&b, "- Token: %s, To: %s...\n", t.TokenSymbol, shorten(t.To))
		}
	}

	if len(nfts) > 0 {
		fmt.Fprintf(&b, "\nFound %d NFT transfers. First NFT transfer on %s.\n",
			len(nfts), formatDate(nfts[0].Timestamp))

		var collections []string
		seen := make(map[string]struct{})
		for _, n := range nfts {
			if _, ok := seen[n.TokenName]; !ok {
				seen[n.TokenName] = struct{}{}
				collections = append(collections, n.TokenName)
			}
		}
		fmt.Fprintf(&b, "Unique collections: %s\n", strings.Join(collections[:min(3, len(collections))], ", "))

		for _, n := range nfts[:min(sampleTransfers, len(nfts))] {
			fmt.Fprintf(&b, "- NFT: %s #%s...\n", n.TokenName, shortenID(n.TokenID))
		}
	}

	return b.String()
}

func largestTransfer(txs []domain.NativeTransfer) (domain.NativeTransfer, bool) {
	var largest domain.NativeTransfer
	largestValue := decimal.Zero
	found := false
	for _, tx := range txs {
		value, err := decimal.NewFromString(tx.ValueWei)
		if err != nil {
			continue
		}
		if !found || value.GreaterThan(largestValue) {
			largest = tx
			largestValue = value
			found = true
		}
	}
	return largest, found
}

func weiToEth(wei string) string {
	value, err := decimal.NewFromString(wei)
	if err != nil {
		return "0.0000"
	}
	return value.Div(weiPerEth).StringFixed(4)
}

func formatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

func shorten(address string) string {
	if len(address) <= shortAddressDigits {
		return address
	}
	return address[:shortAddressDigits]
}

func shortenID(id string) string {
	if len(id) <= 5 {
		return id
	}
	return id[:5]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
