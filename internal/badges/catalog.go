package badges

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/walletstory/walletstory/internal/domain"
)

// 2020-01-01T00:00:00Z, the early_adopter cutoff.
const earlyAdopterCutoff = 1577836800

const (
	txsPerDayBurst   = 10
	secondsPerYear   = 365 * 24 * 60 * 60
	nightHourEndUTC  = 6
	veteranSpanSecs  = 2 * secondsPerYear
	ogAgeDays        = 3 * 365
	explorerMinPeers = 20
	generousMinPeers = 50
)

var (
	babyWhaleMin = decimal.NewFromInt(1)
	whaleMin     = decimal.NewFromInt(10)
	megaWhaleMin = decimal.NewFromInt(100)
)

// blueChipContracts is the allow-list of blue-chip NFT collections, keyed by
// lower-cased contract address.
var blueChipContracts = map[string]struct{}{
	"0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d": {}, // Bored Ape Yacht Club
	"0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb": {}, // CryptoPunks
}

// rule pairs a badge with its predicate. The catalog below is the fixed rule
// set; Evaluate walks it in declaration order.
type rule struct {
	badge domain.Badge
	holds func(in domain.ActivityAggregate) bool
}

var catalog = []rule{
	// Activity
	{
		badge: domain.Badge{ID: "first_steps", Name: "First Steps", Description: "Completed your first transaction.", Icon: "Footprints", Category: domain.BadgeCategoryActivity},
		holds: func(in domain.ActivityAggregate) bool { return len(in.Transactions) >= 1 },
	},
	{
		badge: domain.Badge{ID: "century_club", Name: "Century Club", Description: "Made over 100 transactions.", Icon: "Award", Category: domain.BadgeCategoryActivity},
		holds: func(in domain.ActivityAggregate) bool { return len(in.Transactions) >= 100 },
	},
	{
		badge: domain.Badge{ID: "active_trader", Name: "Active Trader", Description: "Made over 1,000 transactions.", Icon: "Repeat", Category: domain.BadgeCategoryActivity},
		holds: func(in domain.ActivityAggregate) bool { return len(in.Transactions) >= 1000 },
	},
	{
		badge: domain.Badge{ID: "lightning_fast", Name: "Lightning Fast", Description: "Made 10+ transactions in a single day.", Icon: "Zap", Category: domain.BadgeCategoryActivity},
		holds: hasDailyBurst,
	},
	{
		badge: domain.Badge{ID: "night_owl", Name: "Night Owl", Description: "Most transactions were made between midnight and 6am UTC.", Icon: "Moon", Category: domain.BadgeCategoryActivity},
		holds: mostlyAtNight,
	},

	// Wealth
	{
		badge: domain.Badge{ID: "baby_whale", Name: "Baby Whale", Description: "Current balance is over 1 ETH.", Icon: "Gem", Category: domain.BadgeCategoryWealth},
		holds: func(in domain.ActivityAggregate) bool { return in.Balance.GreaterThanOrEqual(babyWhaleMin) },
	},
	{
		badge: domain.Badge{ID: "whale", Name: "Whale", Description: "Current balance is over 10 ETH.", Icon: "Crown", Category: domain.BadgeCategoryWealth},
		holds: func(in domain.ActivityAggregate) bool { return in.Balance.GreaterThanOrEqual(whaleMin) },
	},
	{
		badge: domain.Badge{ID: "mega_whale", Name: "Mega Whale", Description: "Current balance is over 100 ETH.", Icon: "Trophy", Category: domain.BadgeCategoryWealth},
		holds: func(in domain.ActivityAggregate) bool { return in.Balance.GreaterThanOrEqual(megaWhaleMin) },
	},
	{
		badge: domain.Badge{ID: "portfolio_pro", Name: "Portfolio Pro", Description: "Holds 10+ different types of tokens.", Icon: "Briefcase", Category: domain.BadgeCategoryWealth},
		holds: func(in domain.ActivityAggregate) bool { return distinctTokenContracts(in.TokenTransfers) >= 10 },
	},

	// Time
	{
		badge: domain.Badge{ID: "og", Name: "OG", Description: "Wallet is over 3 years old.", Icon: "Cake", Category: domain.BadgeCategoryTime},
		holds: func(in domain.ActivityAggregate) bool { return in.WalletAgeDays > ogAgeDays },
	},
	{
		badge: domain.Badge{ID: "early_adopter", Name: "Early Adopter", Description: "Wallet was created before 2020.", Icon: "Clock", Category: domain.BadgeCategoryTime},
		holds: func(in domain.ActivityAggregate) bool {
			return in.Transactions[0].Timestamp < earlyAdopterCutoff
		},
	},
	{
		badge: domain.Badge{ID: "veteran", Name: "Veteran", Description: "Wallet has been active for over 2 years.", Icon: "Shield", Category: domain.BadgeCategoryTime},
		holds: func(in domain.ActivityAggregate) bool {
			first := in.Transactions[0].Timestamp
			last := in.Transactions[len(in.Transactions)-1].Timestamp
			return last-first > veteranSpanSecs
		},
	},

	// NFT
	{
		badge: domain.Badge{ID: "nft_enthusiast", Name: "NFT Enthusiast", Description: "Owns 10+ NFTs.", Icon: "Image", Category: domain.BadgeCategoryNFT},
		holds: func(in domain.ActivityAggregate) bool { return len(in.NFTTransfers) >= 10 },
	},
	{
		badge: domain.Badge{ID: "art_collector", Name: "Art Collector", Description: "Owns 50+ NFTs.", Icon: "Paintbrush2", Category: domain.BadgeCategoryNFT},
		holds: func(in domain.ActivityAggregate) bool { return len(in.NFTTransfers) >= 50 },
	},
	{
		badge: domain.Badge{ID: "blue_chip", Name: "Blue Chip Collector", Description: "Owns a blue-chip NFT (e.g., from BAYC or CryptoPunks).", Icon: "Diamond", Category: domain.BadgeCategoryNFT},
		holds: ownsBlueChip,
	},

	// Special
	{
		badge: domain.Badge{ID: "explorer", Name: "Explorer", Description: "Interacted with 20+ different smart contracts.", Icon: "Compass", Category: domain.BadgeCategorySpecial},
		holds: func(in domain.ActivityAggregate) bool {
			return distinctRecipients(in.Transactions) >= explorerMinPeers
		},
	},
	{
		badge: domain.Badge{ID: "generous", Name: "Generous", Description: "Sent transactions to 50+ different addresses.", Icon: "Gift", Category: domain.BadgeCategorySpecial},
		holds: func(in domain.ActivityAggregate) bool {
			return distinctOutgoingRecipients(in.Transactions) >= generousMinPeers
		},
	},
}

func hasDailyBurst(in domain.ActivityAggregate) bool {
	perDay := make(map[string]int)
	for _, tx := range in.Transactions {
		day := time.Unix(tx.Timestamp, 0).UTC().Format("2006-01-02")
		perDay[day]++
		if perDay[day] >= txsPerDayBurst {
			return true
		}
	}
	return false
}

// mostlyAtNight holds when strictly more than half of all transactions fall
// in UTC hours [0, 6). Exactly 50% does not qualify.
func mostlyAtNight(in domain.ActivityAggregate) bool {
	night := 0
	for _, tx := range in.Transactions {
		if time.Unix(tx.Timestamp, 0).UTC().Hour() < nightHourEndUTC {
			night++
		}
	}
	return 2*night > len(in.Transactions)
}

func ownsBlueChip(in domain.ActivityAggregate) bool {
	for _, nft := range in.NFTTransfers {
		if _, ok := blueChipContracts[strings.ToLower(nft.ContractAddress)]; ok {
			return true
		}
	}
	return false
}

func distinctTokenContracts(transfers []domain.TokenTransfer) int {
	seen := make(map[string]struct{}, len(transfers))
	for _, t := range transfers {
		seen[strings.ToLower(t.ContractAddress)] = struct{}{}
	}
	return len(seen)
}

func distinctRecipients(txs []domain.NativeTransfer) int {
	seen := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		seen[strings.ToLower(tx.To)] = struct{}{}
	}
	return len(seen)
}

// distinctOutgoingRecipients counts recipients of transactions sent by the
// wallet itself, taking the sender of the first transaction as the wallet's
// own address.
func distinctOutgoingRecipients(txs []domain.NativeTransfer) int {
	owner := strings.ToLower(txs[0].From)
	seen := make(map[string]struct{})
	for _, tx := range txs {
		if strings.ToLower(tx.From) == owner {
			seen[strings.ToLower(tx.To)] = struct{}{}
		}
	}
	return len(seen)
}
