package domain

// ActivityStatus classifies how recently a wallet transacted.
type ActivityStatus string

const (
	ActivityStatusActive   ActivityStatus = "Active"   // last tx within 30 days
	ActivityStatusModerate ActivityStatus = "Moderate" // last tx within 180 days
	ActivityStatusDormant  ActivityStatus = "Dormant"
)

// WalletStats holds the locally derived numbers shown next to the story.
type WalletStats struct {
	WalletAgeDays  int            `json:"wallet_age_days"`
	TxCount        int            `json:"tx_count"`
	Balance        string         `json:"balance"` // ETH, 4 decimal places
	BalanceUSD     string         `json:"balance_usd,omitempty"`
	ActivityStatus ActivityStatus `json:"activity_status"`
}

// Personality is the structured output of the narrative model.
type Personality struct {
	Title          string   `json:"personality_title"`
	OneLineSummary string   `json:"one_line_summary"`
	Traits         []string `json:"traits"` // exactly three
	Story          string   `json:"personality_story"`
}

// TimelineEvent is a single model-generated milestone in the wallet's history.
type TimelineEvent struct {
	Date        string `json:"date"`
	Type        string `json:"type"` // Creation, Transaction, NFT, Token, Activity, Milestone
	Title       string `json:"title"`
	Description string `json:"description"`
	Value       string `json:"value,omitempty"`
}

// AnalysisResult is the full payload returned for one analyzed wallet and the
// unit stored in the result cache.
type AnalysisResult struct {
	Personality     string          `json:"personality"`
	Story           string          `json:"story"`
	Highlights      []string        `json:"highlights"`
	Stats           WalletStats     `json:"stats"`
	LimitedData     bool            `json:"limited_data"`
	PersonalityData Personality     `json:"personality_data"`
	TimelineEvents  []TimelineEvent `json:"timeline_events"`
	Badges          []Badge         `json:"badges"`
}

// ComparisonResult pairs two independent analyses. A nil side means that
// wallet's analysis failed.
type ComparisonResult struct {
	Wallet1 *AnalysisResult `json:"wallet1"`
	Wallet2 *AnalysisResult `json:"wallet2"`
}
