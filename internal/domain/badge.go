package domain

// BadgeCategory groups badges for presentation. It carries no rule logic.
type BadgeCategory string

const (
	BadgeCategoryActivity BadgeCategory = "activity"
	BadgeCategoryWealth   BadgeCategory = "wealth"
	BadgeCategoryTime     BadgeCategory = "time"
	BadgeCategoryNFT      BadgeCategory = "nft"
	BadgeCategoryDefi     BadgeCategory = "defi"
	BadgeCategorySpecial  BadgeCategory = "special"
)

// Badge is a named achievement awarded when a fixed predicate over wallet
// activity holds. Badges are recomputed on every analysis and never persisted.
type Badge struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"` // symbolic name resolved by the presentation layer
	Category    BadgeCategory `json:"category"`
}
