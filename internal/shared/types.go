package shared

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a burnable NFT owned by the account.
type Asset struct {
	AssetID      string          `json:"asset_id"`
	TemplateID   string          `json:"template_id"`
	Collection   string          `json:"collection"`
	Schema       string          `json:"schema"`
	Img          string          `json:"img,omitempty"`
	RewardAmount decimal.Decimal `json:"reward_amount"` // CINDER
	FeeAmount    decimal.Decimal `json:"fee_amount"`    // TRASH
}

type Incinerator struct {
	AssetID    string `json:"asset_id"`
	Durability int    `json:"durability"`
	Staked     bool   `json:"staked"`
	Region     string `json:"region,omitempty"`
}

type ApprovedCollection struct {
	Collection string `json:"collection"`
	Schema     string `json:"schema"`
	TemplateID string `json:"template_id"`
}

type BurnRecord struct {
	ID            string          `json:"id"`
	User          string          `json:"user"`
	AssetID       string          `json:"asset_id"`
	IncineratorID string          `json:"incinerator_id"`
	TemplateID    string          `json:"template_id,omitempty"`
	TrashFee      decimal.Decimal `json:"trash_fee"`
	CinderReward  decimal.Decimal `json:"cinder_reward"`
	TxID          string          `json:"tx_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type RepairStatus struct {
	IncineratorID string     `json:"incinerator_id"`
	Points        int        `json:"points"`
	Status        string     `json:"status"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
}

type LogMessage struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Proposal is a governance record. Tallies change on the backend as votes
// are cast; everything else is fixed once the voting window closes.
type Proposal struct {
	PropID       uint64          `json:"prop_id"`
	ProposalType string          `json:"proposal_type"`
	Collection   string          `json:"collection"`
	Schema       string          `json:"schema"`
	TemplateID   string          `json:"template_id"`
	TrashFee     decimal.Decimal `json:"trash_fee"`
	CinderReward decimal.Decimal `json:"cinder_reward"`
	VotesFor     decimal.Decimal `json:"votes_for"`
	VotesAgainst decimal.Decimal `json:"votes_against"`
	CreatedAt    time.Time       `json:"created_at"`

	// Per-account fields, present when the backend was asked for an account.
	MyStaked *string `json:"my_staked,omitempty"`
	MyVote   *bool   `json:"my_vote,omitempty"`
}

// Balances maps a token symbol to an amount in minor units.
type Balances map[string]uint64

func (b Balances) Get(symbol string) uint64 {
	if b == nil {
		return 0
	}
	return b[symbol]
}
