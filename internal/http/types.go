package http

import (
	"github.com/cinderlabs/cinder-client/internal/burn"
	"github.com/cinderlabs/cinder-client/internal/dashboard"
	"github.com/cinderlabs/cinder-client/internal/shared"
	"github.com/cinderlabs/cinder-client/internal/voting"
)

type pairExchangeReq struct {
	PairID string `json:"pair_id" binding:"required"`
	Code   string `json:"code"    binding:"required"`
}

type assignSlotReq struct {
	AssetID string `json:"asset_id" binding:"required"`
	Index   *int   `json:"index,omitempty"`
}

type setIncineratorReq struct {
	IncineratorID string `json:"incinerator_id"`
}

type fuelReq struct {
	Amount string `json:"amount" binding:"required"`
}

type repairReq struct {
	Points string `json:"points" binding:"required"`
}

type voteReq struct {
	VoteFor *bool  `json:"vote_for" binding:"required"`
	Amount  string `json:"amount"   binding:"required"`
}

type logReq struct {
	Message string `json:"message" binding:"required"`
}

type slotView struct {
	Index         int           `json:"index"`
	Asset         *shared.Asset `json:"asset"`
	IncineratorID string        `json:"incinerator_id,omitempty"`
	Busy          bool          `json:"busy"`
	LastAttempt   *burn.Attempt `json:"last_attempt,omitempty"`
}

type statusRes struct {
	Account   string             `json:"account"`
	Version   string             `json:"version"`
	Slots     []slotView         `json:"slots"`
	Dashboard dashboard.Snapshot `json:"dashboard"`
}

type proposalView struct {
	shared.Proposal
	Remaining voting.Remaining `json:"remaining"`
	Open      bool             `json:"open"`
	Prefill   voting.Prefill   `json:"prefill"`
}

type costsRes struct {
	Fuel   string `json:"fuel"`
	Energy string `json:"energy"`
	Repair string `json:"repair"`
}

type txRes struct {
	TransactionID string `json:"transaction_id"`
}

type burnRes struct {
	Attempt burn.Attempt `json:"attempt"`
	Error   string       `json:"error,omitempty"`
	Code    string       `json:"code,omitempty"`
}

type voteRes struct {
	Vote          voting.VoteRequest `json:"vote"`
	TransactionID string             `json:"transaction_id"`
}
