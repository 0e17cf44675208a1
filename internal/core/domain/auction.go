package domain

import (
	"time"
)

// Energy is the chain's unit of computational cost for transaction execution.
type Energy uint64

// TokenID identifies a CIS-2 token used for bidding.
type TokenID string

// TokenAmount is an amount of CIS-2 tokens. Kept as uint64 since the demo
// token uses small denominations.
type TokenAmount uint64

// ContractAddress identifies a smart contract instance.
type ContractAddress struct {
	Index    uint64 `json:"index" yaml:"index"`
	Subindex uint64 `json:"subindex" yaml:"subindex"`
}

// AuctionPhase is the lifecycle state of an auctioned item.
type AuctionPhase string

const (
	PhaseNotSoldYet AuctionPhase = "not_sold_yet"
	PhaseSold       AuctionPhase = "sold"
)

// AddItemParams are the parameters of the auction contract's addItem
// entrypoint. The shape is fixed by the contract schema.
type AddItemParams struct {
	Name       string      `json:"name"`
	Start      time.Time   `json:"start"`
	End        time.Time   `json:"end"`
	MinimumBid TokenAmount `json:"minimumBid"`
	TokenID    TokenID     `json:"tokenId"`
}

// BidParams are the parameters of a bid on an auctioned item. The bid is
// carried as a CIS-2 token transfer to the auction contract.
type BidParams struct {
	ItemIndex uint64      `json:"itemIndex"`
	Amount    TokenAmount `json:"amount"`
	TokenID   TokenID     `json:"tokenId"`
}

// FinalizeParams close an ended auction and pay out the highest bid.
type FinalizeParams struct {
	ItemIndex uint64 `json:"itemIndex"`
}

// ItemState is the on-chain state of a single auctioned item, as returned
// by the viewItemState entrypoint.
type ItemState struct {
	Name          string         `json:"name"`
	Phase         AuctionPhase   `json:"auctionState"`
	Creator       AccountAddress `json:"creator"`
	HighestBidder AccountAddress `json:"highestBidder,omitempty"`
	HighestBid    TokenAmount    `json:"highestBid"`
	MinimumBid    TokenAmount    `json:"minimumBid"`
	TokenID       TokenID        `json:"tokenId"`
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
}

// AuctionState is the full contract state, as returned by the view
// entrypoint.
type AuctionState struct {
	ItemCount uint64               `json:"itemCount"`
	Items     map[uint64]ItemState `json:"items"`
}

// EventType tags an event emitted by the auction contract.
type EventType string

const (
	EventItemAdded EventType = "item_added"
	EventBidPlaced EventType = "bid_placed"
	EventFinalized EventType = "finalized"
)

// ContractEvent is one event emitted by a contract in a finalized block.
// The triple (BlockHeight, TxHash, EventIndex) identifies it uniquely.
type ContractEvent struct {
	Contract    ContractAddress `json:"contract"`
	Type        EventType       `json:"type"`
	BlockHeight uint64          `json:"block_height"`
	TxHash      TransactionHash `json:"tx_hash"`
	EventIndex  uint32          `json:"event_index"`
	ItemIndex   uint64          `json:"item_index"`
	Payload     []byte          `json:"payload"`
	EmittedAt   time.Time       `json:"emitted_at"`
}
