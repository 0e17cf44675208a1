package domain

import "fmt"

// RejectReason is the numeric error code a contract returns when a
// dry run or execution is rejected. Codes are negative by convention.
type RejectReason int32

const (
	RejectParseParams             RejectReason = -1
	RejectLogFull                 RejectReason = -2
	RejectOnlyAccount             RejectReason = -3
	RejectStartEndTimeError       RejectReason = -4
	RejectEndTimeError            RejectReason = -5
	RejectNoItem                  RejectReason = -6
	RejectAuctionNotOpen          RejectReason = -7
	RejectBidNotGreaterCurrentBid RejectReason = -8
	RejectBidTooLate              RejectReason = -9
	RejectAuctionAlreadyFinalized RejectReason = -10
	RejectAuctionStillActive      RejectReason = -11
	RejectNotTokenContract        RejectReason = -12
	RejectWrongTokenID            RejectReason = -13
)

var rejectNames = map[RejectReason]string{
	RejectParseParams:             "ParseParams",
	RejectLogFull:                 "LogFull",
	RejectOnlyAccount:             "OnlyAccount",
	RejectStartEndTimeError:       "StartEndTimeError",
	RejectEndTimeError:            "EndTimeError",
	RejectNoItem:                  "NoItem",
	RejectAuctionNotOpen:          "AuctionNotOpen",
	RejectBidNotGreaterCurrentBid: "BidNotGreaterCurrentBid",
	RejectBidTooLate:              "BidTooLate",
	RejectAuctionAlreadyFinalized: "AuctionAlreadyFinalized",
	RejectAuctionStillActive:      "AuctionStillActive",
	RejectNotTokenContract:        "NotTokenContract",
	RejectWrongTokenID:            "WrongTokenID",
}

// String returns the contract-level name of the reject reason, or the raw
// code for reasons this client does not know about.
func (r RejectReason) String() string {
	if name, ok := rejectNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int32(r))
}
