package core

import "errors"

// Validation failures reported by the House. They are local, caller-correctable
// conditions; none of them is retried by the engine.
var (
	ErrDuplicateName  = errors.New("name already registered")
	ErrUnknownSeller  = errors.New("unknown seller")
	ErrUnknownBuyer   = errors.New("unknown buyer")
	ErrUnknownLot     = errors.New("unknown lot")
	ErrDuplicateLot   = errors.New("lot number already catalogued")
	ErrNotInterested  = errors.New("buyer has not noted interest in lot")
	ErrBidTooLow      = errors.New("bid does not clear current bid plus increment")
	ErrAuctionNotOpen = errors.New("lot is not in auction")
	ErrUnauthorized   = errors.New("auctioneer is not authorised to close this auction")
	ErrLotClosed      = errors.New("lot has already been sold")
	ErrInvalidConfig  = errors.New("invalid house configuration")

	ErrAmountOutOfRange = errors.New("amount out of range")
)
