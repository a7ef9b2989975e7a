// Package houseapi defines the JSON wire format spoken by the house server
// and the signed sale receipts it issues.
package houseapi

import (
	"github.com/cloudx-io/auctionhouse/core"
)

// Request types accepted by the house server.
const (
	TypePing           = "ping"
	TypeKeyRequest     = "key_request"
	TypeRegisterBuyer  = "register_buyer"
	TypeRegisterSeller = "register_seller"
	TypeAddLot         = "add_lot"
	TypeViewCatalogue  = "view_catalogue"
	TypeNoteInterest   = "note_interest"
	TypeOpenAuction    = "open_auction"
	TypeMakeBid        = "make_bid"
	TypeCloseAuction   = "close_auction"
)

// Response types written by the house server.
const (
	TypePong              = "pong"
	TypeKeyResponse       = "key_response"
	TypeResult            = "result"
	TypeCatalogueResponse = "catalogue"
	TypeError             = "error"
)

// Request is the envelope of every command. Only the fields relevant to Type
// are read.
type Request struct {
	Type string `json:"type"`

	// Participant registration
	Name        string `json:"name,omitempty"`
	Address     string `json:"address,omitempty"`
	BankAccount string `json:"bank_account,omitempty"`
	AuthCode    string `json:"auth_code,omitempty"`

	// Lot operations
	Seller       string      `json:"seller,omitempty"`
	Buyer        string      `json:"buyer,omitempty"`
	Auctioneer   string      `json:"auctioneer,omitempty"`
	Lot          int         `json:"lot,omitempty"`
	Description  string      `json:"description,omitempty"`
	ReservePrice *core.Money `json:"reserve_price,omitempty"`
	Amount       *core.Money `json:"amount,omitempty"`
}

// Result is the response to every lifecycle command. Kind mirrors
// core.StatusKind; Sale and Receipt are set when a close reached settlement.
type Result struct {
	Type    string           `json:"type"`
	Success bool             `json:"success"`
	Kind    core.StatusKind  `json:"kind"`
	Message string           `json:"message,omitempty"`
	Sale    *core.SaleRecord `json:"sale,omitempty"`
	Receipt *SignedReceipt   `json:"receipt,omitempty"`

	ProcessingTime int64 `json:"processing_time_ms"`
}

// CatalogueResponse answers view_catalogue.
type CatalogueResponse struct {
	Type    string                `json:"type"`
	Entries []core.CatalogueEntry `json:"entries"`
}

// KeyResponse carries the public key receipts are verified against.
type KeyResponse struct {
	Type         string `json:"type"`
	KeyAlgorithm string `json:"key_algorithm"` // e.g. "ECDSA-P384"
	PublicKey    string `json:"public_key"`    // PEM format
}

// PongResponse answers ping.
type PongResponse struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorResponse reports a request the server could not process at all.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
