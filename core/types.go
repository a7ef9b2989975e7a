package core

import "slices"

// LotStatus is the externally visible state of a lot.
type LotStatus string

const (
	StatusUnsold             LotStatus = "UNSOLD"
	StatusInAuction          LotStatus = "IN_AUCTION"
	StatusSold               LotStatus = "SOLD"
	StatusSoldPendingPayment LotStatus = "SOLD_PENDING_PAYMENT"
)

// Terminal reports whether no further lifecycle operation can move the lot.
func (s LotStatus) Terminal() bool {
	return s == StatusSold || s == StatusSoldPendingPayment
}

// Buyer is a registered bidder. Never mutated after registration.
type Buyer struct {
	Address     string `json:"address"`
	BankAccount string `json:"bank_account"`
	AuthCode    string `json:"-"`
}

// Seller is a registered owner of lots.
type Seller struct {
	Address     string `json:"address"`
	BankAccount string `json:"bank_account"`
}

// Auctioneer runs auctions. Created the first time a name opens an auction.
type Auctioneer struct {
	Address string `json:"address"`
}

// Lot is the full record of an item for sale, including its bidding state.
// It is owned by the Catalogue and never handed out directly.
type Lot struct {
	SellerName           string
	Number               int
	Description          string
	ReservePrice         Money
	InterestedBuyers     map[string]struct{}
	AuctioneerName       string
	CurrentHighestBid    Money
	CurrentHighestBidder string
}

func newLot(sellerName string, number int, description string, reserve Money) *Lot {
	return &Lot{
		SellerName:       sellerName,
		Number:           number,
		Description:      description,
		ReservePrice:     reserve,
		InterestedBuyers: make(map[string]struct{}),
	}
}

// IsInterested reports whether buyer has noted interest in the lot.
func (l *Lot) IsInterested(buyer string) bool {
	_, ok := l.InterestedBuyers[buyer]
	return ok
}

// InterestedNames returns the interested buyers' names in sorted order.
func (l *Lot) InterestedNames() []string {
	names := make([]string, 0, len(l.InterestedBuyers))
	for name := range l.InterestedBuyers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HasBid reports whether any bid has been accepted.
func (l *Lot) HasBid() bool {
	return l.CurrentHighestBidder != ""
}

// CatalogueEntry is the public projection of a lot.
type CatalogueEntry struct {
	Number      int       `json:"number"`
	Description string    `json:"description"`
	Status      LotStatus `json:"status"`
}

// TransferLeg is the outcome of one settlement transfer.
type TransferLeg struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Amount      Money  `json:"amount"`
	Attempted   bool   `json:"attempted"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
}

// SaleRecord describes a closed auction whose reserve was met.
// It is attached to Sale and SalePending results.
type SaleRecord struct {
	LotNumber     int         `json:"lot_number"`
	Description   string      `json:"description"`
	Seller        string      `json:"seller"`
	Winner        string      `json:"winner"`
	Auctioneer    string      `json:"auctioneer"`
	HammerPrice   Money       `json:"hammer_price"`
	BuyerTotal    Money       `json:"buyer_total"`
	SellerNet     Money       `json:"seller_net"`
	BuyerToHouse  TransferLeg `json:"buyer_to_house"`
	HouseToSeller TransferLeg `json:"house_to_seller"`
	Status        LotStatus   `json:"status"`

	// InterestedBuyers is the interest set at close, in name order. It is
	// committed to by the receipt's interest hash and never sent in the clear.
	InterestedBuyers []string `json:"-"`
}
