package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Notifier delivers lifecycle events to participant addresses. Delivery is
// fire-and-forget: the House never inspects the outcome.
type Notifier interface {
	AuctionOpened(ctx context.Context, address string, lotNumber int)
	BidAccepted(ctx context.Context, address string, lotNumber int, amount Money)
	LotSold(ctx context.Context, address string, lotNumber int)
	LotUnsold(ctx context.Context, address string, lotNumber int)
}

// Settlement moves funds between two accounts. Any non-nil error is treated as
// a failed transfer; the reason is opaque to the House.
type Settlement interface {
	Transfer(ctx context.Context, fromAccount, fromAuthCode, toAccount string, amount Money) error
}

// SettlementPolicy controls whether the house → seller leg depends on the
// buyer → house leg.
type SettlementPolicy string

const (
	// SettleBothLegs attempts both transfers regardless of the first outcome.
	SettleBothLegs SettlementPolicy = "both"
	// SettleSequential skips the seller leg when the buyer leg fails.
	SettleSequential SettlementPolicy = "sequential"
)

// Config is fixed for the lifetime of a House.
type Config struct {
	BuyerPremium  float64 // percent added to the hammer price, paid by the buyer
	Commission    float64 // percent of the hammer price retained by the house
	Increment     Money   // minimum raise over the current highest bid
	HouseAccount  string
	HouseAuthCode string
	Policy        SettlementPolicy
}

// Validate checks percentages, increment, and policy.
func (c Config) Validate() error {
	if !(c.BuyerPremium >= 0 && c.BuyerPremium <= 100) {
		return fmt.Errorf("%w: buyer premium %.2f outside [0,100]", ErrInvalidConfig, c.BuyerPremium)
	}
	if !(c.Commission >= 0 && c.Commission <= 100) {
		return fmt.Errorf("%w: commission %.2f outside [0,100]", ErrInvalidConfig, c.Commission)
	}
	if c.Increment.Compare(Zero) < 0 {
		return fmt.Errorf("%w: negative increment %s", ErrInvalidConfig, c.Increment)
	}
	if c.HouseAccount == "" {
		return fmt.Errorf("%w: house account is required", ErrInvalidConfig)
	}
	switch c.Policy {
	case "", SettleBothLegs, SettleSequential:
	default:
		return fmt.Errorf("%w: unknown settlement policy %q", ErrInvalidConfig, c.Policy)
	}
	return nil
}

// House is the auction lifecycle engine. All operations are serialised by a
// single mutex held across their Notifier and Settlement calls, so operations
// on a lot complete, and notify, in one total order.
type House struct {
	mu         sync.Mutex
	cfg        Config
	registry   *Registry
	catalogue  *Catalogue
	notifier   Notifier
	settlement Settlement
	logger     *slog.Logger
}

// Option customises a House.
type Option func(*House)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(h *House) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHouse builds an engine from a validated configuration.
func NewHouse(cfg Config, notifier Notifier, settlement Settlement, opts ...Option) (*House, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if notifier == nil || settlement == nil {
		return nil, fmt.Errorf("%w: notifier and settlement are required", ErrInvalidConfig)
	}
	if cfg.Policy == "" {
		cfg.Policy = SettleBothLegs
	}

	h := &House{
		cfg:        cfg,
		registry:   NewRegistry(),
		catalogue:  NewCatalogue(),
		notifier:   notifier,
		settlement: settlement,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Config returns the configuration the House was built with.
func (h *House) Config() Config {
	return h.cfg
}

// RegisterBuyer adds a buyer. Fails with ErrDuplicateName if the buyer name is taken.
func (h *House) RegisterBuyer(name, address, bankAccount, authCode string) Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger.Debug("registerBuyer", "buyer", name)

	err := h.registry.RegisterBuyer(name, Buyer{Address: address, BankAccount: bankAccount, AuthCode: authCode})
	if err != nil {
		return Failure(fmt.Errorf("register buyer %q: %w", name, err))
	}
	return OK()
}

// RegisterSeller adds a seller. Fails with ErrDuplicateName if the seller name is taken.
func (h *House) RegisterSeller(name, address, bankAccount string) Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger.Debug("registerSeller", "seller", name)

	err := h.registry.RegisterSeller(name, Seller{Address: address, BankAccount: bankAccount})
	if err != nil {
		return Failure(fmt.Errorf("register seller %q: %w", name, err))
	}
	return OK()
}

// AddLot catalogues a new lot at StatusUnsold.
func (h *House) AddLot(sellerName string, number int, description string, reserve Money) Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger.Debug("addLot", "seller", sellerName, "lot", number)

	if _, ok := h.registry.Seller(sellerName); !ok {
		return Failure(fmt.Errorf("add lot %d: %w: %q", number, ErrUnknownSeller, sellerName))
	}
	if err := h.catalogue.Add(newLot(sellerName, number, description, reserve)); err != nil {
		return Failure(fmt.Errorf("add lot %d: %w", number, err))
	}
	return OK()
}

// ViewCatalogue returns a snapshot of the catalogue ordered by lot number.
func (h *House) ViewCatalogue() []CatalogueEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.catalogue.Entries()
}

// NoteInterest records that a registered buyer may bid on a lot. Repeating it
// is a no-op. Sold lots no longer accept interest.
func (h *House) NoteInterest(buyerName string, lotNumber int) Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger.Debug("noteInterest", "buyer", buyerName, "lot", lotNumber)

	lot, ok := h.catalogue.Lot(lotNumber)
	if !ok {
		return Failure(fmt.Errorf("note interest: %w: %d", ErrUnknownLot, lotNumber))
	}
	if status, _ := h.catalogue.Status(lotNumber); status.Terminal() {
		return Failure(fmt.Errorf("note interest: %w: lot %d is %s", ErrLotClosed, lotNumber, status))
	}
	if _, ok := h.registry.Buyer(buyerName); !ok {
		return Failure(fmt.Errorf("note interest: %w: %q", ErrUnknownBuyer, buyerName))
	}
	lot.InterestedBuyers[buyerName] = struct{}{}
	return OK()
}

// OpenAuction moves an UNSOLD lot into auction under the named auctioneer,
// registering the auctioneer on first use, and notifies the seller and every
// interested buyer.
func (h *House) OpenAuction(ctx context.Context, auctioneerName, auctioneerAddress string, lotNumber int) Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger.Debug("openAuction", "auctioneer", auctioneerName, "lot", lotNumber)

	lot, ok := h.catalogue.Lot(lotNumber)
	if !ok {
		return Failure(fmt.Errorf("open auction: %w: %d", ErrUnknownLot, lotNumber))
	}
	switch status, _ := h.catalogue.Status(lotNumber); {
	case status.Terminal():
		return Failure(fmt.Errorf("open auction: %w: lot %d is %s", ErrLotClosed, lotNumber, status))
	case status != StatusUnsold:
		return Failure(fmt.Errorf("open auction: %w: lot %d is %s", ErrUnknownLot, lotNumber, status))
	}

	h.registry.EnsureAuctioneer(auctioneerName, auctioneerAddress)
	h.catalogue.setStatus(lotNumber, StatusInAuction)
	lot.AuctioneerName = auctioneerName
	lot.CurrentHighestBid = Zero
	lot.CurrentHighestBidder = ""
	h.logger.Info("auction opened", "lot", lotNumber, "auctioneer", auctioneerName)

	for _, address := range h.sellerAndInterested(lot, "") {
		h.notifier.AuctionOpened(ctx, address, lotNumber)
	}
	return OK()
}

// MakeBid records a bid from an interested buyer if it reaches the current
// highest bid plus the configured increment, then notifies the auctioneer, the
// seller, and every other interested buyer.
func (h *House) MakeBid(ctx context.Context, buyerName string, lotNumber int, bid Money) Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger.Debug("makeBid", "buyer", buyerName, "lot", lotNumber, "bid", bid.String())

	lot, ok := h.catalogue.Lot(lotNumber)
	if !ok {
		return Failure(fmt.Errorf("make bid: %w: %d", ErrUnknownLot, lotNumber))
	}
	if status, _ := h.catalogue.Status(lotNumber); status != StatusInAuction {
		return Failure(fmt.Errorf("make bid: %w: lot %d is %s", ErrAuctionNotOpen, lotNumber, status))
	}
	if !lot.IsInterested(buyerName) {
		return Failure(fmt.Errorf("make bid: %w: %q on lot %d", ErrNotInterested, buyerName, lotNumber))
	}
	if !BidClearsIncrement(bid, lot.CurrentHighestBid, h.cfg.Increment) {
		return Failure(fmt.Errorf("make bid: %w: %s < %s", ErrBidTooLow,
			bid, BidThreshold(lot.CurrentHighestBid, h.cfg.Increment)))
	}
	if _, err := ComputeSettlement(bid, h.cfg.BuyerPremium, h.cfg.Commission); err != nil {
		return Failure(fmt.Errorf("make bid: %w", err))
	}

	lot.CurrentHighestBid = bid
	lot.CurrentHighestBidder = buyerName
	h.logger.Info("bid accepted", "lot", lotNumber, "buyer", buyerName, "bid", bid.String())

	if auctioneer, ok := h.registry.Auctioneer(lot.AuctioneerName); ok {
		h.notifier.BidAccepted(ctx, auctioneer.Address, lotNumber, bid)
	}
	for _, address := range h.sellerAndInterested(lot, buyerName) {
		h.notifier.BidAccepted(ctx, address, lotNumber, bid)
	}
	return OK()
}

// CloseAuction ends the auction on a lot. Only the auctioneer who opened it may
// close it. Below the reserve the lot returns to UNSOLD; otherwise both
// settlement legs run and the lot becomes SOLD, or SOLD_PENDING_PAYMENT if
// either leg failed.
func (h *House) CloseAuction(ctx context.Context, auctioneerName string, lotNumber int) Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger.Debug("closeAuction", "auctioneer", auctioneerName, "lot", lotNumber)

	lot, ok := h.catalogue.Lot(lotNumber)
	if !ok || lot.AuctioneerName == "" || lot.AuctioneerName != auctioneerName {
		return Failure(fmt.Errorf("close auction %d: %w", lotNumber, ErrUnauthorized))
	}
	if status, _ := h.catalogue.Status(lotNumber); status != StatusInAuction {
		return Failure(fmt.Errorf("close auction: %w: lot %d is %s", ErrAuctionNotOpen, lotNumber, status))
	}

	if !lot.HasBid() || !MeetsReserve(lot.CurrentHighestBid, lot.ReservePrice) {
		h.catalogue.setStatus(lotNumber, StatusUnsold)
		h.logger.Info("lot unsold", "lot", lotNumber,
			"highest_bid", lot.CurrentHighestBid.String(), "reserve", lot.ReservePrice.String())

		for _, address := range h.sellerAndInterested(lot, "") {
			h.notifier.LotUnsold(ctx, address, lotNumber)
		}
		return Status{Kind: KindNoSale, Message: "reserve price not met"}
	}

	record, err := h.settle(ctx, lot)
	if err != nil {
		return Failure(fmt.Errorf("close auction %d: %w", lotNumber, err))
	}
	if record.BuyerToHouse.OK && record.HouseToSeller.OK {
		record.Status = StatusSold
		h.catalogue.setStatus(lotNumber, StatusSold)
		h.logger.Info("lot sold", "lot", lotNumber, "winner", record.Winner, "hammer", record.HammerPrice.String())

		if winner, ok := h.registry.Buyer(record.Winner); ok {
			h.notifier.LotSold(ctx, winner.Address, lotNumber)
		}
		for _, address := range h.sellerAndInterested(lot, record.Winner) {
			h.notifier.LotSold(ctx, address, lotNumber)
		}
		return Status{Kind: KindSale, Message: "transaction successful", Sale: record}
	}

	record.Status = StatusSoldPendingPayment
	h.catalogue.setStatus(lotNumber, StatusSoldPendingPayment)
	h.logger.Warn("lot sold pending payment", "lot", lotNumber, "winner", record.Winner,
		"buyer_leg_ok", record.BuyerToHouse.OK, "seller_leg_ok", record.HouseToSeller.OK)
	return Status{Kind: KindSalePending, Message: "transaction unsuccessful", Sale: record}
}

// settle runs the buyer → house and house → seller transfers for a lot whose
// reserve has been met. No transfer is attempted if the amounts cannot be
// computed, and the lot stays in auction.
func (h *House) settle(ctx context.Context, lot *Lot) (*SaleRecord, error) {
	buyer, _ := h.registry.Buyer(lot.CurrentHighestBidder)
	seller, _ := h.registry.Seller(lot.SellerName)
	amounts, err := ComputeSettlement(lot.CurrentHighestBid, h.cfg.BuyerPremium, h.cfg.Commission)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("settling lot", "lot", lot.Number,
		"buyer_total", amounts.BuyerTotal.String(),
		"seller_net", amounts.SellerNet.String(),
		"house_margin", amounts.HouseMargin().String())

	record := &SaleRecord{
		LotNumber:   lot.Number,
		Description: lot.Description,
		Seller:      lot.SellerName,
		Winner:      lot.CurrentHighestBidder,
		Auctioneer:  lot.AuctioneerName,
		HammerPrice: lot.CurrentHighestBid,
		BuyerTotal:  amounts.BuyerTotal,
		SellerNet:   amounts.SellerNet,

		InterestedBuyers: lot.InterestedNames(),
	}

	record.BuyerToHouse = h.transfer(ctx, buyer.BankAccount, buyer.AuthCode, h.cfg.HouseAccount, amounts.BuyerTotal)

	if h.cfg.Policy == SettleSequential && !record.BuyerToHouse.OK {
		record.HouseToSeller = TransferLeg{
			FromAccount: h.cfg.HouseAccount,
			ToAccount:   seller.BankAccount,
			Amount:      amounts.SellerNet,
			Error:       "skipped: buyer payment failed",
		}
		return record, nil
	}
	record.HouseToSeller = h.transfer(ctx, h.cfg.HouseAccount, h.cfg.HouseAuthCode, seller.BankAccount, amounts.SellerNet)
	return record, nil
}

func (h *House) transfer(ctx context.Context, from, authCode, to string, amount Money) TransferLeg {
	leg := TransferLeg{FromAccount: from, ToAccount: to, Amount: amount, Attempted: true}
	if err := h.settlement.Transfer(ctx, from, authCode, to, amount); err != nil {
		leg.Error = err.Error()
		h.logger.Warn("transfer failed", "from", from, "to", to, "amount", amount.String(), "error", err)
		return leg
	}
	leg.OK = true
	return leg
}

// sellerAndInterested returns the seller's address followed by the addresses
// of interested buyers in name order, skipping the named buyer.
func (h *House) sellerAndInterested(lot *Lot, skipBuyer string) []string {
	addresses := make([]string, 0, len(lot.InterestedBuyers)+1)
	if seller, ok := h.registry.Seller(lot.SellerName); ok {
		addresses = append(addresses, seller.Address)
	}

	for _, name := range lot.InterestedNames() {
		if name == skipBuyer {
			continue
		}
		if buyer, ok := h.registry.Buyer(name); ok {
			addresses = append(addresses, buyer.Address)
		}
	}
	return addresses
}
