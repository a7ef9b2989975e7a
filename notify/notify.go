// Package notify provides core.Notifier implementations.
package notify

import (
	"context"
	"log/slog"

	"github.com/cloudx-io/auctionhouse/core"
)

// Event names carried on every delivered notification.
const (
	EventAuctionOpened = "auction_opened"
	EventBidAccepted   = "bid_accepted"
	EventLotSold       = "lot_sold"
	EventLotUnsold     = "lot_unsold"
)

// Notification is one delivery to one participant address.
type Notification struct {
	Event   string      `json:"event"`
	Address string      `json:"address"`
	Lot     int         `json:"lot"`
	Amount  *core.Money `json:"amount,omitempty"`
}

// LogNotifier writes each notification as a structured log line.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier logging at info on logger, or slog.Default() if nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) deliver(ctx context.Context, note Notification) {
	attrs := []any{"event", note.Event, "address", note.Address, "lot", note.Lot}
	if note.Amount != nil {
		attrs = append(attrs, "amount", note.Amount.String())
	}
	n.logger.InfoContext(ctx, "notify", attrs...)
}

func (n *LogNotifier) AuctionOpened(ctx context.Context, address string, lotNumber int) {
	n.deliver(ctx, Notification{Event: EventAuctionOpened, Address: address, Lot: lotNumber})
}

func (n *LogNotifier) BidAccepted(ctx context.Context, address string, lotNumber int, amount core.Money) {
	n.deliver(ctx, Notification{Event: EventBidAccepted, Address: address, Lot: lotNumber, Amount: &amount})
}

func (n *LogNotifier) LotSold(ctx context.Context, address string, lotNumber int) {
	n.deliver(ctx, Notification{Event: EventLotSold, Address: address, Lot: lotNumber})
}

func (n *LogNotifier) LotUnsold(ctx context.Context, address string, lotNumber int) {
	n.deliver(ctx, Notification{Event: EventLotUnsold, Address: address, Lot: lotNumber})
}

// Multi fans every notification out to each notifier in order.
type Multi []core.Notifier

func (m Multi) AuctionOpened(ctx context.Context, address string, lotNumber int) {
	for _, n := range m {
		n.AuctionOpened(ctx, address, lotNumber)
	}
}

func (m Multi) BidAccepted(ctx context.Context, address string, lotNumber int, amount core.Money) {
	for _, n := range m {
		n.BidAccepted(ctx, address, lotNumber, amount)
	}
}

func (m Multi) LotSold(ctx context.Context, address string, lotNumber int) {
	for _, n := range m {
		n.LotSold(ctx, address, lotNumber)
	}
}

func (m Multi) LotUnsold(ctx context.Context, address string, lotNumber int) {
	for _, n := range m {
		n.LotUnsold(ctx, address, lotNumber)
	}
}

var (
	_ core.Notifier = (*LogNotifier)(nil)
	_ core.Notifier = Multi(nil)
)
