package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/segmentio/kafka-go"

	"github.com/cloudx-io/auctionhouse/core"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func decode(t *testing.T, msg kafka.Message) Notification {
	t.Helper()
	var note Notification
	assert.Nil(t, json.Unmarshal(msg.Value, &note))
	return note
}

func TestKafkaNotifier_PublishesKeyedByLot(t *testing.T) {
	w := &fakeWriter{}
	k := newKafkaNotifier(w, 0, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ctx := context.Background()

	k.AuctionOpened(ctx, "@SellerY", 2)
	k.BidAccepted(ctx, "@Auctioneer1", 2, core.MustParseMoney("70.00"))
	k.LotSold(ctx, "@BuyerA", 2)
	k.LotUnsold(ctx, "@BuyerB", 3)

	assert.Equal(t, 4, len(w.msgs))
	check.Equal(t, "2", string(w.msgs[0].Key))
	check.Equal(t, "3", string(w.msgs[3].Key))

	opened := decode(t, w.msgs[0])
	check.Equal(t, EventAuctionOpened, opened.Event)
	check.Equal(t, "@SellerY", opened.Address)
	check.Equal(t, 2, opened.Lot)
	check.True(t, opened.Amount == nil)

	bid := decode(t, w.msgs[1])
	check.Equal(t, EventBidAccepted, bid.Event)
	assert.True(t, bid.Amount != nil)
	check.Equal(t, "70.00", bid.Amount.String())
	check.True(t, strings.Contains(string(w.msgs[1].Value), `"amount":"70.00"`))

	check.Equal(t, EventLotSold, decode(t, w.msgs[2]).Event)
	check.Equal(t, EventLotUnsold, decode(t, w.msgs[3]).Event)

	check.Nil(t, k.Close())
	check.True(t, w.closed)
}

func TestKafkaNotifier_PublishFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	w := &fakeWriter{err: errors.New("broker down")}
	k := newKafkaNotifier(w, 0, slog.New(slog.NewTextHandler(&logs, nil)))

	k.LotSold(context.Background(), "@BuyerA", 1)

	check.Equal(t, 0, len(w.msgs))
	check.True(t, strings.Contains(logs.String(), "failed to publish notification"))
	check.True(t, strings.Contains(logs.String(), "broker down"))
}

func TestNewKafkaNotifier_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewKafkaNotifier(KafkaConfig{Topic: "auction-events"}, nil)
	check.Error(t, err)

	_, err = NewKafkaNotifier(KafkaConfig{Brokers: []string{"localhost:9092"}}, nil)
	check.Error(t, err)

	k, err := NewKafkaNotifier(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "auction-events"}, nil)
	assert.Nil(t, err)
	check.Nil(t, k.Close())
}

func TestLogNotifier(t *testing.T) {
	var logs bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&logs, nil)))

	n.BidAccepted(context.Background(), "@BuyerB", 1, core.MustParseMoney("110"))

	out := logs.String()
	check.True(t, strings.Contains(out, "event=bid_accepted"))
	check.True(t, strings.Contains(out, "address=@BuyerB"))
	check.True(t, strings.Contains(out, "amount=110.00"))
}

func TestMulti_FansOutInOrder(t *testing.T) {
	a, b := &fakeWriter{}, &fakeWriter{}
	quiet := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	m := Multi{newKafkaNotifier(a, 0, quiet), newKafkaNotifier(b, 0, quiet)}

	m.AuctionOpened(context.Background(), "@SellerY", 1)
	m.LotUnsold(context.Background(), "@SellerY", 1)

	for _, w := range []*fakeWriter{a, b} {
		assert.Equal(t, 2, len(w.msgs))
		check.Equal(t, EventAuctionOpened, decode(t, w.msgs[0]).Event)
		check.Equal(t, EventLotUnsold, decode(t, w.msgs[1]).Event)
	}
}
