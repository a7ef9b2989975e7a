package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/peterldowns/testy/check"
)

// mockNotifier records every delivery as "event address lot [amount]".
type mockNotifier struct {
	mu       sync.Mutex
	received []string
	expected []string
}

func (m *mockNotifier) record(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, event)
}

func (m *mockNotifier) AuctionOpened(_ context.Context, address string, lot int) {
	m.record(fmt.Sprintf("opened %s %d", address, lot))
}

func (m *mockNotifier) BidAccepted(_ context.Context, address string, lot int, amount Money) {
	m.record(fmt.Sprintf("bid %s %d %s", address, lot, amount))
}

func (m *mockNotifier) LotSold(_ context.Context, address string, lot int) {
	m.record(fmt.Sprintf("sold %s %d", address, lot))
}

func (m *mockNotifier) LotUnsold(_ context.Context, address string, lot int) {
	m.record(fmt.Sprintf("unsold %s %d", address, lot))
}

func (m *mockNotifier) expectAuctionOpened(address string, lot int) {
	m.expected = append(m.expected, fmt.Sprintf("opened %s %d", address, lot))
}

func (m *mockNotifier) expectBidAccepted(address string, lot int, amount Money) {
	m.expected = append(m.expected, fmt.Sprintf("bid %s %d %s", address, lot, amount))
}

func (m *mockNotifier) expectLotSold(address string, lot int) {
	m.expected = append(m.expected, fmt.Sprintf("sold %s %d", address, lot))
}

func (m *mockNotifier) expectLotUnsold(address string, lot int) {
	m.expected = append(m.expected, fmt.Sprintf("unsold %s %d", address, lot))
}

func (m *mockNotifier) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expected = nil
	m.received = nil
}

// verify compares expected and received deliveries as multisets, then resets both.
func (m *mockNotifier) verify(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	expected := slices.Clone(m.expected)
	received := slices.Clone(m.received)
	slices.Sort(expected)
	slices.Sort(received)
	if expected == nil {
		expected = []string{}
	}
	if received == nil {
		received = []string{}
	}
	check.Equal(t, expected, received)

	m.expected = nil
	m.received = nil
}

type transferCall struct {
	From     string
	AuthCode string
	To       string
	Amount   string
}

// mockSettlement records transfers and fails any transfer touching a bad account.
type mockSettlement struct {
	mu          sync.Mutex
	calls       []transferCall
	expected    []transferCall
	badAccounts map[string]bool
}

func newMockSettlement() *mockSettlement {
	return &mockSettlement{badAccounts: make(map[string]bool)}
}

func (m *mockSettlement) setBadAccount(account string) {
	m.badAccounts[account] = true
}

func (m *mockSettlement) Transfer(_ context.Context, from, authCode, to string, amount Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, transferCall{From: from, AuthCode: authCode, To: to, Amount: amount.String()})
	if m.badAccounts[from] || m.badAccounts[to] {
		return fmt.Errorf("account unavailable")
	}
	return nil
}

func (m *mockSettlement) expectTransfer(from, authCode, to string, amount Money) {
	m.expected = append(m.expected, transferCall{From: from, AuthCode: authCode, To: to, Amount: amount.String()})
}

// verify compares transfers in call order, then resets.
func (m *mockSettlement) verify(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	expected := m.expected
	if expected == nil {
		expected = []transferCall{}
	}
	calls := m.calls
	if calls == nil {
		calls = []transferCall{}
	}
	check.Equal(t, expected, calls)

	m.expected = nil
	m.calls = nil
}
