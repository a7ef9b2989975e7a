package core

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestBidClearsIncrement(t *testing.T) {
	tests := []struct {
		name      string
		bid       string
		current   string
		increment string
		expected  bool
	}{
		{"bid equal to current", "100.00", "100.00", "10.00", false},
		{"bid one pound short", "109.00", "100.00", "10.00", false},
		{"bid one penny short", "109.99", "100.00", "10.00", false},
		{"bid exactly at threshold", "110.00", "100.00", "10.00", true},
		{"bid above threshold", "300.00", "100.00", "10.00", true},
		{"first bid above increment", "70.00", "0", "10.00", true},
		{"first bid below increment", "9.99", "0", "10.00", false},
		{"zero increment accepts equal bid", "50.00", "50.00", "0", true},
		{"sub-penny input rounds before comparing", "109.995", "100.00", "10.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BidClearsIncrement(MustParseMoney(tt.bid), MustParseMoney(tt.current), MustParseMoney(tt.increment))
			check.Equal(t, tt.expected, result)
		})
	}
}

func TestBidThreshold(t *testing.T) {
	check.Equal(t, "110.00", BidThreshold(MustParseMoney("100"), MustParseMoney("10")).String())
}

func TestMeetsReserve(t *testing.T) {
	tests := []struct {
		name     string
		bid      string
		reserve  string
		expected bool
	}{
		{"bid above reserve", "100.00", "80.00", true},
		{"bid at reserve", "80.00", "80.00", true},
		{"bid below reserve", "70.00", "100.00", false},
		{"zero reserve", "0", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check.Equal(t, tt.expected, MeetsReserve(MustParseMoney(tt.bid), MustParseMoney(tt.reserve)))
		})
	}
}
