package core

// BidThreshold returns the smallest acceptable next bid: current + increment.
func BidThreshold(current, increment Money) Money {
	return current.Add(increment)
}

// BidClearsIncrement returns true if bid meets or exceeds current + increment.
// With current 100.00 and increment 10.00, 109.99 is rejected and 110.00 accepted.
func BidClearsIncrement(bid, current, increment Money) bool {
	return BidThreshold(current, increment).LessOrEqual(bid)
}

// MeetsReserve returns true if the hammer price is at or above the reserve.
func MeetsReserve(bid, reserve Money) bool {
	return reserve.LessOrEqual(bid)
}
