package core

import "fmt"

// SettlementAmounts holds the two legs of a sale.
type SettlementAmounts struct {
	// BuyerTotal is the hammer price plus the buyer premium, paid buyer → house.
	BuyerTotal Money
	// SellerNet is the hammer price less commission, paid house → seller.
	SellerNet Money
}

// ComputeSettlement applies the buyer premium and seller commission to a
// hammer price. Each amount is rounded to the penny independently.
func ComputeSettlement(hammer Money, buyerPremium, commission float64) (SettlementAmounts, error) {
	buyerTotal, err := hammer.AddPercent(buyerPremium)
	if err != nil {
		return SettlementAmounts{}, fmt.Errorf("buyer total: %w", err)
	}
	sellerNet, err := SellerNet(hammer, commission)
	if err != nil {
		return SettlementAmounts{}, fmt.Errorf("seller net: %w", err)
	}
	return SettlementAmounts{BuyerTotal: buyerTotal, SellerNet: sellerNet}, nil
}

// SellerNet computes hammer * (1 + (100-commission)/100) - hammer, which is the
// seller's share after the house keeps its commission.
func SellerNet(hammer Money, commission float64) (Money, error) {
	gross, err := hammer.AddPercent(100 - commission)
	if err != nil {
		return Money{}, err
	}
	return gross.Subtract(hammer), nil
}

// HouseMargin is what the house keeps once both legs settle.
func (a SettlementAmounts) HouseMargin() Money {
	return a.BuyerTotal.Subtract(a.SellerNet)
}
