package main

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/auctionhouse/core"
	"github.com/cloudx-io/auctionhouse/houseapi/parsing"
	"github.com/cloudx-io/auctionhouse/validation"
)

func testSaleRecord() *core.SaleRecord {
	return &core.SaleRecord{
		LotNumber:   1,
		Description: "Bicycle",
		Seller:      "SellerY",
		Winner:      "BuyerB",
		Auctioneer:  "Auctioneer1",
		HammerPrice: core.MustParseMoney("100"),
		BuyerTotal:  core.MustParseMoney("110"),
		SellerNet:   core.MustParseMoney("85"),
		BuyerToHouse: core.TransferLeg{
			FromAccount: "B2", ToAccount: "AH", Amount: core.MustParseMoney("110"), Attempted: true, OK: true,
		},
		HouseToSeller: core.TransferLeg{
			FromAccount: "AH", ToAccount: "S1", Amount: core.MustParseMoney("85"), Attempted: true,
			Error: "account unavailable",
		},
		Status:           core.StatusSoldPendingPayment,
		InterestedBuyers: []string{"BuyerA", "BuyerB"},
	}
}

func TestReceiptIssuer_Issue(t *testing.T) {
	km, err := NewKeyManager()
	assert.NoError(t, err)
	issuer := NewReceiptIssuer(km)
	issuer.now = func() time.Time { return time.UnixMilli(1760000000000) }

	signed, coseBytes, err := issuer.Issue(testSaleRecord())
	assert.NoError(t, err)
	check.NotEqual(t, "", signed.ReceiptID)

	payload, err := parsing.ParseReceiptPayload(coseBytes)
	assert.NoError(t, err)
	check.Equal(t, signed.ReceiptID, payload.ReceiptID)
	check.Equal(t, 1, payload.LotNumber)
	check.Equal(t, "BuyerB", payload.Winner)
	check.Equal(t, "100.00", payload.HammerPrice)
	check.Equal(t, "110.00", payload.BuyerTotal)
	check.Equal(t, "85.00", payload.SellerNet)
	check.Equal(t, "SOLD_PENDING_PAYMENT", payload.Status)
	check.True(t, payload.BuyerPaid)
	check.False(t, payload.SellerPaid)
	check.Equal(t, int64(1760000000000), payload.IssuedAt)
	check.Equal(t, 64, len(payload.SaleHashNonce))

	fromCompact, err := signed.Compact.Decompress()
	assert.NoError(t, err)
	check.Equal(t, coseBytes, fromCompact)

	publicKeyPEM, err := km.PublicKeyPEM()
	assert.NoError(t, err)
	premium, commission := 10.0, 15.0
	result, _, err := validation.ValidateReceipt(&validation.ReceiptValidationInput{
		Receipt:          signed.COSEBase64,
		PublicKeyPEM:     publicKeyPEM,
		ExpectedWinner:   "BuyerB",
		InterestedBuyers: []string{"BuyerA", "BuyerB"},
		BuyerPremium:     &premium,
		Commission:       &commission,
	})
	assert.NoError(t, err)
	check.True(t, result.IsValid())
}

func TestReceiptIssuer_FreshNonces(t *testing.T) {
	km, err := NewKeyManager()
	assert.NoError(t, err)
	issuer := NewReceiptIssuer(km)

	first, firstCOSE, err := issuer.Issue(testSaleRecord())
	assert.NoError(t, err)
	second, secondCOSE, err := issuer.Issue(testSaleRecord())
	assert.NoError(t, err)

	check.NotEqual(t, first.ReceiptID, second.ReceiptID)

	a, err := parsing.ParseReceiptPayload(firstCOSE)
	assert.NoError(t, err)
	b, err := parsing.ParseReceiptPayload(secondCOSE)
	assert.NoError(t, err)
	check.NotEqual(t, a.SaleHash, b.SaleHash)
	check.NotEqual(t, a.InterestHash, b.InterestHash)
}
