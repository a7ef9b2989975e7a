package validation

import (
	"fmt"

	"github.com/cloudx-io/auctionhouse/core"
	"github.com/cloudx-io/auctionhouse/houseapi"
	"github.com/cloudx-io/auctionhouse/houseapi/parsing"
)

// ReceiptValidationInput contains all inputs needed for receipt validation.
// Optional fields left at their zero value are not checked.
type ReceiptValidationInput struct {
	Receipt      houseapi.ReceiptCOSEBase64
	PublicKeyPEM string

	ExpectedLot    *int
	ExpectedWinner string
	ExpectedHammer *core.Money

	// InterestedBuyers, when set, must hash to the receipt's interest hash.
	InterestedBuyers []string

	// BuyerPremium and Commission, when both set, are used to recompute the
	// buyer total and seller net.
	BuyerPremium *float64
	Commission   *float64
}

// ValidateReceipt verifies a signed sale receipt and checks:
// - The COSE signature against the house public key
// - The sale hash against the receipt's own fields
// - The interest hash against the supplied buyer set
// - The settlement amounts against the supplied premium and commission
// - Lot, winner, and hammer price expectations
//
// Returns:
//   - ReceiptValidationResult with detailed results (call result.IsValid() to check overall status)
//   - the decoded receipt payload
//   - error if validation cannot be performed (e.g., malformed input)
func ValidateReceipt(input *ReceiptValidationInput) (*ReceiptValidationResult, *houseapi.ReceiptPayload, error) {
	coseBytes, err := input.Receipt.Decode()
	if err != nil {
		return nil, nil, fmt.Errorf("decode receipt: %w", err)
	}

	key, err := ParsePublicKeyPEM(input.PublicKeyPEM)
	if err != nil {
		return nil, nil, err
	}

	receipt, err := parsing.ParseReceiptPayload(coseBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse receipt payload: %w", err)
	}

	result := &ReceiptValidationResult{}

	if err := VerifyCOSESignature(coseBytes, key); err != nil {
		result.addDetail(fmt.Sprintf("Signature verification failed: %v", err))
	} else {
		result.SignatureValid = true
		result.addDetail("Signature verification passed (ES384)")
	}

	record, err := saleRecordFromReceipt(receipt)
	if err != nil {
		result.addDetail(fmt.Sprintf("Receipt amounts malformed: %v", err))
		return result, receipt, nil
	}

	result.SaleHashValid = validateSaleHash(receipt, record, result)
	result.InterestHashValid = validateInterestHash(input, receipt, result)
	result.SettlementValid = validateSettlement(input, record, result)
	result.ExpectationsValid = validateExpectations(input, record, result)

	return result, receipt, nil
}

func saleRecordFromReceipt(receipt *houseapi.ReceiptPayload) (core.SaleRecord, error) {
	hammer, err := core.ParseMoney(receipt.HammerPrice)
	if err != nil {
		return core.SaleRecord{}, fmt.Errorf("hammer price: %w", err)
	}
	buyerTotal, err := core.ParseMoney(receipt.BuyerTotal)
	if err != nil {
		return core.SaleRecord{}, fmt.Errorf("buyer total: %w", err)
	}
	sellerNet, err := core.ParseMoney(receipt.SellerNet)
	if err != nil {
		return core.SaleRecord{}, fmt.Errorf("seller net: %w", err)
	}
	return core.SaleRecord{
		LotNumber:   receipt.LotNumber,
		Description: receipt.Description,
		Seller:      receipt.Seller,
		Winner:      receipt.Winner,
		Auctioneer:  receipt.Auctioneer,
		HammerPrice: hammer,
		BuyerTotal:  buyerTotal,
		SellerNet:   sellerNet,
		Status:      core.LotStatus(receipt.Status),
	}, nil
}

func validateSaleHash(receipt *houseapi.ReceiptPayload, record core.SaleRecord, result *ReceiptValidationResult) bool {
	if receipt.SaleHashNonce == "" {
		result.addDetail("Sale hash nonce missing from receipt")
		return false
	}

	computedHash := core.ComputeSaleHash(record, receipt.SaleHashNonce)
	if computedHash == receipt.SaleHash {
		result.addDetail(fmt.Sprintf("Sale hash validation passed: %s", computedHash))
		return true
	}
	result.addDetail(fmt.Sprintf("Sale hash mismatch: computed %s, receipt has %s", computedHash, receipt.SaleHash))
	return false
}

func validateInterestHash(input *ReceiptValidationInput, receipt *houseapi.ReceiptPayload, result *ReceiptValidationResult) bool {
	if input.InterestedBuyers == nil {
		return true
	}
	if receipt.InterestNonce == "" {
		result.addDetail("Interest hash nonce missing from receipt")
		return false
	}

	computedHash := core.ComputeInterestHash(input.InterestedBuyers, receipt.InterestNonce)
	if computedHash == receipt.InterestHash {
		result.addDetail(fmt.Sprintf("Interest hash validation passed for %d buyers", len(input.InterestedBuyers)))
		return true
	}
	result.addDetail(fmt.Sprintf("Interest hash mismatch: computed %s, receipt has %s", computedHash, receipt.InterestHash))
	return false
}

func validateSettlement(input *ReceiptValidationInput, record core.SaleRecord, result *ReceiptValidationResult) bool {
	if input.BuyerPremium == nil || input.Commission == nil {
		return true
	}

	expected, err := core.ComputeSettlement(record.HammerPrice, *input.BuyerPremium, *input.Commission)
	if err != nil {
		result.addDetail(fmt.Sprintf("Settlement could not be recomputed: %v", err))
		return false
	}
	valid := true
	if !expected.BuyerTotal.Equal(record.BuyerTotal) {
		result.addDetail(fmt.Sprintf("Buyer total mismatch: expected %s, receipt has %s", expected.BuyerTotal, record.BuyerTotal))
		valid = false
	}
	if !expected.SellerNet.Equal(record.SellerNet) {
		result.addDetail(fmt.Sprintf("Seller net mismatch: expected %s, receipt has %s", expected.SellerNet, record.SellerNet))
		valid = false
	}
	if valid {
		result.addDetail(fmt.Sprintf("Settlement validation passed: buyer pays %s, seller receives %s", record.BuyerTotal, record.SellerNet))
	}
	return valid
}

func validateExpectations(input *ReceiptValidationInput, record core.SaleRecord, result *ReceiptValidationResult) bool {
	valid := true
	if input.ExpectedLot != nil && *input.ExpectedLot != record.LotNumber {
		result.addDetail(fmt.Sprintf("Lot mismatch: expected %d, receipt has %d", *input.ExpectedLot, record.LotNumber))
		valid = false
	}
	if input.ExpectedWinner != "" && input.ExpectedWinner != record.Winner {
		result.addDetail(fmt.Sprintf("Winner mismatch: expected %q, receipt has %q", input.ExpectedWinner, record.Winner))
		valid = false
	}
	if input.ExpectedHammer != nil && !input.ExpectedHammer.Equal(record.HammerPrice) {
		result.addDetail(fmt.Sprintf("Hammer price mismatch: expected %s, receipt has %s", *input.ExpectedHammer, record.HammerPrice))
		valid = false
	}
	if valid {
		result.addDetail("Expectation validation passed")
	}
	return valid
}
