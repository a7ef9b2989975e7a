package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/veraison/go-cose"

	"github.com/cloudx-io/auctionhouse/core"
	"github.com/cloudx-io/auctionhouse/houseapi"
)

// ReceiptIssuer signs sale receipts with the house key.
type ReceiptIssuer struct {
	keys *KeyManager
	now  func() time.Time
}

func NewReceiptIssuer(keys *KeyManager) *ReceiptIssuer {
	return &ReceiptIssuer{keys: keys, now: time.Now}
}

// Issue builds and signs a receipt for a settled (or pending) sale. The
// interest hash commits to record.InterestedBuyers as captured at close.
func (r *ReceiptIssuer) Issue(record *core.SaleRecord) (*houseapi.SignedReceipt, houseapi.ReceiptCOSE, error) {
	saleNonce, err := generateNonce()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate sale hash nonce: %w", err)
	}
	interestNonce, err := generateNonce()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate interest nonce: %w", err)
	}

	payload := houseapi.ReceiptPayload{
		ReceiptID:     uuid.New().String(),
		LotNumber:     record.LotNumber,
		Description:   record.Description,
		Seller:        record.Seller,
		Winner:        record.Winner,
		Auctioneer:    record.Auctioneer,
		HammerPrice:   record.HammerPrice.String(),
		BuyerTotal:    record.BuyerTotal.String(),
		SellerNet:     record.SellerNet.String(),
		Status:        string(record.Status),
		BuyerPaid:     record.BuyerToHouse.OK,
		SellerPaid:    record.HouseToSeller.OK,
		SaleHash:      core.ComputeSaleHash(*record, saleNonce),
		SaleHashNonce: saleNonce,
		InterestHash:  core.ComputeInterestHash(record.InterestedBuyers, interestNonce),
		InterestNonce: interestNonce,
		IssuedAt:      r.now().UnixMilli(),
	}

	coseBytes, err := r.sign(payload)
	if err != nil {
		return nil, nil, err
	}
	compact, err := coseBytes.CompressGzip()
	if err != nil {
		return nil, nil, fmt.Errorf("compress receipt: %w", err)
	}
	return &houseapi.SignedReceipt{
		ReceiptID:  payload.ReceiptID,
		COSEBase64: coseBytes.EncodeBase64(),
		Compact:    compact,
	}, coseBytes, nil
}

// sign produces an untagged COSE_Sign1 message over the CBOR payload.
func (r *ReceiptIssuer) sign(payload houseapi.ReceiptPayload) (houseapi.ReceiptCOSE, error) {
	body, err := cbor.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal receipt payload: %w", err)
	}

	signer, err := r.keys.Signer()
	if err != nil {
		return nil, err
	}

	msg := &cose.UntaggedSign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: cose.AlgorithmES384,
			},
		},
		Payload: body,
	}
	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, fmt.Errorf("sign receipt: %w", err)
	}

	data, err := msg.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("marshal COSE_Sign1: %w", err)
	}
	return houseapi.ReceiptCOSE(data), nil
}

func generateNonce() (string, error) {
	randomBytes := make([]byte, 32) // 256 bits of entropy
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("entropy generation failed: %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}
