package validation

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/peterldowns/testy/assert"
	"github.com/veraison/go-cose"

	"github.com/cloudx-io/auctionhouse/core"
	"github.com/cloudx-io/auctionhouse/houseapi"
)

const (
	testSaleNonce     = "5a1e"
	testInterestNonce = "1e7e"
)

func generateTestKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	assert.NoError(t, err)
	return key
}

func publicKeyPEM(t *testing.T, key *ecdsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	assert.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// testReceipt is the lot 2 sale from the lifecycle story: hammer 300 at
// premium 10% and commission 15%.
func testReceipt() houseapi.ReceiptPayload {
	record := core.SaleRecord{
		LotNumber:   2,
		Winner:      "BuyerA",
		HammerPrice: core.MustParseMoney("300"),
		BuyerTotal:  core.MustParseMoney("330"),
		SellerNet:   core.MustParseMoney("255"),
		Status:      core.StatusSold,
	}
	return houseapi.ReceiptPayload{
		ReceiptID:     "0b9f2a34-7c55-4a8e-8d0d-3f1c2e5b6a71",
		LotNumber:     2,
		Description:   "Painting",
		Seller:        "SellerY",
		Winner:        "BuyerA",
		Auctioneer:    "Auctioneer1",
		HammerPrice:   "300.00",
		BuyerTotal:    "330.00",
		SellerNet:     "255.00",
		Status:        string(core.StatusSold),
		BuyerPaid:     true,
		SellerPaid:    true,
		SaleHash:      core.ComputeSaleHash(record, testSaleNonce),
		SaleHashNonce: testSaleNonce,
		InterestHash:  core.ComputeInterestHash([]string{"BuyerA", "BuyerB"}, testInterestNonce),
		InterestNonce: testInterestNonce,
		IssuedAt:      1760000000000,
	}
}

func signTestReceipt(t *testing.T, key *ecdsa.PrivateKey, payload houseapi.ReceiptPayload) houseapi.ReceiptCOSE {
	t.Helper()
	body, err := cbor.Marshal(payload)
	assert.NoError(t, err)

	signer, err := cose.NewSigner(cose.AlgorithmES384, key)
	assert.NoError(t, err)

	msg := &cose.UntaggedSign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: cose.AlgorithmES384,
			},
		},
		Payload: body,
	}
	assert.NoError(t, msg.Sign(rand.Reader, nil, signer))

	data, err := msg.MarshalCBOR()
	assert.NoError(t, err)
	return houseapi.ReceiptCOSE(data)
}
