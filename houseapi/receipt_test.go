package houseapi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

var sampleCOSE = ReceiptCOSE([]byte("lot 1 sold to BuyerB for 100.00, lot 1 sold to BuyerB for 100.00"))

func TestSignedReceipt_COSE(t *testing.T) {
	compact, err := sampleCOSE.CompressGzip()
	assert.NoError(t, err)

	tests := []struct {
		name    string
		receipt SignedReceipt
	}{
		{"standard only", SignedReceipt{ReceiptID: "r1", COSEBase64: sampleCOSE.EncodeBase64()}},
		{"compact only", SignedReceipt{ReceiptID: "r1", Compact: compact}},
		{"compact with padding", SignedReceipt{ReceiptID: "r1", Compact: compact + "=="}},
		{"both forms", SignedReceipt{ReceiptID: "r1", COSEBase64: sampleCOSE.EncodeBase64(), Compact: compact}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.receipt.COSE()
			assert.NoError(t, err)
			check.Equal(t, sampleCOSE, got)
		})
	}
}

func TestSignedReceipt_COSEErrors(t *testing.T) {
	tests := []struct {
		name      string
		receipt   SignedReceipt
		errSubstr string
	}{
		{"empty", SignedReceipt{ReceiptID: "r1"}, "carries no COSE data"},
		{"standard not base64", SignedReceipt{COSEBase64: "not base64!!"}, "decode COSE base64"},
		{"standard wrong padding", SignedReceipt{COSEBase64: "abc"}, "decode COSE base64"},
		{"compact not base64url", SignedReceipt{Compact: "!!!invalid!!!"}, "decode base64url"},
		{"compact not gzip", SignedReceipt{Compact: "bW9jaw"}, "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.receipt.COSE()
			check.Error(t, err)
			check.Nil(t, got)
			check.True(t, strings.Contains(err.Error(), tt.errSubstr))
		})
	}
}

func TestReceiptCOSE_CompactIsURLSafe(t *testing.T) {
	compact, err := sampleCOSE.CompressGzip()
	assert.NoError(t, err)

	for _, char := range string(compact) {
		urlSafe := (char >= 'A' && char <= 'Z') ||
			(char >= 'a' && char <= 'z') ||
			(char >= '0' && char <= '9') ||
			char == '-' || char == '_'
		check.True(t, urlSafe)
	}

	again, err := sampleCOSE.CompressGzip()
	assert.NoError(t, err)
	check.Equal(t, compact, again)
}

func TestSignedReceipt_JSON(t *testing.T) {
	compact, err := sampleCOSE.CompressGzip()
	assert.NoError(t, err)
	original := SignedReceipt{
		ReceiptID:  "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
		COSEBase64: ReceiptCOSE([]byte("mock-cose")).EncodeBase64(),
		Compact:    compact,
	}

	data, err := json.Marshal(original)
	assert.NoError(t, err)
	check.True(t, strings.Contains(string(data), `"cose_base64":"bW9jay1jb3Nl"`))
	check.True(t, strings.Contains(string(data), `"compact":"`))

	var decoded SignedReceipt
	assert.NoError(t, json.Unmarshal(data, &decoded))
	check.Equal(t, original, decoded)

	data, err = json.Marshal(SignedReceipt{ReceiptID: "r1", Compact: compact})
	assert.NoError(t, err)
	check.False(t, strings.Contains(string(data), "cose_base64"))
}

func TestRequest_JSON(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{"type":"make_bid","buyer":"BuyerA","lot":2,"amount":"70"}`), &req)
	assert.NoError(t, err)
	check.Equal(t, TypeMakeBid, req.Type)
	check.Equal(t, "BuyerA", req.Buyer)
	check.Equal(t, 2, req.Lot)
	assert.NotNil(t, req.Amount)
	check.Equal(t, "70.00", req.Amount.String())
	check.True(t, req.ReservePrice == nil)

	err = json.Unmarshal([]byte(`{"type":"add_lot","seller":"SellerY","lot":1,"reserve_price":50.5}`), &req)
	assert.NoError(t, err)
	check.Equal(t, "50.50", req.ReservePrice.String())
}

func TestRequest_JSONRejectsOutOfRangeAmount(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{"type":"make_bid","buyer":"BuyerA","lot":1,"amount":"184467440737095517.16"}`), &req)
	check.Error(t, err)
	check.True(t, strings.Contains(err.Error(), "amount out of range"))
}
