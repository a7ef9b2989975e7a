package houseapi

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// ReceiptPayload is the CBOR body of a signed sale receipt. Amounts are in
// their canonical two-digit decimal form. Buyer identity is committed to by
// InterestHash rather than listed.
type ReceiptPayload struct {
	ReceiptID     string `cbor:"receipt_id" json:"receipt_id"`
	LotNumber     int    `cbor:"lot_number" json:"lot_number"`
	Description   string `cbor:"description" json:"description"`
	Seller        string `cbor:"seller" json:"seller"`
	Winner        string `cbor:"winner" json:"winner"`
	Auctioneer    string `cbor:"auctioneer" json:"auctioneer"`
	HammerPrice   string `cbor:"hammer_price" json:"hammer_price"`
	BuyerTotal    string `cbor:"buyer_total" json:"buyer_total"`
	SellerNet     string `cbor:"seller_net" json:"seller_net"`
	Status        string `cbor:"status" json:"status"`
	BuyerPaid     bool   `cbor:"buyer_paid" json:"buyer_paid"`
	SellerPaid    bool   `cbor:"seller_paid" json:"seller_paid"`
	SaleHash      string `cbor:"sale_hash" json:"sale_hash"`
	SaleHashNonce string `cbor:"sale_hash_nonce" json:"sale_hash_nonce"`
	InterestHash  string `cbor:"interest_hash" json:"interest_hash"`
	InterestNonce string `cbor:"interest_nonce" json:"interest_nonce"`
	IssuedAt      int64  `cbor:"issued_at" json:"issued_at"` // unix milliseconds
}

// SignedReceipt is the JSON transport form of a receipt. Compact carries the
// same COSE bytes gzipped in URL-safe base64, for links and QR codes.
type SignedReceipt struct {
	ReceiptID  string            `json:"receipt_id"`
	COSEBase64 ReceiptCOSEBase64 `json:"cose_base64,omitempty"`
	Compact    ReceiptCOSEGzip   `json:"compact,omitempty"`
}

// COSE returns the signed message, preferring the standard encoding and
// falling back to the compact one.
func (s SignedReceipt) COSE() (ReceiptCOSE, error) {
	switch {
	case s.COSEBase64 != "":
		return s.COSEBase64.Decode()
	case s.Compact != "":
		return s.Compact.Decompress()
	default:
		return nil, fmt.Errorf("receipt %q carries no COSE data", s.ReceiptID)
	}
}

// ReceiptCOSE is a raw untagged COSE_Sign1 message.
type ReceiptCOSE []byte

// ReceiptCOSEBase64 is a ReceiptCOSE in standard base64.
type ReceiptCOSEBase64 string

// ReceiptCOSEGzip is a gzip-compressed ReceiptCOSE in unpadded URL-safe base64.
type ReceiptCOSEGzip string

func (r ReceiptCOSE) EncodeBase64() ReceiptCOSEBase64 {
	return ReceiptCOSEBase64(base64.StdEncoding.EncodeToString(r))
}

// CompressGzip produces the compact form. Output is deterministic.
func (r ReceiptCOSE) CompressGzip() (ReceiptCOSEGzip, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := zw.Write(r); err != nil {
		return "", fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("gzip close: %w", err)
	}
	return ReceiptCOSEGzip(base64.RawURLEncoding.EncodeToString(buf.Bytes())), nil
}

// Decode returns the raw COSE bytes.
func (b ReceiptCOSEBase64) Decode() (ReceiptCOSE, error) {
	data, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		return nil, fmt.Errorf("decode COSE base64: %w", err)
	}
	return ReceiptCOSE(data), nil
}

// Decompress accepts the compact form with or without base64 padding.
func (g ReceiptCOSEGzip) Decompress() (ReceiptCOSE, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(string(g), "="))
	if err != nil {
		return nil, fmt.Errorf("decode base64url: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read gzip data: %w", err)
	}
	return ReceiptCOSE(data), nil
}
