package validation

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"

	"github.com/cloudx-io/auctionhouse/houseapi"
)

// ParsePublicKeyPEM parses the PEM public key returned by a key_request.
func ParsePublicKeyPEM(publicKeyPEM string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("decode public key: no PEM block")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	ecdsaKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not ECDSA")
	}
	return ecdsaKey, nil
}

// VerifyCOSESignature verifies a receipt's COSE_Sign1 ES384 signature.
func VerifyCOSESignature(coseBytes houseapi.ReceiptCOSE, key *ecdsa.PublicKey) error {
	// Receipts are untagged COSE_Sign1 (4-element array)
	// Parse it manually: [protected, unprotected, payload, signature]
	var coseArray []any
	err := cbor.Unmarshal(coseBytes, &coseArray)
	if err != nil {
		return fmt.Errorf("parse COSE array: %w", err)
	}

	if len(coseArray) != 4 {
		return fmt.Errorf("invalid COSE_Sign1 structure: expected 4 elements, got %d", len(coseArray))
	}

	protectedBytes, ok := coseArray[0].([]byte)
	if !ok {
		return fmt.Errorf("invalid protected headers")
	}

	payload, ok := coseArray[2].([]byte)
	if !ok {
		return fmt.Errorf("invalid payload")
	}

	signature, ok := coseArray[3].([]byte)
	if !ok {
		return fmt.Errorf("invalid signature")
	}

	// Sig_structure for COSE_Sign1: ["Signature1", protected, external_aad, payload]
	// Receipts carry no external_aad
	sigStructure := []any{
		"Signature1",
		protectedBytes,
		[]byte{},
		payload,
	}

	sigStructureBytes, err := cbor.Marshal(sigStructure)
	if err != nil {
		return fmt.Errorf("marshal Sig_structure: %w", err)
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmES384, key)
	if err != nil {
		return fmt.Errorf("create verifier: %w", err)
	}

	err = verifier.Verify(sigStructureBytes, signature)
	if err != nil {
		return fmt.Errorf("COSE signature verification failed: %w", err)
	}

	return nil
}
