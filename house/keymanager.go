package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/veraison/go-cose"

	"github.com/cloudx-io/auctionhouse/houseapi"
)

const keyAlgorithm = "ECDSA-P384"

// KeyManager holds the house's receipt signing key.
type KeyManager struct {
	privateKey *ecdsa.PrivateKey // Keep private - sensitive!
	PublicKey  *ecdsa.PublicKey
}

// NewKeyManager generates a fresh P-384 key pair.
func NewKeyManager() (*KeyManager, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	return newKeyManager(privateKey), nil
}

// LoadKeyManager reads a PEM encoded P-384 private key in SEC 1 or PKCS #8 form.
func LoadKeyManager(path string) (*KeyManager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}

	var privateKey *ecdsa.PrivateKey
	switch block.Type {
	case "EC PRIVATE KEY":
		privateKey, err = x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		var key any
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
		if err == nil {
			var ok bool
			if privateKey, ok = key.(*ecdsa.PrivateKey); !ok {
				err = fmt.Errorf("PKCS #8 key is %T, want ECDSA", key)
			}
		}
	default:
		err = fmt.Errorf("unsupported PEM block type %q", block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}
	if privateKey.Curve != elliptic.P384() {
		return nil, fmt.Errorf("signing key must use P-384, got %s", privateKey.Curve.Params().Name)
	}
	return newKeyManager(privateKey), nil
}

func newKeyManager(privateKey *ecdsa.PrivateKey) *KeyManager {
	return &KeyManager{privateKey: privateKey, PublicKey: &privateKey.PublicKey}
}

// PublicKeyPEM returns the public key in PEM format
func (km *KeyManager) PublicKeyPEM() (string, error) {
	derBytes, err := x509.MarshalPKIXPublicKey(km.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}

	pemBlock := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: derBytes,
	}
	return string(pem.EncodeToMemory(pemBlock)), nil
}

// Signer returns a COSE ES384 signer over the private key.
func (km *KeyManager) Signer() (cose.Signer, error) {
	signer, err := cose.NewSigner(cose.AlgorithmES384, km.privateKey)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	return signer, nil
}

// HandleKeyRequest returns the receipt verification key.
func HandleKeyRequest(keyManager *KeyManager) (*houseapi.KeyResponse, error) {
	publicKeyPEM, err := keyManager.PublicKeyPEM()
	if err != nil {
		return nil, fmt.Errorf("failed to export public key: %w", err)
	}
	return &houseapi.KeyResponse{
		Type:         houseapi.TypeKeyResponse,
		KeyAlgorithm: keyAlgorithm,
		PublicKey:    publicKeyPEM,
	}, nil
}
