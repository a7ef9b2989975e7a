package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloudx-io/auctionhouse/core"
	"github.com/cloudx-io/auctionhouse/houseapi"
	"github.com/cloudx-io/auctionhouse/validation"
)

// Exit codes
const (
	exitValid   = 0
	exitInvalid = 1
	exitError   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("receipt-validator", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		receiptInput = flags.String("receipt", "", "Close auction result, signed receipt JSON, or compact receipt (file path or inline)")
		keyInput     = flags.String("public-key", "", "House public key PEM or key_response JSON (file path or inline)")
		expectLot    = flags.Int("lot", 0, "Expected lot number (0 = not checked)")
		expectWinner = flags.String("winner", "", "Expected winning buyer")
		expectHammer = flags.String("hammer", "", "Expected hammer price")
		interested   = flags.String("interested", "", "Comma-separated interested buyers to check against the interest hash")
		premium      = flags.Float64("buyer-premium", -1, "Buyer premium percent to recompute settlement (-1 = not checked)")
		commission   = flags.Float64("commission", -1, "Commission percent to recompute settlement (-1 = not checked)")
		outputFormat = flags.String("format", "text", "Output format: text or json")
		help         = flags.Bool("help", false, "Show usage information")
	)

	if err := flags.Parse(args); err != nil {
		return exitError
	}

	if *help {
		showUsage(stdout)
		return exitValid
	}

	if *receiptInput == "" || *keyInput == "" {
		showUsage(stdout)
		fmt.Fprintf(stderr, "\nError: Both inputs are required (--receipt, --public-key)\n")
		return exitInvalid
	}

	receiptJSON, err := readInput(*receiptInput)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading receipt: %v\n", err)
		return exitError
	}
	keyData, err := readInput(*keyInput)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading public key: %v\n", err)
		return exitError
	}

	input, err := buildValidationInput(receiptJSON, keyData)
	if err != nil {
		fmt.Fprintf(stderr, "Error extracting validation data: %v\n", err)
		return exitError
	}
	if *expectLot != 0 {
		input.ExpectedLot = expectLot
	}
	input.ExpectedWinner = *expectWinner
	if *expectHammer != "" {
		hammer, err := core.ParseMoney(*expectHammer)
		if err != nil {
			fmt.Fprintf(stderr, "Error parsing --hammer: %v\n", err)
			return exitError
		}
		input.ExpectedHammer = &hammer
	}
	if *interested != "" {
		input.InterestedBuyers = strings.Split(*interested, ",")
	}
	if *premium >= 0 && *commission >= 0 {
		input.BuyerPremium = premium
		input.Commission = commission
	}

	result, receipt, err := validation.ValidateReceipt(input)
	if err != nil {
		fmt.Fprintf(stderr, "Validation error: %v\n", err)
		return exitError
	}

	if *outputFormat == "json" {
		if err := outputJSON(stdout, result, receipt); err != nil {
			fmt.Fprintf(stderr, "Error marshaling JSON: %v\n", err)
			return exitError
		}
	} else {
		outputText(stdout, result, receipt)
	}

	if !result.IsValid() {
		return exitInvalid
	}
	return exitValid
}

func showUsage(w io.Writer) {
	fmt.Fprintln(w, "Auction House Sale Receipt Validator")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Validates a signed sale receipt against the house public key.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  receipt-validator --receipt <json> --public-key <pem|json> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Required Flags:")
	fmt.Fprintln(w, "  --receipt <json|compact>          close_auction result, signed receipt JSON, or compact receipt string")
	fmt.Fprintln(w, "  --public-key <pem|json>           PEM public key, or key_request response JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Optional Flags:")
	fmt.Fprintln(w, "  --lot <n>                         Expected lot number")
	fmt.Fprintln(w, "  --winner <name>                   Expected winning buyer")
	fmt.Fprintln(w, "  --hammer <amount>                 Expected hammer price")
	fmt.Fprintln(w, "  --interested <a,b,...>            Interested buyers to check against the interest hash")
	fmt.Fprintln(w, "  --buyer-premium <pct>             Buyer premium used to recompute settlement")
	fmt.Fprintln(w, "  --commission <pct>                Commission used to recompute settlement")
	fmt.Fprintln(w, "  --format <text|json>              Output format (default: text)")
	fmt.Fprintln(w, "  --help                            Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input Format:")
	fmt.Fprintln(w, "  Each input accepts either a file path or an inline value.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit Codes:")
	fmt.Fprintln(w, "  0 - Validation passed")
	fmt.Fprintln(w, "  1 - Validation failed")
	fmt.Fprintln(w, "  2 - Invalid input or runtime error")
}

func readInput(input string) ([]byte, error) {
	// Try reading as file first
	if data, err := os.ReadFile(input); err == nil {
		return data, nil
	}
	// Treat as inline value
	return []byte(input), nil
}

// buildValidationInput accepts a full close_auction result, a bare signed
// receipt, or the compact receipt string on its own, and either a PEM key or
// a key_response.
func buildValidationInput(receiptData, keyData []byte) (*validation.ReceiptValidationInput, error) {
	coseBytes, err := decodeReceipt(receiptData)
	if err != nil {
		return nil, err
	}

	publicKeyPEM := strings.TrimSpace(string(keyData))
	if strings.HasPrefix(publicKeyPEM, "{") {
		var keyResp houseapi.KeyResponse
		if err := json.Unmarshal(keyData, &keyResp); err != nil {
			return nil, fmt.Errorf("parse key response: %w", err)
		}
		publicKeyPEM = keyResp.PublicKey
	}
	if publicKeyPEM == "" {
		return nil, fmt.Errorf("missing public key")
	}

	return &validation.ReceiptValidationInput{
		Receipt:      coseBytes.EncodeBase64(),
		PublicKeyPEM: publicKeyPEM,
	}, nil
}

func decodeReceipt(data []byte) (houseapi.ReceiptCOSE, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		coseBytes, err := houseapi.ReceiptCOSEGzip(trimmed).Decompress()
		if err != nil {
			return nil, fmt.Errorf("parse compact receipt: %w", err)
		}
		return coseBytes, nil
	}

	var envelope struct {
		Receipt *houseapi.SignedReceipt `json:"receipt"`
		houseapi.SignedReceipt
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse receipt: %w", err)
	}
	signed := envelope.SignedReceipt
	if envelope.Receipt != nil {
		signed = *envelope.Receipt
	}
	coseBytes, err := signed.COSE()
	if err != nil {
		return nil, fmt.Errorf("missing or invalid 'cose_base64' or 'compact' in receipt: %w", err)
	}
	return coseBytes, nil
}

func outputText(w io.Writer, result *validation.ReceiptValidationResult, receipt *houseapi.ReceiptPayload) {
	fmt.Fprintln(w, "Auction House Sale Receipt Validator")
	fmt.Fprintln(w, "====================================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Receipt:")
	fmt.Fprintf(w, "  Receipt ID:              %s\n", receipt.ReceiptID)
	fmt.Fprintf(w, "  Lot:                     %d (%s)\n", receipt.LotNumber, receipt.Description)
	fmt.Fprintf(w, "  Winner:                  %s\n", receipt.Winner)
	fmt.Fprintf(w, "  Hammer Price:            %s\n", receipt.HammerPrice)
	fmt.Fprintf(w, "  Buyer Total:             %s\n", receipt.BuyerTotal)
	fmt.Fprintf(w, "  Seller Net:              %s\n", receipt.SellerNet)
	fmt.Fprintf(w, "  Status:                  %s\n", receipt.Status)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Signature Valid:         %v\n", result.SignatureValid)
	fmt.Fprintf(w, "  Sale Hash Valid:         %v\n", result.SaleHashValid)
	fmt.Fprintf(w, "  Interest Hash Valid:     %v\n", result.InterestHashValid)
	fmt.Fprintf(w, "  Settlement Valid:        %v\n", result.SettlementValid)
	fmt.Fprintf(w, "  Expectations Valid:      %v\n", result.ExpectationsValid)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Details:")
	for _, detail := range result.ValidationDetails {
		fmt.Fprintf(w, "  - %s\n", detail)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "====================================")
	if result.IsValid() {
		fmt.Fprintln(w, "VALIDATION: ✓ PASSED")
		fmt.Fprintln(w, "Exit Code: 0")
	} else {
		fmt.Fprintln(w, "VALIDATION: ✗ FAILED")
		fmt.Fprintln(w, "Exit Code: 1")
	}
}

func outputJSON(w io.Writer, result *validation.ReceiptValidationResult, receipt *houseapi.ReceiptPayload) error {
	output := map[string]any{
		"valid":               result.IsValid(),
		"signature_valid":     result.SignatureValid,
		"sale_hash_valid":     result.SaleHashValid,
		"interest_hash_valid": result.InterestHashValid,
		"settlement_valid":    result.SettlementValid,
		"expectations_valid":  result.ExpectationsValid,
		"details":             result.ValidationDetails,
		"receipt":             receipt,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
