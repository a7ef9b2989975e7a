package core

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// ComputeSaleHash computes the digest embedded in a signed sale receipt.
// This is used by the house server (to issue receipts) and validation (to verify them).
//
// Formula: SHA256(lot + "|" + winner + "|" + hammer + "|" + buyer_total + "|" + seller_net + "|" + status + "|" + nonce)
//
// Amounts use their canonical two-digit form so the hash is independent of how
// the amount was originally written.
func ComputeSaleHash(record SaleRecord, nonce string) string {
	data := fmt.Sprintf("%d|%s|%s|%s|%s|%s|%s",
		record.LotNumber,
		record.Winner,
		record.HammerPrice.String(),
		record.BuyerTotal.String(),
		record.SellerNet.String(),
		record.Status,
		nonce,
	)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ComputeInterestHash commits to the set of interested buyers without
// revealing their names.
//
// Formula: SHA256(nonce + "|" + sorted_names_joined_by_"|")
func ComputeInterestHash(buyers []string, nonce string) string {
	sorted := append([]string(nil), buyers...)
	sort.Strings(sorted)

	data := nonce
	if len(sorted) > 0 {
		data += "|" + strings.Join(sorted, "|")
	}
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
