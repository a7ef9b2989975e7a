package validation

// ReceiptValidationResult contains the outcome of each receipt check.
type ReceiptValidationResult struct {
	SignatureValid    bool
	SaleHashValid     bool
	InterestHashValid bool // true when no interested buyers were supplied to check
	SettlementValid   bool // true when no premium/commission were supplied to check
	ExpectationsValid bool
	ValidationDetails []string
}

// IsValid returns true if all receipt checks passed
func (r *ReceiptValidationResult) IsValid() bool {
	return r.SignatureValid && r.SaleHashValid && r.InterestHashValid && r.SettlementValid && r.ExpectationsValid
}

func (r *ReceiptValidationResult) addDetail(detail string) {
	r.ValidationDetails = append(r.ValidationDetails, detail)
}
