package usecase

import (
	"encoding/json"

	"github.com/hliosone/legacyx"
	"github.com/hliosone/legacyx/internal/domain"
)

// BuildPayment constructs a signable payment request. Pure: identical inputs
// yield structurally identical requests; uniqueness (sequence, timestamps) is
// assigned by the provider at submission time. Amount is in whole units of
// the native asset and converted exactly to drops.
func BuildPayment(destination string, amountUnits int64) (legacyx.SigningRequest, error) {
	if destination == "" {
		return legacyx.SigningRequest{}, domain.PreconditionViolationError{Reason: "payment destination is empty"}
	}
	if amountUnits <= 0 {
		return legacyx.SigningRequest{}, domain.PreconditionViolationError{Reason: "payment amount must be positive"}
	}

	tx := legacyx.PaymentTx{
		TransactionType: "Payment",
		Destination:     destination,
		Amount:          legacyx.UnitsToDrops(amountUnits),
	}

	raw, err := json.Marshal(tx)
	if err != nil {
		return legacyx.SigningRequest{}, err
	}

	return legacyx.SigningRequest{TxJSON: raw}, nil
}
