package wallet

import (
	"fmt"
	"time"
)

// test seam
var nowFunc = time.Now

// TransferIntent is one fully priced transfer, ready for signing. An
// intent is built for a single submission; the nonce makes the signed
// payload unique so a replayed submission is rejected upstream.
type TransferIntent struct {
	Principal Quantity
	Fee       Quantity
	Total     Quantity
	Recipient string
	Memo      string
	Nonce     int64
	// ToPublicKey marks a transfer addressed to a public key instead
	// of an account name, which targets a different contract.
	ToPublicKey bool
}

// NewTransferIntent prices a principal amount under the schedule and
// stamps a fresh nonce.
func NewTransferIntent(principal Quantity, s Schedule, recipient, memo string) (*TransferIntent, error) {
	fee, total, err := FeeFromPrincipal(principal, s)
	if err != nil {
		return nil, err
	}
	return &TransferIntent{
		Principal: principal,
		Fee:       fee,
		Total:     total,
		Recipient: recipient,
		Memo:      memo,
		Nonce:     nowFunc().UnixMilli(),
	}, nil
}

// Summary is the human readable line shown in the authorization
// prompt.
func (t *TransferIntent) Summary() string {
	return fmt.Sprintf("transfer %s to %s (fee %s)", t.Principal, t.Recipient, t.Fee)
}
