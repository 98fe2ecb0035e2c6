package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/discussions-app/core/internal/eosname"
)

// NameValidator checks that an account name exists on chain. A non-nil
// error means the identifier is invalid; the error text may carry
// suggestions.
type NameValidator interface {
	ValidateName(ctx context.Context, name string) error
}

// Progress reports batch validation advancing to entry index of total.
// Indexes are 1-based for direct display.
type Progress func(index, total int)

// BatchError aggregates every invalid entry found in one pass over a
// recipient list.
type BatchError struct {
	Invalid []string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("invalid recipients: %s", strings.Join(e.Invalid, ", "))
}

// Batch is a validated recipient list.
type Batch struct {
	Recipients []string
	// ToPublicKey is set when any entry is a raw public key, switching
	// the whole batch to public-key-targeted transfers.
	ToPublicKey bool
}

// SplitRecipients tokenizes a raw recipient string on commas,
// semicolons, newlines and whitespace, dropping empty tokens.
func SplitRecipients(raw string) []string {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ValidateRecipients runs the validator over every token of raw without
// stopping at the first failure. Entries that are themselves valid
// public keys skip name validation and flag the batch for public-key
// transfers. If any entry failed, the whole batch is rejected with the
// aggregated BatchError.
func ValidateRecipients(ctx context.Context, raw string, validator NameValidator, progress Progress) (*Batch, error) {
	tokens := SplitRecipients(raw)
	if len(tokens) == 0 {
		return nil, &BatchError{Invalid: []string{raw}}
	}

	batch := &Batch{Recipients: make([]string, 0, len(tokens))}
	var invalid []string
	for i, token := range tokens {
		if progress != nil {
			progress(i+1, len(tokens))
		}
		if eosname.IsPublicKey(token) {
			batch.ToPublicKey = true
			batch.Recipients = append(batch.Recipients, token)
			continue
		}
		if err := validator.ValidateName(ctx, token); err != nil {
			invalid = append(invalid, token)
			continue
		}
		batch.Recipients = append(batch.Recipients, token)
	}
	if len(invalid) > 0 {
		return nil, &BatchError{Invalid: invalid}
	}
	return batch, nil
}
