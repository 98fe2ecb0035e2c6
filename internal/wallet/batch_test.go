package wallet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/discussions-app/core/internal/eosname"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// knownNames validates against a fixed allow list.
type knownNames map[string]bool

func (k knownNames) ValidateName(_ context.Context, name string) error {
	if !k[name] {
		return fmt.Errorf("unknown account %q", name)
	}
	return nil
}

func testPubKey() string {
	return eosname.EncodePublicKey(bytes.Repeat([]byte{0x02}, 33))
}

func TestSplitRecipients(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"commas", "alice,bob,carol", []string{"alice", "bob", "carol"}},
		{"mixed separators", "alice, bob; carol\ndave\teve", []string{"alice", "bob", "carol", "dave", "eve"}},
		{"repeated separators", "alice,,  ;; bob", []string{"alice", "bob"}},
		{"empty", "  \n ; ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitRecipients(tt.input))
		})
	}
}

func TestValidateRecipients_AllValid(t *testing.T) {
	v := knownNames{"alice": true, "bob": true}

	var steps []string
	batch, err := ValidateRecipients(context.Background(), "alice, bob", v, func(i, n int) {
		steps = append(steps, fmt.Sprintf("%d/%d", i, n))
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, batch.Recipients)
	assert.False(t, batch.ToPublicKey)
	assert.Equal(t, []string{"1/2", "2/2"}, steps)
}

func TestValidateRecipients_CollectsAllFailuresBeforeRejecting(t *testing.T) {
	v := knownNames{"alice": true, "bob": true}
	input := "alice, bob; " + testPubKey() + " a"

	var steps []string
	batch, err := ValidateRecipients(context.Background(), input, v, func(i, n int) {
		steps = append(steps, fmt.Sprintf("%d/%d", i, n))
	})
	require.Nil(t, batch)

	// every entry was visited despite the failure
	assert.Equal(t, []string{"1/4", "2/4", "3/4", "4/4"}, steps)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, []string{"a"}, batchErr.Invalid)
	assert.Equal(t, "invalid recipients: a", batchErr.Error())
}

func TestValidateRecipients_PublicKeySetsBatchFlag(t *testing.T) {
	v := knownNames{"alice": true}
	key := testPubKey()

	batch, err := ValidateRecipients(context.Background(), "alice "+key, v, nil)
	require.NoError(t, err)
	assert.True(t, batch.ToPublicKey)
	assert.Equal(t, []string{"alice", key}, batch.Recipients)
}

func TestValidateRecipients_PublicKeySkipsNameLookup(t *testing.T) {
	called := false
	v := validatorFunc(func(ctx context.Context, name string) error {
		called = true
		return errors.New("should not be called")
	})

	batch, err := ValidateRecipients(context.Background(), testPubKey(), v, nil)
	require.NoError(t, err)
	assert.True(t, batch.ToPublicKey)
	assert.False(t, called)
}

func TestValidateRecipients_EmptyInputRejected(t *testing.T) {
	_, err := ValidateRecipients(context.Background(), "  ;, ", knownNames{}, nil)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
}

type validatorFunc func(ctx context.Context, name string) error

func (f validatorFunc) ValidateName(ctx context.Context, name string) error {
	return f(ctx, name)
}
