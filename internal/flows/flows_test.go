package flows

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/discussions-app/core/internal/authz"
	"github.com/discussions-app/core/internal/eosname"
	"github.com/discussions-app/core/internal/logging"
	"github.com/discussions-app/core/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submittedTx struct {
	intent   *wallet.TransferIntent
	password string
}

type fakeSubmitter struct {
	mu     sync.Mutex
	txs    []submittedTx
	failOn string
}

func (f *fakeSubmitter) Submit(_ context.Context, intent *wallet.TransferIntent, password []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if intent.Recipient == f.failOn {
		return "", errors.New("chain rejected")
	}
	f.txs = append(f.txs, submittedTx{intent: intent, password: string(password)})
	return fmt.Sprintf("tx%d", len(f.txs)), nil
}

func (f *fakeSubmitter) submitted() []submittedTx {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submittedTx(nil), f.txs...)
}

type knownNames map[string]bool

func (k knownNames) ValidateName(_ context.Context, name string) error {
	if !k[name] {
		return fmt.Errorf("unknown account %q", name)
	}
	return nil
}

// approveNext settles the next pending request with the given password.
func approveNext(t *testing.T, b *authz.Broker, password string) {
	t.Helper()
	go func() {
		for {
			if reqs := b.Pending(); len(reqs) > 0 {
				_ = b.Resolve(reqs[0].ID, authz.Decision{Password: []byte(password)})
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
}

func cancelNext(t *testing.T, b *authz.Broker) {
	t.Helper()
	go func() {
		for {
			if reqs := b.Pending(); len(reqs) > 0 {
				_ = b.Cancel(reqs[0].ID)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
}

func newService(submitter *fakeSubmitter, names knownNames) (*Service, *authz.Broker) {
	broker := authz.NewBroker(authz.WithTimeout(2 * time.Second))
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(broker, submitter, names, log), broker
}

func schedule() wallet.Schedule {
	return wallet.Schedule{
		Percent:  new(big.Rat).SetFrac64(3, 100),
		Flat:     new(big.Rat),
		Decimals: 3,
		Symbol:   "ATMOS",
	}
}

func atmos(units int64) wallet.Quantity {
	return wallet.Quantity{Units: units, Decimals: 3, Symbol: "ATMOS"}
}

func TestTransfer(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, broker := newService(sub, knownNames{"alice": true})
	approveNext(t, broker, "hunter2")

	txID, err := svc.Transfer(context.Background(), atmos(10000), schedule(), "alice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "tx1", txID)

	txs := sub.submitted()
	require.Len(t, txs, 1)
	assert.Equal(t, "alice", txs[0].intent.Recipient)
	assert.Equal(t, "hi", txs[0].intent.Memo)
	assert.Equal(t, int64(300), txs[0].intent.Fee.Units)
	assert.False(t, txs[0].intent.ToPublicKey)
	assert.Equal(t, "hunter2", txs[0].password)
}

func TestTransfer_PublicKeyRecipient(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, broker := newService(sub, knownNames{})
	approveNext(t, broker, "pw")

	key := eosname.EncodePublicKey(bytes.Repeat([]byte{0x02}, 33))
	_, err := svc.Transfer(context.Background(), atmos(1000), schedule(), key, "")
	require.NoError(t, err)

	txs := sub.submitted()
	require.Len(t, txs, 1)
	assert.True(t, txs[0].intent.ToPublicKey)
}

func TestTransfer_UnknownRecipientRejectedBeforeAuthorization(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, broker := newService(sub, knownNames{})

	_, err := svc.Transfer(context.Background(), atmos(1000), schedule(), "nobody", "")
	require.Error(t, err)
	assert.Empty(t, broker.Pending())
	assert.Empty(t, sub.submitted())
}

func TestTransfer_CancelledAuthorization(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, broker := newService(sub, knownNames{"alice": true})
	cancelNext(t, broker)

	_, err := svc.Transfer(context.Background(), atmos(1000), schedule(), "alice", "")
	assert.ErrorIs(t, err, authz.ErrCancelled)
	assert.Empty(t, sub.submitted())
}

func TestWithdraw_PacksAccountAndMemo(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, broker := newService(sub, knownNames{})
	approveNext(t, broker, "pw")

	_, err := svc.Withdraw(context.Background(), atmos(5000), schedule(), "alicechain12", "rent")
	require.NoError(t, err)

	txs := sub.submitted()
	require.Len(t, txs, 1)
	assert.Equal(t, "atmosstakerw", txs[0].intent.Recipient)
	assert.Equal(t, "alicechain12:rent", txs[0].intent.Memo)
}

func TestWithdraw_InvalidChainAccount(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, _ := newService(sub, knownNames{})

	_, err := svc.Withdraw(context.Background(), atmos(5000), schedule(), "Bad", "")
	assert.ErrorIs(t, err, ErrInvalidAccountName)
	assert.Empty(t, sub.submitted())
}

func TestDeposit(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, broker := newService(sub, knownNames{})
	approveNext(t, broker, "pw")

	_, err := svc.Deposit(context.Background(), atmos(5000), schedule(), "alice")
	require.NoError(t, err)

	txs := sub.submitted()
	require.Len(t, txs, 1)
	assert.Equal(t, "atmosstakedp", txs[0].intent.Recipient)
	assert.Equal(t, "alice", txs[0].intent.Memo)
}

func TestCreateAccount(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, broker := newService(sub, knownNames{})
	approveNext(t, broker, "pw")

	key := eosname.EncodePublicKey(bytes.Repeat([]byte{0x03}, 33))
	_, err := svc.CreateAccount(context.Background(), atmos(1000), schedule(), "newaccount12", key)
	require.NoError(t, err)

	txs := sub.submitted()
	require.Len(t, txs, 1)
	assert.Equal(t, "signupeoseos", txs[0].intent.Recipient)
	assert.Equal(t, "newaccount12-"+key, txs[0].intent.Memo)
}

func TestCreateAccount_Validation(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, _ := newService(sub, knownNames{})
	key := eosname.EncodePublicKey(bytes.Repeat([]byte{0x03}, 33))

	_, err := svc.CreateAccount(context.Background(), atmos(1000), schedule(), "short", key)
	assert.ErrorIs(t, err, ErrInvalidAccountName)

	_, err = svc.CreateAccount(context.Background(), atmos(1000), schedule(), "newaccount12", "EOSnotakey")
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
	assert.Empty(t, sub.submitted())
}

func TestAirdrop(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, broker := newService(sub, knownNames{"alice": true, "bob": true})
	approveNext(t, broker, "pw")

	var steps int
	res, err := svc.Airdrop(context.Background(), "alice, bob", atmos(1000), schedule(), "gift", func(i, n int) { steps++ })
	require.NoError(t, err)
	assert.Equal(t, []string{"tx1", "tx2"}, res.TxIDs)
	assert.Equal(t, 2, steps)

	txs := sub.submitted()
	require.Len(t, txs, 2)
	assert.Equal(t, "alice", txs[0].intent.Recipient)
	assert.Equal(t, "bob", txs[1].intent.Recipient)
	assert.Equal(t, "gift", txs[0].intent.Memo)
}

func TestAirdrop_InvalidEntryStopsBeforeAuthorization(t *testing.T) {
	sub := &fakeSubmitter{}
	svc, broker := newService(sub, knownNames{"alice": true, "bob": true})

	_, err := svc.Airdrop(context.Background(), "alice, bob; a", atmos(1000), schedule(), "", nil)
	var batchErr *wallet.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, []string{"a"}, batchErr.Invalid)
	assert.Empty(t, broker.Pending())
	assert.Empty(t, sub.submitted())
}

func TestAirdrop_PartialFailureReportsRecipient(t *testing.T) {
	sub := &fakeSubmitter{failOn: "bob"}
	svc, broker := newService(sub, knownNames{"alice": true, "bob": true, "carol": true})
	approveNext(t, broker, "pw")

	res, err := svc.Airdrop(context.Background(), "alice bob carol", atmos(1000), schedule(), "", nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, []string{"tx1"}, res.TxIDs)
	assert.Equal(t, "bob", res.Failed)

	// carol was never attempted
	require.Len(t, sub.submitted(), 1)
}
