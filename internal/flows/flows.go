// Package flows implements the user-facing transaction flows: transfer,
// deposit, withdraw, account creation and airdrop. Each flow prices the
// transfer, asks the authorization broker for an explicit approval and
// only then hands the intent to the submitter.
package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/discussions-app/core/internal/authz"
	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/eosname"
	"github.com/discussions-app/core/internal/logging"
	"github.com/discussions-app/core/internal/wallet"
)

var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidPublicKey   = errors.New("invalid public key")
)

// On-chain accounts the packaged transfers target.
const (
	withdrawAccount       = "atmosstakerw"
	depositAccount        = "atmosstakedp"
	createAccountReceiver = "signupeoseos"
)

// Submitter signs and broadcasts one priced transfer. The password is
// the wallet password collected during authorization; implementations
// must not retain it. Returns the transaction id assigned by the chain.
type Submitter interface {
	Submit(ctx context.Context, intent *wallet.TransferIntent, password []byte) (string, error)
}

// Service runs the flows against one broker/submitter pair.
type Service struct {
	broker    *authz.Broker
	submitter Submitter
	validator wallet.NameValidator
	log       logging.Logger
}

func NewService(broker *authz.Broker, submitter Submitter, validator wallet.NameValidator, log logging.Logger) *Service {
	return &Service{broker: broker, submitter: submitter, validator: validator, log: log}
}

// authorize runs the handshake for an intent and submits it with the
// approved password. The password is wiped before returning.
func (s *Service) authorize(ctx context.Context, intent *wallet.TransferIntent) (string, error) {
	decision, err := s.broker.Ask(ctx, intent.Summary())
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(decision.Password)

	txID, err := s.submitter.Submit(ctx, intent, decision.Password)
	if err != nil {
		return "", err
	}
	s.log.Info(ctx, "transaction submitted", "tx", txID, "recipient", intent.Recipient)
	return txID, nil
}

// Transfer sends principal to a single recipient, an account name or a
// public key.
func (s *Service) Transfer(ctx context.Context, principal wallet.Quantity, schedule wallet.Schedule, recipient, memo string) (string, error) {
	toKey := eosname.IsPublicKey(recipient)
	if !toKey {
		if err := s.validator.ValidateName(ctx, recipient); err != nil {
			return "", fmt.Errorf("transfer: %w", err)
		}
	}
	intent, err := wallet.NewTransferIntent(principal, schedule, recipient, memo)
	if err != nil {
		return "", err
	}
	intent.ToPublicKey = toKey
	return s.authorize(ctx, intent)
}

// Deposit moves chain funds into the forum balance of username.
func (s *Service) Deposit(ctx context.Context, principal wallet.Quantity, schedule wallet.Schedule, username string) (string, error) {
	intent, err := wallet.NewTransferIntent(principal, schedule, depositAccount, username)
	if err != nil {
		return "", err
	}
	return s.authorize(ctx, intent)
}

// Withdraw moves forum funds out to chainAccount. The withdrawal
// contract reads the target account and pass-through memo from the
// packed "account:memo" form.
func (s *Service) Withdraw(ctx context.Context, principal wallet.Quantity, schedule wallet.Schedule, chainAccount, memo string) (string, error) {
	if !eosname.IsValidName(chainAccount) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountName, chainAccount)
	}
	intent, err := wallet.NewTransferIntent(principal, schedule, withdrawAccount, chainAccount+":"+memo)
	if err != nil {
		return "", err
	}
	return s.authorize(ctx, intent)
}

// CreateAccount funds the registration contract to create name owned
// by publicKey.
func (s *Service) CreateAccount(ctx context.Context, price wallet.Quantity, schedule wallet.Schedule, name, publicKey string) (string, error) {
	if !eosname.IsValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountName, name)
	}
	if !eosname.IsPublicKey(publicKey) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPublicKey, publicKey)
	}
	intent, err := wallet.NewTransferIntent(price, schedule, createAccountReceiver, name+"-"+publicKey)
	if err != nil {
		return "", err
	}
	return s.authorize(ctx, intent)
}

// AirdropResult reports what an airdrop actually did. Submissions are
// sequential, so a failure partway leaves earlier transfers committed;
// Failed names the first recipient whose submission failed.
type AirdropResult struct {
	TxIDs  []string
	Failed string
}

// Airdrop validates the raw recipient list, asks for one approval
// covering the whole batch, then submits a transfer per recipient.
// Validation is all-or-nothing: a single bad entry rejects the batch
// before anything is signed.
func (s *Service) Airdrop(ctx context.Context, raw string, each wallet.Quantity, schedule wallet.Schedule, memo string, progress wallet.Progress) (*AirdropResult, error) {
	batch, err := wallet.ValidateRecipients(ctx, raw, s.validator, progress)
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("airdrop %s to %d recipients", each, len(batch.Recipients))
	decision, err := s.broker.Ask(ctx, summary)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(decision.Password)

	result := &AirdropResult{}
	for _, recipient := range batch.Recipients {
		intent, err := wallet.NewTransferIntent(each, schedule, recipient, memo)
		if err != nil {
			result.Failed = recipient
			return result, err
		}
		intent.ToPublicKey = batch.ToPublicKey
		txID, err := s.submitter.Submit(ctx, intent, decision.Password)
		if err != nil {
			result.Failed = recipient
			return result, fmt.Errorf("airdrop to %s: %w", recipient, err)
		}
		result.TxIDs = append(result.TxIDs, txID)
	}
	s.log.Info(ctx, "airdrop complete", "recipients", len(result.TxIDs))
	return result, nil
}
