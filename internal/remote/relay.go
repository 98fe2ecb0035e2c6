package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/cryptox"
	"github.com/discussions-app/core/internal/logging"
	"github.com/discussions-app/core/internal/wallet"
)

const relayTimeout = 30 * time.Second

// RelaySubmitter broadcasts priced transfers through the transaction
// relay. Each submission derives the signing key from the wallet
// password and the account salt, signs the transfer and posts it. The
// derived key never outlives the call.
type RelaySubmitter struct {
	baseURL string
	salt    []byte
	http    *http.Client
	log     logging.Logger
}

func NewRelaySubmitter(baseURL string, salt []byte, log logging.Logger) *RelaySubmitter {
	return &RelaySubmitter{
		baseURL: baseURL,
		salt:    salt,
		http:    &http.Client{Timeout: relayTimeout},
		log:     log,
	}
}

type relayRequest struct {
	Recipient   string `json:"recipient"`
	Amount      string `json:"amount"`
	Fee         string `json:"fee"`
	Total       string `json:"total"`
	Memo        string `json:"memo"`
	Nonce       int64  `json:"nonce"`
	ToPublicKey bool   `json:"to_public_key"`
	PublicKey   string `json:"public_key"`
	Signature   string `json:"signature"`
}

type relayResponse struct {
	TransactionID string `json:"transaction_id"`
}

// TransferMessage is the canonical byte string a transfer signature
// covers. The relay recomputes it from the request fields.
func TransferMessage(intent *wallet.TransferIntent) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%d:%t",
		intent.Total, intent.Recipient, intent.Memo, intent.Nonce, intent.ToPublicKey))
}

func (r *RelaySubmitter) Submit(ctx context.Context, intent *wallet.TransferIntent, password []byte) (string, error) {
	masterKey := cryptox.DeriveMasterKey(password, r.salt)
	defer common.WipeByteArray(masterKey)

	keys, err := cryptox.AccountKeysFromMaster(masterKey)
	if err != nil {
		return "", fmt.Errorf("deriving signing key: %w", err)
	}

	body, err := json.Marshal(relayRequest{
		Recipient:   intent.Recipient,
		Amount:      intent.Principal.String(),
		Fee:         intent.Fee.String(),
		Total:       intent.Total.String(),
		Memo:        intent.Memo,
		Nonce:       intent.Nonce,
		ToPublicKey: intent.ToPublicKey,
		PublicKey:   keys.PublicHex(),
		Signature:   keys.Sign(TransferMessage(intent)),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var out relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding relay response: %w", err)
	}
	if out.TransactionID == "" {
		return "", fmt.Errorf("relay returned no transaction id")
	}
	return out.TransactionID, nil
}
