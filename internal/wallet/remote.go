package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/shared"
)

type transactRequest struct {
	Actor      string          `json:"actor"`
	Permission string          `json:"permission"`
	Actions    []shared.Action `json:"actions"`
}

// remoteSession delegates signing to an external signer service.
type remoteSession struct {
	actor      string
	permission string
	signerURL  string
	httpClient *http.Client
}

func newRemoteSession(actor, permission, signerURL string, httpClient *http.Client) (*remoteSession, error) {
	signerURL = strings.TrimRight(strings.TrimSpace(signerURL), "/")
	if signerURL == "" {
		return nil, errs.Wrapf(ErrSignerFailed, "signer url is empty")
	}
	if httpClient == nil {
		// Signing may wait on a user confirmation in the signer.
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &remoteSession{
		actor:      actor,
		permission: permission,
		signerURL:  signerURL,
		httpClient: httpClient,
	}, nil
}

func (s *remoteSession) Actor() string      { return s.actor }
func (s *remoteSession) Permission() string { return s.permission }

func (s *remoteSession) Transact(ctx context.Context, actions []shared.Action) (shared.TxResult, error) {
	if len(actions) == 0 {
		return shared.TxResult{}, ErrNoActions
	}

	b, err := json.Marshal(transactRequest{
		Actor:      s.actor,
		Permission: s.permission,
		Actions:    authorize(actions, s.actor, s.permission),
	})
	if err != nil {
		return shared.TxResult{}, errors.Wrap(err, "encode transact request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.signerURL+"/v1/transact", bytes.NewReader(b))
	if err != nil {
		return shared.TxResult{}, errs.Wrap(ErrSignerFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return shared.TxResult{}, errs.Wrap(ErrSignerFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return shared.TxResult{}, errs.Wrapf(ErrSignerFailed, "transact: status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var out shared.TxResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return shared.TxResult{}, errs.Wrap(ErrSignerFailed, errors.Wrap(err, "decode transact response"))
	}
	if out.TransactionID == "" {
		return shared.TxResult{}, errs.Wrapf(ErrSignerFailed, "signer returned no transaction id")
	}
	return out, nil
}
