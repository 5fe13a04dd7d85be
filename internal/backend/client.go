// Package backend is the typed client for the cinder backend REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/shared"
)

var (
	ErrFetchFailed = errs.New(errs.KindNetwork, "fetch_failed", "backend request failed")
	ErrPushFailed  = errs.New(errs.KindNetwork, "push_failed", "transaction push failed")
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient gets a 10s
// timeout client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// BurnableAssets wraps GET /nfts/burnable/{account}.
func (c *Client) BurnableAssets(ctx context.Context, account string) ([]shared.Asset, error) {
	var out burnableResponse
	if err := c.get(ctx, "/nfts/burnable/"+url.PathEscape(account), &out); err != nil {
		return nil, err
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "success=false"
		}
		return nil, errs.Wrapf(ErrFetchFailed, "burnable assets for %s: %s", account, msg)
	}
	if out.Data == nil {
		return []shared.Asset{}, nil
	}
	return out.Data, nil
}

// StakedIncinerators wraps GET /incinerators/staked/{account}.
func (c *Client) StakedIncinerators(ctx context.Context, account string) ([]shared.Incinerator, error) {
	return c.incinerators(ctx, "/incinerators/staked/"+url.PathEscape(account), true)
}

// UnstakedIncinerators wraps GET /incinerators/unstaked/{account}.
func (c *Client) UnstakedIncinerators(ctx context.Context, account string) ([]shared.Incinerator, error) {
	return c.incinerators(ctx, "/incinerators/unstaked/"+url.PathEscape(account), false)
}

func (c *Client) incinerators(ctx context.Context, path string, staked bool) ([]shared.Incinerator, error) {
	var out dataResponse[[]shared.Incinerator]
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	incs := out.Data
	if incs == nil {
		incs = []shared.Incinerator{}
	}
	// The list endpoints do not always carry the flag.
	for i := range incs {
		incs[i].Staked = staked
	}
	return incs, nil
}

// ApprovedCollections wraps GET /cleanup/approved-collections.
func (c *Client) ApprovedCollections(ctx context.Context) ([]shared.ApprovedCollection, error) {
	var out []shared.ApprovedCollection
	if err := c.get(ctx, "/cleanup/approved-collections", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) BurnRecordsByUser(ctx context.Context, user string) ([]shared.BurnRecord, error) {
	return c.burnRecords(ctx, "/burnrecords/"+url.PathEscape(user))
}

func (c *Client) BurnRecordsAll(ctx context.Context) ([]shared.BurnRecord, error) {
	return c.burnRecords(ctx, "/burnrecords/all")
}

func (c *Client) BurnRecordsByAsset(ctx context.Context, assetID string) ([]shared.BurnRecord, error) {
	return c.burnRecords(ctx, "/burnrecords/asset/"+url.PathEscape(assetID))
}

func (c *Client) burnRecords(ctx context.Context, path string) ([]shared.BurnRecord, error) {
	var out recordsResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	if out.Records == nil {
		return []shared.BurnRecord{}, nil
	}
	return out.Records, nil
}

// PostLog wraps POST /log and returns the stored message.
func (c *Client) PostLog(ctx context.Context, message string) (shared.LogMessage, error) {
	var out shared.LogMessage
	if err := c.post(ctx, "/log", logRequest{Message: message}, &out, ErrFetchFailed); err != nil {
		return shared.LogMessage{}, err
	}
	return out, nil
}

// Logs wraps GET /log.
func (c *Client) Logs(ctx context.Context) ([]shared.LogMessage, error) {
	var out dataResponse[[]shared.LogMessage]
	if err := c.get(ctx, "/log", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// RepairStatus wraps GET /repair-status/{incineratorId}.
func (c *Client) RepairStatus(ctx context.Context, incineratorID string) (shared.RepairStatus, error) {
	var out shared.RepairStatus
	if err := c.get(ctx, "/repair-status/"+url.PathEscape(incineratorID), &out); err != nil {
		return shared.RepairStatus{}, err
	}
	if out.IncineratorID == "" {
		out.IncineratorID = incineratorID
	}
	return out, nil
}

// Proposals wraps GET /proposals. account may be empty; when set the
// per-account fields are filled in.
func (c *Client) Proposals(ctx context.Context, account string) ([]shared.Proposal, error) {
	path := "/proposals"
	if account != "" {
		path += "?account=" + url.QueryEscape(account)
	}
	var out dataResponse[[]shared.Proposal]
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []shared.Proposal{}, nil
	}
	return out.Data, nil
}

// Balances wraps GET /balances/{account}. Amounts are minor units.
func (c *Client) Balances(ctx context.Context, account string) (shared.Balances, error) {
	var out dataResponse[shared.Balances]
	if err := c.get(ctx, "/balances/"+url.PathEscape(account), &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return shared.Balances{}, nil
	}
	return out.Data, nil
}

// PushTransaction wraps POST /transactions/push.
func (c *Client) PushTransaction(ctx context.Context, tx shared.SignedTransaction) (shared.TxResult, error) {
	var out shared.TxResult
	if err := c.post(ctx, "/transactions/push", tx, &out, ErrPushFailed); err != nil {
		return shared.TxResult{}, err
	}
	if out.TransactionID == "" {
		return shared.TxResult{}, errs.Wrapf(ErrPushFailed, "empty transaction id")
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errs.Wrap(ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out, ErrFetchFailed)
}

func (c *Client) post(ctx context.Context, path string, body, out any, sentinel *errs.Error) error {
	b, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return errs.Wrap(sentinel, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, out, sentinel)
}

func (c *Client) do(req *http.Request, out any, sentinel *errs.Error) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(sentinel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errs.Wrapf(sentinel, "%s %s: status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(sentinel, errors.Wrapf(err, "decode %s", req.URL.Path))
	}
	return nil
}
