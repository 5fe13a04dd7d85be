package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/shared"
)

type recordingBroadcaster struct {
	pushed []shared.SignedTransaction
}

func (b *recordingBroadcaster) PushTransaction(_ context.Context, tx shared.SignedTransaction) (shared.TxResult, error) {
	b.pushed = append(b.pushed, tx)
	return shared.TxResult{TransactionID: "local-1"}, nil
}

func testSeed() []byte {
	return bytes.Repeat([]byte{7}, 32)
}

func transferAction() shared.Action {
	return shared.Action{
		Account: "cleanuptoken",
		Name:    "transfer",
		Data:    shared.TransferData{From: "alice.wam", To: "stakevote", Quantity: "1.000 TRASH", Memo: "stakevote:1:true"},
	}
}

func TestParsePlugin(t *testing.T) {
	tests := []struct {
		in      string
		want    Plugin
		wantErr bool
	}{
		{in: "remote", want: PluginRemote},
		{in: " LOCAL ", want: PluginLocal},
		{in: "", want: PluginRemote},
		{in: "anchor", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlugin(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownPlugin))
				assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConnectSelectsPlugin(t *testing.T) {
	ctx := context.Background()

	s, err := Connect(ctx, Config{Plugin: PluginRemote, Actor: "alice.wam", SignerURL: "http://127.0.0.1:9"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &remoteSession{}, s)
	assert.Equal(t, "active", s.Permission())

	s, err = Connect(ctx, Config{Plugin: PluginLocal, Actor: "alice.wam", Permission: "owner", Seed: testSeed()}, &recordingBroadcaster{})
	require.NoError(t, err)
	assert.IsType(t, &localSession{}, s)
	assert.Equal(t, "owner", s.Permission())

	_, err = Connect(ctx, Config{Plugin: "anchor", Actor: "alice.wam"}, nil)
	assert.True(t, errors.Is(err, ErrUnknownPlugin))

	_, err = Connect(ctx, Config{Plugin: PluginLocal}, nil)
	assert.True(t, errors.Is(err, ErrMissingActor))

	_, err = Connect(ctx, Config{Plugin: PluginLocal, Actor: "alice.wam", Seed: []byte("short")}, &recordingBroadcaster{})
	assert.True(t, errors.Is(err, ErrInvalidSeed))

	_, err = Connect(ctx, Config{Plugin: PluginLocal, Actor: "alice.wam", Seed: testSeed()}, nil)
	assert.True(t, errors.Is(err, ErrNoBroadcaster))
}

func TestConnectHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Connect(ctx, Config{Plugin: PluginLocal, Actor: "alice.wam", Seed: testSeed()}, &recordingBroadcaster{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLocalSessionSignsAndPushes(t *testing.T) {
	b := &recordingBroadcaster{}
	s, err := newLocalSession("alice.wam", "active", testSeed(), b)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	res, err := s.Transact(context.Background(), []shared.Action{transferAction()})
	require.NoError(t, err)
	assert.Equal(t, "local-1", res.TransactionID)
	require.Len(t, b.pushed, 1)

	tx := b.pushed[0]
	ok, err := Verify(tx)
	require.NoError(t, err)
	assert.True(t, ok)

	var body UnsignedTransaction
	require.NoError(t, json.Unmarshal(tx.Transaction, &body))
	assert.Equal(t, "alice.wam", body.Actor)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC), body.Expiration)
	require.Len(t, body.Actions, 1)
	assert.Equal(t, []shared.Authorization{{Actor: "alice.wam", Permission: "active"}}, body.Actions[0].Authorization)

	tampered := tx
	tampered.Transaction = append([]byte{}, tx.Transaction...)
	tampered.Transaction[0] ^= 0xff
	ok, err = Verify(tampered)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalKeyIsDeterministic(t *testing.T) {
	a, err := newLocalSession("alice.wam", "active", testSeed(), &recordingBroadcaster{})
	require.NoError(t, err)
	b, err := newLocalSession("alice.wam", "active", testSeed(), &recordingBroadcaster{})
	require.NoError(t, err)
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	pub, err := PublicKeyFromSeed(testSeed())
	require.NoError(t, err)
	assert.Equal(t, a.PublicKey(), pub)

	_, err = PublicKeyFromSeed([]byte("short"))
	assert.True(t, errors.Is(err, ErrInvalidSeed))
}

func TestLocalSessionRejectsEmpty(t *testing.T) {
	b := &recordingBroadcaster{}
	s, err := newLocalSession("alice.wam", "active", testSeed(), b)
	require.NoError(t, err)

	_, err = s.Transact(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNoActions))
	assert.Empty(t, b.pushed)
}

func TestRemoteSessionTransact(t *testing.T) {
	var got transactRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/transact" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(shared.TxResult{TransactionID: "remote-1"})
	}))
	defer ts.Close()

	s, err := newRemoteSession("alice.wam", "active", ts.URL+"/", ts.Client())
	require.NoError(t, err)

	res, err := s.Transact(context.Background(), []shared.Action{transferAction()})
	require.NoError(t, err)
	assert.Equal(t, "remote-1", res.TransactionID)
	assert.Equal(t, "alice.wam", got.Actor)
	assert.Equal(t, "active", got.Permission)
	require.Len(t, got.Actions, 1)
	assert.Equal(t, "transfer", got.Actions[0].Name)
}

func TestRemoteSessionRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "user declined", http.StatusForbidden)
	}))
	defer ts.Close()

	s, err := newRemoteSession("alice.wam", "active", ts.URL, ts.Client())
	require.NoError(t, err)

	_, err = s.Transact(context.Background(), []shared.Action{transferAction()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSignerFailed))
	assert.Contains(t, err.Error(), "user declined")
}
