// Package wallet provides signing sessions for the configured account.
//
// A session is obtained with Connect, which selects one of the supported
// plugins: "remote" forwards unsigned actions to an external signer service,
// "local" signs with a key derived from the keystore seed and pushes the
// signed transaction through the backend.
package wallet

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/shared"
)

type Plugin string

const (
	PluginRemote Plugin = "remote"
	PluginLocal  Plugin = "local"
)

const DefaultPermission = "active"

var (
	ErrUnknownPlugin = errs.New(errs.KindConfiguration, "unknown_wallet_plugin", "unknown wallet plugin")
	ErrMissingActor  = errs.New(errs.KindConfiguration, "missing_actor", "wallet actor is not configured")
	ErrInvalidSeed   = errs.New(errs.KindConfiguration, "invalid_signer_seed", "signer seed is missing or malformed")
	ErrNoBroadcaster = errs.New(errs.KindConfiguration, "no_broadcaster", "local signer needs a broadcaster")
	ErrSignerFailed  = errs.New(errs.KindNetwork, "signer_failed", "signer request failed")
	ErrNoActions     = errs.New(errs.KindValidation, "no_actions", "transaction has no actions")
)

// Session signs and broadcasts actions on behalf of Actor.
type Session interface {
	Actor() string
	Permission() string
	Transact(ctx context.Context, actions []shared.Action) (shared.TxResult, error)
}

// Broadcaster pushes a locally signed transaction.
type Broadcaster interface {
	PushTransaction(ctx context.Context, tx shared.SignedTransaction) (shared.TxResult, error)
}

type Config struct {
	Plugin     Plugin
	Actor      string
	Permission string

	// remote
	SignerURL string

	// local
	Seed []byte
}

func ParsePlugin(s string) (Plugin, error) {
	switch p := Plugin(strings.ToLower(strings.TrimSpace(s))); p {
	case PluginRemote, PluginLocal:
		return p, nil
	case "":
		return PluginRemote, nil
	default:
		return "", errs.Wrapf(ErrUnknownPlugin, "%q", s)
	}
}

// Connect opens a session for cfg. broadcaster is only used by the local
// plugin. A cancelled ctx fails before any key material is derived.
func Connect(ctx context.Context, cfg Config, broadcaster Broadcaster) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "connect wallet")
	}

	actor := strings.TrimSpace(cfg.Actor)
	if actor == "" {
		return nil, ErrMissingActor
	}
	permission := cfg.Permission
	if permission == "" {
		permission = DefaultPermission
	}

	plugin, err := ParsePlugin(string(cfg.Plugin))
	if err != nil {
		return nil, err
	}

	var s Session
	switch plugin {
	case PluginRemote:
		s, err = newRemoteSession(actor, permission, cfg.SignerURL, nil)
	case PluginLocal:
		s, err = newLocalSession(actor, permission, cfg.Seed, broadcaster)
	}
	if err != nil {
		return nil, err
	}

	log.Info("wallet connected", "plugin", string(plugin), "actor", actor, "permission", permission)
	return s, nil
}

func authorize(actions []shared.Action, actor, permission string) []shared.Action {
	out := make([]shared.Action, len(actions))
	for i, a := range actions {
		if len(a.Authorization) == 0 {
			a.Authorization = []shared.Authorization{{Actor: actor, Permission: permission}}
		}
		out[i] = a
	}
	return out
}
