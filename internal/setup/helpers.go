package setup

import (
	"strings"

	"github.com/cinderlabs/cinder-client/cmd/cinder-client/config"
	"github.com/cinderlabs/cinder-client/internal/keystore"
	"github.com/cinderlabs/cinder-client/internal/slots"
	"github.com/cinderlabs/cinder-client/internal/wallet"
)

// walletConfig merges the config file with the keystore. The config file
// wins when it names an actor; otherwise the keystore account and its
// permission are used.
func walletConfig(cfg *config.Config, sec keystore.Secrets) wallet.Config {
	actor := strings.TrimSpace(cfg.Wallet.Actor)
	permission := cfg.Wallet.Permission
	if actor == "" {
		actor = sec.Account
		if sec.Permission != "" {
			permission = sec.Permission
		}
	}
	return wallet.Config{
		Plugin:     wallet.Plugin(cfg.Wallet.Plugin),
		Actor:      actor,
		Permission: permission,
		SignerURL:  cfg.Wallet.SignerURL,
		Seed:       sec.SignerSeed,
	}
}

func occupied(s []slots.Slot) int {
	n := 0
	for _, slot := range s {
		if slot.Asset != nil {
			n++
		}
	}
	return n
}
