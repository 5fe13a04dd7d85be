package setup

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/cinderlabs/cinder-client/internal/keystore"
	"github.com/cinderlabs/cinder-client/internal/memo"
	"github.com/cinderlabs/cinder-client/internal/wallet"
)

// Init creates the keystore. An existing keystore is only replaced when
// force is set or the user confirms.
func Init(in io.Reader, out io.Writer, force bool) error {
	store, err := keystore.NewStore()
	if err != nil {
		return err
	}
	r := bufio.NewReader(in)

	if store.Exists() && !force {
		ok, err := promptYesNo(r, out, fmt.Sprintf("Keystore %s exists. Overwrite? [y/N]: ", store.Path))
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("keystore left unchanged")
		}
	}

	sec, err := collectSecrets(r, out)
	if err != nil {
		return err
	}
	defer keystore.ZeroBytes(sec.SignerSeed)

	pw, err := keystore.PromptNewPassphrase()
	if err != nil {
		return err
	}
	defer keystore.ZeroBytes(pw)

	if err := store.Save(sec, pw); err != nil {
		return err
	}

	pub, err := wallet.PublicKeyFromSeed(sec.SignerSeed)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Local signer public key (%s):\n%s\n", wallet.SchemeName, base64.StdEncoding.EncodeToString(pub))
	log.Info("keystore initialized", "path", store.Path)
	return nil
}

// collectSecrets prompts for the account and memo key and generates the
// local signer seed.
func collectSecrets(r *bufio.Reader, out io.Writer) (keystore.Secrets, error) {
	account := keystore.PromptLineWithDefault(r, out, "Account", "")
	if account == "" {
		return keystore.Secrets{}, wallet.ErrMissingActor
	}
	permission := keystore.PromptLineWithDefault(r, out, "Permission", wallet.DefaultPermission)

	memoKey := keystore.PromptLineWithDefault(r, out, "Memo key (32 bytes or base64:...)", "")
	if _, err := memo.ParseKey(memoKey); err != nil {
		return keystore.Secrets{}, err
	}

	seed, err := keystore.NewSeed()
	if err != nil {
		return keystore.Secrets{}, err
	}

	return keystore.Secrets{
		Account:    account,
		Permission: permission,
		MemoKey:    memoKey,
		SignerSeed: seed,
	}, nil
}

func promptYesNo(r *bufio.Reader, out io.Writer, msg string) (bool, error) {
	_, _ = fmt.Fprint(out, msg)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	s := strings.TrimSpace(strings.ToLower(line))
	return s == "y" || s == "yes", nil
}
