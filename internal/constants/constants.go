package constants

import "time"

const (
	AppName      = "cinder-client"
	KeystoreFile = "keystore.json"

	SchemaV1      = 1
	FilePerm      = 0o600
	DirectoryPerm = 0o700

	// AAD for the keystore envelope (must match on decrypt).
	KeystoreAAD = "cinder:keystore:v1"

	// EnvVar selects local, develop or prod (empty) paths and endpoints.
	EnvVar = "CINDER_ENV"
	// MemoKeyEnvVar overrides the memo key stored in the keystore.
	MemoKeyEnvVar = "CINDER_MEMO_KEY"
)

// Tokens, with the number of fractional digits each uses on chain.
const (
	SymbolTrash  = "TRASH"
	SymbolCinder = "CINDER"

	TrashPrecision  = 3
	CinderPrecision = 6
)

const (
	DefaultSlotCount    = 3
	DefaultPollInterval = 5 * time.Second

	MaxDurability              = 500
	UnstakeDurabilityThreshold = 500

	VotingWindow = 24 * time.Hour
)
