package shared

type Authorization struct {
	Actor      string `json:"actor"`
	Permission string `json:"permission"`
}

// Action is a single contract call inside a transaction.
type Action struct {
	Account       string          `json:"account"`
	Name          string          `json:"name"`
	Authorization []Authorization `json:"authorization"`
	Data          any             `json:"data"`
}

type TxResult struct {
	TransactionID string `json:"transaction_id"`
}

// TransferData is the payload of a fungible token transfer.
type TransferData struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

// AssetTransferData is the payload of an NFT transfer.
type AssetTransferData struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	AssetIDs []string `json:"asset_ids"`
	Memo     string   `json:"memo"`
}

// SignedTransaction is what a locally signing wallet hands to the backend
// for broadcast.
type SignedTransaction struct {
	Transaction []byte `json:"transaction"`
	Signature   []byte `json:"signature"`
	PublicKey   []byte `json:"public_key"`
}
