package public

import "github.com/ardanlabs/blockledger/foundation/blockchain/ledger"

type chain struct {
	Length    int            `json:"length"`
	Valid     bool           `json:"valid"`
	Algorithm string         `json:"algorithm"`
	Blocks    []ledger.Block `json:"blocks"`
}

type violation struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type validation struct {
	Valid      bool        `json:"valid"`
	Violations []violation `json:"violations"`
}

// NewPayload is what a client sends to queue a payload for the chain. The
// pointer lets an empty payload through while still requiring the field.
type NewPayload struct {
	Payload *string `json:"payload" validate:"required"`
}

type queued struct {
	Status string `json:"status"`
	Source string `json:"source"`
	Offset int64  `json:"offset"`
}
