package ledger

import (
	"fmt"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/digest"
)

// Block represents a single sealed entry in the ledger.
type Block struct {
	Index     uint64 `json:"index"`     // Position in the chain, genesis is 0.
	Timestamp uint64 `json:"timestamp"` // Milliseconds since the Unix epoch when the block was built.
	PrevHash  string `json:"prev_hash"` // Hash of the previous block in the chain.
	Hash      string `json:"hash"`      // Hash of this block's index, timestamp, prev hash and payload.
	Payload   string `json:"payload"`   // Opaque application data.
}

// NewBlock constructs a Block at the specified position using now as the
// block's time and seals it with a digest from the algorithm.
func NewBlock(alg digest.Algorithm, index uint64, prevHash string, payload string, now time.Time) Block {
	ms := now.UnixMilli()
	if ms < 0 {
		panic(fmt.Sprintf("ledger: clock reads %s which is before the unix epoch", now))
	}

	b := Block{
		Index:     index,
		Timestamp: uint64(ms),
		PrevHash:  prevHash,
		Payload:   payload,
	}
	b.Hash = b.ComputeHash(alg)

	return b
}

// ComputeHash recalculates the digest over the block's stored fields.
func (b Block) ComputeHash(alg digest.Algorithm) string {
	return digest.Hash(alg, b.Index, b.Timestamp, b.PrevHash, b.Payload)
}

// ValidateGenesis checks the block qualifies as the first block of a chain.
func (b Block) ValidateGenesis(alg digest.Algorithm) error {
	if b.Index != 0 {
		return fmt.Errorf("genesis block has index %d", b.Index)
	}

	if b.PrevHash != alg.ZeroHash() {
		return fmt.Errorf("genesis block prev hash is not the zero hash, got %s", b.PrevHash)
	}

	if b.Payload != GenesisPayload {
		return fmt.Errorf("genesis block payload is %q, exp %q", b.Payload, GenesisPayload)
	}

	if hash := b.ComputeHash(alg); b.Hash != hash {
		return fmt.Errorf("genesis block hash doesn't match its fields, got %s, exp %s", b.Hash, hash)
	}

	return nil
}

// ValidateBlock checks the block is a valid successor of previousBlock.
func (b Block) ValidateBlock(previousBlock Block, alg digest.Algorithm) error {
	if nextIndex := previousBlock.Index + 1; b.Index != nextIndex {
		return fmt.Errorf("this block is not the next index, got %d, exp %d", b.Index, nextIndex)
	}

	if b.PrevHash != previousBlock.Hash {
		return fmt.Errorf("prev hash doesn't match the previous block, got %s, exp %s", b.PrevHash, previousBlock.Hash)
	}

	if hash := b.ComputeHash(alg); b.Hash != hash {
		return fmt.Errorf("block hash doesn't match its fields, got %s, exp %s", b.Hash, hash)
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("Block{Index:%d Timestamp:%d PrevHash:%s Hash:%s Payload:%q}", b.Index, b.Timestamp, b.PrevHash, b.Hash, b.Payload)
}
