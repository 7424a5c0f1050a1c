// Package ledger maintains an in memory, append only chain of blocks where
// every block is sealed with a digest that covers its predecessor's digest.
package ledger

import (
	"sync"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/digest"
	"github.com/hashicorp/go-multierror"
)

// GenesisPayload is the payload of the first block of every chain.
const GenesisPayload = "Genesis Block"

// Config represents the settings for a ledger. The zero value uses SHA512
// and the system clock.
type Config struct {
	Algorithm digest.Algorithm
	Now       func() time.Time
}

// Ledger manages the chain of blocks. There is a single writer by contract,
// the mutex keeps readers from observing an append in progress.
type Ledger struct {
	mu     sync.RWMutex
	alg    digest.Algorithm
	now    func() time.Time
	blocks []Block
}

// New constructs a ledger holding only the genesis block. An unknown
// algorithm is a programming error and panics, callers taking the name from
// configuration run it through digest.Parse first.
func New(cfg Config) *Ledger {
	alg, err := digest.Parse(string(cfg.Algorithm))
	if err != nil {
		panic(err)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	l := Ledger{
		alg: alg,
		now: now,
	}

	genesis := NewBlock(alg, 0, alg.ZeroHash(), GenesisPayload, now())
	l.blocks = append(l.blocks, genesis)

	return &l
}

// Algorithm returns the digest algorithm sealing the blocks.
func (l *Ledger) Algorithm() digest.Algorithm {
	return l.alg
}

// Append builds the next block for the payload and adds it to the end of
// the chain. The new block is returned.
func (l *Ledger) Append(payload string) Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	last := l.latest()
	block := NewBlock(l.alg, last.Index+1, last.Hash, payload, l.now())
	l.blocks = append(l.blocks, block)

	return block
}

// Len returns the number of blocks in the chain including genesis.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.blocks)
}

// Latest returns the last block in the chain.
func (l *Ledger) Latest() Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.latest()
}

// Block returns the block at the specified index.
func (l *Ledger) Block(index uint64) (Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index >= uint64(len(l.blocks)) {
		return Block{}, ErrNotFound
	}

	return l.blocks[index], nil
}

// Blocks returns a copy of the chain in order.
func (l *Ledger) Blocks() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	blocks := make([]Block, len(l.blocks))
	copy(blocks, l.blocks)

	return blocks
}

// IsValid reports whether the entire chain holds its invariants.
func (l *Ledger) IsValid() bool {
	return l.Validate() == nil
}

// Validate walks the entire chain and returns an IntegrityError for the
// first block that fails. Every call rescans the whole chain.
func (l *Ledger) Validate() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	l.genesis()

	for i := range l.blocks {
		if err := l.check(i); err != nil {
			return err
		}
	}

	return nil
}

// VerifyLatest checks only the newest block against its predecessor. This
// is the check to run after every append, leaving Validate and Audit for
// periodic full scans.
func (l *Ledger) VerifyLatest() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	l.latest()

	return l.check(len(l.blocks) - 1)
}

// Audit walks the entire chain and reports every block that fails instead
// of stopping at the first one.
func (l *Ledger) Audit() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	l.genesis()

	var result *multierror.Error
	for i := range l.blocks {
		if err := l.check(i); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// =============================================================================

// check validates the block at position i. The caller must hold a lock.
func (l *Ledger) check(i int) error {
	var err error
	switch i {
	case 0:
		err = l.blocks[0].ValidateGenesis(l.alg)
	default:
		err = l.blocks[i].ValidateBlock(l.blocks[i-1], l.alg)
	}

	if err != nil {
		return &IntegrityError{Index: i, Err: err}
	}

	return nil
}

// latest returns the last block. A chain without blocks can only come from
// bypassing New and can't be trusted, so it panics. The caller must hold
// a lock.
func (l *Ledger) latest() Block {
	if len(l.blocks) == 0 {
		panic(ErrEmptyChain)
	}

	return l.blocks[len(l.blocks)-1]
}

// genesis returns the first block with the same rules as latest.
func (l *Ledger) genesis() Block {
	if len(l.blocks) == 0 {
		panic(ErrEmptyChain)
	}

	return l.blocks[0]
}
