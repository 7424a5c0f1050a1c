package ledger_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/digest"
	"github.com/ardanlabs/blockledger/foundation/blockchain/ledger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// clock returns a function that hands out increasing times starting at
// the specified millisecond.
func clock(startMS int64) func() time.Time {
	var mu sync.Mutex
	ms := startMS

	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		t := time.UnixMilli(ms)
		ms++
		return t
	}
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need for a new ledger to start with a genesis block.")
	{
		for testID, alg := range []digest.Algorithm{digest.SHA512, digest.SHA3_512, digest.Keccak256} {
			t.Logf("\tTest %d:\tWhen using algorithm %s.", testID, alg)
			{
				l := ledger.New(ledger.Config{Algorithm: alg})

				if l.Len() != 1 {
					t.Fatalf("\t%s\tTest %d:\tShould have exactly one block: got %d", failed, testID, l.Len())
				}
				t.Logf("\t%s\tTest %d:\tShould have exactly one block.", success, testID)

				genesis := l.Latest()
				if genesis.Index != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould have index 0: got %d", failed, testID, genesis.Index)
				}
				t.Logf("\t%s\tTest %d:\tShould have index 0.", success, testID)

				if genesis.PrevHash != alg.ZeroHash() {
					t.Fatalf("\t%s\tTest %d:\tShould have the zero hash as prev hash: got %s", failed, testID, genesis.PrevHash)
				}
				t.Logf("\t%s\tTest %d:\tShould have the zero hash as prev hash.", success, testID)

				if genesis.Payload != ledger.GenesisPayload {
					t.Fatalf("\t%s\tTest %d:\tShould have the genesis payload: got %q", failed, testID, genesis.Payload)
				}
				t.Logf("\t%s\tTest %d:\tShould have the genesis payload.", success, testID)

				if genesis.Hash != genesis.ComputeHash(alg) {
					t.Fatalf("\t%s\tTest %d:\tShould have a hash computed from its fields.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould have a hash computed from its fields.", success, testID)

				if !l.IsValid() {
					t.Fatalf("\t%s\tTest %d:\tShould be valid: %v", failed, testID, l.Validate())
				}
				t.Logf("\t%s\tTest %d:\tShould be valid.", success, testID)
			}
		}
	}
}

func Test_Algorithm(t *testing.T) {
	t.Log("Given the need to seal blocks with the configured algorithm.")
	{
		t.Logf("\tTest 0:\tWhen the algorithm name uses a different case.")
		{
			l := ledger.New(ledger.Config{Algorithm: "SHA3-512"})

			if l.Algorithm() != digest.SHA3_512 {
				t.Fatalf("\t%s\tTest 0:\tShould report the parsed algorithm: got %s", failed, l.Algorithm())
			}
			t.Logf("\t%s\tTest 0:\tShould report the parsed algorithm.", success)

			genesis := l.Latest()
			if genesis.Hash != genesis.ComputeHash(digest.SHA3_512) {
				t.Fatalf("\t%s\tTest 0:\tShould seal genesis with that algorithm.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould seal genesis with that algorithm.", success)
		}

		t.Logf("\tTest 1:\tWhen the algorithm is unknown.")
		{
			f := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err, _ = r.(error)
						if err == nil {
							err = errors.New("panic without an error")
						}
					}
				}()

				ledger.New(ledger.Config{Algorithm: "md5"})
				return nil
			}

			err := f()
			if !errors.Is(err, digest.ErrUnknownAlgorithm) {
				t.Fatalf("\t%s\tTest 1:\tShould panic with an unknown algorithm error: got %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould panic with an unknown algorithm error.", success)
		}
	}
}

func Test_Append(t *testing.T) {
	type table struct {
		name     string
		payloads []string
	}

	tt := []table{
		{name: "none", payloads: nil},
		{name: "basic", payloads: []string{"Block 1 - MORE 10 BTC", "block 2 - LESS 5 BTC"}},
		{name: "empty", payloads: []string{"", "", "x", ""}},
		{name: "non-ascii", payloads: []string{"日本語", "Ünïcödé", "emoji 🚀", "\x00\x01"}},
	}

	t.Log("Given the need to append payloads to the ledger.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen appending %d payloads.", testID, len(tst.payloads))
				{
					l := ledger.New(ledger.Config{Now: clock(1_700_000_000_000)})

					for i, payload := range tst.payloads {
						block := l.Append(payload)
						if block.Index != uint64(i+1) {
							t.Fatalf("\t%s\tTest %d:\tShould get back the appended block: got index %d, exp %d", failed, testID, block.Index, i+1)
						}

						if err := l.Validate(); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be valid after append %d: %v", failed, testID, i+1, err)
						}

						if err := l.VerifyLatest(); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould pass the latest check after append %d: %v", failed, testID, i+1, err)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be valid after every append.", success, testID)

					blocks := l.Blocks()
					if len(blocks) != len(tst.payloads)+1 {
						t.Fatalf("\t%s\tTest %d:\tShould have N+1 blocks: got %d, exp %d", failed, testID, len(blocks), len(tst.payloads)+1)
					}
					t.Logf("\t%s\tTest %d:\tShould have N+1 blocks.", success, testID)

					for i, block := range blocks {
						if block.Index != uint64(i) {
							t.Fatalf("\t%s\tTest %d:\tShould have contiguous indexes: block %d has index %d", failed, testID, i, block.Index)
						}

						if i == 0 {
							continue
						}

						if block.PrevHash != blocks[i-1].Hash {
							t.Fatalf("\t%s\tTest %d:\tShould link block %d to its predecessor.", failed, testID, i)
						}

						if block.Payload != tst.payloads[i-1] {
							t.Fatalf("\t%s\tTest %d:\tShould store the payload as given: got %q, exp %q", failed, testID, block.Payload, tst.payloads[i-1])
						}
					}
					t.Logf("\t%s\tTest %d:\tShould have contiguous indexes linked to their predecessor.", success, testID)

					if err := l.Audit(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould pass an audit: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould pass an audit.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Timestamp(t *testing.T) {
	t.Log("Given the need to stamp blocks with the ledger's clock.")
	{
		t.Logf("\tTest 0:\tWhen the clock is injected.")
		{
			now := time.Date(2024, time.March, 1, 12, 0, 0, 500*int(time.Millisecond), time.UTC)
			l := ledger.New(ledger.Config{Now: func() time.Time { return now }})

			block := l.Append("fixed")
			if block.Timestamp != uint64(now.UnixMilli()) {
				t.Logf("\t%s\tTest 0:\tgot: %d", failed, block.Timestamp)
				t.Logf("\t%s\tTest 0:\texp: %d", failed, now.UnixMilli())
				t.Fatalf("\t%s\tTest 0:\tShould use milliseconds since the epoch.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould use milliseconds since the epoch.", success)

			exp := digest.Hash(digest.SHA512, 1, uint64(now.UnixMilli()), l.Blocks()[0].Hash, "fixed")
			if block.Hash != exp {
				t.Fatalf("\t%s\tTest 0:\tShould reproduce the hash from the injected time.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reproduce the hash from the injected time.", success)
		}

		t.Logf("\tTest 1:\tWhen the clock goes backwards.")
		{
			times := []int64{5000, 4000, 3000}
			var i int
			l := ledger.New(ledger.Config{Now: func() time.Time {
				t := time.UnixMilli(times[i])
				i++
				return t
			}})

			l.Append("earlier")
			l.Append("earliest")

			if !l.IsValid() {
				t.Fatalf("\t%s\tTest 1:\tShould not require increasing timestamps: %v", failed, l.Validate())
			}
			t.Logf("\t%s\tTest 1:\tShould not require increasing timestamps.", success)
		}
	}
}

func Test_Lookup(t *testing.T) {
	t.Log("Given the need to read blocks from the ledger.")
	{
		l := ledger.New(ledger.Config{})
		l.Append("one")
		l.Append("two")

		t.Logf("\tTest 0:\tWhen asking for blocks by index.")
		{
			block, err := l.Block(2)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to get block 2: %v", failed, err)
			}
			if block.Payload != "two" {
				t.Fatalf("\t%s\tTest 0:\tShould get the right block: got %q", failed, block.Payload)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to get block 2.", success)

			if _, err := l.Block(3); !errors.Is(err, ledger.ErrNotFound) {
				t.Fatalf("\t%s\tTest 0:\tShould get not found past the end: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get not found past the end.", success)
		}

		t.Logf("\tTest 1:\tWhen changing the copy returned by Blocks.")
		{
			blocks := l.Blocks()
			blocks[1].Payload = "changed"
			blocks[1].Hash = "0x00"

			if !l.IsValid() {
				t.Fatalf("\t%s\tTest 1:\tShould not affect the ledger.", failed)
			}
			if b, _ := l.Block(1); b.Payload != "one" {
				t.Fatalf("\t%s\tTest 1:\tShould not affect the ledger: got %q", failed, b.Payload)
			}
			t.Logf("\t%s\tTest 1:\tShould not affect the ledger.", success)
		}
	}
}

func Test_ConcurrentAppend(t *testing.T) {
	const writers = 8
	const appends = 50

	t.Log("Given the need for appends to keep the chain contiguous under contention.")
	{
		t.Logf("\tTest 0:\tWhen %d goroutines append %d payloads each.", writers, appends)
		{
			l := ledger.New(ledger.Config{})

			var wg sync.WaitGroup
			wg.Add(writers)
			for range writers {
				go func() {
					defer wg.Done()
					for range appends {
						l.Append("payload")
						l.Len()
					}
				}()
			}
			wg.Wait()

			if l.Len() != writers*appends+1 {
				t.Fatalf("\t%s\tTest 0:\tShould have every block: got %d, exp %d", failed, l.Len(), writers*appends+1)
			}
			t.Logf("\t%s\tTest 0:\tShould have every block.", success)

			if err := l.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be valid: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be valid.", success)
		}
	}
}
