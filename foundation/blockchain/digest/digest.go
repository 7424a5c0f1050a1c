// Package digest provides the cryptographic digest support for sealing
// blocks in the ledger.
package digest

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"
)

// ErrUnknownAlgorithm is returned by Parse when the name doesn't match a
// supported algorithm.
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Algorithm names a supported cryptographic hash function.
type Algorithm string

// Set of supported algorithms.
const (
	SHA512    Algorithm = "sha512"
	SHA3_512  Algorithm = "sha3-512"
	Keccak256 Algorithm = "keccak256"
)

// Parse converts the name into an Algorithm. An empty name selects SHA512.
func Parse(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", SHA512:
		return SHA512, nil
	case SHA3_512:
		return SHA3_512, nil
	case Keccak256:
		return Keccak256, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Size returns the number of bytes in a digest produced by the algorithm.
func (a Algorithm) Size() int {
	switch a {
	case Keccak256:
		return 32
	default:
		return sha512.Size
	}
}

// ZeroHash returns the digest of all zeros for the algorithm. This is the
// value the genesis block uses to say it has no predecessor.
func (a Algorithm) ZeroHash() string {
	return hexutil.Encode(make([]byte, a.Size()))
}

// Sum hashes the data with the algorithm.
func (a Algorithm) Sum(data []byte) []byte {
	switch a {
	case SHA3_512:
		sum := sha3.Sum512(data)
		return sum[:]

	case Keccak256:
		return crypto.Keccak256(data)

	default:
		sum := sha512.Sum512(data)
		return sum[:]
	}
}

// String implements the fmt.Stringer interface.
func (a Algorithm) String() string {
	if a == "" {
		return string(SHA512)
	}
	return string(a)
}

// =============================================================================

// preimage is the value that is serialized and hashed for a block. The
// toarray option encodes the fields as a CBOR array in declaration order.
type preimage struct {
	_         struct{} `cbor:",toarray"`
	Index     uint64
	Timestamp uint64
	PrevHash  string
	Payload   []byte
}

// encMode uses core deterministic encoding so the same fields always
// produce the same bytes.
var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("digest: building cbor encoder: %s", err))
	}
	return em
}()

// Hash returns the digest for a block with the specified fields. The fields
// are CBOR encoded before hashing. Every CBOR item carries its own length,
// so no two distinct sets of fields share a preimage.
func Hash(alg Algorithm, index uint64, timestamp uint64, prevHash string, payload string) string {
	data, err := encMode.Marshal(preimage{
		Index:     index,
		Timestamp: timestamp,
		PrevHash:  prevHash,
		Payload:   []byte(payload),
	})
	if err != nil {

		// Integers, a string and a byte slice always encode.
		panic(fmt.Sprintf("digest: encoding preimage: %s", err))
	}

	return hexutil.Encode(alg.Sum(data))
}
