package selector

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Entropy is one draw from a verifiable entropy source. Hash is the published
// proof; Seed is derived from the leading bytes of the hash, so anyone holding
// the proof can recompute the selected index.
type Entropy struct {
	Hash string
	Seed uint64
}

// EntropySource produces draws for random-mode outcome selection.
type EntropySource interface {
	Draw(ctx context.Context) (Entropy, error)
}

// CryptoEntropy draws 32 bytes from the OS CSPRNG and publishes the keccak256
// digest of the draw as the proof.
type CryptoEntropy struct{}

func (CryptoEntropy) Draw(_ context.Context) (Entropy, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return Entropy{}, fmt.Errorf("selector: draw entropy: %w", err)
	}
	d := sha3.NewLegacyKeccak256()
	d.Write(buf[:])
	sum := d.Sum(nil)
	return Entropy{
		Hash: hex.EncodeToString(sum),
		Seed: binary.BigEndian.Uint64(sum[:8]),
	}, nil
}

var _ EntropySource = CryptoEntropy{}
