// Package auth implements admin identities: BLS key pairs, the principal
// address derived from a public key, and the digest managers sign when
// submitting a batch.
package auth

import (
	"crypto/rand"
	"fmt"
	"os"

	blst "github.com/supranational/blst/bindings/go"
	"github.com/zeebo/blake3"

	"github.com/Arctek/core/internal/params"
)

const (
	// PublicKeySize is the size of a compressed BLS public key in bytes.
	PublicKeySize = 48

	// SignatureSize is the size of a compressed BLS signature in bytes.
	SignatureSize = 96

	// seedSize is the size of the stored key seed in bytes.
	seedSize = 32
)

// dst is the domain separation tag for BLS signatures.
var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

// KeyPair holds a BLS private/public key pair.
type KeyPair struct {
	secret *blst.SecretKey // secret is the private key
	public *blst.P1Affine  // public is the public key
}

// Generate creates a new key pair from a random seed.
func Generate() (*KeyPair, error) {
	var ikm [seedSize]byte
	if _, err := rand.Read(ikm[:]); err != nil {
		return nil, fmt.Errorf("generate random seed:\n%w", err)
	}

	return FromSeed(ikm[:])
}

// FromSeed creates a key pair from a deterministic seed.
// The seed must be at least 32 bytes.
func FromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) < seedSize {
		return nil, fmt.Errorf("seed must be at least %d bytes", seedSize)
	}

	secret := blst.KeyGen(seed)
	if secret == nil {
		return nil, fmt.Errorf("failed to generate key")
	}

	return &KeyPair{
		secret: secret,
		public: new(blst.P1Affine).From(secret),
	}, nil
}

// LoadOrGenerate reads the key seed from path, generating and saving a new
// one if the file does not exist.
func LoadOrGenerate(path string) (*KeyPair, error) {
	seed, err := os.ReadFile(path)
	if err == nil {
		return FromSeed(seed)
	}

	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read key file:\n%w", err)
	}

	var ikm [seedSize]byte
	if _, err := rand.Read(ikm[:]); err != nil {
		return nil, fmt.Errorf("generate random seed:\n%w", err)
	}

	if err := os.WriteFile(path, ikm[:], 0600); err != nil {
		return nil, fmt.Errorf("save key file:\n%w", err)
	}

	return FromSeed(ikm[:])
}

// Sign creates a BLS signature over the message.
func (k *KeyPair) Sign(message []byte) []byte {
	sig := new(blst.P2Affine).Sign(k.secret, message, dst)

	return sig.Compress()
}

// PublicKeyBytes returns the compressed public key bytes.
func (k *KeyPair) PublicKeyBytes() []byte {
	return k.public.Compress()
}

// Address returns the principal address of this key pair.
func (k *KeyPair) Address() params.Address {
	return AddressFromPublicKey(k.PublicKeyBytes())
}

// Verify checks a BLS signature against a message and public key.
func Verify(signature, message, publicKey []byte) bool {
	if len(signature) != SignatureSize || len(publicKey) != PublicKeySize {
		return false
	}

	sig := new(blst.P2Affine).Uncompress(signature)
	if sig == nil {
		return false
	}

	pk := new(blst.P1Affine).Uncompress(publicKey)
	if pk == nil {
		return false
	}

	return sig.Verify(true, pk, true, message, dst)
}

// AddressFromPublicKey derives the principal address from a compressed
// public key: the last 20 bytes of BLAKE3(pubkey).
func AddressFromPublicKey(publicKey []byte) params.Address {
	digest := blake3.Sum256(publicKey)

	var a params.Address
	copy(a[:], digest[len(digest)-params.AddressSize:])

	return a
}

// EnvelopeDigest computes the message a manager signs for one batch
// submission: BLAKE3(operation || 0x00 || payload).
func EnvelopeDigest(operation string, payload []byte) [32]byte {
	h := blake3.New()
	h.Write([]byte(operation))
	h.Write([]byte{0})
	h.Write(payload)

	var digest [32]byte
	h.Sum(digest[:0])

	return digest
}
