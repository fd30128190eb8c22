package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrInvalidPublicKey      = errors.New("invalid public key")
	ErrNoViableBumpSeed      = errors.New("unable to find a viable program address bump seed")
)

var programHashCtor = sha256.New

// CreateProgramAddress derives a program address from the program id and
// seeds. Program addresses must lie off the ed25519 curve so that no private
// key exists for them; ErrInvalidPublicKey is returned otherwise.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if err := validateSeeds(seeds); err != nil {
		return nil, err
	}

	h := programHashCtor()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write(program)
	h.Write([]byte(pdaMarker))

	var pub [32]byte
	copy(pub[:], h.Sum(nil))

	if IsOnCurve(pub[:]) {
		return nil, ErrInvalidPublicKey
	}
	return pub[:], nil
}

// FindProgramAddressAndBump searches bump seeds from 255 downwards for the
// first one yielding a valid program address.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	if len(seeds) >= maxSeeds {
		return nil, 0, ErrTooManySeeds
	}
	if err := validateSeeds(seeds); err != nil {
		return nil, 0, err
	}

	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump := append(append([][]byte{}, seeds...), []byte{uint8(bump)})

		pub, err := CreateProgramAddress(program, withBump...)
		if err == ErrInvalidPublicKey {
			continue
		} else if err != nil {
			return nil, 0, err
		}
		return pub, uint8(bump), nil
	}

	return nil, 0, ErrNoViableBumpSeed
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}

// IsOnCurve reports whether pub decodes to a valid ed25519 curve point.
//
// The standard library keeps its point type internal, so the check relies
// on the edwards25519 package used by ed25519.Verify.
func IsOnCurve(pub ed25519.PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}

	var compressed [32]byte
	copy(compressed[:], pub)

	var point edwards25519.ExtendedGroupElement
	return point.FromBytes(&compressed)
}

func validateSeeds(seeds [][]byte) error {
	if len(seeds) > maxSeeds {
		return ErrTooManySeeds
	}
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return ErrMaxSeedLengthExceeded
		}
	}
	return nil
}
