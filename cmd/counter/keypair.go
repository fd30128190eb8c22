package main

import (
	"crypto/ed25519"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/code-payments/counter-program/pkg/app"
)

// loadKeypair reads a keypair in the solana-keygen format: a JSON array of
// the 64 private key bytes.
func loadKeypair(fileURL string) (ed25519.PrivateKey, error) {
	data, err := app.LoadFile(fileURL)
	if err != nil {
		return nil, err
	}
	return parseKeypair(data)
}

func parseKeypair(data []byte) (ed25519.PrivateKey, error) {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "invalid keypair file")
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("invalid keypair length: %d", len(raw))
	}

	key := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	for i, v := range raw {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("invalid keypair byte at %d: %d", i, v)
		}
		key[i] = byte(v)
	}

	derived := ed25519.NewKeyFromSeed(key.Seed())
	if !derived.Equal(key) {
		return nil, errors.New("keypair public key doesn't match its seed")
	}
	return key, nil
}

func marshalKeypair(key ed25519.PrivateKey) []byte {
	raw := make([]int, len(key))
	for i, b := range key {
		raw[i] = int(b)
	}

	// Marshalling an int slice can't fail
	data, _ := json.Marshal(raw)
	return data
}
