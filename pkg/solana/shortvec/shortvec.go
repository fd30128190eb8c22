// Package shortvec implements the compact-u16 length prefix used by Solana
// transaction and message encodings.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedSize = 3

// ErrLengthOverflow indicates a length that cannot be represented as a compact-u16.
var ErrLengthOverflow = errors.Errorf("len exceeds %d", math.MaxUint16)

// AppendLen appends the compact-u16 encoding of length to dst.
func AppendLen(dst []byte, length int) ([]byte, error) {
	if length < 0 || length > math.MaxUint16 {
		return dst, ErrLengthOverflow
	}

	for {
		b := byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			return append(dst, b), nil
		}
		dst = append(dst, b|0x80)
	}
}

// EncodeLen writes the compact-u16 encoding of length to w, returning the
// number of bytes written.
func EncodeLen(w io.Writer, length int) (int, error) {
	encoded, err := AppendLen(make([]byte, 0, maxEncodedSize), length)
	if err != nil {
		return 0, err
	}
	return w.Write(encoded)
}

// DecodeLen reads a compact-u16 encoded length from r.
func DecodeLen(r io.ByteReader) (int, error) {
	var val int
	for i := 0; i < maxEncodedSize; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		val |= int(b&0x7f) << (i * 7)
		if b&0x80 == 0 {
			return val, nil
		}
	}

	return 0, errors.Errorf("invalid size: more than %d bytes", maxEncodedSize)
}
