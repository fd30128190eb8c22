package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	ErrUnexpectedEOF = errors.New("unexpected end of data")
)

// Encoder appends little endian values to a fixed size buffer
type Encoder struct {
	buf    []byte
	offset int
}

func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, size)}
}

func (e *Encoder) PutUint8(v uint8) {
	e.buf[e.offset] = v
	e.offset++
}

func (e *Encoder) PutUint32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[e.offset:], v)
	e.offset += 4
}

func (e *Encoder) PutUint64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[e.offset:], v)
	e.offset += 8
}

func (e *Encoder) PutKey32(key ed25519.PublicKey) {
	copy(e.buf[e.offset:e.offset+ed25519.PublicKeySize], key)
	e.offset += ed25519.PublicKeySize
}

// Bytes returns the underlying buffer
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Decoder reads little endian values from a buffer. Reads past the end of
// the buffer fail with ErrUnexpectedEOF and leave the offset unchanged.
type Decoder struct {
	buf    []byte
	offset int
}

func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

func (d *Decoder) Uint8() (uint8, error) {
	if d.Remaining() < 1 {
		return 0, ErrUnexpectedEOF
	}
	v := d.buf[d.offset]
	d.offset++
	return v, nil
}

func (d *Decoder) Uint32() (uint32, error) {
	if d.Remaining() < 4 {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(d.buf[d.offset:])
	d.offset += 4
	return v, nil
}

func (d *Decoder) Uint64() (uint64, error) {
	if d.Remaining() < 8 {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint64(d.buf[d.offset:])
	d.offset += 8
	return v, nil
}

func (d *Decoder) Key32() (ed25519.PublicKey, error) {
	if d.Remaining() < ed25519.PublicKeySize {
		return nil, ErrUnexpectedEOF
	}
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, d.buf[d.offset:])
	d.offset += ed25519.PublicKeySize
	return key, nil
}

// Remaining returns the number of unread bytes
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.offset
}
