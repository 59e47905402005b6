package model

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const (
	DigestSize = 32

	// ContentHeaderSize is the size of the three roots at the front of a content blob.
	ContentHeaderSize = 3 * DigestSize
)

// Digest is a 32 byte commitment to an off-ledger data set.
type Digest [DigestSize]byte

// NewDigest returns the blake2b-256 digest of data.
func NewDigest(data []byte) Digest {
	return blake2b.Sum256(data)
}

func DigestFromHex(s string) (Digest, error) {
	var d Digest

	b, err := hex.DecodeString(s)
	if err != nil {
		return d, err
	}

	if len(b) != DigestSize {
		return d, fmt.Errorf("digest must be %d bytes, got %d", DigestSize, len(b))
	}

	copy(d[:], b)

	return d, nil
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Accumulate folds item into root. Every append to a submissions or judgments set
// moves the root to a new value.
func Accumulate(root Digest, item []byte) Digest {
	buf := make([]byte, 0, DigestSize+len(item))
	buf = append(buf, root[:]...)
	buf = append(buf, item...)

	return NewDigest(buf)
}

// Slot selects one of the three roots of a content blob.
type Slot int

const (
	SlotSubmissions Slot = iota
	SlotJudgments
	SlotMetadata
)

func (s Slot) String() string {
	switch s {
	case SlotSubmissions:
		return "submissions"
	case SlotJudgments:
		return "judgments"
	case SlotMetadata:
		return "metadata"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

func (s Slot) valid() bool {
	return s >= SlotSubmissions && s <= SlotMetadata
}

// Content is the decoded form of the R9 blob.
type Content struct {
	Roots   [3]Digest
	Payload []byte
}

// EncodeContent lays out the three roots followed by the payload.
func EncodeContent(roots [3]Digest, payload []byte) []byte {
	blob := make([]byte, 0, ContentHeaderSize+len(payload))
	for _, root := range roots {
		blob = append(blob, root[:]...)
	}

	return append(blob, payload...)
}

// DecodeContent splits a blob into roots and payload. Blobs shorter than the root
// header carry no roots: they decode to zero roots with the whole blob as payload.
func DecodeContent(blob []byte) Content {
	var c Content

	if len(blob) < ContentHeaderSize {
		c.Payload = bytes.Clone(blob)
		return c
	}

	for i := range c.Roots {
		copy(c.Roots[i][:], blob[i*DigestSize:(i+1)*DigestSize])
	}

	c.Payload = bytes.Clone(blob[ContentHeaderSize:])

	return c
}

func (c Content) Root(slot Slot) Digest {
	if !slot.valid() {
		return Digest{}
	}

	return c.Roots[slot]
}

func (c Content) Bytes() []byte {
	return EncodeContent(c.Roots, c.Payload)
}

// ReplaceRoot swaps the digest in slot, leaving the other roots and the payload intact.
func ReplaceRoot(blob []byte, slot Slot, digest Digest) ([]byte, error) {
	if !slot.valid() {
		return nil, fmt.Errorf("invalid content slot %d", int(slot))
	}

	c := DecodeContent(blob)
	c.Roots[slot] = digest

	return c.Bytes(), nil
}

// ReplacePayload keeps all three roots and swaps the payload.
func ReplacePayload(blob []byte, payload []byte) []byte {
	c := DecodeContent(blob)
	c.Payload = payload

	return c.Bytes()
}

// OnlySlotChanged reports whether the root in slot differs between prev and next while
// the other two roots are byte identical.
func OnlySlotChanged(prev, next []byte, slot Slot) bool {
	if !slot.valid() {
		return false
	}

	p, n := DecodeContent(prev), DecodeContent(next)

	for i := range p.Roots {
		if Slot(i) == slot {
			if p.Roots[i] == n.Roots[i] {
				return false
			}

			continue
		}

		if p.Roots[i] != n.Roots[i] {
			return false
		}
	}

	return true
}

// SamePayload reports whether prev and next carry byte identical payloads.
func SamePayload(prev, next []byte) bool {
	return bytes.Equal(DecodeContent(prev).Payload, DecodeContent(next).Payload)
}
