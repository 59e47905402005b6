package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentRoundTrip(t *testing.T) {
	roots := [3]Digest{NewDigest([]byte("s")), NewDigest([]byte("j")), NewDigest([]byte("m"))}
	payload := []byte(`{"title":"x"}`)

	blob := EncodeContent(roots, payload)
	require.Len(t, blob, ContentHeaderSize+len(payload))

	c := DecodeContent(blob)
	assert.Equal(t, roots, c.Roots)
	assert.Equal(t, payload, c.Payload)
	assert.Equal(t, roots[SlotJudgments], c.Root(SlotJudgments))
	assert.Equal(t, blob, c.Bytes())
}

func TestDecodeShortContent(t *testing.T) {
	short := bytes.Repeat([]byte{0xff}, ContentHeaderSize-1)

	c := DecodeContent(short)
	for _, root := range c.Roots {
		assert.True(t, root.IsZero())
	}

	assert.Equal(t, short, c.Payload)

	empty := DecodeContent(nil)
	assert.Empty(t, empty.Payload)
}

func TestReplaceRoot(t *testing.T) {
	roots := [3]Digest{NewDigest([]byte("s")), NewDigest([]byte("j")), NewDigest([]byte("m"))}
	payload := []byte("payload bytes")
	blob := EncodeContent(roots, payload)
	digest := NewDigest([]byte("new"))

	for _, slot := range []Slot{SlotSubmissions, SlotJudgments, SlotMetadata} {
		t.Run(slot.String(), func(t *testing.T) {
			replaced, err := ReplaceRoot(blob, slot, digest)
			require.NoError(t, err)

			c := DecodeContent(replaced)
			assert.Equal(t, digest, c.Root(slot))
			assert.Equal(t, payload, c.Payload)

			for other := Slot(0); other < 3; other++ {
				if other != slot {
					assert.Equal(t, roots[other], c.Root(other))
				}
			}

			assert.True(t, OnlySlotChanged(blob, replaced, slot))
			assert.True(t, SamePayload(blob, replaced))
		})
	}

	_, err := ReplaceRoot(blob, Slot(7), digest)
	require.Error(t, err)
}

func TestReplaceRootOnShortBlob(t *testing.T) {
	short := []byte("legacy")
	digest := NewDigest([]byte("first"))

	replaced, err := ReplaceRoot(short, SlotSubmissions, digest)
	require.NoError(t, err)

	c := DecodeContent(replaced)
	assert.Equal(t, digest, c.Roots[SlotSubmissions])
	assert.Equal(t, short, c.Payload)
	assert.True(t, OnlySlotChanged(short, replaced, SlotSubmissions))
}

func TestOnlySlotChanged(t *testing.T) {
	base := EncodeContent([3]Digest{NewDigest([]byte("a")), NewDigest([]byte("b")), NewDigest([]byte("c"))}, nil)
	changedTwo := EncodeContent([3]Digest{NewDigest([]byte("x")), NewDigest([]byte("y")), NewDigest([]byte("c"))}, nil)

	assert.False(t, OnlySlotChanged(base, base, SlotSubmissions), "nothing changed")
	assert.False(t, OnlySlotChanged(base, changedTwo, SlotSubmissions), "two roots changed")
	assert.False(t, OnlySlotChanged(base, changedTwo, SlotMetadata), "wrong slot")
	assert.False(t, OnlySlotChanged(base, base, Slot(-1)))
}

func TestAccumulate(t *testing.T) {
	var root Digest

	first := Accumulate(root, []byte("solution one"))
	second := Accumulate(first, []byte("solution two"))

	assert.NotEqual(t, root, first)
	assert.NotEqual(t, first, second)
	assert.Equal(t, first, Accumulate(root, []byte("solution one")))
}

func TestDigestFromHex(t *testing.T) {
	d := NewDigest([]byte("abc"))

	parsed, err := DigestFromHex(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	_, err = DigestFromHex("abcd")
	require.Error(t, err)

	_, err = DigestFromHex("not hex")
	require.Error(t, err)
}
