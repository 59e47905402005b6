package model

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Version is the bounty script version a record was compiled with.
type Version string

const (
	V1_0 Version = "v1_0"
	V1_1 Version = "v1_1"
)

var SupportedVersions = []Version{V1_0, V1_1}

func ParseVersion(s string) (Version, error) {
	for _, v := range SupportedVersions {
		if string(v) == s {
			return v, nil
		}
	}

	return "", fmt.Errorf("unsupported script version %q", s)
}

func (v Version) code() byte {
	switch v {
	case V1_0:
		return 0x10
	case V1_1:
		return 0x11
	default:
		return 0
	}
}

func versionFromCode(c byte) (Version, bool) {
	switch c {
	case 0x10:
		return V1_0, true
	case 0x11:
		return V1_1, true
	default:
		return "", false
	}
}

// script tags, first byte of every script
const (
	ScriptTagBounty          byte = 0x01
	ScriptTagMintGuard       byte = 0x02
	ScriptTagPubKey          byte = 0x03
	ScriptTagFeeDistribution byte = 0x04
)

// ScriptTag returns the tag of script, or 0 when empty.
func ScriptTag(script []byte) byte {
	if len(script) == 0 {
		return 0
	}

	return script[0]
}

// ScriptIdentity holds every constant the bounty script is derived from. Two records
// with equal identities run the same script.
type ScriptIdentity struct {
	Version          Version
	CreatorPubKey    []byte
	DevFeeScriptHash Digest
	DevFeeRate       uint64
	TokenID          chainhash.Hash
}

// Bytes is the script form of the identity:
// tag | version | len(pubkey) | pubkey | dev fee script hash | dev fee rate | token id.
func (s ScriptIdentity) Bytes() []byte {
	b := make([]byte, 0, 3+len(s.CreatorPubKey)+DigestSize+8+chainhash.HashSize)
	b = append(b, ScriptTagBounty, s.Version.code(), byte(len(s.CreatorPubKey))) //nolint:gosec // pubkeys are 33 bytes
	b = append(b, s.CreatorPubKey...)
	b = append(b, s.DevFeeScriptHash[:]...)
	b = binary.BigEndian.AppendUint64(b, s.DevFeeRate)

	return append(b, s.TokenID[:]...)
}

func (s ScriptIdentity) Hash() Digest {
	return NewDigest(s.Bytes())
}

func (s ScriptIdentity) Equal(o ScriptIdentity) bool {
	return s.Version == o.Version &&
		bytes.Equal(s.CreatorPubKey, o.CreatorPubKey) &&
		s.DevFeeScriptHash == o.DevFeeScriptHash &&
		s.DevFeeRate == o.DevFeeRate &&
		s.TokenID == o.TokenID
}

func ParseScriptIdentity(script []byte) (ScriptIdentity, error) {
	var s ScriptIdentity

	if len(script) < 3 || script[0] != ScriptTagBounty {
		return s, fmt.Errorf("not a bounty script")
	}

	version, ok := versionFromCode(script[1])
	if !ok {
		return s, fmt.Errorf("unknown bounty script version 0x%02x", script[1])
	}

	pkLen := int(script[2])
	if len(script) != 3+pkLen+DigestSize+8+chainhash.HashSize {
		return s, fmt.Errorf("bounty script has invalid length %d", len(script))
	}

	rest := script[3:]
	s.Version = version
	s.CreatorPubKey = bytes.Clone(rest[:pkLen])
	rest = rest[pkLen:]
	copy(s.DevFeeScriptHash[:], rest[:DigestSize])
	rest = rest[DigestSize:]
	s.DevFeeRate = binary.BigEndian.Uint64(rest[:8])
	copy(s.TokenID[:], rest[8:])

	return s, nil
}

// MintGuardScript guards a freshly minted control token until it is moved, in full,
// into a record running the bounty script with the given hash.
func MintGuardScript(bountyScriptHash Digest) []byte {
	return append([]byte{ScriptTagMintGuard}, bountyScriptHash[:]...)
}

func ParseMintGuardScript(script []byte) (Digest, error) {
	var d Digest

	if len(script) != 1+DigestSize || script[0] != ScriptTagMintGuard {
		return d, fmt.Errorf("not a mint guard script")
	}

	copy(d[:], script[1:])

	return d, nil
}

// PubKeyScript pays to whoever proves knowledge of the key behind pubKey.
func PubKeyScript(pubKey []byte) []byte {
	return append([]byte{ScriptTagPubKey}, pubKey...)
}

func ParsePubKeyScript(script []byte) ([]byte, error) {
	if len(script) < 2 || script[0] != ScriptTagPubKey {
		return nil, fmt.Errorf("not a public key script")
	}

	return bytes.Clone(script[1:]), nil
}

// FeeShare is one recipient of a fee distribution.
type FeeShare struct {
	Script []byte
	Share  uint64
}

// FeeScript guards collected platform fees. Spending it must pay every recipient its
// share of the distributable amount, in order, followed by the miner fee output.
type FeeScript struct {
	Shares      []FeeShare
	Denominator uint64
}

func (f *FeeScript) Bytes() []byte {
	b := []byte{ScriptTagFeeDistribution}
	b = binary.BigEndian.AppendUint64(b, f.Denominator)
	b = append(b, byte(len(f.Shares))) //nolint:gosec // share count is validated at load

	for _, share := range f.Shares {
		b = binary.BigEndian.AppendUint64(b, share.Share)
		b = binary.BigEndian.AppendUint16(b, uint16(len(share.Script))) //nolint:gosec // scripts are short
		b = append(b, share.Script...)
	}

	return b
}

func (f *FeeScript) Hash() Digest {
	return NewDigest(f.Bytes())
}

func ParseFeeScript(script []byte) (*FeeScript, error) {
	if len(script) < 10 || script[0] != ScriptTagFeeDistribution {
		return nil, fmt.Errorf("not a fee distribution script")
	}

	f := &FeeScript{Denominator: binary.BigEndian.Uint64(script[1:9])}
	count := int(script[9])
	rest := script[10:]

	for i := 0; i < count; i++ {
		if len(rest) < 10 {
			return nil, fmt.Errorf("fee distribution script truncated at share %d", i)
		}

		share := binary.BigEndian.Uint64(rest[:8])
		l := int(binary.BigEndian.Uint16(rest[8:10]))
		rest = rest[10:]

		if len(rest) < l {
			return nil, fmt.Errorf("fee distribution script truncated at share %d", i)
		}

		f.Shares = append(f.Shares, FeeShare{Script: bytes.Clone(rest[:l]), Share: share})
		rest = rest[l:]
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("fee distribution script has %d trailing bytes", len(rest))
	}

	return f, nil
}
