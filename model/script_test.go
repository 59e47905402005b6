package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptIdentity(t *testing.T) {
	r := NewTestRecord(TestKey("creator"))
	identity := r.Script()

	parsed, err := ParseScriptIdentity(identity.Bytes())
	require.NoError(t, err)
	assert.True(t, identity.Equal(parsed))
	assert.Equal(t, identity.Hash(), parsed.Hash())
	assert.Equal(t, ScriptTagBounty, ScriptTag(identity.Bytes()))

	t.Run("every constant changes the script", func(t *testing.T) {
		mutations := map[string]func(r *BountyRecord){
			"version":  func(r *BountyRecord) { r.Version = V1_0 },
			"creator":  func(r *BountyRecord) { r.CreatorPubKey = TestKey("other").PubKey().Compressed() },
			"dev fee":  func(r *BountyRecord) { r.DevFeeScriptHash = NewDigest([]byte("other")) },
			"fee rate": func(r *BountyRecord) { r.DevFeeRate = 11 },
			"token":    func(r *BountyRecord) { r.TokenID = TestTokenID("other") },
		}

		for name, mutate := range mutations {
			other := r.Clone()
			mutate(other)
			assert.NotEqual(t, identity.Hash(), other.Script().Hash(), name)
			assert.False(t, identity.Equal(other.Script()), name)
		}
	})

	t.Run("mutable fields keep the script", func(t *testing.T) {
		other := r.Clone()
		other.Deadline += 100
		other.Stats.Total++
		other.RewardAmount++
		other.Content = []byte("x")

		assert.Equal(t, identity.Hash(), other.Script().Hash())
	})
}

func TestParseScriptIdentityRejects(t *testing.T) {
	good := NewTestRecord(TestKey("creator")).Script().Bytes()

	unknownVersion := append([]byte(nil), good...)
	unknownVersion[1] = 0x99

	for name, script := range map[string][]byte{
		"empty":           nil,
		"pubkey script":   PubKeyScript(TestKey("creator").PubKey().Compressed()),
		"unknown version": unknownVersion,
		"truncated":       good[:len(good)-1],
		"trailing":        append(append([]byte(nil), good...), 0),
	} {
		_, err := ParseScriptIdentity(script)
		assert.Error(t, err, name)
	}
}

func TestMintGuardScript(t *testing.T) {
	hash := NewDigest([]byte("bounty script"))

	parsed, err := ParseMintGuardScript(MintGuardScript(hash))
	require.NoError(t, err)
	assert.Equal(t, hash, parsed)

	_, err = ParseMintGuardScript(PubKeyScript([]byte{2}))
	assert.Error(t, err)
}

func TestPubKeyScript(t *testing.T) {
	pub := TestKey("winner").PubKey().Compressed()

	parsed, err := ParsePubKeyScript(PubKeyScript(pub))
	require.NoError(t, err)
	assert.Equal(t, pub, parsed)

	_, err = ParsePubKeyScript([]byte{ScriptTagPubKey})
	assert.Error(t, err)
}

func TestFeeScript(t *testing.T) {
	f := &FeeScript{
		Denominator: 100,
		Shares: []FeeShare{
			{Script: PubKeyScript(TestKey("a").PubKey().Compressed()), Share: 60},
			{Script: PubKeyScript(TestKey("b").PubKey().Compressed()), Share: 40},
		},
	}

	parsed, err := ParseFeeScript(f.Bytes())
	require.NoError(t, err)
	assert.Equal(t, f, parsed)
	assert.Equal(t, f.Hash(), parsed.Hash())

	b := f.Bytes()
	_, err = ParseFeeScript(b[:len(b)-1])
	assert.Error(t, err)

	_, err = ParseFeeScript(append(b, 0))
	assert.Error(t, err)
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("v1_0")
	require.NoError(t, err)
	assert.Equal(t, V1_0, v)

	_, err = ParseVersion("v2_0")
	assert.Error(t, err)
}
