package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxJSON(t *testing.T) {
	box := NewTestBox(NewTestRecord(TestKey("creator")))

	data, err := MarshalBox(box)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"boxId":"`+box.BoxID.String()+`"`)
	assert.Contains(t, string(data), `"R9":`)

	decoded, err := UnmarshalBox(data)
	require.NoError(t, err)
	assert.Equal(t, box, decoded)

	r, malformed, err := DecodeRecord(&decoded.Output)
	require.NoError(t, err)
	assert.Empty(t, malformed)
	assert.Equal(t, uint64(10_000_000), r.RewardAmount)
}

func TestBoxJSONErrors(t *testing.T) {
	tests := map[string]string{
		"not json":     `{`,
		"bad script":   `{"boxId":"00","transactionId":"00","script":"zz"}`,
		"bad register": `{"boxId":"00","transactionId":"00","script":"01","additionalRegisters":{"R3":"00"}}`,
		"bad token":    `{"boxId":"00","transactionId":"00","script":"01","assets":[{"tokenId":"xyz","amount":1}]}`,
		"bad box id":   `{"boxId":"xyz","transactionId":"00","script":"01"}`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalBox([]byte(data))
			require.Error(t, err)
		})
	}
}
