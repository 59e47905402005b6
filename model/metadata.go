package model

import (
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Metadata is the JSON payload describing a bounty.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	Image       string `json:"image,omitempty"`
	Version     uint64 `json:"version"`
}

// ParseMetadata decodes a payload.
func ParseMetadata(payload []byte) (*Metadata, error) {
	m := &Metadata{}
	if err := json.Unmarshal(payload, m); err != nil {
		return nil, err
	}

	return m, nil
}

// MetadataFromPayload is ParseMetadata without the error: anything unreadable is an
// empty version 0 description.
func MetadataFromPayload(payload []byte) *Metadata {
	m, err := ParseMetadata(payload)
	if err != nil {
		return &Metadata{}
	}

	return m
}

func (m *Metadata) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// DisplayTitle falls back to a title derived from the bounty id.
func (m *Metadata) DisplayTitle(tokenID chainhash.Hash) string {
	if m.Title != "" {
		return m.Title
	}

	return "Bounty " + tokenID.String()[:8]
}
