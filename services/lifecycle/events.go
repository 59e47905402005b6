package lifecycle

import (
	"context"
	"time"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/util/kafka"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TransitionEvent announces a transition the ledger accepted.
type TransitionEvent struct {
	ID        string         `json:"id"`
	Action    model.Action   `json:"action"`
	TokenID   string         `json:"tokenId"`
	TxID      string         `json:"txId"`
	Height    int32          `json:"height"`
	Status    model.Status   `json:"status,omitempty"`
	Box       *model.BoxJSON `json:"box,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func newTransitionEvent(result *Result) *TransitionEvent {
	event := &TransitionEvent{
		ID:        uuid.NewString(),
		Action:    result.Action,
		TokenID:   result.TokenID.String(),
		TxID:      result.TxID.String(),
		Height:    result.Height,
		Status:    result.Status,
		Timestamp: time.Now().UTC(),
	}

	if result.Box != nil {
		box := result.Box.JSON()
		event.Box = &box
	}

	return event
}

// KafkaNotifier publishes events keyed by token id, so the events of one bounty stay
// in order on one partition.
type KafkaNotifier struct {
	producer kafka.KafkaProducerI
}

func NewKafkaNotifier(producer kafka.KafkaProducerI) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) Notify(_ context.Context, event *TransitionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.NewEncodingError("transition event %s", event.ID, err)
	}

	tokenID := []byte(event.TokenID)

	return n.producer.Send(tokenID, data)
}
