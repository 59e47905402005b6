// Package kafka publishes bounty transition events to a Kafka topic.
package kafka

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/settings"
)

/**
kafka-topics.sh --describe --bootstrap-server localhost:9092

kafka-console-consumer.sh --topic bounty-transitions --bootstrap-server localhost:9092 --from-beginning
*/

type KafkaProducerI interface {
	Send(key []byte, data []byte) error
	Close() error
}

// SyncKafkaProducer sends each message synchronously. Messages with the same key land
// on the same partition, so the events of one bounty stay in order.
type SyncKafkaProducer struct {
	Producer   sarama.SyncProducer
	Topic      string
	Partitions int32
}

func (k *SyncKafkaProducer) Close() error {
	if err := k.Producer.Close(); err != nil {
		return errors.NewServiceError("failed to close Kafka producer", err)
	}

	return nil
}

func (k *SyncKafkaProducer) Send(key []byte, data []byte) error {
	if len(key) < 4 {
		return errors.NewInvalidArgumentError("kafka message key must be at least 4 bytes, got %d", len(key))
	}

	partitions := k.Partitions
	if partitions < 1 {
		partitions = 1
	}

	partition := binary.LittleEndian.Uint32(key) % uint32(partitions) //nolint:gosec // partitions is positive

	_, _, err := k.Producer.SendMessage(&sarama.ProducerMessage{
		Topic:     k.Topic,
		Key:       sarama.ByteEncoder(key),
		Value:     sarama.ByteEncoder(data),
		Partition: int32(partition), //nolint:gosec // below partitions
	})
	if err != nil {
		return errors.NewServiceUnavailableError("failed to send message to topic %s", k.Topic, err)
	}

	return nil
}

// ProducerConfig is the sarama configuration used for transition events.
func ProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Partitioner = sarama.NewManualPartitioner

	return config
}

func ConnectProducer(brokers []string, topic string, partitions int32) (KafkaProducerI, error) {
	conn, err := sarama.NewSyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, errors.NewServiceUnavailableError("unable to connect to kafka", err)
	}

	return &SyncKafkaProducer{
		Producer:   conn,
		Partitions: partitions,
		Topic:      topic,
	}, nil
}

// Brokers expands the comma separated host list of the settings into host:port pairs.
func Brokers(kafkaSettings settings.KafkaSettings) []string {
	var brokers []string

	for _, host := range strings.Split(kafkaSettings.Hosts, ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}

		if !strings.Contains(host, ":") {
			host = fmt.Sprintf("%s:%d", host, kafkaSettings.Port)
		}

		brokers = append(brokers, host)
	}

	return brokers
}

// NewTransitionsProducer connects to the transitions topic configured in settings.
func NewTransitionsProducer(kafkaSettings settings.KafkaSettings) (KafkaProducerI, error) {
	brokers := Brokers(kafkaSettings)
	if len(brokers) == 0 {
		return nil, errors.NewConfigurationError("no kafka hosts configured")
	}

	if kafkaSettings.Transitions == "" {
		return nil, errors.NewConfigurationError("no kafka transitions topic configured")
	}

	return ConnectProducer(brokers, kafkaSettings.Transitions, int32(kafkaSettings.Partitions)) //nolint:gosec // small config value
}
