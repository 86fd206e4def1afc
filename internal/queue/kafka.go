package queue

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

var _ TreeQueue = (*KafkaTreeQueue)(nil)

// KafkaTreeQueue produces change events keyed by tree code.
type KafkaTreeQueue struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaTreeQueue(brokers string) (*KafkaTreeQueue, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}
	return &KafkaTreeQueue{producer: producer, topic: TreeChangedTopic}, nil
}

func (k *KafkaTreeQueue) PublishChange(ctx context.Context, event *TreeChanged) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.Code),
		Value:          value,
	}, delivery)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			logrus.Errorf("failed to deliver tree change %s: %v", event.ID, m.TopicPartition.Error)
			return m.TopicPartition.Error
		}
	}
	return nil
}

func (k *KafkaTreeQueue) Close() error {
	k.producer.Flush(5000)
	k.producer.Close()
	return nil
}
