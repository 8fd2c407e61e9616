//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"registro/internal/platform/kafka/producer"
	"registro/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	cfg := producer.DefaultConfig(s.kafka.Brokers)
	cfg.DeliveryTimeout = 10 * time.Second
	prod, err := producer.New(cfg, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close(5 * time.Second)
	}
}

func (s *ProducerIntegrationSuite) TestProduceAsyncDeliversRecordWithHeaders() {
	ctx := context.Background()
	topic := "contact.registered.headers"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic))

	err := s.producer.ProduceAsync(&producer.Message{
		Topic:   topic,
		Key:     []byte("9b2f7a10-0000-4000-8000-000000000001"),
		Value:   []byte(`{"interest":"cloud"}`),
		Headers: map[string]string{"event_type": "contact.registered"},
	})
	s.Require().NoError(err)

	record, err := s.kafka.ConsumeFirst(ctx, topic, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "9b2f7a10-0000-4000-8000-000000000001"
	})
	s.Require().NoError(err)
	s.Require().NotNil(record)
	s.JSONEq(`{"interest":"cloud"}`, string(record.Value))
	s.Require().Len(record.Headers, 1)
	s.Equal("event_type", record.Headers[0].Key)
	s.Equal("contact.registered", string(record.Headers[0].Value))
}

func (s *ProducerIntegrationSuite) TestProduceAsyncAutoCreatesTopic() {
	ctx := context.Background()
	topic := "contact.registered.auto-" + time.Now().Format("20060102150405")

	s.Require().NoError(s.producer.ProduceAsync(&producer.Message{Topic: topic, Key: []byte("k"), Value: []byte("v")}))

	record, err := s.kafka.ConsumeFirst(ctx, topic, 10*time.Second, func(r *kgo.Record) bool { return string(r.Key) == "k" })
	s.Require().NoError(err)
	s.NotNil(record)
}

func (s *ProducerIntegrationSuite) TestHealth() {
	s.NoError(s.producer.Health(context.Background()))
}
