package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mbocion/polis/internal/portfolio/models"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	ClientCreated   EventType = "client_created"
	ClientUpdated   EventType = "client_updated"
	ClientDeleted   EventType = "client_deleted"
	ContractCreated EventType = "contract_created"
	ContractUpdated EventType = "contract_updated"
)

// Event carries exactly one of Client or Contract, depending on Type.
type Event struct {
	Type     EventType        `json:"type"`
	Client   *models.Client   `json:"client,omitempty"`
	Contract *models.Contract `json:"contract,omitempty"`
}

// key returns the Kafka message key: the ID of whichever entity is set.
func (e Event) key() string {
	if e.Client != nil {
		return e.Client.ID.String()
	}
	if e.Contract != nil {
		return e.Contract.ID.String()
	}
	return ""
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter // Use interface instead of concrete type
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
}

func NewProducer(brokers []string, logger *zap.Logger, topic string) (*Producer, error) {
	// Create topic if it doesn't exist
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	topicConfigs := []kafka.TopicConfig{
		{
			Topic:             topic,
			NumPartitions:     3,
			ReplicationFactor: 1,
		},
	}

	err = conn.CreateTopics(topicConfigs...)
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}
	p := &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
			Topic:    topic,
		},
		events:    make(chan Event, 1000), // Buffered channel
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
	}

	go p.eventLoop()
	return p, nil
}

// ProduceClient enqueues a client lifecycle event.
func (p *Producer) ProduceClient(eventType EventType, client *models.Client) {
	p.enqueue(Event{Type: eventType, Client: client})
}

// ProduceContract enqueues a contract lifecycle event.
func (p *Producer) ProduceContract(eventType EventType, contract *models.Contract) {
	p.enqueue(Event{Type: eventType, Contract: contract})
}

func (p *Producer) enqueue(event Event) {
	select {
	case p.events <- event:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.key()),
		)
	}
}

func (p *Producer) eventLoop() {
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("entity_id", event.key()),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.key()),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.key()),
		)
		return
	}
}

func (p *Producer) Close() {
	close(p.closeChan)
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}
