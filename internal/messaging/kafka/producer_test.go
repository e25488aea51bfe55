package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishEvent(t *testing.T) {
	// Создаем mock producer
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	// Настраиваем ожидания
	mockProducer.ExpectSendMessageAndSucceed()

	// Создаем тестовое событие
	event := NewCartEvent(
		EventTypeCartItemAdded,
		"user-123",
		"cart-123",
		map[string]interface{}{
			"product_id": "product-1",
		},
	)

	// Публикуем событие
	err := producer.PublishEvent(TopicCartEvents, "user-123", event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Проверяем, что все ожидания выполнены
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	// Создаем mock producer с ошибкой
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	// Настраиваем ожидание ошибки
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewCartEvent(
		EventTypeCartCleared,
		"user-123",
		"cart-123",
		nil,
	)

	// Публикуем событие
	err := producer.PublishEvent(TopicCartEvents, "user-123", event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewCartEvent(t *testing.T) {
	ownerID := "user-123"
	cartID := "cart-123"
	metadata := map[string]interface{}{
		"product_id": "product-1",
		"quantity":   3,
	}

	event := NewCartEvent(EventTypeCartItemAdded, ownerID, cartID, metadata)

	if event.EventType != EventTypeCartItemAdded {
		t.Errorf("expected event type %s, got %s", EventTypeCartItemAdded, event.EventType)
	}

	if event.OwnerID != ownerID {
		t.Errorf("expected owner id %s, got %s", ownerID, event.OwnerID)
	}

	if event.CartID != cartID {
		t.Errorf("expected cart id %s, got %s", cartID, event.CartID)
	}

	if event.Metadata["product_id"] != "product-1" {
		t.Error("metadata not set correctly")
	}

	// Проверяем, что timestamp установлен
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}

	// Проверяем, что timestamp близок к текущему времени
	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}
