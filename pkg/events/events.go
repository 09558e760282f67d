// Package events описывает доменные события магазина, которые shop-service
// публикует в Kafka, а background-worker-service читает.
package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	ProductCreated  EventType = "PRODUCT_CREATED"
	ProductUpdated  EventType = "PRODUCT_UPDATED"
	ProductDeleted  EventType = "PRODUCT_DELETED"
	ReviewCreated   EventType = "REVIEW_CREATED"
	ReviewUpdated   EventType = "REVIEW_UPDATED"
	ReviewDeleted   EventType = "REVIEW_DELETED"
	CartItemAdded   EventType = "CART_ITEM_ADDED"
	CartItemUpdated EventType = "CART_ITEM_UPDATED"
	CartItemRemoved EventType = "CART_ITEM_REMOVED"
	UserRegistered  EventType = "USER_REGISTERED"
)

// IsReview сообщает, влияет ли событие на рейтинг товара
func (t EventType) IsReview() bool {
	return strings.HasPrefix(string(t), "REVIEW_")
}

// ShopEvent - сообщение топика shop_events
type ShopEvent struct {
	EventID   string    `json:"event_id" bson:"event_id"`
	EventType EventType `json:"event_type" bson:"event_type"`
	ProductID uint      `json:"product_id,omitempty" bson:"product_id,omitempty"`
	UserID    uint      `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Rating    float64   `json:"rating,omitempty" bson:"rating,omitempty"`
	Quantity  int       `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// New создает событие с уникальным ID и текущим временем
func New(eventType EventType) *ShopEvent {
	return &ShopEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// Key возвращает ключ партиционирования: события одного товара попадают в одну партицию
func (e *ShopEvent) Key() string {
	if e.ProductID != 0 {
		return strconv.FormatUint(uint64(e.ProductID), 10)
	}
	return "user:" + strconv.FormatUint(uint64(e.UserID), 10)
}

func (e *ShopEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal разбирает сообщение и проверяет обязательные поля
func Unmarshal(data []byte) (*ShopEvent, error) {
	var e ShopEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shop event: %w", err)
	}
	if e.EventID == "" || e.EventType == "" {
		return nil, fmt.Errorf("shop event is missing event_id or event_type")
	}
	return &e, nil
}
