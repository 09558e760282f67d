package infrastructure

import "context"

// MessagePublisher отправляет события магазина во внешний брокер
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
