package metrics

import (
	"database/sql"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type RedisOperation string

const (
	RedisOpGet    RedisOperation = "get"
	RedisOpSet    RedisOperation = "set"
	RedisOpDel    RedisOperation = "del"
	RedisOpExists RedisOperation = "exists"
)

// NewRedisTimer запускает замер операции Redis; ObserveDuration пишет результат
// в redis_operation_duration_seconds
func NewRedisTimer(service string, op RedisOperation) *prometheus.Timer {
	return prometheus.NewTimer(RedisOperationDuration.WithLabelValues(service, string(op)))
}

// RecordCacheHit и RecordCacheMiss считают обращения к кешу по префиксу ключа
func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

// KafkaProduceTimer замеряет отправку одного сообщения.
// Время попадает в гистограмму только при успешной отправке.
type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{service: service, topic: topic, start: time.Now()}
}

func (t *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(t.service, t.topic).Inc()
	KafkaProduceDuration.WithLabelValues(t.service, t.topic).Observe(time.Since(t.start).Seconds())
}

func (t *KafkaProduceTimer) Error() {
	RecordKafkaError(t.service, t.topic, "produce")
}

func RecordKafkaMessageConsumed(service, topic, group string, processingDuration time.Duration) {
	KafkaMessagesConsumed.WithLabelValues(service, topic, group).Inc()
	KafkaConsumeDuration.WithLabelValues(service, topic).Observe(processingDuration.Seconds())
}

// RecordKafkaError - operation: produce, fetch, decode, commit
func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

type DbOperation string

const (
	DbOpSelect DbOperation = "select"
	DbOpInsert DbOperation = "insert"
	DbOpUpdate DbOperation = "update"
	DbOpDelete DbOperation = "delete"
	DbOpRaw    DbOperation = "raw"
)

func ObserveDbQuery(service string, op DbOperation, table string, start time.Time) {
	if table == "" {
		table = "unknown"
	}
	DbQueryDuration.WithLabelValues(service, string(op), table).Observe(time.Since(start).Seconds())
}

func RecordDbError(service string, op DbOperation) {
	DbErrors.WithLabelValues(service, string(op)).Inc()
}

// RegisterDBStats публикует статистику пула соединений database/sql
// (go_sql_open_connections, go_sql_in_use_connections и т.д.) с меткой db_name.
// Повторная регистрация той же базы не считается ошибкой.
func RegisterDBStats(db *sql.DB, dbName string) error {
	err := prometheus.Register(collectors.NewDBStatsCollector(db, dbName))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
