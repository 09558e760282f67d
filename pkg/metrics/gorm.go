package metrics

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const dbStartKey = "metrics:db_start"

// GormPlugin снимает db_query_duration_seconds и db_errors_total
// для каждого запроса, выполненного через gorm
type GormPlugin struct {
	Service string
}

func NewGormPlugin(service string) *GormPlugin {
	return &GormPlugin{Service: service}
}

func (p *GormPlugin) Name() string {
	return "prometheus-metrics"
}

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	hooks := []struct {
		op       DbOperation
		register func(before, after func(*gorm.DB)) error
	}{
		{DbOpSelect, func(before, after func(*gorm.DB)) error {
			if err := cb.Query().Before("gorm:query").Register("metrics:before_query", before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("metrics:after_query", after)
		}},
		{DbOpInsert, func(before, after func(*gorm.DB)) error {
			if err := cb.Create().Before("gorm:create").Register("metrics:before_create", before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("metrics:after_create", after)
		}},
		{DbOpUpdate, func(before, after func(*gorm.DB)) error {
			if err := cb.Update().Before("gorm:update").Register("metrics:before_update", before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("metrics:after_update", after)
		}},
		{DbOpDelete, func(before, after func(*gorm.DB)) error {
			if err := cb.Delete().Before("gorm:delete").Register("metrics:before_delete", before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("metrics:after_delete", after)
		}},
		{DbOpRaw, func(before, after func(*gorm.DB)) error {
			if err := cb.Raw().Before("gorm:raw").Register("metrics:before_raw", before); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("metrics:after_raw", after)
		}},
	}

	for _, h := range hooks {
		if err := h.register(p.before(h.op), p.after(h.op)); err != nil {
			return err
		}
	}

	return nil
}

func (p *GormPlugin) before(op DbOperation) func(*gorm.DB) {
	return func(db *gorm.DB) {
		db.InstanceSet(dbStartKey, time.Now())
	}
}

func (p *GormPlugin) after(op DbOperation) func(*gorm.DB) {
	return func(db *gorm.DB) {
		// имя таблицы известно только после парсинга модели, поэтому берем его здесь
		if v, ok := db.InstanceGet(dbStartKey); ok {
			if start, ok := v.(time.Time); ok {
				ObserveDbQuery(p.Service, op, db.Statement.Table, start)
			}
		}

		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			RecordDbError(p.Service, op)
		}
	}
}
