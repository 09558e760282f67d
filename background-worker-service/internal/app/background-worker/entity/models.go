package entity

import (
	"time"

	"partshop/pkg/events"
)

// ProductRating - проекция таблицы products, нужная для сверки рейтинга
type ProductRating struct {
	ID           uint    `gorm:"primaryKey"`
	Rating       float64 `gorm:"column:rating"`
	ReviewsCount int     `gorm:"column:reviews_count"`
}

func (ProductRating) TableName() string {
	return "products"
}

// ArchivedEvent - событие магазина в MongoDB вместе с координатами сообщения Kafka
type ArchivedEvent struct {
	events.ShopEvent `bson:",inline"`

	Partition  int       `bson:"partition"`
	Offset     int64     `bson:"offset"`
	ArchivedAt time.Time `bson:"archived_at"`
}

// ReconcileReport - итог одного прогона сверки
type ReconcileReport struct {
	ProductsChecked  int
	RatingsCorrected int
	CartItemsClamped int64
	CartItemsRemoved int64
	Duration         time.Duration
}
