// Package rating вычисляет агрегированный рейтинг товара по оценкам отзывов.
package rating

import "strconv"

const (
	MinRating = 1
	MaxRating = 5
)

// Valid сообщает, лежит ли оценка в диапазоне [1, 5]
func Valid(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Average возвращает среднее оценок, округленное до одного знака.
// Округляется точное двоичное значение среднего, ровная половина уходит к четному.
// Для пустого набора возвращает 0.0.
func Average(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	mean := float64(sum) / float64(len(ratings))
	avg, _ := strconv.ParseFloat(strconv.FormatFloat(mean, 'f', 1, 64), 64)
	return avg
}
