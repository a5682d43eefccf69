// Package storage определяет контракт клиента хранилища: узкий интерфейс
// чтения/записи коллекций документов, за которым скрывается конкретный
// бэкенд (REST-хранилище, PostgreSQL или in-memory).
package storage

import (
	"context"
	"time"
)

// Sort описывает сортировку выборки по одному полю документа.
type Sort struct {
	Field string
	Desc  bool
}

// Query — параметры выборки коллекции. Filters — фильтры по полям документа:
// обычный ключ означает точное совпадение значения, суффиксы "_gte"/"_lte" —
// границы диапазона числового поля (например, "price_gte"). Page/Limit
// включают пагинацию, если Page > 0; перевод в родные параметры бэкенда —
// обязанность реализации.
type Query struct {
	Filters map[string]string
	Page    int
	Limit   int
	Sort    *Sort
}

// Paginated сообщает, запрошена ли постраничная выборка.
func (q *Query) Paginated() bool {
	return q != nil && q.Page > 0
}

// Meta — метаданные выборки, которые бэкенд сообщает вне основного тела
// ответа. HasTotal=false означает, что бэкенд не умеет считать полный размер
// выборки и вызывающему придётся выполнить отдельный подсчёт.
type Meta struct {
	Total    int
	HasTotal bool
}

// Client — интерфейс-способность для операций над коллекцией документов.
//
// Все методы выполняют ровно один запрос к бэкенду и не ретраят его: политика
// повторов принадлежит вызывающему. Ошибки типизированы через domain:
// отсутствие ресурса — ErrNotFound, сетевые и серверные сбои — ErrUnavailable,
// нарушение уникальности — ErrConflict. Отмена и дедлайны приходят через ctx.
//
// location адресует ресурс внутри бэкенда: "products" — коллекция,
// "products/42" — отдельный документ.
type Client interface {
	// Probe проверяет доступность бэкенда в пределах timeout. Ошибки
	// соединения не возвращаются, а превращаются в false.
	Probe(ctx context.Context, timeout time.Duration) bool

	// Get читает документ или коллекцию и возвращает сырой JSON.
	Get(ctx context.Context, location string, query *Query) ([]byte, error)

	// GetWithMeta — то же, что Get, но дополнительно возвращает метаданные
	// пагинации, если бэкенд их сообщает.
	GetWithMeta(ctx context.Context, location string, query *Query) ([]byte, Meta, error)

	// Post создаёт документ в коллекции и возвращает сохранённое представление.
	Post(ctx context.Context, location string, payload any) ([]byte, error)

	// Patch частично обновляет документ: переданные поля перекрывают
	// существующие, остальные не трогаются.
	Patch(ctx context.Context, location string, payload any) ([]byte, error)

	// Delete удаляет документ.
	Delete(ctx context.Context, location string) error
}
