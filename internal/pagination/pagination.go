// Package pagination содержит общий механизм пагинации для листинговых
// операций: нормализацию параметров страницы и единый конверт ответа.
package pagination

const (
	// DefaultPage — номер страницы по умолчанию (страницы нумеруются с единицы).
	DefaultPage = 1
	// DefaultLimit — размер страницы по умолчанию.
	DefaultLimit = 10
	// MaxLimit — верхняя граница размера страницы.
	MaxLimit = 100
)

// Params — входные параметры пагинации, как их прислал клиент.
type Params struct {
	Page  int
	Limit int
}

// Normalize приводит параметры к допустимым значениям: страница не меньше 1,
// лимит в пределах [1, MaxLimit], нулевые значения заменяются дефолтами.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset возвращает смещение первой записи страницы для бэкендов с
// offset-пагинацией. Параметры должны быть нормализованы.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages считает число страниц: ceil(total/limit), 0 при пустой выборке.
func TotalPages(total, limit int) int {
	if total <= 0 || limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Response — единый конверт листинговых ответов. Items — размер текущей
// страницы, Total — полный размер выборки с учётом фильтров.
type Response[T any] struct {
	Data       []T `json:"data"`
	Items      int `json:"items"`
	Page       int `json:"page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewResponse собирает конверт из данных страницы и полного количества записей.
func NewResponse[T any](data []T, params Params, total int) Response[T] {
	if data == nil {
		data = []T{}
	}
	return Response[T]{
		Data:       data,
		Items:      len(data),
		Page:       params.Page,
		Total:      total,
		TotalPages: TotalPages(total, params.Limit),
	}
}
