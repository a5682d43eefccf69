package domain

import "time"

// MaxProductNameLength ограничивает длину названия товара.
const MaxProductNameLength = 255

// Product описывает товар каталога со складским остатком.
type Product struct {
	ID          string
	Name        string
	Category    string
	Description string
	// Price — цена за единицу, всегда неотрицательная.
	Price float64
	// Quantity — остаток на складе, всегда неотрицательный.
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductPatch описывает частичное обновление товара: заполняются только
// изменяемые поля, nil-поля не трогаются.
type ProductPatch struct {
	Name        *string
	Category    *string
	Description *string
	Price       *float64
	Quantity    *int
}

// IsEmpty сообщает, что патч не несёт ни одного изменения.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Description == nil &&
		p.Price == nil && p.Quantity == nil
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if len(p.Name) > MaxProductNameLength {
		errs = append(errs, ErrProductNameTooLong)
	}
	if p.Category == "" {
		errs = append(errs, ErrProductCategoryRequired)
	}
	if p.Price < 0 {
		errs = append(errs, ErrProductPriceNegative)
	}
	if p.Quantity < 0 {
		errs = append(errs, ErrProductQuantityNegative)
	}

	return errs
}
