package repository

import (
	"context"
	"errors"

	"ecomapi/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ErrInsufficientStock возвращается атомарным списанием при нехватке остатка
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrDuplicateKey возвращается при нарушении уникального индекса
// (например, два конкурентных создания пользователя с одним email)
var ErrDuplicateKey = errors.New("duplicate key")

// ProductFilter параметры фильтрации списка товаров.
// Category сравнивается точно, границы цены включительны.
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	// AdjustStock атомарно меняет остаток на delta. Возвращает
	// ErrInsufficientStock, если итог стал бы отрицательным.
	AdjustStock(ctx context.Context, id int64, delta int64) error
}

// OrderRepository интерфейс репозитория заказов и строк ассоциации заказ-товар
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	// Delete удаляет заказ вместе с его строками ассоциации
	Delete(ctx context.Context, id int64) error
	// ListByUser возвращает заказы пользователя, новые первыми
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	Count(ctx context.Context) (int64, error)
	SumTotals(ctx context.Context) (float64, error)

	HasProduct(ctx context.Context, orderID, productID int64) (bool, error)
	AttachProduct(ctx context.Context, orderID, productID int64) error
	// DetachProduct возвращает ErrNotFound, если ассоциации нет
	DetachProduct(ctx context.Context, orderID, productID int64) error
	ProductsOf(ctx context.Context, orderID int64) ([]domain.Product, error)
	SumProductPrices(ctx context.Context, orderID int64) (float64, error)
	// CountByProduct считает, в скольких заказах встречается товар
	CountByProduct(ctx context.Context, productID int64) (int64, error)
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
