package service

import (
	"context"
	"errors"
	"time"

	"ecomapi/internal/domain"
	"ecomapi/internal/repository"
	"ecomapi/internal/validation"
)

// OrderService реализует логику заказов: создание, состав заказа,
// пересчёт суммы, смена статуса. Единственное место, где живут
// мультисущностные инварианты (остатки, ассоциации, total_amount).
type OrderService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
}

func NewOrderService(
	users repository.UserRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	tx repository.TxManager,
) *OrderService {
	return &OrderService{users: users, products: products, orders: orders, tx: tx}
}

// CreateOrderInput кандидатные поля нового заказа
type CreateOrderInput struct {
	UserID *int64
	Status *string
}

// Create создаёт пустой заказ со статусом pending и нулевой суммой
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if in.UserID == nil {
		return nil, validation.Field("user_id", validation.MsgRequired)
	}
	status := domain.OrderStatusPending
	if in.Status != nil {
		status = domain.OrderStatus(*in.Status)
		if !status.Valid() {
			return nil, invalidf("Invalid status. Must be one of: %v", domain.OrderStatuses)
		}
	}
	if _, err := s.users.GetByID(ctx, *in.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("User with ID %d not found", *in.UserID)
		}
		return nil, err
	}

	o := &domain.Order{
		OrderDate: time.Now().UTC(),
		UserID:    *in.UserID,
		Status:    status,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// AddProduct добавляет товар в заказ: проверки по порядку (заказ, товар,
// дубликат, остаток), затем атомарно — списание остатка, вставка строки
// ассоциации и пересчёт total_amount
func (s *OrderService) AddProduct(ctx context.Context, orderID, productID int64) (*domain.Order, error) {
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundf("Order with ID %d not found", orderID)
			}
			return err
		}
		if _, err := s.products.GetByID(ctx, productID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundf("Product with ID %d not found", productID)
			}
			return err
		}
		has, err := s.orders.HasProduct(ctx, orderID, productID)
		if err != nil {
			return err
		}
		if has {
			return conflictf("Product is already in this order")
		}
		if err := s.products.AdjustStock(ctx, productID, -1); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				return conflictf("Product is out of stock")
			}
			return err
		}
		if err := s.orders.AttachProduct(ctx, orderID, productID); err != nil {
			return err
		}
		total, err := s.orders.SumProductPrices(ctx, orderID)
		if err != nil {
			return err
		}
		o.TotalAmount = total
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveProduct убирает товар из заказа: строка ассоциации удаляется,
// остаток возвращается на единицу, сумма пересчитывается
func (s *OrderService) RemoveProduct(ctx context.Context, orderID, productID int64) (*domain.Order, error) {
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundf("Order with ID %d not found", orderID)
			}
			return err
		}
		if _, err := s.products.GetByID(ctx, productID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundf("Product with ID %d not found", productID)
			}
			return err
		}
		if err := s.orders.DetachProduct(ctx, orderID, productID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundf("Product is not in this order")
			}
			return err
		}
		if err := s.products.AdjustStock(ctx, productID, +1); err != nil {
			return err
		}
		total, err := s.orders.SumProductPrices(ctx, orderID)
		if err != nil {
			return err
		}
		o.TotalAmount = total
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ProductsOf возвращает заказ и состав его товаров. Пустой заказ — это
// пустой список и нулевая сумма, не ошибка.
func (s *OrderService) ProductsOf(ctx context.Context, orderID int64) (*domain.Order, []domain.Product, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, notFoundf("Order with ID %d not found", orderID)
		}
		return nil, nil, err
	}
	products, err := s.orders.ProductsOf(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return o, products, nil
}

// ListByUser возвращает заказы пользователя, новые первыми
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("User with ID %d not found", userID)
		}
		return nil, err
	}
	return s.orders.ListByUser(ctx, userID)
}

// UpdateStatus меняет статус заказа; сумма и состав не затрагиваются
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("Order with ID %d not found", orderID)
		}
		return nil, err
	}
	st := domain.OrderStatus(status)
	if !st.Valid() {
		return nil, invalidf("Invalid status. Must be one of: %v", domain.OrderStatuses)
	}
	o.Status = st
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
