package service

import (
	"context"
	"errors"

	"ecomapi/internal/domain"
	"ecomapi/internal/repository"
	"ecomapi/internal/validation"
)

// ProductService инкапсулирует бизнес-логику вокруг товаров
type ProductService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
}

func NewProductService(products repository.ProductRepository, orders repository.OrderRepository, tx repository.TxManager) *ProductService {
	return &ProductService{products: products, orders: orders, tx: tx}
}

func (s *ProductService) Create(ctx context.Context, in validation.ProductInput) (*domain.Product, error) {
	if err := validation.Product(in, false); err != nil {
		return nil, err
	}
	p := &domain.Product{
		ProductName: *in.ProductName,
		Price:       *in.Price,
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundf("Product with ID %d not found", id)
	}
	return p, err
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return s.products.List(ctx, f)
}

// Update частичное обновление: непереданные поля остаются как были
func (s *ProductService) Update(ctx context.Context, id int64, in validation.ProductInput) (*domain.Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validation.Product(in, true); err != nil {
		return nil, err
	}
	if in.ProductName != nil {
		p.ProductName = *in.ProductName
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete отказывает, если товар входит хотя бы в один заказ: молчаливое
// сжатие сумм исторических заказов недопустимо
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		n, err := s.orders.CountByProduct(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Product is referenced by existing orders")
		}
		return s.products.Delete(ctx, id)
	})
}
