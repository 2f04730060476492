package service

import (
	"context"
	"math"

	"ecomapi/internal/repository"
)

// Stats сводные счётчики системы
type Stats struct {
	TotalUsers    int64   `json:"total_users"`
	TotalProducts int64   `json:"total_products"`
	TotalOrders   int64   `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// StatsService считает сводку по всем трём сущностям
type StatsService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewStatsService(users repository.UserRepository, products repository.ProductRepository, orders repository.OrderRepository) *StatsService {
	return &StatsService{users: users, products: products, orders: orders}
}

func (s *StatsService) Collect(ctx context.Context) (*Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.Count(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orders.SumTotals(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalUsers:    users,
		TotalProducts: products,
		TotalOrders:   orders,
		TotalRevenue:  math.Round(revenue*100) / 100,
	}, nil
}
