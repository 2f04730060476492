package gormstore

import (
	"context"

	"gorm.io/gorm"

	"ecomapi/internal/domain"
	"ecomapi/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository создаёт репозиторий заказов
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *domain.Order) error {
	return dbFrom(ctx, r.db).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := dbFrom(ctx, r.db).First(&o, id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *orderRepo) Update(ctx context.Context, o *domain.Order) error {
	res := dbFrom(ctx, r.db).Model(&domain.Order{}).Where("id = ?", o.ID).
		Select("status", "total_amount").Updates(o)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := dbFrom(ctx, r.db).Model(&domain.Order{}).Where("id = ?", o.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
	}
	return nil
}

// Delete удаляет заказ и его строки ассоциации. Каскад выражен явно,
// вызывающий обязан обернуть вызов в транзакцию.
func (r *orderRepo) Delete(ctx context.Context, id int64) error {
	if err := dbFrom(ctx, r.db).Where("order_id = ?", id).Delete(&domain.OrderProduct{}).Error; err != nil {
		return err
	}
	res := dbFrom(ctx, r.db).Delete(&domain.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var list []domain.Order
	if err := dbFrom(ctx, r.db).
		Where("user_id = ?", userID).
		Order("order_date DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := dbFrom(ctx, r.db).Model(&domain.Order{}).Count(&n).Error
	return n, err
}

func (r *orderRepo) SumTotals(ctx context.Context) (float64, error) {
	var sum float64
	err := dbFrom(ctx, r.db).Model(&domain.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&sum).Error
	return sum, err
}

func (r *orderRepo) HasProduct(ctx context.Context, orderID, productID int64) (bool, error) {
	var n int64
	err := dbFrom(ctx, r.db).Model(&domain.OrderProduct{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Count(&n).Error
	return n > 0, err
}

func (r *orderRepo) AttachProduct(ctx context.Context, orderID, productID int64) error {
	return dbFrom(ctx, r.db).Create(&domain.OrderProduct{OrderID: orderID, ProductID: productID}).Error
}

func (r *orderRepo) DetachProduct(ctx context.Context, orderID, productID int64) error {
	res := dbFrom(ctx, r.db).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Delete(&domain.OrderProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepo) ProductsOf(ctx context.Context, orderID int64) ([]domain.Product, error) {
	var list []domain.Product
	if err := dbFrom(ctx, r.db).Model(&domain.Product{}).
		Joins("JOIN order_product ON order_product.product_id = products.id").
		Where("order_product.order_id = ?", orderID).
		Order("products.id").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) SumProductPrices(ctx context.Context, orderID int64) (float64, error) {
	var sum float64
	err := dbFrom(ctx, r.db).Model(&domain.Product{}).
		Joins("JOIN order_product ON order_product.product_id = products.id").
		Where("order_product.order_id = ?", orderID).
		Select("COALESCE(SUM(products.price), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *orderRepo) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	var n int64
	err := dbFrom(ctx, r.db).Model(&domain.OrderProduct{}).
		Where("product_id = ?", productID).
		Count(&n).Error
	return n, err
}
