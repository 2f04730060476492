package gormstore

import (
	"context"

	"gorm.io/gorm"

	"ecomapi/internal/domain"
	"ecomapi/internal/repository"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository создаёт репозиторий товаров
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return dbFrom(ctx, r.db).Create(p).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := dbFrom(ctx, r.db).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	query := dbFrom(ctx, r.db)
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	var list []domain.Product
	if err := query.Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	res := dbFrom(ctx, r.db).Model(&domain.Product{}).Where("id = ?", p.ID).
		Select("product_name", "price", "description", "stock_quantity", "category").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := dbFrom(ctx, r.db).Model(&domain.Product{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	res := dbFrom(ctx, r.db).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := dbFrom(ctx, r.db).Model(&domain.Product{}).Count(&n).Error
	return n, err
}

// AdjustStock одним условным UPDATE, чтобы два конкурентных списания
// не прошли проверку остатка одновременно
func (r *productRepo) AdjustStock(ctx context.Context, id int64, delta int64) error {
	res := dbFrom(ctx, r.db).Model(&domain.Product{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := dbFrom(ctx, r.db).Model(&domain.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrInsufficientStock
	}
	return nil
}
