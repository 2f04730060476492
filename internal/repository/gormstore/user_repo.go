package gormstore

import (
	"context"

	"gorm.io/gorm"

	"ecomapi/internal/domain"
	"ecomapi/internal/repository"
)

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт репозиторий пользователей
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	return translate(dbFrom(ctx, r.db).Create(u).Error)
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := dbFrom(ctx, r.db).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := dbFrom(ctx, r.db).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]domain.User, error) {
	var list []domain.User
	if err := dbFrom(ctx, r.db).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	res := dbFrom(ctx, r.db).Model(&domain.User{}).Where("id = ?", u.ID).
		Select("name", "email", "address", "phone").Updates(u)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		// либо нет строки, либо значения не изменились — различаем чтением
		var n int64
		if err := dbFrom(ctx, r.db).Model(&domain.User{}).Where("id = ?", u.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	res := dbFrom(ctx, r.db).Delete(&domain.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := dbFrom(ctx, r.db).Model(&domain.User{}).Count(&n).Error
	return n, err
}
