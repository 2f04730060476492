package service

import (
	"context"
	"errors"

	"ecomapi/internal/domain"
	"ecomapi/internal/repository"
	"ecomapi/internal/validation"
)

// UserService инкапсулирует бизнес-логику вокруг пользователей.
// Удаление каскадно уносит заказы пользователя вместе со строками ассоциации.
type UserService struct {
	users  repository.UserRepository
	orders repository.OrderRepository
	tx     repository.TxManager
}

func NewUserService(users repository.UserRepository, orders repository.OrderRepository, tx repository.TxManager) *UserService {
	return &UserService{users: users, orders: orders, tx: tx}
}

// Create валидирует поля и проверяет уникальность email
func (s *UserService) Create(ctx context.Context, in validation.UserInput) (*domain.User, error) {
	if err := validation.User(in, false); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, *in.Email); err == nil {
		return nil, conflictf("A user with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	u := &domain.User{
		Name:  *in.Name,
		Email: *in.Email,
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	// уникальный индекс ловит гонку двух конкурентных созданий,
	// которую предварительная проверка пропускает
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, conflictf("A user with this email already exists")
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundf("User with ID %d not found", id)
	}
	return u, err
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Update частичное обновление: непереданные поля остаются как были
func (s *UserService) Update(ctx context.Context, id int64, in validation.UserInput) (*domain.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validation.User(in, true); err != nil {
		return nil, err
	}
	if in.Email != nil && *in.Email != u.Email {
		if _, err := s.users.GetByEmail(ctx, *in.Email); err == nil {
			return nil, conflictf("A user with this email already exists")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		u.Email = *in.Email
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, conflictf("A user with this email already exists")
		}
		return nil, err
	}
	return u, nil
}

// Delete удаляет пользователя, его заказы и их строки ассоциации в одной транзакции.
// Остатки товаров не возвращаются: каскад удаляет историю, а не отменяет заказы.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		orders, err := s.orders.ListByUser(ctx, id)
		if err != nil {
			return err
		}
		for _, o := range orders {
			if err := s.orders.Delete(ctx, o.ID); err != nil {
				return err
			}
		}
		return s.users.Delete(ctx, id)
	})
}
