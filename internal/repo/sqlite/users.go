package sqlite

import (
	"context"
	"errors"

	"github.com/geocoder89/taskboard/internal/domain/user"
	"github.com/geocoder89/taskboard/internal/observability"
	"gorm.io/gorm"
)

type UsersRepo struct {
	db   *gorm.DB
	prom *observability.Prom
}

func NewUsersRepo(db *gorm.DB, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string) (user.User, error) {
	row := userRow{Email: email, Password: passwordHash, Name: name}

	err := r.prom.ObserveDB("users.create", func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return row.toDomain(), nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.first(ctx, "users.get_by_email", "email = ?", email)
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.first(ctx, "users.get_by_id", "id = ?", id)
}

func (r *UsersRepo) first(ctx context.Context, op, cond string, arg any) (user.User, error) {
	var row userRow

	err := r.prom.ObserveDB(op, func() error {
		return r.db.WithContext(ctx).Where(cond, arg).First(&row).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return row.toDomain(), nil
}
