package sqlite

import (
	"errors"
	"strings"

	"github.com/geocoder89/taskboard/internal/domain/task"
	"github.com/geocoder89/taskboard/internal/domain/user"
	"gorm.io/gorm"
)

type userRow struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Email    string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:200;not null"`
	Name     string `gorm:"size:100"`
}

func (userRow) TableName() string { return "users" }

type taskRow struct {
	ID       int64    `gorm:"primaryKey;autoIncrement"`
	OwnerID  *int64   `gorm:"index"`
	Owner    *userRow `gorm:"foreignKey:OwnerID"`
	Name     string   `gorm:"size:250;uniqueIndex;not null"`
	Category string   `gorm:"size:6;not null;default:'To Do'"`
}

func (taskRow) TableName() string { return "tasks" }

// Migrate creates or updates the users and tasks tables.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&userRow{}, &taskRow{})
}

func (r userRow) toDomain() user.User {
	return user.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.Password,
		Name:         r.Name,
	}
}

func (r taskRow) toDomain() task.Task {
	return task.Task{
		ID:       r.ID,
		Name:     r.Name,
		Category: task.Category(r.Category),
		OwnerID:  r.OwnerID,
	}
}

// the driver translates constraint errors when TranslateError is on; the message checks
// cover connections opened without it
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
