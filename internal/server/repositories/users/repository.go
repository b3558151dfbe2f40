package users

import (
	"context"

	"github.com/finmetrics/portfolio-api/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	FindRoles(ctx context.Context, userID int64) ([]string, error)
	AssignRole(ctx context.Context, userID int64, roleName string) error
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id int64) error
}
