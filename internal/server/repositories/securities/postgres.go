package securities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/finmetrics/portfolio-api/internal/common"
	"github.com/finmetrics/portfolio-api/internal/dbx"
	"github.com/finmetrics/portfolio-api/internal/server/models"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Security) (*models.Security, error) {

	query :=
		`INSERT INTO securities (symbol, company_name, sec_type, description)
         VALUES ($1, $2, $3, $4)
		 RETURNING date_of_creation
		 `

	err := r.db.QueryRowContext(ctx, query,
		s.Symbol, s.CompanyName, string(s.SecType), s.Description).Scan(&s.DateOfCreation)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) GetBySymbol(ctx context.Context, symbol string) (*models.Security, error) {
	query :=
		`SELECT symbol, company_name, sec_type, description, date_of_creation FROM securities
		 WHERE symbol = $1
		 `

	s := &models.Security{}
	var secType string
	err := r.db.QueryRowContext(ctx, query, symbol).
		Scan(&s.Symbol, &s.CompanyName, &secType, &s.Description, &s.DateOfCreation)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.SecType = models.SecType(secType)

	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Security, error) {
	query :=
		`SELECT symbol, company_name, sec_type, description, date_of_creation FROM securities
		 ORDER BY symbol
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Security{}
	for rows.Next() {
		s := &models.Security{}
		var secType string
		if err := rows.Scan(&s.Symbol, &s.CompanyName, &secType, &s.Description, &s.DateOfCreation); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s.SecType = models.SecType(secType)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *models.Security) (*models.Security, error) {
	query :=
		`UPDATE securities
		 SET company_name = $2, sec_type = $3, description = $4
		 WHERE symbol = $1
		 RETURNING date_of_creation
		 `

	err := r.db.QueryRowContext(ctx, query,
		s.Symbol, s.CompanyName, string(s.SecType), s.Description).Scan(&s.DateOfCreation)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, symbol string) error {
	query := `DELETE FROM securities WHERE symbol = $1`

	res, err := r.db.ExecContext(ctx, query, symbol)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
