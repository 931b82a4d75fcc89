package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sugarrush/sweetshop/internal/domain/sweet"
	"github.com/sugarrush/sweetshop/internal/observability"
)

type SweetsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSweetsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SweetsRepo {
	return &SweetsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *SweetsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {

		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

const sweetColumns = `id, name, category, price, quantity, created_at, updated_at`

func scanSweet(row pgx.Row) (sweet.Sweet, error) {
	var s sweet.Sweet

	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity, &s.CreatedAt, &s.UpdatedAt)

	return s, err
}

func (repo *SweetsRepo) Create(ctx context.Context, req sweet.CreateSweetRequest) (created sweet.Sweet, err error) {
	err = repo.observe("sweets.create", func() error {
		var scanErr error
		created, scanErr = scanSweet(repo.pool.QueryRow(ctx,
			`INSERT INTO sweets (name, category, price, quantity)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+sweetColumns,
			req.Name, req.Category, *req.Price, *req.Quantity,
		))
		return scanErr
	})

	if err != nil {
		return sweet.Sweet{}, err
	}

	return created, nil
}

func (repo *SweetsRepo) List(ctx context.Context) (sweets []sweet.Sweet, err error) {
	var rows pgx.Rows

	err = repo.observe("sweets.list", func() error {
		rows, err = repo.pool.Query(ctx, `SELECT `+sweetColumns+` FROM sweets`)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	sweets = make([]sweet.Sweet, 0)

	for rows.Next() {
		s, scanErr := scanSweet(rows)

		if scanErr != nil {
			err = scanErr
			return
		}
		sweets = append(sweets, s)
	}

	err = rows.Err()

	return
}

// Search matches the query as a case-insensitive substring of name OR category.
func (repo *SweetsRepo) Search(ctx context.Context, query string) (sweets []sweet.Sweet, err error) {
	var rows pgx.Rows

	err = repo.observe("sweets.search", func() error {
		rows, err = repo.pool.Query(ctx,
			`SELECT `+sweetColumns+`
			 FROM sweets
			 WHERE name ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%'`,
			query,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	sweets = make([]sweet.Sweet, 0)

	for rows.Next() {
		s, scanErr := scanSweet(rows)

		if scanErr != nil {
			err = scanErr
			return
		}
		sweets = append(sweets, s)
	}

	err = rows.Err()

	return
}

func (repo *SweetsRepo) GetByID(ctx context.Context, id int64) (sweet.Sweet, error) {
	var s sweet.Sweet

	err := repo.observe("sweets.get_by_id", func() error {
		var scanErr error
		s, scanErr = scanSweet(repo.pool.QueryRow(ctx,
			`SELECT `+sweetColumns+` FROM sweets WHERE id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sweet.Sweet{}, sweet.ErrNotFound
		}

		return sweet.Sweet{}, err
	}

	return s, nil
}

func (repo *SweetsRepo) Update(ctx context.Context, id int64, req sweet.UpdateSweetRequest) (updated sweet.Sweet, err error) {
	err = repo.observe("sweets.update", func() error {
		var scanErr error
		updated, scanErr = scanSweet(repo.pool.QueryRow(ctx,
			`UPDATE sweets
				SET name = $2,
						category = $3,
						price = $4,
						quantity = $5,
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+sweetColumns,
			id, req.Name, req.Category, *req.Price, *req.Quantity,
		))
		return scanErr
	})

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return sweet.Sweet{}, sweet.ErrNotFound
		}
		// if it is any other type of error
		return sweet.Sweet{}, err
	}

	return updated, nil
}

func (repo *SweetsRepo) Delete(ctx context.Context, id int64) error {
	return repo.observe("sweets.delete", func() error {
		tag, err := repo.pool.Exec(ctx, `DELETE FROM sweets WHERE id = $1`, id)

		if err != nil {

			return err
		}

		// if no rows were deleted as a result return a not found error
		if tag.RowsAffected() == 0 {
			return sweet.ErrNotFound
		}

		return nil
	})
}

// Purchase decrements quantity by exactly 1 inside a single transaction.
// The row lock taken by FOR UPDATE serializes racing purchases: for a sweet
// with quantity=1 only one caller observes quantity >= 1.
func (repo *SweetsRepo) Purchase(ctx context.Context, id int64) (remaining int, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return 0, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var quantity int

	err = repo.observe("sweets.purchase.lock", func() error {
		return tx.QueryRow(ctx,
			`SELECT quantity FROM sweets WHERE id = $1 FOR UPDATE`, id,
		).Scan(&quantity)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, sweet.ErrNotFound
		}

		return 0, err
	}

	if quantity < 1 {
		return 0, sweet.ErrOutOfStock
	}

	err = repo.observe("sweets.purchase.decrement", func() error {
		return tx.QueryRow(ctx,
			`UPDATE sweets
				SET quantity = quantity - 1,
						updated_at = NOW()
			WHERE id = $1
			RETURNING quantity`, id,
		).Scan(&remaining)
	})

	if err != nil {
		return 0, err
	}

	err = tx.Commit(ctx)

	if err != nil {
		return 0, err
	}

	return remaining, nil
}

// Restock is a single atomic increment; no explicit lock needed since the
// UPDATE itself serializes on the row.
func (repo *SweetsRepo) Restock(ctx context.Context, id int64, delta int) (quantity int, err error) {
	err = repo.observe("sweets.restock", func() error {
		return repo.pool.QueryRow(ctx,
			`UPDATE sweets
				SET quantity = quantity + $2,
						updated_at = NOW()
			WHERE id = $1
			RETURNING quantity`,
			id, delta,
		).Scan(&quantity)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, sweet.ErrNotFound
		}

		return 0, err
	}

	return quantity, nil
}
