package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"github.com/finsight-ai/finsight/internal/goal"
	"github.com/finsight-ai/finsight/internal/statement"
)

// PostgresStore implements Store on a Postgres database through the pgx
// stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to the database, verifies the connection and
// applies migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	db := stdlib.OpenDB(*cfg)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// migrations are idempotent DDL statements applied on startup. Raw
// statement columns keep their Title-Case names quoted, matching the
// headers the extraction pipeline produces.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS statements (
		id                BIGSERIAL PRIMARY KEY,
		user_id           BIGINT NOT NULL REFERENCES users(id),
		sha256            TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		statement_type    TEXT NOT NULL,
		uploaded_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_statements_user_sha
		ON statements (user_id, sha256)`,
	`CREATE TABLE IF NOT EXISTS statement_rows (
		id                 BIGSERIAL PRIMARY KEY,
		statement_id       BIGINT NOT NULL REFERENCES statements(id),
		user_id            BIGINT NOT NULL REFERENCES users(id),
		"Date"             TEXT,
		"Transaction Date" TEXT,
		"Posting Date"     TEXT,
		"Description"      TEXT,
		"Amount"           TEXT,
		"Vendor"           TEXT,
		"Category"         TEXT,
		statement_name     TEXT NOT NULL,
		statement_type     TEXT NOT NULL,
		section_name       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_statement_rows_user
		ON statement_rows (user_id)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id              BIGSERIAL PRIMARY KEY,
		user_id         BIGINT NOT NULL REFERENCES users(id),
		goal_name       TEXT NOT NULL,
		goal_type       TEXT NOT NULL DEFAULT 'safety',
		goal_priority   TEXT NOT NULL DEFAULT 'medium',
		notes           TEXT NOT NULL DEFAULT '',
		target_amount   NUMERIC(14,2) NOT NULL,
		current_amount  NUMERIC(14,2) NOT NULL DEFAULT 0,
		planned_monthly NUMERIC(14,2) NOT NULL DEFAULT 0,
		target_date     DATE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	viewTransactionsBI,
	viewMonthlySummary,
	viewAccountSummary,
	viewStatementPeriod,
}

// viewTransactionsBI is the analysis surface the question-to-SQL layer
// queries. It filters to transactional sections, parses dates that carry
// a four-digit year and exposes both an absolute and a signed amount.
// tx_kind is derived from section membership, not from the raw sign,
// because credit-card statements print charges as positive numbers.
const viewTransactionsBI = `CREATE OR REPLACE VIEW v_transactions_bi AS
	WITH base AS (
		SELECT
			r.id AS txn_id,
			r.statement_id,
			r.user_id,
			r.statement_name,
			r.statement_type,
			r.section_name,
			r."Description" AS description,
			NULLIF(r."Vendor", '')   AS vendor,
			NULLIF(r."Category", '') AS category,
			COALESCE(r."Date", r."Transaction Date", r."Posting Date") AS raw_date,
			r."Amount" AS amount_raw,
			CASE WHEN r."Amount" ~ '^-?[0-9]+(\.[0-9]+)?$'
			     THEN r."Amount"::numeric END AS amount_num,
			CASE WHEN r.section_name IN (
				'ATM and debit card subtractions',
				'Other subtractions',
				'Purchases and Adjustments',
				'Fees',
				'Interest Charged'
			) THEN 'expense' ELSE 'income' END AS tx_kind
		FROM statement_rows r
		WHERE r.section_name IN (
			'Deposits and other additions',
			'ATM and debit card subtractions',
			'Other subtractions',
			'Payments and Other Credits',
			'Purchases and Adjustments',
			'Fees',
			'Interest Charged'
		)
	), dated AS (
		SELECT base.*,
			CASE WHEN raw_date ~ '^[0-9]{1,2}/[0-9]{1,2}/[0-9]{4}$'
			     THEN to_date(raw_date, 'MM/DD/YYYY') END AS txn_date
		FROM base
		WHERE amount_num IS NOT NULL
	)
	SELECT
		txn_id,
		statement_id,
		user_id,
		statement_name,
		statement_type,
		section_name,
		description,
		vendor,
		category,
		amount_raw,
		amount_num,
		tx_kind,
		CASE WHEN tx_kind = 'expense'
		     THEN -abs(amount_num) ELSE abs(amount_num) END AS signed_amount,
		abs(amount_num) AS amount,
		txn_date,
		date_trunc('month', txn_date)::date   AS month_start,
		EXTRACT(YEAR FROM txn_date)::integer  AS year,
		EXTRACT(MONTH FROM txn_date)::integer AS month_number
	FROM dated`

const viewMonthlySummary = `CREATE OR REPLACE VIEW v_monthly_summary AS
	SELECT
		user_id,
		month_start,
		year,
		month_number,
		sum(CASE WHEN tx_kind = 'income'  THEN amount ELSE 0 END) AS total_income,
		sum(CASE WHEN tx_kind = 'expense' THEN amount ELSE 0 END) AS total_expenses,
		sum(signed_amount) AS net_savings
	FROM v_transactions_bi
	WHERE txn_date IS NOT NULL
	GROUP BY user_id, month_start, year, month_number`

// viewAccountSummary keeps amount as text because summary rows mix
// dollar figures with dates like '12/13/2024'.
const viewAccountSummary = `CREATE OR REPLACE VIEW v_account_summary AS
	SELECT
		statement_id,
		user_id,
		statement_name,
		statement_type,
		section_name,
		"Description" AS description,
		"Amount"      AS amount
	FROM statement_rows
	WHERE section_name ILIKE 'Account Summary%'`

const viewStatementPeriod = `CREATE OR REPLACE VIEW v_statement_period AS
	SELECT
		statement_id,
		statement_type,
		statement_name,
		user_id,
		min(txn_date) AS period_start,
		max(txn_date) AS period_end
	FROM v_transactions_bi
	WHERE txn_date IS NOT NULL
	GROUP BY statement_id, statement_type, statement_name, user_id`

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	u := &User{Email: email, PasswordHash: passwordHash}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2)
		 RETURNING id, created_at`,
		email, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, userID int64) (*User, error) {
	u := &User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) UpsertStatement(ctx context.Context, st *statement.Statement) (*statement.Statement, error) {
	out := *st
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO statements (user_id, sha256, original_filename, statement_type)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, sha256) DO UPDATE
		   SET original_filename = EXCLUDED.original_filename,
		       statement_type = EXCLUDED.statement_type,
		       uploaded_at = now()
		 RETURNING id, uploaded_at`,
		st.UserID, st.SHA256, st.OriginalFilename, string(st.Kind),
	).Scan(&out.ID, &out.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert statement: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) GetStatementByHash(ctx context.Context, userID int64, sha256 string) (*statement.Statement, error) {
	st := &statement.Statement{}
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, sha256, original_filename, statement_type, uploaded_at
		 FROM statements WHERE user_id = $1 AND sha256 = $2`,
		userID, sha256,
	).Scan(&st.ID, &st.UserID, &st.SHA256, &st.OriginalFilename, &kind, &st.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get statement by hash: %w", err)
	}
	st.Kind = statement.ParseKind(kind)
	return st, nil
}

func (s *PostgresStore) CountStatementRows(ctx context.Context, userID, statementID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM statement_rows WHERE user_id = $1 AND statement_id = $2`,
		userID, statementID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count statement rows: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) WriteRows(ctx context.Context, rows []statement.Row) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write rows: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO statement_rows (
			statement_id, user_id,
			"Date", "Transaction Date", "Posting Date",
			"Description", "Amount", "Vendor", "Category",
			statement_name, statement_type, section_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`)
	if err != nil {
		return fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.StatementID, r.UserID,
			r.Date, r.TransactionDate, r.PostingDate,
			r.Description, r.Amount, r.Vendor, r.Category,
			r.StatementName, string(r.StatementKind), r.SectionName,
		)
		if err != nil {
			return fmt.Errorf("insert statement row: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) CreateGoal(ctx context.Context, g *goal.Goal) (*goal.Goal, error) {
	out := *g
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO goals (user_id, goal_name, goal_type, goal_priority, notes,
		                    target_amount, current_amount, planned_monthly, target_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		g.UserID, g.Name, g.Type, g.Priority, g.Notes,
		g.TargetAmount, g.CurrentAmount, g.PlannedMonthly, g.TargetDate,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) ListGoals(ctx context.Context, userID int64) ([]*goal.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, goal_name, goal_type, goal_priority, notes,
		        target_amount, current_amount, planned_monthly, target_date, created_at
		 FROM goals WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []*goal.Goal
	for rows.Next() {
		g := &goal.Goal{}
		var target, current, planned string
		var targetDate sql.NullTime
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Type, &g.Priority, &g.Notes,
			&target, &current, &planned, &targetDate, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.TargetAmount, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("parse target amount: %w", err)
		}
		if g.CurrentAmount, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("parse current amount: %w", err)
		}
		if g.PlannedMonthly, err = decimal.NewFromString(planned); err != nil {
			return nil, fmt.Errorf("parse planned monthly: %w", err)
		}
		if targetDate.Valid {
			d := targetDate.Time
			g.TargetDate = &d
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *PostgresStore) UpdateGoal(ctx context.Context, g *goal.Goal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals
		 SET goal_name = $1, goal_type = $2, goal_priority = $3, notes = $4,
		     target_amount = $5, current_amount = $6, planned_monthly = $7, target_date = $8
		 WHERE id = $9 AND user_id = $10`,
		g.Name, g.Type, g.Priority, g.Notes,
		g.TargetAmount, g.CurrentAmount, g.PlannedMonthly, g.TargetDate, g.ID, g.UserID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteGoal(ctx context.Context, userID, goalID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RunUserQuery executes a validated analytical query. The :user_id
// placeholder survives validation as a literal token and is bound here
// as the only query parameter, so the caller's identity can never be
// swapped by generated SQL.
func (s *PostgresStore) RunUserQuery(ctx context.Context, query string, userID int64) (*QueryResult, error) {
	bound := strings.ReplaceAll(query, ":user_id", "$1")

	rows, err := s.db.QueryContext(ctx, bound, userID)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &QueryResult{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan query row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}
