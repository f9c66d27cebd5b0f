package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

type LoanRepo struct {
	pool *pgxpool.Pool
}

func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

// Ping проверяет доступность базы при старте
func (r *LoanRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Сумму гоняем через ::text, чтобы NUMERIC никогда не проезжал через float
const loanColumns = `id, loan_id, customer_name, customer_phone, amount::text, loan_type,
	status, assigned_agent_id, decision_reason,
	processing_started_at, processing_completed_at, created_at, updated_at`

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var l domain.Loan
	var amount string
	var agentID, reason sql.NullString // Используем для обработки NULL из БД
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&l.ID,
		&l.LoanID,
		&l.CustomerName,
		&l.CustomerPhone,
		&amount,
		&l.Type,
		&l.Status,
		&agentID,
		&reason,
		&startedAt,
		&completedAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("postgres: bad amount value %q: %w", amount, err)
	}

	// Маппим NULL значения
	if agentID.Valid {
		val := agentID.String
		l.AssignedAgentID = &val
	}
	if reason.Valid {
		val := reason.String
		l.DecisionReason = &val
	}
	if startedAt.Valid {
		val := startedAt.Time
		l.ProcessingStartedAt = &val
	}
	if completedAt.Valid {
		val := completedAt.Time
		l.ProcessingCompletedAt = &val
	}

	return &l, nil
}

func (r *LoanRepo) queryLoans(ctx context.Context, query string, args ...interface{}) ([]*domain.Loan, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query loans: %w", err)
	}
	defer rows.Close()

	// Инициализируем пустой слайс, чтобы в JSON был [] вместо null
	loans := make([]*domain.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return loans, nil
}

// Create сохраняет новую заявку (статус всегда APPLIED)
func (r *LoanRepo) Create(ctx context.Context, loan *domain.Loan) error {
	query := `INSERT INTO loans (loan_id, customer_name, customer_phone, amount, loan_type, status)
	          VALUES ($1, $2, $3, $4::numeric, $5, $6)
	          RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		loan.LoanID, loan.CustomerName, loan.CustomerPhone,
		loan.Amount.String(), loan.Type, domain.StatusApplied,
	).Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create loan: %w", err)
	}
	loan.Status = domain.StatusApplied
	return nil
}

func (r *LoanRepo) FindByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1`

	l, err := scanLoan(r.pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, fmt.Errorf("postgres: failed to fetch loan %s: %w", loanID, err)
	}
	return l, nil
}

func (r *LoanRepo) FindByStatus(ctx context.Context, status domain.LoanStatus, limit, offset int) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
	          WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.queryLoans(ctx, query, status, limit, offset)
}

// FindReadyForProcessing — входной фильтр движка: APPLIED и без агента
func (r *LoanRepo) FindReadyForProcessing(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
	          WHERE status = $1 AND assigned_agent_id IS NULL
	          ORDER BY created_at`
	return r.queryLoans(ctx, query, domain.StatusApplied)
}

// FindUnassignedReviews — ревью, оставшиеся без агента (подбираются повторно)
func (r *LoanRepo) FindUnassignedReviews(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
	          WHERE status = $1 AND assigned_agent_id IS NULL
	          ORDER BY created_at`
	return r.queryLoans(ctx, query, domain.StatusUnderReview)
}

func (r *LoanRepo) MarkProcessingStarted(ctx context.Context, loanID string, at time.Time) error {
	query := `UPDATE loans SET processing_started_at = $1, updated_at = NOW() WHERE loan_id = $2`

	tag, err := r.pool.Exec(ctx, query, at, loanID)
	if err != nil {
		return fmt.Errorf("postgres: failed to mark processing start: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// FinishProcessing пишет итог прохода одним UPDATE: статус, причину,
// назначение и processing_completed_at. Никаких промежуточных состояний
// "статус записан, назначение потерялось" в базе не бывает.
func (r *LoanRepo) FinishProcessing(ctx context.Context, loan *domain.Loan) error {
	query := `UPDATE loans
	          SET status = $1,
	              decision_reason = $2,
	              assigned_agent_id = $3,
	              processing_completed_at = $4,
	              updated_at = NOW()
	          WHERE loan_id = $5`

	tag, err := r.pool.Exec(ctx, query,
		loan.Status, loan.DecisionReason, loan.AssignedAgentID,
		loan.ProcessingCompletedAt, loan.LoanID)
	if err != nil {
		return fmt.Errorf("postgres: failed to finish processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// AssignAgent назначает агента осиротевшему ревью. Условие в WHERE защищает
// от гонки: если заявку успели решить или назначить, строк не будет.
func (r *LoanRepo) AssignAgent(ctx context.Context, loanID, agentID string) error {
	query := `UPDATE loans
	          SET assigned_agent_id = $1, updated_at = NOW()
	          WHERE loan_id = $2 AND status = $3 AND assigned_agent_id IS NULL`

	tag, err := r.pool.Exec(ctx, query, agentID, loanID, domain.StatusUnderReview)
	if err != nil {
		return fmt.Errorf("postgres: failed to assign agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// UpdateDecision атомарно применяет решение агента.
// Условие WHERE status = 'UNDER_REVIEW' предотвращает Double Decision:
// повторное решение по той же заявке не затрет первое.
func (r *LoanRepo) UpdateDecision(ctx context.Context, loanID string, status domain.LoanStatus, reason string) error {
	query := `UPDATE loans
	          SET status = $1, decision_reason = $2, updated_at = NOW()
	          WHERE loan_id = $3 AND status = $4`

	tag, err := r.pool.Exec(ctx, query, status, reason, loanID, domain.StatusUnderReview)
	if err != nil {
		return fmt.Errorf("postgres: failed to update decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Либо заявки нет, либо (что чаще) решение уже было принято ранее
		return domain.ErrInvalidState
	}
	return nil
}

// CountByStatus — гистограмма по всем статусам (нули включительно)
func (r *LoanRepo) CountByStatus(ctx context.Context) (domain.StatusCount, error) {
	query := `SELECT status, COUNT(*) FROM loans GROUP BY status`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to count by status: %w", err)
	}
	defer rows.Close()

	counts := domain.StatusCount{
		domain.StatusApplied:          0,
		domain.StatusApprovedBySystem: 0,
		domain.StatusRejectedBySystem: 0,
		domain.StatusUnderReview:      0,
		domain.StatusApprovedByAgent:  0,
		domain.StatusRejectedByAgent:  0,
	}
	for rows.Next() {
		var status domain.LoanStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return counts, nil
}

// TopCustomers — рейтинг клиентов по числу одобренных кредитов
func (r *LoanRepo) TopCustomers(ctx context.Context, limit int) ([]domain.TopCustomer, error) {
	query := `SELECT customer_name, COUNT(*) AS approved_count
	          FROM loans
	          WHERE status IN ($1, $2)
	          GROUP BY customer_name
	          ORDER BY approved_count DESC
	          LIMIT $3`

	rows, err := r.pool.Query(ctx, query,
		domain.StatusApprovedBySystem, domain.StatusApprovedByAgent, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query top customers: %w", err)
	}
	defer rows.Close()

	result := make([]domain.TopCustomer, 0, limit)
	for rows.Next() {
		var tc domain.TopCustomer
		if err := rows.Scan(&tc.CustomerName, &tc.ApprovedCount); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan top customer: %w", err)
		}
		result = append(result, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return result, nil
}
