package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

type AgentRepo struct {
	pool *pgxpool.Pool
}

func NewAgentRepo(pool *pgxpool.Pool) *AgentRepo {
	return &AgentRepo{pool: pool}
}

const agentColumns = `id, agent_id, name, email, COALESCE(phone, ''), status,
	max_loan_amount::text, specializations, manager_id, created_at, updated_at`

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var a domain.Agent
	var maxAmount, managerID sql.NullString

	err := row.Scan(
		&a.ID,
		&a.AgentID,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.Status,
		&maxAmount,
		&a.Specializations,
		&managerID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if maxAmount.Valid {
		d, err := decimal.NewFromString(maxAmount.String)
		if err != nil {
			return nil, fmt.Errorf("postgres: bad max_loan_amount %q: %w", maxAmount.String, err)
		}
		a.MaxLoanAmount = &d
	}
	if managerID.Valid {
		val := managerID.String
		a.ManagerID = &val
	}
	if a.Specializations == nil {
		a.Specializations = []string{}
	}

	return &a, nil
}

func (r *AgentRepo) queryAgents(ctx context.Context, query string, args ...interface{}) ([]*domain.Agent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query agents: %w", err)
	}
	defer rows.Close()

	agents := make([]*domain.Agent, 0)
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return agents, nil
}

func (r *AgentRepo) Create(ctx context.Context, agent *domain.Agent) error {
	var maxAmount *string
	if agent.MaxLoanAmount != nil {
		s := agent.MaxLoanAmount.String()
		maxAmount = &s
	}
	if agent.Status == "" {
		agent.Status = domain.AgentActive
	}

	query := `INSERT INTO agents (agent_id, name, email, phone, status, max_loan_amount, specializations, manager_id)
	          VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6::numeric, $7, $8)
	          RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		agent.AgentID, agent.Name, agent.Email, agent.Phone,
		agent.Status, maxAmount, agent.Specializations, agent.ManagerID,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create agent: %w", err)
	}
	return nil
}

func (r *AgentRepo) GetByAgentID(ctx context.Context, agentID string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE agent_id = $1`

	a, err := scanAgent(r.pool.QueryRow(ctx, query, agentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("postgres: failed to fetch agent %s: %w", agentID, err)
	}
	return a, nil
}

func (r *AgentRepo) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE email = $1`

	a, err := scanAgent(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("postgres: failed to fetch agent by email: %w", err)
	}
	return a, nil
}

// FindEligible — активные агенты, чей лимит покрывает сумму.
// Агент без лимита берет заявки на любую сумму.
func (r *AgentRepo) FindEligible(ctx context.Context, amount decimal.Decimal) ([]*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents
	          WHERE status = $1 AND (max_loan_amount IS NULL OR max_loan_amount >= $2::numeric)`
	return r.queryAgents(ctx, query, domain.AgentActive, amount.String())
}

func (r *AgentRepo) ListByStatus(ctx context.Context, status domain.AgentStatus) ([]*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE status = $1 ORDER BY agent_id`
	return r.queryAgents(ctx, query, status)
}

func (r *AgentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM agents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: failed to count agents: %w", err)
	}
	return n, nil
}
