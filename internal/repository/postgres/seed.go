package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

// SeedDemoAgents заливает демонстрационный справочник агентов в пустую
// таблицу (dev/demo окружения). Непустая таблица — no-op.
func (r *AgentRepo) SeedDemoAgents(ctx context.Context, logger *zap.Logger) error {
	n, err := r.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	logger.Info("agents table is empty, seeding demo agents...")

	amount := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	manager := func(id string) *string { return &id }

	demo := []*domain.Agent{
		{AgentID: "AGENT-001", Name: "John Manager", Email: "john.manager@turno.com",
			Phone: "+1234567890", MaxLoanAmount: amount(500000), Specializations: []string{"HOME", "BUSINESS"}},
		{AgentID: "AGENT-002", Name: "Sarah Manager", Email: "sarah.manager@turno.com",
			Phone: "+1234567891", MaxLoanAmount: amount(300000), Specializations: []string{"PERSONAL", "AUTO"}},
		{AgentID: "AGENT-003", Name: "Mike Agent", Email: "mike.agent@turno.com",
			Phone: "+1234567892", MaxLoanAmount: amount(100000), Specializations: []string{"PERSONAL"},
			ManagerID: manager("AGENT-001")},
		{AgentID: "AGENT-004", Name: "Lisa Agent", Email: "lisa.agent@turno.com",
			Phone: "+1234567893", MaxLoanAmount: amount(150000), Specializations: []string{"AUTO"},
			ManagerID: manager("AGENT-001")},
		{AgentID: "AGENT-005", Name: "David Agent", Email: "david.agent@turno.com",
			Phone: "+1234567894", MaxLoanAmount: amount(200000), Specializations: []string{"HOME"},
			ManagerID: manager("AGENT-002")},
		{AgentID: "AGENT-006", Name: "Emma Agent", Email: "emma.agent@turno.com",
			Phone: "+1234567895", MaxLoanAmount: amount(75000), Specializations: []string{"PERSONAL", "AUTO"},
			ManagerID: manager("AGENT-002")},
	}

	for _, a := range demo {
		a.Status = domain.AgentActive
		if err := r.Create(ctx, a); err != nil {
			return fmt.Errorf("seed: failed to create %s: %w", a.AgentID, err)
		}
	}

	logger.Info("demo agents seeded", zap.Int("count", len(demo)))
	return nil
}
