package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoanStatus_Terminality(t *testing.T) {
	terminal := []LoanStatus{
		StatusApprovedBySystem, StatusRejectedBySystem,
		StatusApprovedByAgent, StatusRejectedByAgent,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s must be terminal", s)
	}

	assert.False(t, StatusApplied.IsTerminal())
	assert.False(t, StatusUnderReview.IsTerminal())
}

func TestLoanStatus_ApprovedRejectedSplit(t *testing.T) {
	assert.True(t, StatusApprovedBySystem.IsApproved())
	assert.True(t, StatusApprovedByAgent.IsApproved())
	assert.False(t, StatusApprovedBySystem.IsRejected())

	assert.True(t, StatusRejectedBySystem.IsRejected())
	assert.True(t, StatusRejectedByAgent.IsRejected())
	assert.False(t, StatusRejectedByAgent.IsApproved())
}

func TestAgentDecision_ToLoanStatus(t *testing.T) {
	s, ok := DecisionApprove.ToLoanStatus()
	assert.True(t, ok)
	assert.Equal(t, StatusApprovedByAgent, s)

	s, ok = DecisionReject.ToLoanStatus()
	assert.True(t, ok)
	assert.Equal(t, StatusRejectedByAgent, s)

	_, ok = AgentDecision("ESCALATE").ToLoanStatus()
	assert.False(t, ok)
}

func TestAgent_Specializes(t *testing.T) {
	a := &Agent{Specializations: []string{"AUTO_LOANS", "home"}}

	assert.True(t, a.Specializes(TypeAuto))
	assert.True(t, a.Specializes(TypeHome))
	assert.False(t, a.Specializes(TypeBusiness))

	universal := &Agent{}
	assert.False(t, universal.Specializes(TypeAuto), "no specializations means no match, not all-match")
}
