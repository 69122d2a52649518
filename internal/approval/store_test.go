package approval

import (
	"testing"
	"time"

	"github.com/agentcore/orchestrator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalStore_ResolveDeliversToWaiter(t *testing.T) {
	store := NewApprovalStore()
	id, recv := store.CreateRequest()
	require.True(t, store.Pending(id))

	decision := models.StepApproval{Decision: models.DecisionApproved, DecidedAt: time.Now()}
	require.NoError(t, store.Resolve(id, decision))

	select {
	case got := <-recv:
		assert.Equal(t, models.DecisionApproved, got.Decision)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for resolved approval")
	}
	assert.False(t, store.Pending(id))
}

func TestApprovalStore_ResolveUnknownIDErrors(t *testing.T) {
	store := NewApprovalStore()
	err := store.Resolve("does-not-exist", models.StepApproval{Decision: models.DecisionDenied})
	assert.Error(t, err)
}

func TestApprovalStore_ResolveTwiceErrorsSecondTime(t *testing.T) {
	store := NewApprovalStore()
	id, _ := store.CreateRequest()
	require.NoError(t, store.Resolve(id, models.StepApproval{Decision: models.DecisionApproved}))
	assert.Error(t, store.Resolve(id, models.StepApproval{Decision: models.DecisionApproved}))
}

func TestApprovalStore_DiscardLeavesWaiterUnresolved(t *testing.T) {
	store := NewApprovalStore()
	id, recv := store.CreateRequest()
	store.Discard(id)
	assert.False(t, store.Pending(id))

	select {
	case <-recv:
		t.Fatal("receiver should not have gotten a value after discard")
	case <-time.After(50 * time.Millisecond):
		// expected: caller must enforce its own timeout around recv
	}
}

func TestHumanInputStore_ResolveDeliversAnswer(t *testing.T) {
	store := NewHumanInputStore()
	id, recv := store.CreateRequest()
	require.NoError(t, store.Resolve(id, "the answer"))

	select {
	case got := <-recv:
		assert.Equal(t, "the answer", got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for answer")
	}
}
