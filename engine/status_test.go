package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/hotel-ops/models"
)

func requestedOrder() *models.Order {
	return &models.Order{
		ID:          "20250101_1",
		RoomNo:      "501",
		ItemName:    "Bottled Water",
		Quantity:    1,
		Priority:    models.PriorityNormal,
		Status:      models.StatusRequested,
		RequestedAt: time.Now(),
	}
}

func TestTransitionAcceptSetsActorAndTimestamp(t *testing.T) {
	order := requestedOrder()
	sess := testSession()
	now := time.Now()

	require.NoError(t, Transition(order, models.StatusAccepted, sess, now))
	assert.Equal(t, models.StatusAccepted, order.Status)
	assert.Equal(t, "alice", order.AssignedTo)
	require.NotNil(t, order.AcceptedAt)
	assert.True(t, order.AcceptedAt.Equal(now))
}

func TestTransitionInProgressBackfillsAccepted(t *testing.T) {
	order := requestedOrder()
	sess := testSession()

	// straight from REQUESTED: acceptedAt and assignedTo backfill
	require.NoError(t, Transition(order, models.StatusInProgress, sess, time.Now()))
	assert.Equal(t, models.StatusInProgress, order.Status)
	assert.NotNil(t, order.AcceptedAt)
	assert.NotNil(t, order.InProgressAt)
	assert.Equal(t, "alice", order.AssignedTo)
}

func TestTransitionCompleteBackfillsEverything(t *testing.T) {
	order := requestedOrder()
	sess := testSession()

	require.NoError(t, Transition(order, models.StatusCompleted, sess, time.Now()))
	assert.Equal(t, models.StatusCompleted, order.Status)
	assert.NotNil(t, order.AcceptedAt)
	assert.NotNil(t, order.InProgressAt)
	assert.NotNil(t, order.CompletedAt)
}

func TestTransitionCancelClearsProgress(t *testing.T) {
	order := requestedOrder()
	sess := testSession()

	require.NoError(t, Transition(order, models.StatusInProgress, sess, time.Now()))
	require.NoError(t, Transition(order, models.StatusCancelled, sess, time.Now()))

	assert.Equal(t, models.StatusCancelled, order.Status)
	assert.Nil(t, order.AcceptedAt)
	assert.Nil(t, order.InProgressAt)
	assert.Nil(t, order.CompletedAt)
	assert.Empty(t, order.AssignedTo)
}

func TestTransitionRestartFromCompleted(t *testing.T) {
	order := requestedOrder()
	sess := testSession()

	require.NoError(t, Transition(order, models.StatusCompleted, sess, time.Now()))
	require.NoError(t, Transition(order, models.StatusRequested, sess, time.Now()))

	assert.Equal(t, models.StatusRequested, order.Status)
	assert.Nil(t, order.CompletedAt)
	assert.Empty(t, order.AssignedTo)
}

func TestTransitionRestoreFromCancelledIsAdminOnly(t *testing.T) {
	order := requestedOrder()
	staff := testSession()
	admin := &Session{UserID: "root", Name: "Root", Role: models.RoleAdmin}

	require.NoError(t, Transition(order, models.StatusCancelled, staff, time.Now()))

	err := Transition(order, models.StatusRequested, staff, time.Now())
	assert.Error(t, err)
	assert.Equal(t, models.StatusCancelled, order.Status)

	require.NoError(t, Transition(order, models.StatusRequested, admin, time.Now()))
	assert.Equal(t, models.StatusRequested, order.Status)
}

func TestTransitionRejectsInvalidMoves(t *testing.T) {
	sess := testSession()

	completed := requestedOrder()
	require.NoError(t, Transition(completed, models.StatusCompleted, sess, time.Now()))
	assert.Error(t, Transition(completed, models.StatusCancelled, sess, time.Now()))
	assert.Error(t, Transition(completed, models.StatusCompleted, sess, time.Now()))

	requested := requestedOrder()
	assert.Error(t, Transition(requested, models.StatusRequested, sess, time.Now()))
	assert.Error(t, Transition(requested, "SHIPPED", sess, time.Now()))

	accepted := requestedOrder()
	require.NoError(t, Transition(accepted, models.StatusAccepted, sess, time.Now()))
	assert.Error(t, Transition(accepted, models.StatusAccepted, sess, time.Now()))
}
