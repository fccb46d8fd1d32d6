package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubscription(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, SubscriptionStatusActive, sub.Status)
	assert.False(t, sub.StartedAt.IsZero())
	assert.Nil(t, sub.CanceledAt)

	_, err = NewSubscription(uuid.Nil, uuid.New())
	assert.Error(t, err)

	_, err = NewSubscription(uuid.New(), uuid.Nil)
	assert.Error(t, err)
}

func TestSubscription_Cancel(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), uuid.New())
	require.NoError(t, err)

	sub.Cancel()

	assert.Equal(t, SubscriptionStatusCanceled, sub.Status)
	require.NotNil(t, sub.CanceledAt)
	assert.False(t, sub.IsActive())
}

func TestSubscription_Pause(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, sub.Pause())
	assert.Equal(t, SubscriptionStatusPaused, sub.Status)

	// Pausing a non-active subscription is invalid
	assert.Error(t, sub.Pause())
}
