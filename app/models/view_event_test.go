package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViewEventInitialStatus(t *testing.T) {
	e, err := NewViewEvent(1, 2, "sess-1", VIEW_TYPE_DIRECT, DEVICE_DESKTOP, false, false)
	require.NoError(t, err)

	assert.Equal(t, ViewStatusRecorded, e.Status)
	assert.NotEmpty(t, e.PublicID)
	assert.True(t, e.Billable())
	assert.False(t, e.CPVCharged)
	assert.Zero(t, e.ViewDuration)
}

func TestNewViewEventDuplicateAndBotAreTerminal(t *testing.T) {
	dup, err := NewViewEvent(1, 2, "sess-1", VIEW_TYPE_SEARCH, DEVICE_MOBILE, true, false)
	require.NoError(t, err)
	assert.Equal(t, ViewStatusDuplicate, dup.Status)
	assert.True(t, dup.Status.Terminal())
	assert.False(t, dup.Billable())

	bot, err := NewViewEvent(1, 2, "sess-2", VIEW_TYPE_DIRECT, DEVICE_DESKTOP, false, true)
	require.NoError(t, err)
	assert.Equal(t, ViewStatusBot, bot.Status)
	assert.True(t, bot.Status.Terminal())
	assert.False(t, bot.Billable())

	// Bot wins when both classifiers fire.
	both, err := NewViewEvent(1, 2, "sess-3", VIEW_TYPE_DIRECT, DEVICE_DESKTOP, true, true)
	require.NoError(t, err)
	assert.Equal(t, ViewStatusBot, both.Status)
}

func TestNewViewEventRequiresReferences(t *testing.T) {
	_, err := NewViewEvent(0, 2, "sess", VIEW_TYPE_DIRECT, DEVICE_DESKTOP, false, false)
	assert.Error(t, err)

	_, err = NewViewEvent(1, 2, "", VIEW_TYPE_DIRECT, DEVICE_DESKTOP, false, false)
	assert.Error(t, err)
}

func TestViewEventTransitionTable(t *testing.T) {
	tests := []struct {
		from ViewEventStatus
		to   ViewEventStatus
		ok   bool
	}{
		{ViewStatusRecorded, ViewStatusQualified, true},
		{ViewStatusRecorded, ViewStatusNotQualified, true},
		{ViewStatusRecorded, ViewStatusCharged, false}, // charged without qualification
		{ViewStatusQualified, ViewStatusCharged, true},
		{ViewStatusQualified, ViewStatusChargeRejected, true},
		{ViewStatusDuplicate, ViewStatusQualified, false},
		{ViewStatusBot, ViewStatusQualified, false},
		{ViewStatusCharged, ViewStatusQualified, false},
		{ViewStatusCharged, ViewStatusChargeRejected, false},
		{ViewStatusNotQualified, ViewStatusQualified, false},
		{ViewStatusChargeRejected, ViewStatusCharged, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.ok {
			t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestViewEventTransitionKeepsFlagsConsistent(t *testing.T) {
	e, err := NewViewEvent(1, 2, "sess-1", VIEW_TYPE_DIRECT, DEVICE_DESKTOP, false, false)
	require.NoError(t, err)

	require.NoError(t, e.Transition(ViewStatusQualified))
	assert.True(t, e.IsQualifiedView)
	assert.False(t, e.CPVCharged)

	require.NoError(t, e.Transition(ViewStatusCharged))
	assert.True(t, e.CPVCharged)
	assert.True(t, e.IsQualifiedView)

	// Charged is terminal in every direction.
	err = e.Transition(ViewStatusQualified)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}
