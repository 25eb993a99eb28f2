package views

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDedupeClient models SETNX/EXPIRE against a manual clock so the rolling
// window can be exercised without redis.
type fakeDedupeClient struct {
	now         time.Time
	expires     map[string]time.Time
	expireCalls int
}

func newFakeDedupeClient() *fakeDedupeClient {
	return &fakeDedupeClient{
		now:     time.Unix(1700000000, 0),
		expires: map[string]time.Time{},
	}
}

func (f *fakeDedupeClient) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fakeDedupeClient) SetNX(_ context.Context, key string, _ interface{}, expiration time.Duration) *redis.BoolCmd {
	if deadline, ok := f.expires[key]; ok && f.now.Before(deadline) {
		return redis.NewBoolResult(false, nil)
	}
	f.expires[key] = f.now.Add(expiration)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeDedupeClient) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expireCalls++
	deadline, ok := f.expires[key]
	if !ok || !f.now.Before(deadline) {
		return redis.NewBoolResult(false, nil)
	}
	f.expires[key] = f.now.Add(expiration)
	return redis.NewBoolResult(true, nil)
}

func TestDedupeWindowRollsWithRepeatViews(t *testing.T) {
	client := newFakeDedupeClient()
	d := &cacheDeduper{client: client}

	first, err := d.FirstInWindow(10, "sess-1", DedupeWindow)
	require.NoError(t, err)
	assert.True(t, first)

	// 50 minutes later: inside the window, duplicate, and the window must
	// restart from this view.
	client.advance(50 * time.Minute)
	first, err = d.FirstInWindow(10, "sess-1", DedupeWindow)
	require.NoError(t, err)
	assert.False(t, first)
	assert.Equal(t, 1, client.expireCalls)

	// 50 more minutes: 100 minutes after the first view but only 50 after the
	// latest one, so still a duplicate.
	client.advance(50 * time.Minute)
	first, err = d.FirstInWindow(10, "sess-1", DedupeWindow)
	require.NoError(t, err)
	assert.False(t, first)

	// A full quiet window after the last view: fresh again.
	client.advance(DedupeWindow + time.Minute)
	first, err = d.FirstInWindow(10, "sess-1", DedupeWindow)
	require.NoError(t, err)
	assert.True(t, first)
}

func TestDedupeWindowIsPerProductAndSession(t *testing.T) {
	client := newFakeDedupeClient()
	d := &cacheDeduper{client: client}

	first, err := d.FirstInWindow(10, "sess-1", DedupeWindow)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = d.FirstInWindow(11, "sess-1", DedupeWindow)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = d.FirstInWindow(10, "sess-2", DedupeWindow)
	require.NoError(t, err)
	assert.True(t, first)
}
