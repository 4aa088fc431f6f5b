package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/weibo-trend/internal/tasks"
	"github.com/iceymoss/weibo-trend/pkg/lock"
)

type fakeRunner struct {
	initErr, refreshErr error
	inits, refreshes    int
}

func (f *fakeRunner) Initialize(context.Context) error {
	f.inits++
	return f.initErr
}

func (f *fakeRunner) Refresh(context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func TestRegister(t *testing.T) {
	r := &fakeRunner{refreshErr: lock.ErrLocked, initErr: errors.New("store down")}
	Register(r, "")

	refresh, err := tasks.GetTask(TaskRefresh)
	require.NoError(t, err)
	assert.Equal(t, TaskRefresh, refresh.Identifier())
	// 被锁住视为跳过
	assert.NoError(t, refresh.Run(context.Background(), nil))
	assert.Equal(t, 1, r.refreshes)

	initialize, err := tasks.GetTask(TaskInitialize)
	require.NoError(t, err)
	assert.EqualError(t, initialize.Run(context.Background(), nil), "store down")
	assert.Equal(t, 1, r.inits)
}
