package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticOwners struct {
	owners []uint
	err    error
}

func (s staticOwners) ListOwners(ctx context.Context) ([]uint, error) {
	return s.owners, s.err
}

func TestNormalizeScheduler_RunNow(t *testing.T) {
	var seen []uint
	dispatch := func(ctx context.Context, owner uint) error {
		seen = append(seen, owner)
		if owner == 2 {
			return errors.New("busy")
		}
		return nil
	}
	s := NewNormalizeScheduler("", staticOwners{owners: []uint{1, 2, 3}}, dispatch)

	dispatched, err := s.RunNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, dispatched)
	assert.Equal(t, []uint{1, 2, 3}, seen, "a failing owner does not stop the rest")
}

func TestNormalizeScheduler_RunNow_ListFails(t *testing.T) {
	s := NewNormalizeScheduler("", staticOwners{err: errors.New("db closed")}, func(context.Context, uint) error {
		t.Fatal("dispatch must not be called")
		return nil
	})

	_, err := s.RunNow(context.Background())

	assert.ErrorContains(t, err, "db closed")
}

func TestNormalizeScheduler_DisabledWithoutSchedule(t *testing.T) {
	s := NewNormalizeScheduler("", staticOwners{}, nil)

	require.NoError(t, s.Start(context.Background()))

	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun())
}

func TestNormalizeScheduler_InvalidSchedule(t *testing.T) {
	s := NewNormalizeScheduler("every day", staticOwners{}, nil)

	err := s.Start(context.Background())

	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestNormalizeScheduler_StartStop(t *testing.T) {
	s := NewNormalizeScheduler("0 3 * * *", staticOwners{}, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.NextRun())
	assert.Equal(t, 3, s.NextRun().Hour())

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("* * *"))
	assert.Error(t, ValidateSchedule("0 0 0 * * *"), "seconds field is not accepted")
}
