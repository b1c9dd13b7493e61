package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStateGetters(t *testing.T) {
	state := &UserState{
		UserID:      1,
		CurrentStep: StateAwaitPosition,
		TempData: map[string]interface{}{
			"session_id": int64(7),
			"latitude":   55.75,
			"position":   "Склад №3",
		},
	}

	id, ok := state.GetInt64("session_id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	lat, ok := state.GetFloat64("latitude")
	assert.True(t, ok)
	assert.InDelta(t, 55.75, lat, 1e-9)

	pos, ok := state.GetString("position")
	assert.True(t, ok)
	assert.Equal(t, "Склад №3", pos)
}

func TestUserStateGetters_Missing(t *testing.T) {
	state := &UserState{UserID: 1, TempData: map[string]interface{}{}}

	_, ok := state.GetInt64("session_id")
	assert.False(t, ok)

	_, ok = state.GetFloat64("latitude")
	assert.False(t, ok)

	_, ok = state.GetString("position")
	assert.False(t, ok)

	// nil TempData тоже не паникует
	empty := &UserState{UserID: 1}
	_, ok = empty.GetInt64("session_id")
	assert.False(t, ok)
}

func TestUserStateGetters_AfterJSONRoundTrip(t *testing.T) {
	// В Redis состояние живет как JSON: int64 возвращается как float64
	state := &UserState{
		UserID:      1,
		CurrentStep: StateAwaitRate,
		TempData:    map[string]interface{}{"session_id": int64(42)},
	}

	raw, err := json.Marshal(state)
	require.NoError(t, err)

	var restored UserState
	require.NoError(t, json.Unmarshal(raw, &restored))

	id, ok := restored.GetInt64("session_id")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestWorkSessionIsEnded(t *testing.T) {
	now := time.Now().UTC()

	open := &WorkSession{ID: 1, CreatedAt: now}
	assert.False(t, open.IsEnded())

	closed := &WorkSession{ID: 2, CreatedAt: now, EndedAt: &now}
	assert.True(t, closed.IsEnded())

	var nilSession *WorkSession
	assert.False(t, nilSession.IsEnded())
}
