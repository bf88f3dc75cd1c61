// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee/marquee/internal/store"
	"github.com/marquee/marquee/pkg/errutil"
)

type fakeMigrator struct {
	version uint
	dirty   bool
	total   uint
	calls   []string
	steps   []int
	forced  int
	err     error
	closed  bool
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	if f.err != nil {
		return f.err
	}
	f.version = f.total
	return nil
}

func (f *fakeMigrator) Down() error {
	f.calls = append(f.calls, "down")
	f.version = 0
	return f.err
}

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = append(f.steps, n)
	f.version = uint(int(f.version) + n) //nolint:gosec // test arithmetic stays in range
	return f.err
}

func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, f.dirty, nil }

func (f *fakeMigrator) Force(v int) error {
	f.calls = append(f.calls, "force")
	f.forced = v
	return f.err
}

func (f *fakeMigrator) Status() ([]store.Migration, []store.Migration, error) {
	all := []store.Migration{
		{Version: 1, Name: "000001_create_identities"},
		{Version: 2, Name: "000002_create_web_sessions"},
		{Version: 3, Name: "000003_create_movies"},
	}
	return all[:f.version], all[f.version:], nil
}

func (f *fakeMigrator) Close() error {
	f.closed = true
	return nil
}

// useFakeMigrator swaps openMigrator for the duration of the test.
func useFakeMigrator(t *testing.T, f *fakeMigrator) *string {
	t.Helper()
	var gotURL string
	original := openMigrator
	openMigrator = func(url string) (migrator, error) {
		gotURL = url
		return f, nil
	}
	t.Cleanup(func() { openMigrator = original })
	return &gotURL
}

const testDatabaseURL = "postgres://marquee@localhost:5432/marquee"

func TestParseForceVersion(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantVersion int
		wantErrCode string
	}{
		{name: "valid integer", input: "3", wantVersion: 3},
		{name: "zero is valid", input: "0", wantVersion: 0},
		{name: "non-numeric", input: "abc", wantErrCode: "INVALID_VERSION"},
		{name: "float", input: "1.5", wantErrCode: "INVALID_VERSION"},
		{name: "trailing characters", input: "3abc", wantErrCode: "INVALID_VERSION"},
		{name: "negative", input: "-1", wantErrCode: "INVALID_VERSION"},
		{name: "empty string", input: "", wantErrCode: "INVALID_VERSION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseForceVersion(tt.input)
			if tt.wantErrCode != "" {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantErrCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, got)
		})
	}
}

func TestMigrateCommand_Properties(t *testing.T) {
	cmd := NewMigrateCmd()

	assert.Equal(t, "migrate", cmd.Use)
	assert.Contains(t, cmd.Short, "migration")
	assert.Contains(t, cmd.Long, "PostgreSQL")

	var subs []string
	for _, sub := range cmd.Commands() {
		subs = append(subs, sub.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "status", "version", "force"}, subs)
}

func TestMigrateCommand_NoDatabaseURL(t *testing.T) {
	isolate(t)
	f := &fakeMigrator{total: 3}
	useFakeMigrator(t, f)

	_, err := execute(t, "migrate")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Empty(t, f.calls, "no migrator is opened without a database")
}

func TestMigrateCommand_BareAppliesAll(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", testDatabaseURL)
	f := &fakeMigrator{total: 3}
	gotURL := useFakeMigrator(t, f)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, testDatabaseURL, *gotURL)
	assert.Equal(t, []string{"up"}, f.calls)
	assert.Contains(t, out, "Schema version: 3")
	assert.True(t, f.closed)
}

func TestMigrateUp_Steps(t *testing.T) {
	isolate(t)
	f := &fakeMigrator{total: 3}
	useFakeMigrator(t, f)

	out, err := execute(t, "migrate", "up", "--steps", "2", "--database.url", testDatabaseURL)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, f.steps)
	assert.Contains(t, out, "Schema version: 2")
}

func TestMigrateUp_NegativeSteps(t *testing.T) {
	isolate(t)
	f := &fakeMigrator{total: 3}
	useFakeMigrator(t, f)

	_, err := execute(t, "migrate", "up", "--steps=-1", "--database.url", testDatabaseURL)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_STEPS")
	assert.True(t, f.closed)
}

func TestMigrateDown(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantCalls []string
		wantSteps []int
		wantOut   string
		wantCode  string
	}{
		{
			name:      "default rolls back one",
			args:      nil,
			wantCalls: []string{"steps"},
			wantSteps: []int{-1},
			wantOut:   "Schema version: 2",
		},
		{
			name:      "explicit steps",
			args:      []string{"--steps", "2"},
			wantCalls: []string{"steps"},
			wantSteps: []int{-2},
			wantOut:   "Schema version: 1",
		},
		{
			name:      "all",
			args:      []string{"--all"},
			wantCalls: []string{"down"},
			wantOut:   "Schema version: 0",
		},
		{
			name:     "zero steps",
			args:     []string{"--steps", "0"},
			wantCode: "INVALID_STEPS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			f := &fakeMigrator{version: 3, total: 3}
			useFakeMigrator(t, f)

			args := append([]string{"migrate", "down", "--database.url", testDatabaseURL}, tt.args...)
			out, err := execute(t, args...)
			if tt.wantCode != "" {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, f.calls)
			assert.Equal(t, tt.wantSteps, f.steps)
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestMigrateStatus(t *testing.T) {
	isolate(t)
	useFakeMigrator(t, &fakeMigrator{version: 2, total: 3})

	out, err := execute(t, "migrate", "status", "--database.url", testDatabaseURL)
	require.NoError(t, err)
	assert.Contains(t, out, "[x] 000001_create_identities")
	assert.Contains(t, out, "[x] 000002_create_web_sessions")
	assert.Contains(t, out, "[ ] 000003_create_movies")
	assert.Contains(t, out, "2 applied, 1 pending")
}

func TestMigrateVersion_Dirty(t *testing.T) {
	isolate(t)
	useFakeMigrator(t, &fakeMigrator{version: 2, dirty: true, total: 3})

	out, err := execute(t, "migrate", "version", "--database.url", testDatabaseURL)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 2 (dirty)")
}

func TestMigrateForce(t *testing.T) {
	isolate(t)
	f := &fakeMigrator{version: 2, dirty: true, total: 3}
	useFakeMigrator(t, f)

	out, err := execute(t, "migrate", "force", "1", "--database.url", testDatabaseURL)
	require.NoError(t, err)
	assert.Equal(t, 1, f.forced)
	assert.Contains(t, out, "Forced schema version to 1")
}

func TestMigrateForce_InvalidVersionOpensNothing(t *testing.T) {
	isolate(t)
	f := &fakeMigrator{total: 3}
	useFakeMigrator(t, f)

	_, err := execute(t, "migrate", "force", "abc", "--database.url", testDatabaseURL)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_VERSION")
	assert.False(t, f.closed)
}

func TestMigrateUp_ErrorIsReturned(t *testing.T) {
	isolate(t)
	f := &fakeMigrator{total: 3, err: errors.New("boom")}
	useFakeMigrator(t, f)

	_, err := execute(t, "migrate", "up", "--database.url", testDatabaseURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.True(t, f.closed)
}

func TestMigrateUpHelper(t *testing.T) {
	f := &fakeMigrator{total: 3}
	gotURL := useFakeMigrator(t, f)

	require.NoError(t, migrateUp(testDatabaseURL))
	assert.Equal(t, testDatabaseURL, *gotURL)
	assert.Equal(t, uint(3), f.version)
	assert.True(t, f.closed)
}
