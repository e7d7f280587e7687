package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Config{InstanceHostname: "example.social", AccessToken: "tok-123"}
	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoadMissingReturnsErrMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissing))
}

func TestSaveOverwritesExisting(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Save(dir, Config{InstanceHostname: "first.social", AccessToken: "one"}))
	require.NoError(t, Save(dir, Config{InstanceHostname: "second.social", AccessToken: "two"}))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, Config{InstanceHostname: "second.social", AccessToken: "two"}, loaded)
}
