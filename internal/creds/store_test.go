package creds

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	st := NewStore(path)

	_, ok, err := st.Get("groq")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set("groq", "gsk_test123"))

	key, ok, err := st.Get("groq")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gsk_test123", key)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, NewStore(path).Set("gemini", "AIza-test"))

	// A fresh store reading the same file must see the key, so a second
	// invocation never prompts again.
	key, ok, err := NewStore(path).Get("gemini")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "AIza-test", key)
}

func TestStore_SetPreservesOtherProviders(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	st := NewStore(path)
	require.NoError(t, st.Set("groq", "gsk_1"))
	require.NoError(t, st.Set("gemini", "AIza_2"))

	key, ok, err := st.Get("groq")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gsk_1", key)

	providers, err := st.Providers()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"groq", "gemini"}, providers)
}

func TestStore_FileMode(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	require.NoError(t, NewStore(path).Set("openai", "sk-test"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))

	_, _, err := NewStore(path).Get("groq")
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GEMINI_API_KEY", EnvKey("gemini"))
	assert.Equal(t, "GROQ_API_KEY", EnvKey("groq"))
	assert.Equal(t, "CLAUDE_API_KEY", EnvKey("claude"))
}
