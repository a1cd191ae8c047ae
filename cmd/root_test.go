package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesift/pagesift/internal/extract"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"extract", "sitemap", "download", "keys", "doctor"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "pagesift", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestExtractCommand_Flags(t *testing.T) {
	for _, name := range []string{"api", "url", "prompt", "model", "engine", "sitemap-depth", "downloads", "no-cache"} {
		flag := extractCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "extract should have --%s flag", name)
	}

	assert.Equal(t, extract.DefaultPrompt, extractCmd.Flags().Lookup("prompt").DefValue)
	assert.Equal(t, "0", extractCmd.Flags().Lookup("sitemap-depth").DefValue)
	assert.Equal(t, "false", extractCmd.Flags().Lookup("downloads").DefValue)
}

func TestSitemapCommand_Flags(t *testing.T) {
	for _, name := range []string{"url", "depth", "out"} {
		flag := sitemapCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "sitemap should have --%s flag", name)
	}
	assert.Equal(t, "1", sitemapCmd.Flags().Lookup("depth").DefValue)
	assert.Equal(t, "sitemap.json", sitemapCmd.Flags().Lookup("out").DefValue)
}

func TestDownloadCommand_Flags(t *testing.T) {
	for _, name := range []string{"url", "out-dir"} {
		flag := downloadCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "download should have --%s flag", name)
	}
}

func TestKeysCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range keysCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"set", "list", "path"} {
		assert.True(t, names[name], "keys should have subcommand %q", name)
	}
}
