package main

import (
	"fmt"
	nurl "net/url"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/console"
	"github.com/pagesift/pagesift/internal/creds"
	"github.com/pagesift/pagesift/internal/extract"
)

// resolveProvider returns the validated provider name. An empty flag value
// triggers the interactive menu; an invalid one is rejected before any
// credential or network work.
func resolveProvider(cons *console.Console, flagValue string) (string, error) {
	if flagValue != "" {
		if !extract.Valid(flagValue) {
			return "", eris.Errorf("unsupported provider %q (valid: %s)", flagValue, extract.ValidNames())
		}
		return flagValue, nil
	}

	idx, err := cons.Select("Choose an AI provider", extract.Providers)
	if err != nil {
		return "", err
	}
	return extract.Providers[idx], nil
}

// resolveURL returns a validated http(s) URL, prompting when the flag was
// not given.
func resolveURL(cons *console.Console, flagValue string) (string, error) {
	raw := flagValue
	if raw == "" {
		var err error
		raw, err = cons.Ask("Enter the URL to scrape", "")
		if err != nil {
			return "", err
		}
	}

	u, err := nurl.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", eris.Errorf("invalid URL %q: expected http(s)://host/...", raw)
	}
	return raw, nil
}

// resolveKey returns the API key for provider: environment first, then the
// credentials file, then a one-time interactive prompt whose answer is
// persisted so the next run does not ask again.
func resolveKey(cons *console.Console, store *creds.Store, provider string) (string, error) {
	if !extract.NeedsKey(provider) {
		return "", nil
	}

	if key := os.Getenv(creds.EnvKey(provider)); key != "" {
		return key, nil
	}

	key, ok, err := store.Get(provider)
	if err != nil {
		return "", err
	}
	if ok {
		return key, nil
	}

	key, err = cons.AskSecret(fmt.Sprintf("Enter your %s API key", provider))
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", eris.Errorf("no API key for %s; set %s or run: pagesift keys set %s",
			provider, creds.EnvKey(provider), provider)
	}

	if err := store.Set(provider, key); err != nil {
		return "", err
	}
	zap.L().Info("api key saved", zap.String("provider", provider), zap.String("file", store.Path()))
	return key, nil
}
