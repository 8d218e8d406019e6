package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/alfredjeanlab/worldchart/internal/i18n"
)

// RemotesConfig is the on-disk list of chart servers the CLI knows about.
type RemotesConfig struct {
	Active  string            `toml:"active"`
	Remotes map[string]Remote `toml:"remotes"`
}

// Remote is one chart server profile. URL is the HTTP base URL and GRPCAddr
// is dialled with --transport grpc. Lang picks the label catalog requested
// from that server when --lang is not given.
type Remote struct {
	URL      string `toml:"url"`
	GRPCAddr string `toml:"grpc_addr,omitempty"`
	Token    string `toml:"token,omitempty"`
	Lang     string `toml:"lang,omitempty"`
	NATSURL  string `toml:"nats_url,omitempty"`
}

func (r Remote) validate() error {
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("remote url %q must be an http(s) URL", r.URL)
	}
	if r.Lang != "" && !slices.Contains(i18n.Languages(), r.Lang) {
		return fmt.Errorf("unsupported language %q (have %s)", r.Lang, strings.Join(i18n.Languages(), ", "))
	}
	return nil
}

// names returns the remote names in sorted order.
func (c RemotesConfig) names() []string {
	out := make([]string, 0, len(c.Remotes))
	for name := range c.Remotes {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// lookup resolves name, falling back to the active remote when name is empty.
func (c RemotesConfig) lookup(name string) (string, Remote, error) {
	if name == "" {
		name = c.Active
	}
	if name == "" {
		return "", Remote{}, fmt.Errorf("no active remote; specify a name or run 'wchart remote use <name>'")
	}
	r, ok := c.Remotes[name]
	if !ok {
		return "", Remote{}, fmt.Errorf("remote %q not found", name)
	}
	return name, r, nil
}

// maskToken keeps the first 8 characters of tok and hides the rest with fill,
// or with a single "..." when fill is empty.
func maskToken(tok, fill string) string {
	if len(tok) <= 8 {
		return tok
	}
	if fill == "" {
		return tok[:8] + "..."
	}
	return tok[:8] + strings.Repeat(fill, len(tok)-8)
}

func remoteConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "worldchart")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "remotes.toml"), nil
}

func loadRemotesConfig() (RemotesConfig, error) {
	path, err := remoteConfigPath()
	if err != nil {
		return RemotesConfig{}, err
	}
	cfg := RemotesConfig{Remotes: map[string]Remote{}}
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return RemotesConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = map[string]Remote{}
	}
	return cfg, nil
}

func saveRemotesConfig(cfg RemotesConfig) error {
	path, err := remoteConfigPath()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

var activeRemote = sync.OnceValue(func() Remote {
	cfg, err := loadRemotesConfig()
	if err != nil || cfg.Active == "" {
		return Remote{}
	}
	return cfg.Remotes[cfg.Active]
})

func activeRemoteURL() string      { return activeRemote().URL }
func activeRemoteGRPCAddr() string { return activeRemote().GRPCAddr }
func activeRemoteToken() string    { return activeRemote().Token }
func activeRemoteLang() string     { return activeRemote().Lang }
func activeRemoteNATSURL() string  { return activeRemote().NATSURL }
