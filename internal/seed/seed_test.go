package seed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mholt/archiver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const whitelistDoc = `{"networks":[{"net_address":"10.0.0.0","net_mask":"8"},{"net_address":"192.168.1.0","net_mask":"24"}]}`

func TestParseWhitelist(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []Network
		wantErr error
	}{
		{
			name:  "converts entries",
			input: whitelistDoc,
			want:  []Network{{Addr: "10.0.0.0", Mask: "8"}, {Addr: "192.168.1.0", Mask: "24"}},
		},
		{name: "empty list", input: `{"networks":[]}`, wantErr: ErrEmptyWhitelist},
		{name: "missing key", input: `{}`, wantErr: ErrEmptyWhitelist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseWhitelist([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseWhitelist([]byte("not json"))
	assert.ErrorContains(t, err, "failed to parse networks whitelist")
}

// newFixture lays out a seed source tree and a fallback whitelist.
func newFixture(t *testing.T, fallback string) *Builder {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "assets", "deploy", "seed")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "provision.sh"), []byte("#!/bin/sh\n"), 0o755))

	fallbackPath := filepath.Join(root, "assets", "deploy", "config", WhitelistName)
	require.NoError(t, os.MkdirAll(filepath.Dir(fallbackPath), 0o755))
	require.NoError(t, os.WriteFile(fallbackPath, []byte(fallback), 0o644))

	return &Builder{
		SourceDir:         src,
		TmpDir:            filepath.Join(root, "tmp"),
		FallbackWhitelist: fallbackPath,
	}
}

func readNetworks(t *testing.T, path string) []Network {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var nets []Network
	require.NoError(t, json.Unmarshal(data, &nets))
	return nets
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(whitelistDoc))
	}))
	t.Cleanup(srv.Close)

	b := newFixture(t, `{"networks":[]}`)
	b.WhitelistURL = srv.URL

	path, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(b.TmpDir, ArchiveName), path)

	assert.Len(t, readNetworks(t, b.WhitelistPath()), 2)
	assert.NoDirExists(t, filepath.Join(b.TmpDir, "seed"), "staged tree must be removed")

	out := t.TempDir()
	require.NoError(t, archiver.Unarchive(path, out))
	assert.FileExists(t, filepath.Join(out, "seed", "provision.sh"))
	assert.Len(t, readNetworks(t, filepath.Join(out, "seed", "config", WhitelistName)), 2)
}

func TestBuilder_Build_FallsBackToLocalWhitelist(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	var logged []string
	b := newFixture(t, whitelistDoc)
	b.WhitelistURL = srv.URL
	b.Logf = func(format string, v ...interface{}) { logged = append(logged, format) }

	_, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Len(t, readNetworks(t, b.WhitelistPath()), 2)
	assert.Len(t, logged, 1)
}

func TestBuilder_Build_EmptyWhitelist(t *testing.T) {
	t.Parallel()

	b := newFixture(t, `{"networks":[]}`)

	_, err := b.Build(context.Background())
	assert.ErrorIs(t, err, ErrEmptyWhitelist)
	assert.NoFileExists(t, b.ArchivePath())
	assert.NoDirExists(t, filepath.Join(b.TmpDir, "seed"))
}

func TestBuilder_Build_MissingSource(t *testing.T) {
	t.Parallel()

	b := newFixture(t, whitelistDoc)
	b.SourceDir = filepath.Join(t.TempDir(), "absent")

	_, err := b.Build(context.Background())
	assert.ErrorContains(t, err, "failed to stage seed")
}
