package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/five82/linkboard/internal/devserver"
)

func TestListCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store := devserver.NewStore()
	store.Seed()
	srv := httptest.NewServer(devserver.NewRouter(store, "/api/", zap.NewNop()))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("log_file = %q\n", filepath.Join(dir, "client.log"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list", "--config", cfgPath, "--api-url", srv.URL + "/api/"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "3 posts, 3 comments") {
		t.Fatalf("list output = %q", out.String())
	}
}

func TestListCommand_RejectsUnknownKind(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"list", "--kind", "reply"})
	err := cmd.ExecuteContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unknown resource kind") {
		t.Fatalf("list --kind reply error = %v, want unknown resource kind", err)
	}
}

func TestRootRejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"unexpected"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a positional argument")
	}
}
