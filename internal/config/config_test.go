package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	t.Setenv("TELEPROMPT_BOT_TOKEN", "")
	t.Setenv("TELEPROMPT_USER_ID", "")
	t.Setenv("TELEPROMPT_TIMEOUT_MINUTES", "")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MinimalConfigDefaultsTimeout(t *testing.T) {
	clearEnvOverrides(t)
	path := writeConfig(t, "bot_token = \"t\"\nuser_id = 123\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BotToken != "t" || cfg.UserID != 123 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.TimeoutMinutes != 60 {
		t.Fatalf("unexpected default timeout: %d", cfg.TimeoutMinutes)
	}
	if cfg.Timeout() != time.Hour {
		t.Fatalf("unexpected timeout duration: %v", cfg.Timeout())
	}
}

func TestLoad_TimeoutOverrideInFile(t *testing.T) {
	clearEnvOverrides(t)
	path := writeConfig(t, "bot_token = \"t\"\nuser_id = 123\ntimeout_minutes = 5\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TimeoutMinutes != 5 {
		t.Fatalf("unexpected timeout: %d", cfg.TimeoutMinutes)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "bot_token = \"file-token\"\nuser_id = 1\ntimeout_minutes = 5\n")
	t.Setenv("TELEPROMPT_BOT_TOKEN", "env-token")
	t.Setenv("TELEPROMPT_USER_ID", "42")
	t.Setenv("TELEPROMPT_TIMEOUT_MINUTES", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BotToken != "env-token" || cfg.UserID != 42 || cfg.TimeoutMinutes != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_MissingFileWithCompleteEnv(t *testing.T) {
	t.Setenv("TELEPROMPT_BOT_TOKEN", "env-token")
	t.Setenv("TELEPROMPT_USER_ID", "42")
	t.Setenv("TELEPROMPT_TIMEOUT_MINUTES", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BotToken != "env-token" || cfg.UserID != 42 || cfg.TimeoutMinutes != 60 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_MissingFileWithoutEnvFails(t *testing.T) {
	clearEnvOverrides(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected missing required fields error")
	}
	if !strings.Contains(err.Error(), "bot_token") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_ValidatesRequiredUserID(t *testing.T) {
	clearEnvOverrides(t)
	path := writeConfig(t, "bot_token = \"t\"\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected missing user_id error")
	}
	if !strings.Contains(err.Error(), "user_id") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	clearEnvOverrides(t)
	path := writeConfig(t, "bot_token = \"t\"\nuser_id = 123\ntimeout_minutes = 0\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected timeout validation error")
	}
	if !strings.Contains(err.Error(), "timeout_minutes") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_RejectsMalformedTOML(t *testing.T) {
	clearEnvOverrides(t)
	path := writeConfig(t, "bot_token = \n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_RejectsNonNumericEnvUserID(t *testing.T) {
	path := writeConfig(t, "bot_token = \"t\"\nuser_id = 123\n")
	t.Setenv("TELEPROMPT_USER_ID", "not-a-number")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected integer parse error")
	}
	if !strings.Contains(err.Error(), "TELEPROMPT_USER_ID") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestDefaultPath_Priority(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skipf("XDG resolution not used on %s", runtime.GOOS)
	}

	xdg := filepath.Join(t.TempDir(), "xdg")
	t.Setenv("XDG_CONFIG_HOME", xdg)
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(xdg, "teleprompt", "config.toml"); path != want {
		t.Fatalf("unexpected xdg path: got=%s want=%s", path, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	path, err = DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", "teleprompt", "config.toml"); path != want {
		t.Fatalf("unexpected home path: got=%s want=%s", path, want)
	}

	t.Setenv("HOME", "")
	if _, err := DefaultPath(); err == nil {
		t.Fatal("expected error when neither XDG_CONFIG_HOME nor HOME is set")
	}
}
