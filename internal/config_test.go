package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestSiteConfig_DistEqualsSrc(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Site.DistDir = "./src/"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "site") {
		t.Fatalf("expected site error, got %v", err)
	}
}

func TestSiteConfig_InvalidOrigin(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Site.Origin = ".example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid origin should fail")
	}
}

func TestHTTPConfig_Prefix(t *testing.T) {
	cfg := HTTPConfig{Port: 8080, Prefix: "/docs/"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("prefix should pass: %v", err)
	}
	if cfg.Prefix != "/docs" {
		t.Errorf("prefix = %q, want /docs", cfg.Prefix)
	}

	bad := HTTPConfig{Port: 8080, Prefix: "docs"}
	if err := bad.Validate(); err == nil {
		t.Fatal("prefix without leading slash should fail")
	}
}

func TestMarkdownConfig_NestedRoute(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Markdown.Routes = []string{"blog/posts"}
	err := cfg.Validate()
	if err == nil || !strings.HasPrefix(err.Error(), "markdown:") {
		t.Fatalf("expected markdown error, got %v", err)
	}
}

func TestSectionDefaultsFilled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Shortcodes = ShortcodeConfig{}
	cfg.Build = BuildConfig{}
	cfg.Reload = ReloadConfig{Enabled: true}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Shortcodes.Open != "{{" || cfg.Shortcodes.Close != "}}" {
		t.Errorf("delimiters = %q %q", cfg.Shortcodes.Open, cfg.Shortcodes.Close)
	}
	if cfg.Build.Concurrency == 0 {
		t.Error("concurrency should default")
	}
	if cfg.Reload.Debounce == 0 || cfg.Reload.Throttle == 0 {
		t.Error("reload timings should default")
	}
}

func TestShortcodeConfig_SameDelimiters(t *testing.T) {
	cfg := ShortcodeConfig{Open: "%%", Close: "%%"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("equal delimiters should fail")
	}
}

func TestIndexConfig_PathRequiredWhenEnabled(t *testing.T) {
	if err := (&IndexConfig{Enabled: true}).Validate(); err == nil {
		t.Fatal("enabled index without path should fail")
	}
	if err := (&IndexConfig{}).Validate(); err != nil {
		t.Fatalf("disabled index should pass: %v", err)
	}
}

func TestSettings(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Site.RootDir = "/site"
	cfg.Site.Origin = "https://example.com/"
	s := cfg.Settings()
	if s.SrcDir != "/site/src" || s.DistDir != "/site/public" {
		t.Errorf("dirs = %q %q", s.SrcDir, s.DistDir)
	}
	if s.Origin != "https://example.com" {
		t.Errorf("origin = %q", s.Origin)
	}
}
