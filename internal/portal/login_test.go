package portal

import (
	"strings"
	"testing"

	"portalsync/internal/config"
)

func TestCheckLoginConfig(t *testing.T) {
	full := func() *config.Config {
		return &config.Config{
			LoginURL: "https://portal.example.com/login",
			Username: "ops@example.com",
			Password: "secret",
		}
	}

	if err := CheckLoginConfig(full()); err != nil {
		t.Fatalf("complete config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"missing url", func(c *config.Config) { c.LoginURL = "" }, "url"},
		{"missing username", func(c *config.Config) { c.Username = "" }, "username"},
		{"missing password", func(c *config.Config) { c.Password = "" }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full()
			tt.mutate(cfg)

			err := CheckLoginConfig(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if kind := KindOf(err); kind != KindConfiguration {
				t.Errorf("kind = %v, want KindConfiguration", kind)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not name %q", err, tt.want)
			}
		})
	}
}
