package main

import (
	"log/slog"
	"testing"

	"awmcp/internal/config"
)

func TestResolveServerURL(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.URL = "http://config:5600"

	tests := []struct {
		name string
		flag string
		env  string
		cfg  *config.Config
		want string
	}{
		{"flag wins", "http://flag:5600", "http://env:5600", cfg, "http://flag:5600"},
		{"env beats config", "", "http://env:5600", cfg, "http://env:5600"},
		{"config beats default", "", "", cfg, "http://config:5600"},
		{"default when nothing set", "", "", nil, "http://localhost:5600"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serverFlag = tt.flag
			defer func() { serverFlag = "" }()
			t.Setenv("AWMCP_SERVER_URL", tt.env)

			got := resolveServerURL(tt.cfg)
			if got != tt.want {
				t.Errorf("resolveServerURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCliLogLevel(t *testing.T) {
	logLevelFlag = ""
	if level := cliLogLevel(); level != nil {
		t.Errorf("expected nil level when flag unset, got %v", *level)
	}

	logLevelFlag = "debug"
	defer func() { logLevelFlag = "" }()
	level := cliLogLevel()
	if level == nil {
		t.Fatal("expected a level when flag is set")
	}
	if *level != slog.LevelDebug {
		t.Errorf("expected debug, got %v", *level)
	}
}
