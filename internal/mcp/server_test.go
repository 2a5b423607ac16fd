package mcp

import (
	"testing"
	"time"
)

func TestNewServer(t *testing.T) {
	s := NewServer(nil, nil, nil, nil, "1.2.3")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
	if s.MCPServer() == nil {
		t.Fatal("underlying MCP server is nil")
	}

	if s := NewServer(nil, nil, nil, nil, ""); s == nil {
		t.Fatal("NewServer with empty version returned nil")
	}
}

func TestParseRunDate(t *testing.T) {
	got, err := parseRunDate("2025-06-03")
	if err != nil {
		t.Fatalf("parseRunDate: %v", err)
	}
	if want := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("parseRunDate = %s, want %s", got, want)
	}

	if _, err := parseRunDate("03.06.2025"); err == nil {
		t.Error("parseRunDate accepted a non-ISO date")
	}

	now, err := parseRunDate("")
	if err != nil {
		t.Fatalf("parseRunDate(\"\"): %v", err)
	}
	if time.Since(now) > time.Minute {
		t.Errorf("parseRunDate(\"\") = %s, want roughly now", now)
	}
}

func TestParseSince(t *testing.T) {
	now := time.Now().UTC()

	got, err := parseSince("7d")
	if err != nil {
		t.Fatalf("parseSince(7d): %v", err)
	}
	if diff := now.AddDate(0, 0, -7).Sub(got); diff < -time.Minute || diff > time.Minute {
		t.Errorf("parseSince(7d) = %s, want about 7 days ago", got)
	}

	got, err = parseSince("24h")
	if err != nil {
		t.Fatalf("parseSince(24h): %v", err)
	}
	if diff := now.Add(-24 * time.Hour).Sub(got); diff < -time.Minute || diff > time.Minute {
		t.Errorf("parseSince(24h) = %s, want about 24 hours ago", got)
	}

	for _, bad := range []string{"", "d", "7w", "-3d", "xd"} {
		if _, err := parseSince(bad); err == nil {
			t.Errorf("parseSince(%q) = nil error, want failure", bad)
		}
	}
}
