package middleware

import (
	"strings"
	"testing"
)

func TestValidateItemID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid simple", "item-123", "item-123", false},
		{"valid with underscore", "post_2024_review", "post_2024_review", false},
		{"trims whitespace", "  item-1  ", "item-1", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"too long", strings.Repeat("a", 65), "", true},
		{"at limit", strings.Repeat("a", 64), strings.Repeat("a", 64), false},
		{"spaces inside", "item 123", "", true},
		{"path traversal", "../etc/passwd", "", true},
		{"sql injection", "item'; DROP TABLE items;--", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateItemID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error for %q, got none", tt.input)
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error for %q: %s", tt.input, errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateViewerID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid sha256 hex", strings.Repeat("ab", 32), strings.Repeat("ab", 32), false},
		{"valid short hash", "2cf24dba5fb0", "2cf24dba5fb0", false},
		{"uppercase normalized", "ABCDEF12", "abcdef12", false},
		{"empty", "", "", true},
		{"too long", strings.Repeat("a", 65), "", true},
		{"non-hex characters", "viewer-123", "", true},
		{"g is not hex", "abcdefg1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateViewerID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error for %q, got none", tt.input)
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error for %q: %s", tt.input, errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateRequestID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d", false},
		{"uppercase normalized", "A1B2C3D4-E5F6-4A7B-8C9D-0E1F2A3B4C5D", false},
		{"empty", "", true},
		{"missing dashes", "a1b2c3d4e5f64a7b8c9d0e1f2a3b4c5d", true},
		{"too short", "a1b2c3d4-e5f6", true},
		{"non-hex", "z1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateRequestID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error for %q, got none", tt.input)
			}
			if !tt.wantErr {
				if errMsg != "" {
					t.Errorf("unexpected error for %q: %s", tt.input, errMsg)
				}
				if got != strings.ToLower(strings.TrimSpace(tt.input)) {
					t.Errorf("got %q, want lowercased input", got)
				}
			}
		})
	}
}

func TestValidateTags(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"empty is no filter", "", nil, false},
		{"single tag", "restaurants", []string{"restaurants"}, false},
		{"multiple tags", "restaurants,tokyo", []string{"restaurants", "tokyo"}, false},
		{"trims and lowercases", " Restaurants , TOKYO ", []string{"restaurants", "tokyo"}, false},
		{"skips empty segments", "a,,b", []string{"a", "b"}, false},
		{"too many tags", strings.Repeat("t,", 10) + "t", nil, true},
		{"tag too long", strings.Repeat("x", 33), nil, true},
		{"invalid characters", "good,bad tag!", nil, true},
		{"leading dash rejected", "-tag", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateTags(tt.input)
			if tt.wantErr {
				if errMsg == "" {
					t.Errorf("expected error for %q, got none", tt.input)
				}
				return
			}
			if errMsg != "" {
				t.Fatalf("unexpected error for %q: %s", tt.input, errMsg)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateQueryText(t *testing.T) {
	if got := ValidateQueryText("  best ramen  "); got != "best ramen" {
		t.Errorf("got %q, want trimmed text", got)
	}
	long := strings.Repeat("q", 200)
	if got := ValidateQueryText(long); len(got) != MaxQueryLen {
		t.Errorf("len = %d, want %d (truncated)", len(got), MaxQueryLen)
	}
	if got := ValidateQueryText(""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
