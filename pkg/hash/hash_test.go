package hash

import (
	"strings"
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known vector
	got := SHA256Hex("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("SHA256Hex(hello) = %s, want %s", got, want)
	}

	// Empty string
	got = SHA256Hex("")
	want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("SHA256Hex(empty) = %s, want %s", got, want)
	}
}

func TestShortHash(t *testing.T) {
	full := SHA256Hex("hello")

	if got := ShortHash("hello", 12); got != full[:12] {
		t.Errorf("ShortHash(hello, 12) = %s, want %s", got, full[:12])
	}
	if got := ShortHash("hello", 12); len(got) != 12 {
		t.Errorf("len = %d, want 12", len(got))
	}
	// prefixLen beyond the digest length returns the full digest
	if got := ShortHash("hello", 100); got != full {
		t.Errorf("oversize prefix = %s, want full digest", got)
	}
}

func TestShortHash_Deterministic(t *testing.T) {
	a := ShortHash("viewer-uuid-1", 12)
	b := ShortHash("viewer-uuid-1", 12)
	if a != b {
		t.Errorf("same input produced different hashes: %s vs %s", a, b)
	}

	c := ShortHash("viewer-uuid-2", 12)
	if a == c {
		t.Errorf("different inputs produced the same hash: %s", a)
	}
}

func TestIteratedSHA256(t *testing.T) {
	// One iteration equals a plain hash
	if got := IteratedSHA256("hello", 1); got != SHA256Hex("hello") {
		t.Errorf("1 iteration = %s, want plain SHA256", got)
	}

	// More iterations change the output
	one := IteratedSHA256("hello", 1)
	two := IteratedSHA256("hello", 2)
	if one == two {
		t.Error("iteration count did not change the digest")
	}

	// Output stays a 64-char lowercase hex string
	got := IteratedSHA256("hello", 50)
	if len(got) != 64 {
		t.Errorf("len = %d, want 64", len(got))
	}
	if got != strings.ToLower(got) {
		t.Error("digest contains uppercase characters")
	}
}

func TestHashViewerID(t *testing.T) {
	a := HashViewerID("123e4567-e89b-12d3-a456-426614174000")
	b := HashViewerID("123e4567-e89b-12d3-a456-426614174000")
	if a != b {
		t.Error("viewer ID hashing is not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}
	if a == SHA256Hex("123e4567-e89b-12d3-a456-426614174000") {
		t.Error("viewer ID hash should not equal a single SHA256 round")
	}
}

func TestHashIP(t *testing.T) {
	a := HashIP("192.168.1.1", "salt-a")
	b := HashIP("192.168.1.1", "salt-b")
	if a == b {
		t.Error("different salts produced the same hash")
	}

	c := HashIP("192.168.1.2", "salt-a")
	if a == c {
		t.Error("different IPs produced the same hash")
	}

	if a != HashIP("192.168.1.1", "salt-a") {
		t.Error("IP hashing is not deterministic")
	}
}
