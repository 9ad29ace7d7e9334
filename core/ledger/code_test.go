package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func defaultValidator() *CodeValidator {
	return NewCodeValidator([]string{"CUPBACK-2025", "CUPBACK", "WLFANS"})
}

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{" cupback-2025\n", "CUPBACK-2025"},
		{"cupback", "CUPBACK"},
		{"\r\nWLFANS\r\n", "WLFANS"},
		{"cup back!2025", "CUPBACK2025"},
		{"  ", ""},
	}
	for _, c := range cases {
		if got := NormalizeCode(c.raw); got != c.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestValidate_Accepts(t *testing.T) {
	v := defaultValidator()
	cases := []string{
		" cupback-2025\n",            // normalizes to exact match
		"CUPBACK",                    // exact
		"XXCUPBACKXX",                // contains an entry
		"CUPBACK-20",                 // contained in an entry, camera misread
		"https://x.test/CUPBACK-2025", // URL payload, stripped then contains
	}
	for _, raw := range cases {
		if _, err := v.Validate(raw); err != nil {
			t.Errorf("Validate(%q) rejected: %v", raw, err)
		}
	}
}

func TestValidate_Rejects(t *testing.T) {
	v := defaultValidator()
	for _, raw := range []string{"HELLO-WORLD", "", "   \n"} {
		clean, err := v.Validate(raw)
		if !errors.Is(err, ErrInvalidCode) {
			t.Errorf("Validate(%q) = (%q, %v), want ErrInvalidCode", raw, clean, err)
		}
	}
}

func TestValidate_ReturnsNormalizedPayload(t *testing.T) {
	v := defaultValidator()
	clean, err := v.Validate(" bogus code\n")
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if clean != "BOGUSCODE" {
		t.Errorf("normalized payload = %q, want %q", clean, "BOGUSCODE")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codes.txt")
	content := "# station codes\ncupback-2026\n\nwlfans\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	v := defaultValidator()
	if err := v.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}

	codes := v.Codes()
	if len(codes) != 2 || codes[0] != "CUPBACK-2026" || codes[1] != "WLFANS" {
		t.Errorf("codes = %v, want [CUPBACK-2026 WLFANS]", codes)
	}

	// Old codes must be gone.
	if _, err := v.Validate("CUPBACK-2025"); err == nil {
		t.Error("CUPBACK-2025 still accepted after reload")
	}
}

func TestLoadFromFile_EmptyRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codes.txt")
	if err := os.WriteFile(path, []byte("# nothing here\n"), 0644); err != nil {
		t.Fatal(err)
	}

	v := defaultValidator()
	if err := v.LoadFromFile(path); err == nil {
		t.Fatal("expected error for empty codes file")
	}
	// Previous list survives a failed load.
	if _, err := v.Validate("CUPBACK"); err != nil {
		t.Errorf("previous allow-list lost after failed load: %v", err)
	}
}
