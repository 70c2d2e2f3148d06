package settings

import "testing"

// --- NormalizeLanguage ---

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"es", "es", false},
		{"ES", "es", false},
		{"español", "es", false},
		{"spanish", "es", false},
		{"en", "en", false},
		{"english", "en", false},
		{"  eng  ", "en", false},
		{"fr", "fr", false},
		{"deutsch", "de", false},
		{"", "", true},
		{"x", "", true},
	}

	for _, tc := range cases {
		got, err := NormalizeLanguage(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("NormalizeLanguage(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// --- NormalizeSystem ---

func TestNormalizeSystem(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"letter", SystemLetter, false},
		{"letters", SystemLetter, false},
		{"abc", SystemLetter, false},
		{"LET", SystemLetter, false},
		{"solfege", SystemSolfege, false},
		{"solfeo", SystemSolfege, false},
		{"doremi", SystemSolfege, false},
		{"do", SystemSolfege, false},
		{"", "", true},
		{"numbers", "", true},
	}

	for _, tc := range cases {
		got, err := NormalizeSystem(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("NormalizeSystem(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeSystem(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// --- Store round-trips ---

func TestStore_LanguageRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	if got := s.Language("ana"); got != "" {
		t.Errorf("Language before set = %q, want empty", got)
	}

	stored, err := s.SetLanguage("ana", "spanish")
	if err != nil {
		t.Fatalf("SetLanguage error: %v", err)
	}
	if stored != "es" {
		t.Errorf("stored = %q, want es", stored)
	}
	if got := s.Language("ana"); got != "es" {
		t.Errorf("Language = %q, want es", got)
	}
}

func TestStore_SystemRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	if _, err := s.SetSystem("ana", "nonsense"); err == nil {
		t.Error("expected error for unrecognized system")
	}

	if _, err := s.SetSystem("ana", "solfeo"); err != nil {
		t.Fatalf("SetSystem error: %v", err)
	}
	if got := s.System("ana"); got != SystemSolfege {
		t.Errorf("System = %q, want solfege", got)
	}
}

func TestStore_UsersAreIndependent(t *testing.T) {
	s := NewStore(t.TempDir())
	s.SetLanguage("ana", "es")
	s.SetLanguage("bob", "en")

	if got := s.Language("ana"); got != "es" {
		t.Errorf("ana language = %q, want es", got)
	}
	if got := s.Language("bob"); got != "en" {
		t.Errorf("bob language = %q, want en", got)
	}
}
