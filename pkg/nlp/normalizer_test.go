package nlp

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trims and lowercases", "  Aku SEDIH  ", "aku sedih"},
		{"drops fillers", "aku capek banget nih sama tugas deh", "aku capek banget sama tugas"},
		{"collapses whitespace", "aku\t\tstres   kuliah", "aku stres kuliah"},
		{"only fillers", "ya sih dong", ""},
		{"filler inside word kept", "yakin kantor", "yakin kantor"},
		{"compatibility letters folded", "ℌalo", "halo"},
		{"compatibility symbol folded", "aku ㎒ stres", "aku mhz stres"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Aku lagi STRES nih gara-gara skripsi",
		"  ya   ampun  kok  gitu  ",
		"ＡＫＵ ｓｅｄｉｈ",
		"sudah normal",
		"aku ㎒ stres",
		"ℌalo",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFold_KeepsFillers(t *testing.T) {
	if got := Fold("  Ya  "); got != "ya" {
		t.Errorf("Fold should keep filler words, got %q", got)
	}
	if !IsFiller("ya") || IsFiller("iya") {
		t.Error("unexpected filler classification for ya/iya")
	}
}
