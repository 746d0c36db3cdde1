package slug

import "testing"

func TestFromTitle_Accents(t *testing.T) {
	got := FromTitle("Exaltação a Oxóssi")
	if got != "exaltacao-a-oxossi" {
		t.Errorf("FromTitle = %q, want %q", got, "exaltacao-a-oxossi")
	}
}

func TestFromTitle_UppercaseAccents(t *testing.T) {
	got := FromTitle("SALVE OXALÁ  E IANSÃ")
	if got != "salve-oxala-e-iansa" {
		t.Errorf("FromTitle = %q, want %q", got, "salve-oxala-e-iansa")
	}
}

func TestFromTitle_UnmappedPassThrough(t *testing.T) {
	// ý is not in the table and punctuation is kept.
	got := FromTitle("Ýemanjá, Rainha!")
	if got != "ýemanja,-rainha!" {
		t.Errorf("FromTitle = %q", got)
	}
}

func TestFromTitle_NoTrim(t *testing.T) {
	if got := FromTitle(" Ogum "); got != "-ogum-" {
		t.Errorf("FromTitle = %q, want %q", got, "-ogum-")
	}
}

func TestFromTitle_NoBreakSpace(t *testing.T) {
	if got := FromTitle("Ponto\u00a0de Ogum"); got != "ponto-de-ogum" {
		t.Errorf("FromTitle = %q, want %q", got, "ponto-de-ogum")
	}
	if got := FromTitle("Salve\u2003\u3000Oxum\ufeff"); got != "salve-oxum-" {
		t.Errorf("FromTitle = %q, want %q", got, "salve-oxum-")
	}
}

func TestRemoveAccents_AllMapped(t *testing.T) {
	got := RemoveAccents(accented)
	if got != unaccented {
		t.Errorf("RemoveAccents = %q, want %q", got, unaccented)
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"Exaltação a Oxóssi":           "exaltacao-a-oxossi",
		"Pretos-Velhos da Bahia":       "pretosvelhos-da-bahia",
		"  Ogum (2x), Xangô!  ":        "ogum-2x-xango",
		"Seu Zé Pilintra":              "seu-ze-pilintra",
		"Oxum\tMamãe   d'Água":         "oxum-mamae-dagua",
		"Cântico de Nanã — Ponto nº 1": "cantico-de-nana-ponto-n-1",
	}
	for in, want := range cases {
		if got := Filename(in); got != want {
			t.Errorf("Filename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilename_NoBreakSpace(t *testing.T) {
	cases := map[string]string{
		"Ponto\u00a0de Ogum":         "ponto-de-ogum",
		"\ufeffSalve\u202fOxalá\u00a0": "salve-oxala",
		"Ogum\u2009\u2009Megê":        "ogum-mege",
	}
	for in, want := range cases {
		if got := Filename(in); got != want {
			t.Errorf("Filename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsSpace(t *testing.T) {
	for _, r := range []rune{' ', '\t', '\v', 0x00a0, 0x2000, 0x200a, 0x2028, 0x3000, 0xfeff} {
		if !IsSpace(r) {
			t.Errorf("IsSpace(%U) = false", r)
		}
	}
	for _, r := range []rune{'a', '-', 0x200b, 0x1fff} {
		if IsSpace(r) {
			t.Errorf("IsSpace(%U) = true", r)
		}
	}
}

func TestStripDiacritics(t *testing.T) {
	if got := StripDiacritics("Oxalá Iansã Xangô"); got != "Oxala Iansa Xango" {
		t.Errorf("StripDiacritics = %q", got)
	}
}
