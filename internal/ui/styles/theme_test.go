package styles

import "testing"

func TestNextThemeCycles(t *testing.T) {
	SetCurrentTheme(NightTheme.Name)
	t.Cleanup(func() { SetCurrentTheme(NightTheme.Name) })

	var got []string
	for range Themes {
		got = append(got, NextTheme())
	}
	want := []string{"sepia", "ink", "night"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NextTheme() sequence = %v, want %v", got, want)
		}
	}
}

func TestSetCurrentThemeUnknown(t *testing.T) {
	SetCurrentTheme(SepiaTheme.Name)
	SetCurrentTheme("missing")
	if got := CurrentTheme().Name; got != NightTheme.Name {
		t.Errorf("CurrentTheme() = %q, want %q", got, NightTheme.Name)
	}
	if Primary != NightTheme.Accent {
		t.Errorf("Primary = %q, want %q", Primary, NightTheme.Accent)
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Series A", 20, "Series A"},
		{"Series A", 5, "Seri…"},
		{"漫画の本", 5, "漫画…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateText(tt.in, tt.width); got != tt.want {
			t.Errorf("TruncateText(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
