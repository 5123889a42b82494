package counterparty

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", Unknown},
		{"   ", Unknown},
		{"12345", Unknown},
		{"payment to visa", Unknown},
		{"ab", Unknown},
		{"CARD PAYMENT RIMI LIETUVA", "Rimi Lietuva"},
		{"Card:  COFFEE-ISLAND-CAFE", "Coffee Island Cafe"},
		{"POS-Netflix.com", "Netflix Com"},
		{"trf: o'brien & sons", "O'brien Sons"},
		{"x store", "X Store"},
	}
	for _, tt := range tests {
		if got := ExtractName(tt.in); got != tt.want {
			t.Errorf("ExtractName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractNameIgnoresNoise(t *testing.T) {
	variants := []string{
		"CARD PAYMENT RIMI LIETUVA",
		"card payment   rimi, lietuva!",
		"  Card Payment Rimi/Lietuva ",
	}
	want := ExtractName(variants[0])
	for _, v := range variants[1:] {
		if got := ExtractName(v); got != want {
			t.Errorf("ExtractName(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestStages(t *testing.T) {
	if got := StripPrefix("pos: tesco"); got != "tesco" {
		t.Errorf("StripPrefix = %q", got)
	}
	if got := StripPrefix("postal service"); got != "postal service" {
		t.Errorf("StripPrefix should need a separator, got %q", got)
	}
	if got := StripPunctuation("a*b  -c's"); got != "a b -c's" {
		t.Errorf("StripPunctuation = %q", got)
	}
	if diff := cmp.Diff([]string{"rimi"}, DropStopwords([]string{"to", "rimi", "visa"})); diff != "" {
		t.Errorf("DropStopwords (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, SplitHyphens([]string{"a-b", "-", "c"})); diff != "" {
		t.Errorf("SplitHyphens (-want +got):\n%s", diff)
	}
	if Plausible([]string{"12", "34"}) || !Plausible([]string{"a12"}) {
		t.Error("Plausible thresholds wrong")
	}
	if got := Display([]string{"mcDONALD", "s"}); got != "Mcdonald S" {
		t.Errorf("Display = %q", got)
	}
}
