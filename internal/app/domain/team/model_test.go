package team

import "testing"

func TestColorOrDefault(t *testing.T) {
	cases := []struct {
		color string
		want  string
	}{
		{"#FF8800", "#FF8800"},
		{"#abc", "#abc"},
		{"#80FF8800", "#80FF8800"},
		{"", DefaultColor},
		{"orange", DefaultColor},
		{"#GGGGGG", DefaultColor},
		{"#12345", DefaultColor},
		{"FF8800", DefaultColor},
	}
	for _, tc := range cases {
		tm := Team{Color: tc.color}
		if got := tm.ColorOrDefault(); got != tc.want {
			t.Fatalf("color %q resolved to %q, want %q", tc.color, got, tc.want)
		}
	}
}
