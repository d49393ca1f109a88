package helpers

import "testing"

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain title unchanged", "Road Network 2020", "Road Network 2020"},
		{"path separators", "Roads/Rail\\Paths", "Roads_Rail_Paths"},
		{"reserved characters", `Flood <Zones>: "A"|B?*`, "Flood _Zones__ _A__B__"},
		{"control characters", "Line\tOne\nTwo", "Line_One_Two"},
		{"surrounding space and trailing dots", "  Parks...  ", "Parks"},
		{"NFC normalisation", "Cafe\u0301 Locations", "Caf\u00e9 Locations"},
		{"long titles are not truncated", "A Very Long Title That Goes On And On Beyond Any Sensible Length For A File Name But Is Kept Whole", "A Very Long Title That Goes On And On Beyond Any Sensible Length For A File Name But Is Kept Whole"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFilename(tt.input); got != tt.want {
				t.Errorf("SafeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClientDirName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Example Council", "example_council"},
		{"  Borough of Somewhere ", "borough_of_somewhere"},
		{"A/B Partnership", "a_b_partnership"},
	}

	for _, tt := range tests {
		if got := ClientDirName(tt.input); got != tt.want {
			t.Errorf("ClientDirName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
