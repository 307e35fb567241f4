package geocode

import (
	"testing"
)

func TestBuildVariants(t *testing.T) {
	tests := []struct {
		name   string
		street string
		city   string
		want   []string
	}{
		{
			name:   "parenthetical and missing number space",
			street: "Hrdinů278 (vchod B)",
			city:   "Teplice",
			want: []string{
				"Hrdinů278 (vchod B), Teplice",
				"Hrdinů 278, Teplice",
			},
		},
		{
			name:   "missing space before orientation number",
			street: "K. J. Erbena1097/8",
			city:   "Teplice",
			want: []string{
				"K. J. Erbena1097/8, Teplice",
				"K. J. Erbena 1097/8, Teplice",
			},
		},
		{
			name:   "trailing lodging name trimmed by minimal variant",
			street: "Husova 101/45 Hotel Cazanova",
			city:   "Ústí nad Labem",
			want: []string{
				"Husova 101/45 Hotel Cazanova, Ústí nad Labem",
				"Husova 101/45 Cazanova, Ústí nad Labem",
				"Husova 101/45, Ústí nad Labem",
			},
		},
		{
			name:   "already clean address yields single variant",
			street: "Masarykova 12",
			city:   "Most",
			want:   []string{"Masarykova 12, Most"},
		},
		{
			name:   "city only",
			street: "",
			city:   "Chomutov",
			want:   []string{"Chomutov"},
		},
		{
			name:   "empty address yields no variants",
			street: "",
			city:   "",
			want:   nil,
		},
		{
			name:   "street without house number",
			street: "Ubytovna U nádraží",
			city:   "Děčín",
			want: []string{
				"Ubytovna U nádraží, Děčín",
				"U nádraží, Děčín",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildVariants(tt.street, tt.city)
			if len(got) != len(tt.want) {
				t.Fatalf("BuildVariants(%q, %q) = %v, want %v", tt.street, tt.city, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("variant[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCleanStreet(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hrdinů278 (vchod B)", "Hrdinů 278"},
		{"K. J. Erbena1097/8", "K. J. Erbena 1097/8"},
		{"Dlouhá  12,  byt 4", "Dlouhá 12, 4"},
		{"Masarykova 12", "Masarykova 12"},
		{"  Palackého   1840/6  ", "Palackého 1840/6"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanStreet(tt.input); got != tt.want {
				t.Errorf("CleanStreet(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMinimalStreet(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Husova 101/45 Hotel Cazanova", "Husova 101/45"},
		{"Hrdinů 278", "Hrdinů 278"},
		{"Na Nivách 7a", "Na Nivách 7a"},
		{"U nádraží", "U nádraží"}, // no number: unchanged
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := MinimalStreet(tt.input); got != tt.want {
				t.Errorf("MinimalStreet(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanersReportChange(t *testing.T) {
	if _, changed := StripParentheticals("Hrdinů 278"); changed {
		t.Error("StripParentheticals reported a change on clean input")
	}
	if out, changed := StripParentheticals("Hrdinů 278 (vchod B)"); !changed || out == "Hrdinů 278 (vchod B)" {
		t.Errorf("StripParentheticals(%q) = %q, changed=%v", "Hrdinů 278 (vchod B)", out, changed)
	}
	if _, changed := InsertNumberSpace("Hrdinů 278"); changed {
		t.Error("InsertNumberSpace reported a change on clean input")
	}
	if out, _ := InsertNumberSpace("Hrdinů278"); out != "Hrdinů 278" {
		t.Errorf("InsertNumberSpace(%q) = %q", "Hrdinů278", out)
	}
}
