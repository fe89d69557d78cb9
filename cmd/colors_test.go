package cmd

import "testing"

func TestGradeColor(t *testing.T) {
	tests := []struct {
		grade string
		want  string
	}{
		{grade: "A+", want: "green"},
		{grade: "a-", want: "green"},
		{grade: "B", want: "yellow"},
		{grade: "b-", want: "yellow"},
		{grade: "C+", want: "red"},
		{grade: "F", want: "red"},
		{grade: "N", want: "blue"},
		{grade: "", want: "blue"},
	}

	for _, tt := range tests {
		if got := gradeColor(tt.grade); got != tt.want {
			t.Fatalf("gradeColor(%q) = %q, want %q", tt.grade, got, tt.want)
		}
	}
}

func TestColorTablesAreIndependent(t *testing.T) {
	if websecColors.normalize("orange") != "yellow" || sslColors.normalize("orange") != "yellow" {
		t.Fatal("expected orange to map to yellow")
	}
	if got := emailColors.normalize("green"); got != "green" {
		t.Fatalf("expected unknown names to pass through, got %q", got)
	}

	local := colorTable{"orange": "red"}
	if local.normalize("orange") != "red" || mobileColors.normalize("orange") != "yellow" {
		t.Fatal("tables should not share entries")
	}
}

func TestPaintWithoutColor(t *testing.T) {
	if got := paint("green", "ok"); got != "ok" {
		t.Fatalf("expected plain text with colors disabled, got %q", got)
	}
	if got := paint("chartreuse", "ok"); got != "ok" {
		t.Fatalf("expected unknown color to leave text plain, got %q", got)
	}
	if got := formatCheckStatus(false); got != "failed" {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"no issues found": "No Issues Found",
		"3 issues found":  "3 Issues Found",
		"ANDROID":         "Android",
		"":                "",
	}
	for in, want := range tests {
		if got := titleCase(in); got != want {
			t.Fatalf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
