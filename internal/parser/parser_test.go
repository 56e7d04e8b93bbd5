package parser

import "testing"

func TestFormatParseRoundTrip(t *testing.T) {
	cases := []struct {
		title, content string
	}{
		{"A", "x"},
		{"Title: with colon", "line one\nline two\n"},
		{"B", "\nstarts with a blank line"},
		{"C", ""},
		{"D", "---\nlooks like a header\n---\n"},
	}
	for _, tc := range cases {
		data, err := Format(9, tc.title, tc.content)
		if err != nil {
			t.Fatalf("Format(%q): %v", tc.title, err)
		}
		res, err := Parse(data)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if res.ID != 9 || res.Title != tc.title || res.Content != tc.content {
			t.Errorf("round trip of %q/%q = %+v", tc.title, tc.content, res)
		}
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	res, err := Parse([]byte("# Heading\nbody text"))
	if err != nil {
		t.Fatal(err)
	}
	if res.ID != 0 {
		t.Errorf("id = %d, want 0", res.ID)
	}
	if res.Title != "Heading" {
		t.Errorf("title = %q", res.Title)
	}
	if res.Content != "# Heading\nbody text" {
		t.Errorf("content = %q", res.Content)
	}
}

func TestParseUnclosedFrontmatter(t *testing.T) {
	src := "---\nid: 3\nno closing delimiter"
	res, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != src {
		t.Errorf("content = %q, want whole input", res.Content)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	src := "---\nid: [unterminated\n---\nbody"
	res, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("invalid YAML should fall back, got %v", err)
	}
	if res.ID != 0 || res.Content != src {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestParseTitleFallsBackToHeading(t *testing.T) {
	res, err := Parse([]byte("---\nid: 4\n---\n# From Body\ntext"))
	if err != nil {
		t.Fatal(err)
	}
	if res.ID != 4 || res.Title != "From Body" {
		t.Errorf("got %+v", res)
	}
}

func TestParseNegativeID(t *testing.T) {
	if _, err := Parse([]byte("---\nid: -1\ntitle: x\n---\n")); err == nil {
		t.Error("expected error for negative id")
	}
}
