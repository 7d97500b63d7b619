package pkg

import (
	"os"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "verse" {
		t.Errorf("Expected Name to be %q, got %q", "verse", Name)
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain ardnew, got %v", Author)
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestPrefix(t *testing.T) {
	p := Prefix()
	if p == "" || strings.HasPrefix(p, ".") {
		t.Errorf("Prefix() = %q, want non-empty without leading dot", p)
	}

	if !strings.HasSuffix(ConfigDir(), p) {
		t.Errorf("ConfigDir() = %q, want suffix %q", ConfigDir(), p)
	}

	if !strings.HasSuffix(CacheDir(), p) {
		t.Errorf("CacheDir() = %q, want suffix %q", CacheDir(), p)
	}
}
