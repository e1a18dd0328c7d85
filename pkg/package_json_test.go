package syncversion

import (
	"strings"
	"testing"
)

func TestReadWritePackageVersion(t *testing.T) {
	content := `{
  "name": "my-app",
  "version": "1.2.3",
  "dependencies": {
    "some-lib": "2.3.4"
  },
  "devDependencies": {
    "tool": { "version": "9.9.9" }
  }
}`
	v, ok := readPackageVersion([]byte(content))
	if !ok || v != "1.2.3" {
		t.Fatalf("readPackageVersion = %q, %v; expected \"1.2.3\", true", v, ok)
	}

	out, ok := writePackageVersion([]byte(content), "1.3.0")
	if !ok {
		t.Fatal("writePackageVersion found no version field")
	}
	expected := `{
  "name": "my-app",
  "version": "1.3.0",
  "dependencies": {
    "some-lib": "2.3.4"
  },
  "devDependencies": {
    "tool": { "version": "9.9.9" }
  }
}`
	if string(out) != expected {
		t.Errorf("unexpected result:\nGot:\n%s\nExpected:\n%s", out, expected)
	}

	if _, ok := readPackageVersion([]byte(`{"name": "no-version"}`)); ok {
		t.Error("expected no version in a package.json without one")
	}
}

func TestPackageVersionIndentation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"four spaces", "{\n    \"name\": \"app\",\n    \"version\": \"1.2.3\",\n    \"engines\": {\n        \"version\": \"9.9.9\"\n    }\n}\n"},
		{"tabs", "{\n\t\"name\": \"app\",\n\t\"version\": \"1.2.3\"\n}\n"},
		{"nested first", "{\n    \"config\": {\n        \"version\": \"9.9.9\"\n    },\n    \"version\": \"1.2.3\"\n}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := readPackageVersion([]byte(tc.content))
			if !ok || v != "1.2.3" {
				t.Fatalf("readPackageVersion = %q, %v; expected \"1.2.3\", true", v, ok)
			}
			out, ok := writePackageVersion([]byte(tc.content), "2.0.0")
			if !ok {
				t.Fatal("writePackageVersion found no version field")
			}
			expected := strings.Replace(tc.content, `"version": "1.2.3"`, `"version": "2.0.0"`, 1)
			if string(out) != expected {
				t.Errorf("unexpected result:\nGot:\n%s\nExpected:\n%s", out, expected)
			}
		})
	}
}

func TestPackageVersionFor(t *testing.T) {
	tests := []struct {
		requested string
		expected  string
	}{
		{"1.2.3", "1.2.3"},
		{"v1.2.3", "1.2.3"},
		{"1.2.3-rc.1", "1.2.3-rc.1"},
		{"1.2", "1.2.0"},
		{"1.2.3.4", "1.2.3"},
		{"1.2.3+build.5", "1.2.3"},
		{"garbage", "0.1.0"},
	}
	for _, tc := range tests {
		if got := packageVersionFor(tc.requested, Parse(tc.requested)); got != tc.expected {
			t.Errorf("packageVersionFor(%q) = %q, expected %q", tc.requested, got, tc.expected)
		}
	}
}

func TestMovesBackwards(t *testing.T) {
	tests := []struct {
		old, next string
		expected  bool
	}{
		{"1.2.3", "1.2.2", true},
		{"1.2.3", "1.2.3", false},
		{"1.2.3", "2.0.0", false},
		{"1.2.3", "1.2.3-rc.1", true},
		{"dev", "0.0.1", false},
		{"", "1.0.0", false},
	}
	for _, tc := range tests {
		if got := movesBackwards(tc.old, tc.next); got != tc.expected {
			t.Errorf("movesBackwards(%q, %q) = %v, expected %v", tc.old, tc.next, got, tc.expected)
		}
	}
}
