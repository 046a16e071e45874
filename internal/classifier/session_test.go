package classifier

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMetadata(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model_metadata.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write metadata file: %v", err)
	}
	return path
}

func TestLoadMetadata_Valid(t *testing.T) {
	path := writeMetadata(t, `{
		"model_name": "efficientnet_b0",
		"input_shape": [1, 3, 224, 224],
		"output_shape": [1, 2],
		"classes": ["real", "fake"],
		"image_size": 224
	}`)

	meta, err := loadMetadata(path)
	if err != nil {
		t.Fatalf("Expected metadata to load, got: %v", err)
	}
	if meta.ModelName != "efficientnet_b0" {
		t.Errorf("Expected model name efficientnet_b0, got %q", meta.ModelName)
	}
	if len(meta.InputShape) != 4 || meta.InputShape[2] != 224 {
		t.Errorf("Unexpected input shape: %v", meta.InputShape)
	}
}

func TestLoadMetadata_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{not json`},
		{"wrong class count", `{"input_shape":[1,3,224,224],"output_shape":[1,3],"classes":["a","b","c"]}`},
		{"missing shapes", `{"classes":["real","fake"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMetadata(t, tt.content)
			if _, err := loadMetadata(path); err == nil {
				t.Error("Expected metadata to be rejected")
			}
		})
	}
}

func TestLoadMetadata_MissingFile(t *testing.T) {
	if _, err := loadMetadata(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected missing metadata file to be an error")
	}
}

func TestClassIndexes(t *testing.T) {
	realIdx, fakeIdx, err := classIndexes([]string{"real", "fake"})
	if err != nil {
		t.Fatalf("Expected class lookup to succeed, got: %v", err)
	}
	if realIdx != 0 || fakeIdx != 1 {
		t.Errorf("Expected indexes 0/1, got %d/%d", realIdx, fakeIdx)
	}

	// Class order in the export is not assumed
	realIdx, fakeIdx, err = classIndexes([]string{"fake", "real"})
	if err != nil {
		t.Fatalf("Expected class lookup to succeed, got: %v", err)
	}
	if realIdx != 1 || fakeIdx != 0 {
		t.Errorf("Expected indexes 1/0, got %d/%d", realIdx, fakeIdx)
	}

	if _, _, err := classIndexes([]string{"cat", "dog"}); err == nil {
		t.Error("Expected unknown classes to be rejected")
	}
}
