package classify

import (
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

// findModelDir looks for an exported model next to the repository root.
func findModelDir() string {
	if dir := os.Getenv("MODEL_DIR"); dir != "" {
		return dir
	}
	for _, dir := range []string{"models/pose", "../../models/pose"} {
		if _, err := os.Stat(filepath.Join(dir, "metadata.json")); err == nil {
			return dir
		}
	}
	return ""
}

func TestNetClassifier_Classify(t *testing.T) {
	dir := findModelDir()
	if dir == "" {
		t.Skip("pose model not found, skipping test")
	}

	cfg := DefaultModelConfig()
	cfg.Dir = dir
	c, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer c.Close()

	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	p, err := c.Classify(img)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		t.Errorf("Confidence out of range: %f", p.Confidence)
	}
	if len(p.Scores) == 0 {
		t.Error("expected scores")
	}
}

func TestNetClassifier_EmptyImage(t *testing.T) {
	c := &NetClassifier{}
	img := gocv.NewMat()
	defer img.Close()

	if _, err := c.Classify(img); err != ErrEmptyImage {
		t.Errorf("err = %v, want ErrEmptyImage", err)
	}
}
