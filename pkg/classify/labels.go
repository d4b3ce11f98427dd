package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// metadata is the label descriptor shipped next to the model. Labels are
// either plain strings or objects carrying a class_name.
type metadata struct {
	Labels []json.RawMessage `json:"labels"`
}

type labelObject struct {
	ClassName string `json:"class_name"`
	Name      string `json:"name"`
}

// LoadLabels reads the label list from a metadata file.
func LoadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelMissing, path)
		}
		return nil, fmt.Errorf("classify: read metadata: %w", err)
	}
	labels, err := ParseLabels(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return labels, nil
}

// ParseLabels decodes metadata JSON into an ordered label list.
func ParseLabels(data []byte) ([]string, error) {
	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMetadata, err)
	}
	if len(meta.Labels) == 0 {
		return nil, ErrNoLabels
	}

	labels := make([]string, 0, len(meta.Labels))
	for i, raw := range meta.Labels {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			labels = append(labels, strings.TrimSpace(s))
			continue
		}

		var obj labelObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("%w: label %d is neither a string nor an object", ErrBadMetadata, i)
		}
		name := obj.ClassName
		if name == "" {
			name = obj.Name
		}
		if name == "" {
			return nil, fmt.Errorf("%w: label %d has no class_name", ErrBadMetadata, i)
		}
		labels = append(labels, strings.TrimSpace(name))
	}
	return labels, nil
}

// labelFor returns the label for a class index, or "Class <id>" when the
// metadata is shorter than the network output.
func labelFor(labels []string, id int) string {
	if id >= 0 && id < len(labels) && labels[id] != "" {
		return labels[id]
	}
	return fmt.Sprintf("Class %d", id)
}
