package pathcheck

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	root := "/home/dev/project"

	tests := []struct {
		name string
		path string
		want error
	}{
		{"relative file", "src/main.go", nil},
		{"dot path", "./README.md", nil},
		{"absolute inside root", "/home/dev/project/go.mod", nil},
		{"empty", "", ErrInvalidPath},
		{"null byte", "src/ma\x00in.go", ErrInvalidPath},
		{"parent escape", "../secrets.txt", ErrOutsideRoot},
		{"nested escape", "src/../../other/file", ErrOutsideRoot},
		{"absolute outside root", "/etc/passwd", ErrOutsideRoot},
		{"root itself", ".", nil},
		{"sneaky prefix sibling", "/home/dev/project-evil/x", ErrOutsideRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.path, root)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate(%q) = %v, want %v", tt.path, err, tt.want)
			}
		})
	}
}
