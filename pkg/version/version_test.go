package version

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr error
	}{
		{
			name:  "two components",
			input: "10.0",
			want:  Version{Major: 10, Minor: 0, Precision: 2},
		},
		{
			name:  "two components nonzero minor",
			input: "10.1",
			want:  Version{Major: 10, Minor: 1, Precision: 2},
		},
		{
			name:  "three components",
			input: "10.1.105",
			want:  Version{Major: 10, Minor: 1, Patch: 105, Precision: 3},
		},
		{
			name:  "single component",
			input: "11",
			want:  Version{Major: 11, Precision: 1},
		},
		{
			name:  "v prefix",
			input: "v12.4",
			want:  Version{Major: 12, Minor: 4, Precision: 2},
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrEmptyVersion,
		},
		{
			name:    "too many components",
			input:   "1.2.3.4",
			wantErr: ErrTooManyComponents,
		},
		{
			name:    "non numeric",
			input:   "10.x",
			wantErr: ErrNonNumeric,
		},
		{
			name:    "trailing dot",
			input:   "10.",
			wantErr: ErrNonNumeric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		v    Version
		want string
	}{
		{"precision 1", Version{Major: 11, Precision: 1}, "11"},
		{"precision 2", Version{Major: 10, Minor: 1, Precision: 2}, "10.1"},
		{"precision 3", Version{Major: 10, Minor: 1, Patch: 105, Precision: 3}, "10.1.105"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid version")
		}
	}()
	MustParse("not-a-version")
}
