package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseSplitUnit(t *testing.T) {
	tests := []struct {
		input   string
		want    SplitUnit
		wantErr bool
	}{
		{"size", SplitBySize, false},
		{"COUNT", SplitByCount, false},
		{" by-size ", SplitBySize, false},
		{"by-count", SplitByCount, false},
		{"weight", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSplitUnit(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownSplitUnit) {
					t.Errorf("ParseSplitUnit(%q) error = %v, want ErrUnknownSplitUnit", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseSplitUnit(%q) = %v, %v, want %v", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{SplitThenZip, ZipThenSplit} {
		got, err := ParseStrategy(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %v, %v", s.String(), got, err)
		}
	}

	if _, err := ParseStrategy("zip"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("ParseStrategy(zip) error = %v, want ErrUnknownStrategy", err)
	}
}

func TestParseDirSplitMode(t *testing.T) {
	tests := []struct {
		input string
		want  DirSplitMode
	}{
		{"", DirModeDefault},
		{"compress-split-store", DirModeCompressSplitStore},
		{"Store-Split-Compress", DirModeStoreSplitCompress},
	}

	for _, tt := range tests {
		got, err := ParseDirSplitMode(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("ParseDirSplitMode(%q) = %v, %v, want %v", tt.input, got, err, tt.want)
		}
	}

	if _, err := ParseDirSplitMode("sideways"); !errors.Is(err, ErrUnknownDirMode) {
		t.Errorf("ParseDirSplitMode(sideways) error = %v, want ErrUnknownDirMode", err)
	}
}

func TestSplitRequest_Validate(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.bin")
	if err := os.WriteFile(input, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	level := func(n int) *int { return &n }
	valid := SplitRequest{
		InputPath: input,
		OutputDir: dir,
		Unit:      SplitBySize,
		Size:      10,
	}

	tests := []struct {
		name   string
		mutate func(*SplitRequest)
		want   error
	}{
		{"valid", func(*SplitRequest) {}, nil},
		{"missing input", func(r *SplitRequest) { r.InputPath = "" }, ErrMissingInput},
		{"missing output", func(r *SplitRequest) { r.OutputDir = "" }, ErrMissingOutput},
		{"absent input", func(r *SplitRequest) { r.InputPath = filepath.Join(dir, "nope") }, ErrInputNotFound},
		{"zero size", func(r *SplitRequest) { r.Size = 0 }, ErrZeroSize},
		{"zero count", func(r *SplitRequest) { r.Unit = SplitByCount }, ErrZeroCount},
		{"count ignores size", func(r *SplitRequest) { r.Unit, r.Size, r.Count = SplitByCount, 0, 3 }, nil},
		{"unit", func(r *SplitRequest) { r.Unit = SplitUnit(9) }, ErrUnknownSplitUnit},
		{"strategy", func(r *SplitRequest) { r.Strategy = Strategy(9) }, ErrUnknownStrategy},
		{"dir mode", func(r *SplitRequest) { r.DirMode = DirSplitMode(9) }, ErrUnknownDirMode},
		{"level low", func(r *SplitRequest) { r.CompressionLevel = level(-2) }, ErrInvalidLevel},
		{"level high", func(r *SplitRequest) { r.CompressionLevel = level(10) }, ErrInvalidLevel},
		{"level ok", func(r *SplitRequest) { r.CompressionLevel = level(9) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.want == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSplitRequest_Value(t *testing.T) {
	req := SplitRequest{Unit: SplitBySize, Size: 100, Count: 4}
	if got := req.Value(); got != 100 {
		t.Errorf("Value() = %d, want 100", got)
	}
	req.Unit = SplitByCount
	if got := req.Value(); got != 4 {
		t.Errorf("Value() = %d, want 4", got)
	}
}

func TestRestoreRequest_Validate(t *testing.T) {
	dir := t.TempDir()

	if err := (RestoreRequest{InputPath: dir, OutputDir: dir}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := (RestoreRequest{OutputDir: dir}).Validate(); !errors.Is(err, ErrMissingInput) {
		t.Errorf("Validate() = %v, want ErrMissingInput", err)
	}
	if err := (RestoreRequest{InputPath: dir}).Validate(); !errors.Is(err, ErrMissingOutput) {
		t.Errorf("Validate() = %v, want ErrMissingOutput", err)
	}
	err := (RestoreRequest{InputPath: dir, OutputDir: dir, Strategy: Strategy(5)}).Validate()
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Validate() = %v, want ErrUnknownStrategy", err)
	}
}

func TestProgressEvent_Fraction(t *testing.T) {
	tests := []struct {
		processed, total uint64
		want             float64
		done             bool
	}{
		{0, 0, 0, false},
		{0, 100, 0, false},
		{25, 100, 0.25, false},
		{100, 100, 1, true},
		{150, 100, 1, true},
	}

	for _, tt := range tests {
		ev := ProgressEvent{ProcessedBytes: tt.processed, TotalBytes: tt.total}
		if got := ev.Fraction(); got != tt.want {
			t.Errorf("Fraction(%d/%d) = %v, want %v", tt.processed, tt.total, got, tt.want)
		}
		if got := ev.Done(); got != tt.done {
			t.Errorf("Done(%d/%d) = %v, want %v", tt.processed, tt.total, got, tt.done)
		}
	}
}
