package codec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"folio/internal/geometry"
)

// Fake is a Codec for tests: it records calls, reports fixed dimensions, and
// materializes split halves as real files so filesystem-level assertions
// work. Safe for concurrent use.
type Fake struct {
	// Dims is returned by Decode for every path.
	Dims Dimensions
	// Err, when set, fails every call.
	Err error

	mu      sync.Mutex
	decodes []string
	applied map[string][]Edits
	splits  []string
	copies  [][2]string
}

// NewFake returns a fake reporting the given dimensions.
func NewFake(w, h int) *Fake {
	return &Fake{Dims: Dimensions{W: w, H: h}, applied: map[string][]Edits{}}
}

func (f *Fake) Decode(ctx context.Context, path string) (Dimensions, error) {
	if f.Err != nil {
		return Dimensions{}, f.Err
	}
	if _, err := os.Stat(path); err != nil {
		return Dimensions{}, err
	}
	f.mu.Lock()
	f.decodes = append(f.decodes, path)
	f.mu.Unlock()
	return f.Dims, nil
}

func (f *Fake) Apply(ctx context.Context, path string, edits Edits) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	f.applied[path] = append(f.applied[path], edits)
	f.mu.Unlock()
	return nil
}

func (f *Fake) SaveCopy(ctx context.Context, src, dst string) error {
	if f.Err != nil {
		return f.Err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	f.mu.Lock()
	f.copies = append(f.copies, [2]string{src, dst})
	f.mu.Unlock()
	return nil
}

func (f *Fake) Split(ctx context.Context, src string, layout geometry.SplitLayout, destDir string) ([]string, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	ext := filepath.Ext(src)
	var out []string
	for _, side := range []struct {
		rect   geometry.SplitRect
		suffix string
	}{
		{layout.Left, "L"},
		{layout.Right, "R"},
	} {
		if !side.rect.Enabled {
			continue
		}
		dst := filepath.Join(destDir, fmt.Sprintf("%s_%s%s", base, side.suffix, ext))
		if err := os.WriteFile(dst, []byte("split of "+src), 0o644); err != nil {
			return nil, err
		}
		out = append(out, dst)
	}

	f.mu.Lock()
	f.splits = append(f.splits, src)
	f.mu.Unlock()
	return out, nil
}

// DecodeCalls returns the paths Decode was called with, in order.
func (f *Fake) DecodeCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.decodes...)
}

// Applied returns the edits recorded for path.
func (f *Fake) Applied(path string) []Edits {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Edits(nil), f.applied[path]...)
}

// Copies returns the (src, dst) pairs SaveCopy was called with, in order.
func (f *Fake) Copies() [][2]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]string(nil), f.copies...)
}

// SplitCalls returns the source paths Split was called with, in order.
func (f *Fake) SplitCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.splits...)
}
