package scraper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactSink stores debug material captured on every extraction attempt.
type ArtifactSink interface {
	Save(ctx context.Context, name string, data []byte, contentType string) error
}

// ArtifactName builds debug_<category>_<attempt>.<ext>, with path separators
// in the category replaced.
func ArtifactName(category string, attempt int, ext string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, category)
	return fmt.Sprintf("debug_%s_%d.%s", safe, attempt, ext)
}

// FileSink writes artifacts into a local directory, overwriting earlier files
// of the same name.
type FileSink struct {
	Dir string
}

func (s FileSink) Save(_ context.Context, name string, data []byte, _ string) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0644)
}

// MultiSink fans out to every sink and joins their errors.
type MultiSink []ArtifactSink

func (m MultiSink) Save(ctx context.Context, name string, data []byte, contentType string) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, name, data, contentType); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type NopSink struct{}

func (NopSink) Save(context.Context, string, []byte, string) error { return nil }
