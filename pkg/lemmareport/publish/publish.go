// Package publish writes a rendered report to its destination.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
)

// DefaultPlaceholder is the comment marking where the report goes in a
// host page: <!--DYNAMIC_SECTION_CHART-->.
const DefaultPlaceholder = "DYNAMIC_SECTION_CHART"

// Publisher makes rendered content available to readers.
type Publisher interface {
	Publish(ctx context.Context, content []byte) error
}

// FilePublisher writes content to OutputPath. When TemplatePath is set the
// content replaces the placeholder comment in a copy of the template; the
// template file itself is never modified. Hook, if non-empty, runs after a
// successful write with the output directory as working directory.
type FilePublisher struct {
	TemplatePath string
	OutputPath   string
	Placeholder  string
	Hook         []string
	Logger       *slog.Logger
}

// Publish implements Publisher.
func (p *FilePublisher) Publish(ctx context.Context, content []byte) error {
	if p.OutputPath == "" {
		return fmt.Errorf("publish: no output path: %w", internalerr.ErrInvalidConfig)
	}
	out := content
	if p.TemplatePath != "" {
		tmpl, err := os.ReadFile(p.TemplatePath)
		if err != nil {
			return fmt.Errorf("read template %s: %w: %w", p.TemplatePath, internalerr.ErrInvalidConfig, err)
		}
		placeholder := p.Placeholder
		if placeholder == "" {
			placeholder = DefaultPlaceholder
		}
		out, err = Inject(tmpl, placeholder, content)
		if err != nil {
			return fmt.Errorf("template %s: %w", p.TemplatePath, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WriteAtomic(p.OutputPath, out); err != nil {
		return fmt.Errorf("%w: %w", internalerr.ErrPublish, err)
	}
	p.logger().Info("report written", "path", p.OutputPath, "bytes", len(out))

	if len(p.Hook) > 0 {
		if err := p.runHook(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *FilePublisher) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *FilePublisher) runHook(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, p.Hook[0], p.Hook[1:]...)
	cmd.Dir = filepath.Dir(p.OutputPath)
	cmd.Env = append(os.Environ(), "LEMMA_REPORT_OUTPUT="+p.OutputPath)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("hook %q: %w: %w (output: %s)",
			strings.Join(p.Hook, " "), internalerr.ErrPublish, err, strings.TrimSpace(combined.String()))
	}
	p.logger().Info("publish hook finished", "hook", p.Hook[0])
	return nil
}

// Inject returns a copy of page with the first comment whose trimmed text
// equals placeholder replaced by fragment. The comment is found with an HTML
// tokenizer, so look-alike text inside scripts or attributes is ignored.
func Inject(page []byte, placeholder string, fragment []byte) ([]byte, error) {
	start, end, err := findComment(page, placeholder)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(page)-(end-start)+len(fragment))
	out = append(out, page[:start]...)
	out = append(out, fragment...)
	out = append(out, page[end:]...)
	return out, nil
}

func findComment(page []byte, placeholder string) (int, int, error) {
	z := html.NewTokenizer(bytes.NewReader(page))
	offset := 0
	for {
		tt := z.Next()
		raw := len(z.Raw())
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return 0, 0, fmt.Errorf("tokenize: %w: %w", internalerr.ErrInvalidConfig, err)
			}
			return 0, 0, fmt.Errorf("placeholder <!--%s--> not found: %w", placeholder, internalerr.ErrInvalidConfig)
		case html.CommentToken:
			if strings.TrimSpace(z.Token().Data) == placeholder {
				return offset, offset + raw, nil
			}
		}
		offset += raw
	}
}

// WriteAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partial file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
