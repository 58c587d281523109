// Package web serves user pages backed by the mapper layer. Responses are
// rendered into a buffer first so a failed render never leaves a partial
// body on the wire.
package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"maragu.dev/gomponents"
)

// IOError reports a template target that cannot be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Forward renders responses from template files under Dir or from
// gomponents nodes.
type Forward struct {
	Dir    string
	Logger *slog.Logger
}

// NewForward creates a Forward rooted at dir. A nil logger discards output.
func NewForward(dir string, logger *slog.Logger) *Forward {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Forward{Dir: dir, Logger: logger}
}

// SendFile renders the template at target (relative to Dir) with data and
// writes it with status 200. The response is left untouched when the target
// is missing or rendering fails.
func (f *Forward) SendFile(w http.ResponseWriter, target string, data any) error {
	path, err := f.resolve(target)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return &IOError{Path: target, Err: err}
	}
	if info.IsDir() {
		return &IOError{Path: target, Err: fs.ErrInvalid}
	}

	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", target, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", target, err)
	}

	f.Logger.Debug("forward file", "target", target, "bytes", buf.Len())
	return flush(w, http.StatusOK, &buf)
}

// SendNode renders node and writes it with status. Nothing is written when
// rendering fails.
func (f *Forward) SendNode(w http.ResponseWriter, status int, node gomponents.Node) error {
	var buf bytes.Buffer
	if err := node.Render(&buf); err != nil {
		return fmt.Errorf("render node: %w", err)
	}
	return flush(w, status, &buf)
}

func (f *Forward) resolve(target string) (string, error) {
	if f.Dir == "" {
		return "", &IOError{Path: target, Err: errors.New("no template directory configured")}
	}
	clean := filepath.Clean(filepath.FromSlash(target))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", &IOError{Path: target, Err: fs.ErrPermission}
	}
	return filepath.Join(f.Dir, clean), nil
}

func flush(w http.ResponseWriter, status int, buf *bytes.Buffer) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
