package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sqweek/dialog"

	"github.com/Altagen/Velt/pkg/fileio"
	"github.com/Altagen/Velt/pkg/workspace"
)

// picker shows a native file chooser and returns the chosen path
type picker func(dir string) (string, error)

func nativeOpen(dir string) (string, error) {
	b := dialog.File().Title("Open").
		Filter("Markdown", "md", "markdown", "mdx").
		Filter("Text", "txt").
		Filter("All files", "*")
	if dir != "" {
		b = b.SetStartDir(dir)
	}
	return b.Load()
}

func nativeSave(dir string) (string, error) {
	b := dialog.File().Title("Save As").
		Filter("Text", "txt").
		Filter("Markdown", "md", "markdown").
		Filter("All files", "*")
	if dir != "" {
		b = b.SetStartDir(dir)
	}
	return b.Save()
}

// Native implements workspace.Dialogs with the platform file chooser
type Native struct {
	store    *fileio.Store
	logger   *slog.Logger
	open     picker
	save     picker
	startDir string
}

// New creates native dialogs that read and write through store
func New(store *fileio.Store, logger *slog.Logger) *Native {
	if logger == nil {
		logger = slog.Default()
	}
	return &Native{
		store:  store,
		logger: logger,
		open:   nativeOpen,
		save:   nativeSave,
	}
}

// OpenDocument asks for a file and reads it
func (n *Native) OpenDocument(ctx context.Context) (fileio.File, error) {
	path, err := n.pick(n.open)
	if err != nil {
		return fileio.File{}, err
	}
	file, err := n.store.Read(ctx, path)
	if err != nil {
		return fileio.File{}, err
	}
	n.startDir = filepath.Dir(file.Path)
	return file, nil
}

// SaveAs asks for a destination and writes content there
func (n *Native) SaveAs(ctx context.Context, content, encoding string) (string, error) {
	path, err := n.pick(n.save)
	if err != nil {
		return "", err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := n.store.Write(ctx, path, content, encoding); err != nil {
		return "", err
	}
	n.startDir = filepath.Dir(path)
	return path, nil
}

func (n *Native) pick(fn picker) (string, error) {
	path, err := fn(n.startDir)
	if errors.Is(err, dialog.ErrCancelled) || (err == nil && path == "") {
		return "", workspace.ErrCancelled
	}
	if err != nil {
		n.logger.Error("file dialog failed", "error", err)
		return "", fmt.Errorf("file dialog: %w", err)
	}
	return filepath.Clean(path), nil
}
