package pipeline

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
)

// Workspace is a request-exclusive temporary directory holding the
// downloaded source, intermediate segments, and the final artifact. It is
// created per pipeline run and must be removed on every exit path.
type Workspace struct {
	ID  string
	Dir string
}

// NewWorkspace creates a uniquely-named directory under baseDir.
func NewWorkspace(baseDir string) (*Workspace, error) {
	id := uuid.NewString()
	dir := filepath.Join(baseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Workspace{ID: id, Dir: dir}, nil
}

// Path returns the absolute path for a file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Remove deletes the workspace and everything in it. Safe to call more
// than once; removal failure is logged, not returned, since callers run
// it on paths that already carry an error.
func (w *Workspace) Remove() {
	if w == nil || w.Dir == "" {
		return
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		logging.Warn("Failed to remove workspace %s: %v", w.Dir, err)
		return
	}
	logging.Debug("Removed workspace %s", w.ID)
}
