package datasets

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/projecteru2/dsfetch/archive"
	"github.com/projecteru2/dsfetch/config"
	"github.com/projecteru2/dsfetch/gc"
	"github.com/projecteru2/dsfetch/lock/flock"
	"github.com/projecteru2/dsfetch/utils"
)

// StagingGCModule collects extraction staging directories left behind by
// an interrupted fetch. It shares the fetch lock, so while it runs no
// extraction can be in flight and every staging directory is abandoned.
// Extract targets may sit at any depth of a dataset directory, so the
// whole tree is searched; staging directories are not descended into.
func StagingGCModule(conf *config.Config) gc.Module[[]string] {
	return gc.Module[[]string]{
		Name:   "staging",
		Locker: flock.New(conf.FetchLock()),
		ReadDB: func(_ context.Context) ([]string, error) {
			return findStaging(conf.RootDir)
		},
		Resolve: func(dirs []string, _ map[string]any) []string { return dirs },
		Collect: collectStaging,
	}
}

// RegisterGC registers the staging module with o.
func RegisterGC(o *gc.Orchestrator, conf *config.Config) {
	gc.Register(o, StagingGCModule(conf))
}

func findStaging(root string) ([]string, error) {
	root = filepath.Clean(root)
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			// unreadable subtree: nothing we could remove there either
			if path != root {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if filepath.Dir(path) == root && d.Name() == config.StateDirName {
			return fs.SkipDir
		}
		if archive.IsStaging(d.Name()) {
			found = append(found, path)
			return fs.SkipDir
		}
		return nil
	})
	return found, err
}

// collectStaging removes the staging dirs parent by parent.
func collectStaging(ctx context.Context, dirs []string) error {
	byParent := map[string]map[string]bool{}
	for _, dir := range dirs {
		parent := filepath.Dir(dir)
		if byParent[parent] == nil {
			byParent[parent] = map[string]bool{}
		}
		byParent[parent][filepath.Base(dir)] = true
	}
	var errs []error
	for parent, names := range byParent {
		_, rmErrs := utils.RemoveMatching(ctx, parent, func(e os.DirEntry) bool {
			return e.IsDir() && names[e.Name()]
		})
		errs = append(errs, rmErrs...)
	}
	return errors.Join(errs...)
}
