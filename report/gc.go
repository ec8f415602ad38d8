package report

import (
	"context"
	"os"

	"github.com/projecteru2/dsfetch/gc"
)

// GCModule collects the records of datasets whose directory was removed.
func (s *Store) GCModule() gc.Module[[]string] {
	return gc.Module[[]string]{
		Name:   "report",
		Locker: s.locker,
		ReadDB: func(_ context.Context) ([]string, error) {
			var gone []string
			err := s.store.Read(func(idx *Index) error {
				for dataset := range idx.Runs {
					if _, err := os.Stat(s.conf.DatasetDir(dataset)); os.IsNotExist(err) {
						gone = append(gone, dataset)
					}
				}
				return nil
			})
			return gone, err
		},
		Resolve: func(gone []string, _ map[string]any) []string { return gone },
		Collect: func(_ context.Context, ids []string) error {
			return s.store.Write(func(idx *Index) error {
				for _, dataset := range ids {
					delete(idx.Runs, dataset)
				}
				return nil
			})
		},
	}
}

// RegisterGC registers the report module with o.
func (s *Store) RegisterGC(o *gc.Orchestrator) {
	gc.Register(o, s.GCModule())
}
