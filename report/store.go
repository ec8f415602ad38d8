package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/projecteru2/dsfetch/config"
	"github.com/projecteru2/dsfetch/lock"
	"github.com/projecteru2/dsfetch/lock/flock"
	"github.com/projecteru2/dsfetch/storage"
	storejson "github.com/projecteru2/dsfetch/storage/json"
)

// Index is the on-disk layout of runs.json: the last run per dataset.
type Index struct {
	Runs map[string]*Run `json:"runs"`
}

// Init implements storage.Initer.
func (i *Index) Init() {
	if i.Runs == nil {
		i.Runs = make(map[string]*Run)
	}
}

// Store persists run records under the output root.
type Store struct {
	conf   *config.Config
	locker lock.Locker
	store  storage.Store[Index]
}

// NewStore opens the run report of conf.RootDir.
func NewStore(conf *config.Config) (*Store, error) {
	if err := conf.EnsureStateDirs(); err != nil {
		return nil, err
	}
	locker := flock.New(conf.ReportLock())
	return &Store{
		conf:   conf,
		locker: locker,
		store:  storejson.New[Index](conf.ReportFile(), locker),
	}, nil
}

// Save replaces the last run of run.Dataset.
func (s *Store) Save(ctx context.Context, run *Run) error {
	if err := s.store.Update(ctx, func(idx *Index) error {
		idx.Runs[run.Dataset] = run
		return nil
	}); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// Last returns the most recent run of dataset, or nil when none was recorded.
func (s *Store) Last(ctx context.Context, dataset string) (*Run, error) {
	var run *Run
	err := s.store.With(ctx, func(idx *Index) error {
		run = idx.Runs[dataset]
		return nil
	})
	return run, err
}

// All returns the last run of every dataset, ordered by dataset name.
func (s *Store) All(ctx context.Context) ([]*Run, error) {
	var runs []*Run
	err := s.store.With(ctx, func(idx *Index) error {
		for _, r := range idx.Runs {
			runs = append(runs, r)
		}
		return nil
	})
	sort.Slice(runs, func(i, j int) bool { return runs[i].Dataset < runs[j].Dataset })
	return runs, err
}

// Forget drops the run of dataset. Missing datasets are ignored.
func (s *Store) Forget(ctx context.Context, dataset string) error {
	return s.store.Update(ctx, func(idx *Index) error {
		delete(idx.Runs, dataset)
		return nil
	})
}
