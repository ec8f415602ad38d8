package datasets

import (
	"context"
	"time"

	"github.com/projecteru2/core/log"
	"golang.org/x/sync/errgroup"

	"github.com/projecteru2/dsfetch/fetch"
	"github.com/projecteru2/dsfetch/types"
	"github.com/projecteru2/dsfetch/utils"
)

// VerifyLocal hashes the local file of every entry of m with at most
// poolSize files in flight. It never touches the network and never
// modifies a file; corrupt files are only reported.
func VerifyLocal(ctx context.Context, m *Manifest, poolSize int) ([]types.LocalFile, error) {
	logger := log.WithFunc("datasets.VerifyLocal")

	files := make([]types.LocalFile, len(m.Entries))
	g, ctx := errgroup.WithContext(ctx)
	if poolSize > 0 {
		g.SetLimit(poolSize)
	}
	for i, e := range m.Entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lf := types.LocalFile{Name: e.Name, Path: e.Path, State: types.StateAbsent, CheckedAt: time.Now()}
			if info, ok := utils.RegularFile(e.Path); ok {
				lf.Size = info.Size()
				match, got, err := fetch.VerifyFile(e.Path, e.MD5)
				if err != nil {
					return err
				}
				lf.State = types.StateVerified
				if !match {
					lf.State = types.StateCorrupt
					logger.Warnf(ctx, "%s: md5 %s, want %s", e.Name, got, e.MD5)
				}
				lf.CheckedAt = time.Now()
			}
			files[i] = lf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
