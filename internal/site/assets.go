package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/starford/hookpress/internal/hook"
)

// Assets are copied from this directory under the source root to the same
// directory under the output root.
const AssetsDir = "assets"

// HookCopyAssets is the name of the built-in asset copying hook.
const HookCopyAssets = "copyAssetsToPublic"

func (s *Site) copyAssetsHook() hook.Hook {
	return hook.Hook{
		Point:       hook.PointBootstrap,
		Name:        HookCopyAssets,
		Description: "Copy files with an extension from the source assets directory to the output directory.",
		Priority:    hook.DefaultPriority,
		Run: func(ctx context.Context, pl hook.Payload) (hook.Payload, error) {
			n, err := s.CopyAssets(ctx)
			if err != nil {
				return pl, err
			}
			if n > 0 {
				s.logger.Info("site: assets copied", slog.Int("files", n))
			}
			return pl, nil
		},
	}
}

// CopyAssets copies every file under the source assets directory whose name
// has an extension. A missing assets directory copies nothing.
func (s *Site) CopyAssets(ctx context.Context) (int, error) {
	if s.srcFS == nil {
		return 0, nil
	}
	copied := 0
	err := fs.WalkDir(s.srcFS, AssetsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) == "" {
			return nil
		}
		data, err := fs.ReadFile(s.srcFS, p)
		if err != nil {
			return err
		}
		if err := s.store.Write(p, data); err != nil {
			return err
		}
		copied++
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) && copied == 0 {
		return 0, nil
	}
	if err != nil {
		return copied, fmt.Errorf("site: copy assets: %w", err)
	}
	return copied, nil
}
