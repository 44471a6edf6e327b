// Package pipeline turns a downloaded report archive into the single
// canonical artifact file: unzip, locate the payload, rename, move to the
// destination folder, and clean up everything else.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"portalsync/internal/portal"
)

const (
	tempDirName   = "temp_extracted"
	canonicalBase = "Export"
)

// Pipeline processes downloaded archives. DownloadDir holds the archive and
// the intermediate canonical file; DestinationDir, when set, is where the
// artifact finally lands.
type Pipeline struct {
	Log            *slog.Logger
	DownloadDir    string
	DestinationDir string
}

// Run processes archivePath and returns the final artifact path. The temp
// extraction directory is removed whether or not the run succeeds, and the
// original archive is deleted after a successful extraction.
func (p *Pipeline) Run(ctx context.Context, archivePath string) (string, error) {
	tempDir := filepath.Join(p.DownloadDir, tempDirName)
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			p.Log.Warn("temp extraction dir cleanup failed", "dir", tempDir, "error", err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := Unzip(archivePath, tempDir); err != nil {
		return "", &portal.Error{Kind: portal.KindFileSystem, Op: "pipeline.unzip", Err: err}
	}
	p.Log.Info("archive extracted", "archive", archivePath, "dir", tempDir)

	mainFile, err := LocateMainFile(tempDir)
	if err != nil {
		return "", &portal.Error{Kind: portal.KindFileSystem, Op: "pipeline.locate", Err: err}
	}

	canonical := filepath.Join(p.DownloadDir, canonicalBase+filepath.Ext(mainFile))
	if err := moveFile(mainFile, canonical); err != nil {
		return "", &portal.Error{Kind: portal.KindFileSystem, Op: "pipeline.rename", Err: err}
	}
	p.Log.Info("main file renamed", "from", mainFile, "to", canonical)

	if err := os.Remove(archivePath); err != nil {
		p.Log.Warn("could not delete original archive", "archive", archivePath, "error", err)
	}

	final := canonical
	if p.DestinationDir != "" {
		final, err = MoveToDestination(canonical, p.DestinationDir)
		if err != nil {
			return "", &portal.Error{Kind: portal.KindFileSystem, Op: "pipeline.move", Err: err}
		}
		p.Log.Info("artifact moved", "path", final)
	}
	return final, nil
}
