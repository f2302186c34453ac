package canvaspdf

import (
	"context"
	"fmt"

	"github.com/porticus-lab/go-canvas-pdf/internal/imaging"
)

// Exporter captures documents shown in a browser viewer and writes them
// as PDF files.
//
// An Exporter holds configuration only; the browser is supplied per call
// as a [Session]. Traversals mutate the viewer, so an Exporter must not
// drive the same Session from more than one goroutine.
type Exporter struct {
	cfg  exportConfig
	trim func(path string) (bool, error)
}

// NewExporter creates an Exporter with the given options.
func NewExporter(opts ...Option) *Exporter {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Exporter{cfg: cfg, trim: imaging.Trim}
}

// Result describes a written document.
type Result struct {
	// Path is the destination of the PDF.
	Path string
	// Pages is the number of pages written.
	Pages int
	// Status is [Incomplete] when navigation stopped before the last
	// requested page.
	Status Status
	// Strategy is the traversal strategy that was used.
	Strategy Strategy
	// Artifacts lists the side-artifacts written.
	Artifacts Artifacts
	// ArtifactErr joins the side-artifact failures. The PDF is intact
	// regardless.
	ArtifactErr error
}

// Export captures totalPages pages from s and writes them as a PDF to dst.
//
// A run stopped early by a missing next-page control still writes the
// pages captured so far and reports [Incomplete]. Fatal traversal errors
// and write failures return an error, and no document is written.
// Side-artifacts are produced after the document is on disk; their
// failures are reported in [Result.ArtifactErr].
func (e *Exporter) Export(ctx context.Context, s Session, totalPages int, dst string) (*Result, error) {
	log := e.cfg.logger

	ws, err := newWorkspace(e.cfg.workDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Warn().Err(err).Str("dir", ws.dir).Msg("could not remove workspace")
		}
	}()

	tr, err := e.Traverse(ctx, s, totalPages, ws.dir)
	if err != nil {
		return nil, err
	}
	if len(tr.Pages) == 0 {
		return nil, ErrNoPages
	}

	log.Info().Str("path", dst).Int("pages", len(tr.Pages)).Msg("saving document")
	doc, err := Assemble(tr.CroppedPaths())
	if err != nil {
		return nil, err
	}
	if err := doc.WriteToFile(dst, 0o644); err != nil {
		log.Error().Err(err).Str("path", dst).Msg("error saving PDF")
		return nil, err
	}

	res := &Result{
		Path:     dst,
		Pages:    doc.Pages(),
		Status:   tr.Status,
		Strategy: tr.Strategy,
	}
	res.Artifacts, res.ArtifactErr = PreserveSideArtifacts(e.cfg.artifacts, dst, tr.Pages)
	if res.ArtifactErr != nil {
		log.Warn().Err(res.ArtifactErr).Msg("side-artifacts incomplete")
	}
	if res.Artifacts.RawDir != "" {
		log.Info().Str("dir", res.Artifacts.RawDir).Msg("raw images kept")
	}
	if res.Artifacts.ImagesDir != "" {
		log.Info().Str("dir", res.Artifacts.ImagesDir).Msg("images kept")
	}
	if res.Artifacts.CollageImg != "" {
		log.Info().Str("path", res.Artifacts.CollageImg).Msg("collage saved")
	}
	log.Info().Stringer("status", res.Status).Msg("PDF export completed")
	return res, nil
}

// Export captures a document using a temporary [Exporter].
func Export(ctx context.Context, s Session, totalPages int, dst string, opts ...Option) (*Result, error) {
	if totalPages <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageCount, totalPages)
	}
	return NewExporter(opts...).Export(ctx, s, totalPages, dst)
}
