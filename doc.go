// Package canvaspdf saves documents rendered by browser-hosted viewers,
// one page at a time onto a single <canvas>, as PDF files.
//
// An [Exporter] walks the document shown in a browser tab, screenshots
// the canvas for every page, trims the blank border of each frame, and
// assembles the frames into one PDF with a page per frame:
//
//	b, err := canvaspdf.Launch(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	s, err := b.Open(ctx, viewerURL, "canvas")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := canvaspdf.NewExporter().Export(ctx, s, 12, "report.pdf")
//
// # Traversal
//
// The canvas aspect ratio decides how the document is traversed. Wide
// canvases (width/height above [SlideAspectRatio]) are slides: the canvas
// container is scrolled by the canvas height between pages. Other
// documents are paged through the viewer's "next page" control, found by
// its accessible label (see [WithNextPageLabels]).
//
// When the next-page control disappears before the requested page count
// is reached, the pages captured so far are still saved and the result
// reports [Incomplete]. When the canvas itself disappears the export fails
// with [ErrSurfaceLost] and nothing is written.
//
// # Browsers
//
// Any implementation of [Session] can drive an export. [NewChromedpSession]
// wraps a chromedp tab context and [NewRodSession] a Rod page; [Launch]
// starts Chrome with either driver, optionally downloading Chromium first
// ([WithAutoDownload]).
//
// # Side-artifacts
//
// [WithArtifacts] keeps the raw screenshots, the trimmed frames, or a
// vertical collage of all frames next to the PDF.
package canvaspdf
