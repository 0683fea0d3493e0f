// Package htmlrender renders untrusted HTML documents to PDF or PNG with
// headless Chrome, starting one short-lived browser per request.
//
// # Rendering
//
// For one-off renders use the package-level helper:
//
//	res, err := htmlrender.Render(ctx, &htmlrender.RenderRequest{
//	    Format: htmlrender.FormatPDF,
//	    HTML:   "<h1>Hello</h1>",
//	})
//
// A long-running process creates a [Renderer] once and shares it. The
// Renderer holds no browser; every [Renderer.Render] call launches its own
// and closes it before returning, on success, failure or cancellation:
//
//	r, err := htmlrender.NewRenderer(htmlrender.WithNoSandbox())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	res, err := r.Render(ctx, req)
//
// A render runs four stages, each under its own deadline:
//
//  1. launch a fresh browser sized to the viewport
//  2. install the request block rule and load the HTML, waiting only for
//     the document structure
//  3. wait a bounded time for images, never failing the render
//  4. capture the PDF, the full page, a clip rectangle or one element
//
// # Requests
//
// [RenderRequest] accepts a structured options object alongside two older
// request shapes. [Normalize] resolves all of them against [Defaults] into a
// single [EffectiveOptions], clamping viewport, scale and timeouts to safe
// ranges.
//
// PDF margins are CSS lengths ("12mm", "0.5in", "20px"). A
// [QRCodeOptions] replaces a placeholder in the HTML with an inline PNG data
// URI before the document is loaded.
//
// # Errors
//
// Every error returned by Render is an [*Error] with a [Kind]. Match kinds
// with errors.Is against the sentinels, or read them with [KindOf]:
//
//	if errors.Is(err, htmlrender.ErrSelectorNotFound) {
//	    // 422
//	}
//
// # Results
//
// A [Result] gives flexible access to the artifact:
//
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.Reader()                      // *bytes.Reader
//	res.WriteTo(w)                    // io.WriterTo
//	res.WriteToFile("out.pdf", 0o644) // write to disk
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload].
// The browser runs with --no-sandbox unless [WithSandbox] is given.
// The chromedp backend is the default; [BackendRod] drives the browser with
// go-rod instead.
package htmlrender
