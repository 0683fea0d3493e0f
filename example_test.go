package htmlrender_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	htmlrender "github.com/porticus-lab/go-html-render"
)

func Example() {
	r, err := htmlrender.NewRenderer(htmlrender.WithNoSandbox())
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	// Full-page PNG at the default 1280x720 viewport, scale 2.
	res, err := r.Render(context.Background(), &htmlrender.RenderRequest{
		Format: htmlrender.FormatPNG,
		HTML:   "<h1>Hello World</h1>",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Generated %s: %d bytes\n", res.ContentType(), res.Len())
}

func Example_pdf() {
	landscape := true
	req := &htmlrender.RenderRequest{
		Format: htmlrender.FormatPDF,
		HTML: `<!DOCTYPE html>
<html><body>
  <h1 style="color: navy;">Landscape Report</h1>
  <p>This PDF uses Letter size in landscape orientation.</p>
</body></html>`,
		Options: &htmlrender.RenderOptions{PDF: &htmlrender.PDFOptions{
			Format:    "letter",
			Landscape: &landscape,
			Margin:    &htmlrender.MarginLength{Top: "20mm", Right: "25mm", Bottom: "20mm", Left: "25mm"},
		}},
	}

	res, err := htmlrender.Render(context.Background(), req, htmlrender.WithNoSandbox())
	if err != nil {
		log.Fatal(err)
	}
	if err := res.WriteToFile("/tmp/report.pdf", 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Println("PDF saved to /tmp/report.pdf")
}

func Example_selector() {
	r, err := htmlrender.NewRenderer(htmlrender.WithNoSandbox())
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	res, err := r.Render(context.Background(), &htmlrender.RenderRequest{
		Format: htmlrender.FormatPNG,
		HTML: `<div id="ticket" style="width: 400px; padding: 1rem">
  <h2>Boarding pass</h2>
  <img src="{{QR_CODE}}" width="160">
</div>`,
		Options: &htmlrender.RenderOptions{
			Selector: "#ticket",
			QRCode:   &htmlrender.QRCodeOptions{Content: "PNR-7F3K2Q"},
		},
	})
	switch {
	case errors.Is(err, htmlrender.ErrSelectorNotFound):
		log.Fatal("ticket element missing")
	case err != nil:
		log.Fatal(err)
	}

	fmt.Printf("Ticket image: %d bytes\n", res.Len())
}
