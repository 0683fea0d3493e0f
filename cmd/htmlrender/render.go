package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	htmlrender "github.com/porticus-lab/go-html-render"
)

// renderFlags build the options object of a one-off render.
type renderFlags struct {
	format    string
	output    string
	width     int
	height    int
	scale     float64
	fullPage  bool
	selector  string
	waitMs    int
	pageSize  string
	landscape bool
	margin    string
	qr        string
}

func (f *renderFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.format, "format", "f", "pdf", `output format: "pdf" or "png"`)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fs.IntVar(&f.width, "width", 0, "viewport width in CSS pixels")
	fs.IntVar(&f.height, "height", 0, "viewport height in CSS pixels")
	fs.Float64Var(&f.scale, "scale", 0, "device scale factor")
	fs.BoolVar(&f.fullPage, "full-page", true, "capture the whole document (png)")
	fs.StringVar(&f.selector, "selector", "", "capture only the element matching this CSS selector (png)")
	fs.IntVar(&f.waitMs, "wait", 0, "image wait budget in milliseconds")
	fs.StringVar(&f.pageSize, "page-size", "", "paper size: a3, a4, a5, letter, legal, tabloid (pdf)")
	fs.BoolVar(&f.landscape, "landscape", false, "landscape orientation (pdf)")
	fs.StringVar(&f.margin, "margin", "", `margin on every side as a CSS length, e.g. "12mm" (pdf)`)
	fs.StringVar(&f.qr, "qr", "", "content of a QR code substituted for {{QR_CODE}}")
}

// request builds a RenderRequest carrying only the options set on the
// command line, so everything else falls back to the configured defaults.
func (f *renderFlags) request(fs *pflag.FlagSet, html string) *htmlrender.RenderRequest {
	opts := &htmlrender.RenderOptions{Viewport: &htmlrender.ViewportOptions{}}
	if fs.Changed("width") {
		opts.Viewport.Width = &f.width
	}
	if fs.Changed("height") {
		opts.Viewport.Height = &f.height
	}
	if fs.Changed("scale") {
		opts.Viewport.Scale = &f.scale
	}
	if fs.Changed("full-page") {
		opts.FullPage = &f.fullPage
	}
	if fs.Changed("wait") {
		opts.WaitBudgetMs = &f.waitMs
	}
	opts.Selector = f.selector

	if fs.Changed("page-size") || fs.Changed("landscape") || fs.Changed("margin") {
		opts.PDF = &htmlrender.PDFOptions{Format: f.pageSize}
		if fs.Changed("landscape") {
			opts.PDF.Landscape = &f.landscape
		}
		if f.margin != "" {
			opts.PDF.Margin = &htmlrender.MarginLength{Top: f.margin, Right: f.margin, Bottom: f.margin, Left: f.margin}
		}
	}
	if f.qr != "" {
		opts.QRCode = &htmlrender.QRCodeOptions{Content: f.qr}
	}

	return &htmlrender.RenderRequest{
		Format:  htmlrender.Format(strings.ToLower(f.format)),
		HTML:    html,
		Options: opts,
	}
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	var (
		ef engineFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [flags] <file.html|->",
		Short: "Render one HTML file to PDF or PNG",
		Example: `  htmlrender render -f pdf -o invoice.pdf invoice.html
  htmlrender render -f png --selector '#chart' -o chart.png report.html
  cat page.html | htmlrender render -f png - > page.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g, cmd.Flags(), &ef)
			if err != nil {
				return err
			}
			html, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			ctx := htmlrender.WithLogger(cmd.Context(), newLogger(g, cfg))
			r, err := newRenderer(ctx, cfg)
			if err != nil {
				return err
			}
			defer r.Close()

			res, err := r.Render(ctx, rf.request(cmd.Flags(), html))
			if err != nil {
				return err
			}
			if rf.output == "" {
				_, err = res.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := res.WriteToFile(rf.output, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", rf.output, err)
			}
			return nil
		},
	}

	ef.register(cmd.Flags())
	rf.register(cmd.Flags())
	return cmd
}

// readInput reads HTML from path, or from stdin when path is "-".
func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}
