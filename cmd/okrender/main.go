// Command okrender renders an SVG file to a PNG image or a PDF document.
//
// Usage:
//
//	okrender -o out.png [-font file.ttf] [-trace Debug] input.svg
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"

	"github.com/benoitkugler/okrender/svgfont"
	"github.com/benoitkugler/okrender/svgicon"
	"github.com/benoitkugler/okrender/svgpdf"
	"github.com/benoitkugler/okrender/svgraster"
)

// tracer traces with key 'okrender.cli'
func tracer() tracing.Trace {
	return tracing.Select("okrender.cli")
}

// the trace keys of the rendering packages
var traceKeys = []string{
	"okrender.cli",
	"okrender.icon",
	"okrender.text",
	"okrender.draw",
	"okrender.font",
	"okrender.raster",
	"okrender.pdf",
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{"tracing.adapter": "go"}
	for _, key := range traceKeys {
		conf["trace."+key] = "Error"
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	output := flag.String("o", "", "Output file, with a .png or .pdf extension")
	fontFile := flag.String("font", "", "TrueType or OpenType font used for text (default Go Regular)")
	tolerance := flag.Float64("tolerance", 0, "Flatness used to follow text paths")
	flag.Parse()

	level, err := traceLevel(*tlevel)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(2)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}

	if flag.NArg() != 1 || *output == "" {
		pterm.Error.Println("expected one input file and an output file")
		flag.Usage()
		os.Exit(2)
	}

	opts := &svgicon.RenderOptions{Tolerance: *tolerance}
	if *fontFile != "" {
		font, err := loadFont(*fontFile)
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(3)
		}
		opts.Provider = font
		pterm.Info.Printf("Using font %s\n", font.Name())
	}

	if err := render(flag.Arg(0), *output, opts); err != nil {
		tracer().Errorf("render: %v", err)
		pterm.Error.Println(err)
		os.Exit(4)
	}
	pterm.Info.Printf("%s written\n", *output)
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func traceLevel(s string) (tracing.TraceLevel, error) {
	switch s {
	case "Debug":
		return tracing.LevelDebug, nil
	case "Info":
		return tracing.LevelInfo, nil
	case "Error":
		return tracing.LevelError, nil
	}
	return tracing.LevelError, fmt.Errorf("invalid trace level: %s", s)
}

func loadFont(file string) (*svgfont.Font, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return svgfont.Parse(data)
}

var errOutputFormat = errors.New("output file must end with .png or .pdf")

func render(input, output string, opts *svgicon.RenderOptions) error {
	ext := strings.ToLower(filepath.Ext(output))
	if ext != ".png" && ext != ".pdf" {
		return errOutputFormat
	}

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	tracer().Infof("rendering %s to %s", input, output)
	if ext == ".pdf" {
		return svgpdf.RenderSVGIconToPDF(in, out, opts)
	}
	img, err := svgraster.RasterSVGIconToImage(in, opts)
	if err != nil {
		return err
	}
	return png.Encode(out, img)
}
