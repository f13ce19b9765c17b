package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/dgallion1/md2docx/internal/config"
	"github.com/dgallion1/md2docx/internal/pipeline"
	"github.com/dgallion1/md2docx/internal/style"
)

// Global carries the output streams and logger shared by every command.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Verbose   bool   `short:"v" help:"Enable verbose logging"`
	StylesDir string `name:"styles-dir" help:"Directory of YAML style profiles to register (default: $MD2DOCX_STYLES_DIR)" type:"path"`

	Convert ConvertCmd `cmd:"" default:"withargs" help:"Convert a markdown file to a .docx document"`
	Styles  StylesCmd  `cmd:"" help:"List the registered style profiles"`
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP conversion server"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(g.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// ConvertCmd implements the default command.
type ConvertCmd struct {
	Input  string `arg:"" help:"Markdown input file" type:"path"`
	Output string `arg:"" help:"Output .docx file" type:"path"`
	Style  string `short:"s" help:"Style profile name (default: front matter style, then $MD2DOCX_STYLE or \"default\")"`
}

func (c *ConvertCmd) Run(g *Global, root *CLI) error {
	cfg := config.Load()
	conv, err := newConverter(cfg, resolveStylesDir(cfg, root.StylesDir), g.Logger)
	if err != nil {
		return err
	}
	return conv.ConvertFile(context.Background(), c.Input, c.Output, c.Style)
}

// StylesCmd implements the 'styles' command.
type StylesCmd struct{}

func (c *StylesCmd) Run(g *Global, root *CLI) error {
	cfg := config.Load()
	conv, err := newConverter(cfg, resolveStylesDir(cfg, root.StylesDir), g.Logger)
	if err != nil {
		return err
	}
	for _, name := range conv.Styles.Names() {
		if name == conv.DefaultStyle {
			fmt.Fprintf(g.Stdout, "%s (default)\n", name)
			continue
		}
		fmt.Fprintln(g.Stdout, name)
	}
	return nil
}

// resolveStylesDir prefers the --styles-dir flag over MD2DOCX_STYLES_DIR.
func resolveStylesDir(cfg config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.StylesDir
}

// newConverter builds a converter over the builtin profiles plus those in
// stylesDir.
func newConverter(cfg config.Config, stylesDir string, log *slog.Logger) (*pipeline.Converter, error) {

	reg := style.NewRegistry()
	if stylesDir != "" {
		profiles, err := style.LoadDir(stylesDir)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(profiles...); err != nil {
			return nil, err
		}
		log.Debug("registered style profiles", "dir", stylesDir, "count", len(profiles))
	}

	conv := pipeline.NewConverter(reg, log)
	conv.DefaultStyle = cfg.DefaultStyle
	return conv, nil
}

type exitCode int

// run parses args (args[0] is the program name), runs the selected command
// and returns the process exit status. Errors are reported on stderr as
// "<program>: <error>".
func run(args []string, stdout, stderr io.Writer) (code int) {
	name := filepath.Base(args[0])
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	var cli CLI
	g := &Global{Stdout: stdout, Stderr: stderr}
	parser, err := kong.New(&cli,
		kong.Name(name),
		kong.Description("Convert markdown documents to .docx."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Bind(g, &cli),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}

	ctx, err := parser.Parse(args[1:])
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}
