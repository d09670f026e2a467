// Command blogbuild turns Markdown drafts into a static blog: one HTML page
// per draft plus an index sorted newest first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"blogbuild/pkg/config"
	"blogbuild/pkg/handlers"
	"blogbuild/pkg/logger"
	"blogbuild/pkg/models"
	"blogbuild/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var version = "dev"

func usage() {
	fmt.Fprintf(os.Stderr, `blogbuild %s
Static blog builder

Usage:
  blogbuild [build] [--clean]          Build all drafts and regenerate the index
  blogbuild lint                       Check the front matter of every draft
  blogbuild new --title <title> [...]  Create a draft
  blogbuild watch [--clean]            Rebuild whenever drafts or templates change
  blogbuild serve [--addr :8080]       Start the preview and editor server
  blogbuild publish                    Commit and push the site
  blogbuild sync                       Pull the site
  blogbuild version                    Print the version

Settings come from the environment or a .env file (SITE_DIR, DRAFTS_DIR, ...).
`, version)
}

func main() {
	config.Init()
	logger.Init(config.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := "build", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	if err := run(ctx, cmd, args, os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "help", "-h", "--help":
		usage()
		return nil
	case "version":
		fmt.Fprintln(out, version)
		return nil
	case "build":
		return cmdBuild(ctx, args, out)
	case "lint":
		return cmdLint(out)
	case "new":
		return cmdNew(args, out)
	case "watch":
		return cmdWatch(ctx, args, out)
	case "serve", "server":
		return cmdServe(ctx, args)
	case "publish":
		log, err := services.PublishSite(ctx, config.GitToken)
		fmt.Fprint(out, log)
		return err
	case "sync":
		log, err := services.SyncSite(ctx, config.GitToken)
		fmt.Fprint(out, log)
		return err
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newBuilder(out io.Writer) (*services.Builder, error) {
	renderer, err := services.LoadRenderer()
	if err != nil {
		return nil, err
	}
	return &services.Builder{
		DraftsDir:    config.DraftsDir,
		PostsDir:     config.PostsDir,
		IndexFile:    config.IndexFile,
		Concurrency:  config.BuildConcurrency,
		Renderer:     renderer,
		LoadRenderer: services.LoadRenderer,
		Out:          out,
	}, nil
}

func cmdBuild(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	clean := fs.Bool("clean", false, "remove generated posts before building")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b, err := newBuilder(out)
	if err != nil {
		return err
	}
	_, err = b.Build(ctx, services.BuildOptions{Clean: *clean})
	if errors.Is(err, services.ErrNoDrafts) {
		return nil
	}
	return err
}

func cmdLint(out io.Writer) error {
	issues, err := services.Lint(config.DraftsDir)
	if err != nil {
		return err
	}
	for _, i := range issues {
		fmt.Fprintf(out, "%s: %s: %s\n", i.File, i.Severity, i.Message)
	}
	if services.HasErrors(issues) {
		return fmt.Errorf("%d issue(s) found", len(issues))
	}
	if len(issues) == 0 {
		fmt.Fprintln(out, "All drafts look good.")
	}
	return nil
}

func cmdNew(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	var meta models.Meta
	fs.StringVar(&meta.Title, "title", "", "post title (required)")
	fs.StringVar(&meta.Subtitle, "subtitle", "", "post subtitle")
	fs.StringVar(&meta.Date, "date", "", "publication date (default today)")
	fs.StringVar(&meta.Tags, "tags", "", "comma separated tags")
	fs.StringVar(&meta.Excerpt, "excerpt", "", "short description for the index page")
	format := fs.String("format", services.FormatYAML, "front matter format: yaml or toml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if meta.Title == "" && fs.NArg() > 0 {
		meta.Title = fs.Arg(0)
	}
	if meta.Title == "" {
		fs.Usage()
		return errors.New("a title is required")
	}

	draft, err := services.CreateDraft(meta, *format)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  ✓ created drafts/%s\n", draft.Path)
	return nil
}

func cmdWatch(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	clean := fs.Bool("clean", false, "remove generated posts before every build")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b, err := newBuilder(out)
	if err != nil {
		return err
	}
	build := func(ctx context.Context) error {
		_, err := b.Build(ctx, services.BuildOptions{Clean: *clean})
		return err
	}
	if err := build(ctx); err != nil && !errors.Is(err, services.ErrNoDrafts) {
		logger.Log.Error("initial build failed", zap.Error(err))
	}
	return services.Watch(ctx, []string{config.DraftsDir, config.TemplateDir, config.SiteConfig}, build)
}

func cmdServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", config.ServerAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b, err := newBuilder(io.Discard)
	if err != nil {
		return err
	}
	handlers.SiteBuilder = b

	if config.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	return handlers.Serve(ctx, *addr, handlers.NewRouter())
}
