// ABOUTME: CLI entry point for monoforge: subcommand dispatch and flag parsing
// ABOUTME: Wires the orchestrator, git store, watcher, and interactive picker

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/monoforge/monoforge/internal/extrepo"
	"github.com/monoforge/monoforge/internal/log"
	"github.com/monoforge/monoforge/internal/pathmap"
	"github.com/monoforge/monoforge/internal/picker"
	"github.com/monoforge/monoforge/internal/pkgmanager"
	"github.com/monoforge/monoforge/internal/project"
	"github.com/monoforge/monoforge/internal/watch"
)

var (
	version = "dev"
	commit  = "unknown"
)

const usage = `usage: monoforge <command> [flags] [args]

commands:
  init [--yarn] [path]       scaffold a new project (default: current directory)
  create <name>...           create and declare modules
  add [--dev] <pkg>...       install dependencies and declare them
  install [--dev] <pkg>...   install dependencies without declaring
  workspace                  install workspace tooling and write its metadata
  link <url> [rel]           clone an external repository and map its modules
  external <rel>             list the scoped module names of a linked repository
  modules                    list declared modules (interactive on a terminal)
  resolve <scoped>           print the filesystem paths a scoped name maps to
  sync [--watch]             reconcile config and tsconfig with modules/

global flags (before the command):
  --verbose                  enable debug logging
  --version                  print version and exit
`

func main() {
	args := os.Args[1:]

	for len(args) > 0 && strings.HasPrefix(args[0], "--") {
		switch args[0] {
		case "--verbose":
			log.SetLevel(log.LevelDebug)
		case "--version":
			fmt.Printf("monoforge %s (%s)\n", version, commit)
			return
		default:
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		args = args[1:]
	}

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	ctx := context.Background()

	switch command {
	case "init":
		return runInit(args)
	case "create":
		return runCreate(args)
	case "add":
		return runAdd(ctx, args, true)
	case "install":
		return runAdd(ctx, args, false)
	case "workspace":
		return runWorkspace(ctx)
	case "link":
		return runLink(ctx, args)
	case "external":
		return runExternal(args)
	case "modules":
		return runModules()
	case "resolve":
		return runResolve(args)
	case "sync":
		return runSync(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// loadProject resumes the project rooted at the working directory.
func loadProject() (*project.Orchestrator, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return project.Load(root, project.ConfigFile(root))
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	useYarn := fs.Bool("yarn", false, "Use yarn instead of npm")
	if err := fs.Parse(args); err != nil {
		return err
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", root, err)
	}

	kind := pkgmanager.KindNPM
	if *useYarn {
		kind = pkgmanager.KindYarn
	}

	o := project.New(abs, pkgmanager.New(kind, abs))
	if err := o.Init(); err != nil {
		return err
	}
	fmt.Printf("initialized %s (%s) at %s\n", o.Name, kind, abs)
	return nil
}

func runCreate(args []string) error {
	if len(args) == 0 {
		return errors.New("create requires at least one module name")
	}

	o, err := loadProject()
	if err != nil {
		return err
	}

	for _, name := range args {
		m, err := o.CreateModule(name)
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", m.FullName)
	}
	return nil
}

func runAdd(ctx context.Context, args []string, declare bool) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	dev := fs.Bool("dev", false, "Record as a dev dependency")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("at least one package name is required")
	}

	o, err := loadProject()
	if err != nil {
		return err
	}

	if declare {
		return o.AddModules(ctx, fs.Args(), *dev)
	}
	return o.Install(ctx, fs.Args(), *dev)
}

func runWorkspace(ctx context.Context) error {
	o, err := loadProject()
	if err != nil {
		return err
	}
	if err := o.AddWorkspaceTooling(ctx); err != nil {
		return err
	}
	fmt.Printf("workspace tooling configured for %s\n", o.Manager().Kind())
	return nil
}

func runLink(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("link requires a repository URL")
	}

	o, err := loadProject()
	if err != nil {
		return err
	}

	rel := ""
	if len(args) > 1 {
		rel = args[1]
	}

	store := &extrepo.Store{Root: project.ExternalDir(o.Root)}
	rel, err = store.Link(ctx, args[0], rel)
	if err != nil {
		return err
	}

	if err := o.AddExternalRepo(rel); err != nil {
		return err
	}

	names, err := o.GetExternalModuleNames(rel)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runExternal(args []string) error {
	if len(args) != 1 {
		return errors.New("external requires a linked repository path")
	}

	o, err := loadProject()
	if err != nil {
		return err
	}

	names, err := o.GetExternalModuleNames(args[0])
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runModules() error {
	o, err := loadProject()
	if err != nil {
		return err
	}

	names := o.Modules()
	if len(names) == 0 {
		fmt.Println("no modules declared")
		return nil
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	choice, err := picker.Pick("modules in "+o.Name, names)
	if errors.Is(err, picker.ErrAborted) {
		return nil
	}
	if err != nil {
		return err
	}
	return printResolved(o, choice)
}

func runResolve(args []string) error {
	if len(args) != 1 {
		return errors.New("resolve requires one scoped module name")
	}

	o, err := loadProject()
	if err != nil {
		return err
	}
	return printResolved(o, args[0])
}

func printResolved(o *project.Orchestrator, scoped string) error {
	ts, err := pathmap.Load(project.TSConfigFile(o.Root))
	if err != nil {
		return err
	}

	paths, err := ts.Resolve(o.Root, scoped)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%s does not resolve to any path", scoped)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func runSync(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	watchMode := fs.Bool("watch", false, "Keep watching modules/ and re-sync on change")
	if err := fs.Parse(args); err != nil {
		return err
	}

	o, err := loadProject()
	if err != nil {
		return err
	}

	if err := o.Sync(); err != nil {
		return err
	}
	if !*watchMode {
		return nil
	}

	w, err := watch.New(project.ModulesDir(o.Root), 0, o.Sync)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
