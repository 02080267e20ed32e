// Command kanbancore inspects and maintains the persisted kanban data layer.
//
//	kanbancore [-config path] summary
//	kanbancore [-config path] board -project <id>
//	kanbancore [-config path] sprints -project <id>
//	kanbancore [-config path] reset
//	kanbancore [-config path] [-metrics-addr :9090] serve
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"kanbancore/internal/app"
	"kanbancore/internal/config"
	"kanbancore/pkg/domain"
)

var (
	exitFunc = os.Exit
	openApp  = app.Open
)

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("kanbancore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to YAML config (defaults plus KANBAN_* env when empty)")
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus /metrics on this address (serve only)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: kanbancore [flags] summary|board|sprints|reset|serve [args]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			fmt.Fprintln(stderr, err)
		}
	}()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "summary":
		err = summary(ctx, a, stdout)
	case "board":
		err = withProject(cmd, rest, stderr, func(id string) error { return board(ctx, a, id, stdout) })
	case "sprints":
		err = withProject(cmd, rest, stderr, func(id string) error { return sprints(ctx, a, id, stdout) })
	case "reset":
		err = reset(ctx, a, stdout)
	case "serve":
		err = serve(ctx, a, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func withProject(name string, args []string, stderr io.Writer, fn func(id string) error) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	project := fs.String("project", "", "project id")
	if err := fs.Parse(args); err != nil {
		return flag.ErrHelp
	}
	if *project == "" {
		fmt.Fprintf(stderr, "%s: -project is required\n", name)
		return flag.ErrHelp
	}
	return fn(*project)
}

func summary(ctx context.Context, a *app.App, out io.Writer) error {
	svc := a.Service
	fmt.Fprintf(out, "source: %s\n", a.Source)
	for _, ws := range svc.ListWorkspaces(ctx) {
		fmt.Fprintf(out, "workspace %s %s (%d projects)\n", ws.ID, ws.Name, len(ws.Projects))
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tNAME\tWORKSPACE\tPROGRESS\tTASKS\tSPRINTS\tFAVORITE")
	for _, p := range svc.ListProjects(ctx) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%d\t%d\t%t\n",
			p.ID, p.Name, orDash(p.WorkspaceID), p.Progress, p.TaskCount, p.SprintCount, p.IsFavorite)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "tags: %d  users: %d  teams: %d\n",
		len(svc.ListTags(ctx)), len(svc.ListUsers(ctx)), len(svc.ListTeams(ctx)))
	return nil
}

func board(ctx context.Context, a *app.App, projectID string, out io.Writer) error {
	p, ok := a.Service.GetProjectByID(ctx, projectID)
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityProject, ID: projectID}
	}
	fmt.Fprintf(out, "%s %s\n", p.ID, p.Name)
	for _, lane := range a.Service.TasksByStatus(ctx, projectID).Lanes {
		fmt.Fprintf(out, "\n%s (%d)\n", lane.Column.Title, len(lane.Tasks))
		for _, t := range lane.Tasks {
			fmt.Fprintf(out, "  %-6s %s", t.ID, t.Title)
			if t.Priority != "" {
				fmt.Fprintf(out, " [%s]", t.Priority)
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}

func sprints(ctx context.Context, a *app.App, projectID string, out io.Writer) error {
	svc := a.Service
	if _, ok := svc.GetProjectByID(ctx, projectID); !ok {
		return domain.NotFoundError{Entity: domain.EntityProject, ID: projectID}
	}
	if s, ok := svc.ActiveSprintByProject(ctx, projectID); ok {
		fmt.Fprintf(out, "active: %s %s (%s..%s, %s)\n", s.ID, s.Name, s.StartDate, s.EndDate, s.Status)
	} else {
		fmt.Fprintln(out, "active: none")
	}
	printSprints(out, "upcoming", svc.UpcomingSprintsByProject(ctx, projectID))
	printSprints(out, "completed", svc.CompletedSprintsByProject(ctx, projectID))
	return nil
}

func printSprints(out io.Writer, label string, list []domain.Sprint) {
	fmt.Fprintf(out, "%s:\n", label)
	for _, s := range list {
		fmt.Fprintf(out, "  %-6s %-12s %s..%s %s\n", s.ID, s.Name, s.StartDate, s.EndDate, s.Status)
	}
}

func reset(ctx context.Context, a *app.App, out io.Writer) error {
	existed, err := a.Reset(ctx)
	if err != nil {
		return err
	}
	if existed {
		fmt.Fprintf(out, "deleted snapshot %q\n", a.Persister.Key())
	} else {
		fmt.Fprintf(out, "no snapshot stored under %q\n", a.Persister.Key())
	}
	return nil
}

func serve(ctx context.Context, a *app.App, out io.Writer) error {
	addr := a.Config.Metrics.Addr
	if addr == "" {
		return errors.New("serve: -metrics-addr or metrics.addr is required")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.MetricsHandler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	a.Logger.Info("serving metrics", zap.String("addr", addr))
	fmt.Fprintf(out, "serving /metrics on %s\n", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
