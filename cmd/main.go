package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"studentdash/internal/config"
	"studentdash/internal/database"
	"studentdash/internal/handler"
	"studentdash/internal/logger"
	"studentdash/internal/scheduler"
	"studentdash/internal/seed"
	"studentdash/internal/service"
)

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	store    database.Store
	students *service.StudentService
	insights *service.InsightService
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "studentdash",
		Short:         "Student follow-up dashboard",
		Long:          "studentdash keeps student follow-up records, groups students by their indicators and produces grade reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(
		newServeCmd(a),
		newSeedCmd(a),
		newReportCmd(a),
		newExportCmd(a),
		newClusterCmd(a),
		newBackupCmd(a),
	)
	return rootCmd
}

// load reads the configuration and opens the configured store.
func (a *app) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(cfg)
	if a.store, err = database.Open(cfg, a.log); err != nil {
		return err
	}
	a.students = service.NewStudentService(a.store, a.log)
	a.insights = service.NewInsightService(a.students)
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the backup scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.HTTPAddr, err)
	}
	return a.serveOn(ctx, ln)
}

// serveOn runs the API on ln until ctx is cancelled, then shuts down.
func (a *app) serveOn(ctx context.Context, ln net.Listener) error {
	imports := service.NewImportService(a.students, a.log)
	progress := handler.NewProgressHandler(imports, a.log)
	router := handler.NewRouter(handler.Handlers{
		Students: handler.NewStudentHandler(a.students, a.log),
		Insights: handler.NewInsightHandler(a.insights, a.log),
		Uploads:  handler.NewUploadHandler(imports, a.cfg.UploadDir, a.cfg.MaxUploadBytes(), a.log),
		Progress: progress,
	}, a.log, a.cfg.CORSOrigins)

	backups := scheduler.NewBackupScheduler(a.store, a.cfg.BackupDir, a.cfg.BackupCron, a.log)
	if err := backups.Start(); err != nil {
		ln.Close()
		return err
	}
	defer backups.Stop()

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Event streams never finish on their own.
	srv.RegisterOnShutdown(progress.Close)

	serverErr := make(chan error, 1)
	go func() {
		a.log.WithFields(logrus.Fields{"addr": ln.Addr().String(), "driver": a.cfg.StorageDriver}).Info("Server running")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.log.Info("Server shut down gracefully")
	return nil
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		count  int
		rngKey uint64
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with fictitious students",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("--count must not be negative, got %d", count)
			}
			ctx := cmd.Context()
			existing, err := a.store.Load(ctx)
			if err != nil {
				return err
			}
			if len(existing) > 0 && !force {
				return fmt.Errorf("store already holds %d students; use --force to replace them", len(existing))
			}
			students := seed.Generate(count, gofakeit.New(rngKey), time.Now().Truncate(time.Second))
			if err := a.store.Save(ctx, students); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d students\n", len(students))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 600, "Number of students to generate")
	cmd.Flags().Uint64Var(&rngKey, "seed", uint64(time.Now().UnixNano()), "Random seed")
	cmd.Flags().BoolVar(&force, "force", false, "Replace existing records")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var pdfPath string
	cmd := &cobra.Command{
		Use:   "report [grade]",
		Short: "Print the strategy report of a grade, or write it as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grade := args[0]
			if pdfPath == "" {
				text, err := a.insights.GradeReport(cmd.Context(), grade)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			return writeFile(pdfPath, func(w io.Writer) error {
				return a.insights.WriteGradePDF(cmd.Context(), w, grade)
			})
		},
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Write a PDF report to this path")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		enriched bool
		outPath  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the table as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return a.insights.Export(cmd.Context(), cmd.OutOrStdout(), enriched)
			}
			return writeFile(outPath, func(w io.Writer) error {
				return a.insights.Export(cmd.Context(), w, enriched)
			})
		},
	}
	cmd.Flags().BoolVar(&enriched, "enriched", false, "Add cluster labels and strategies")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newClusterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cluster",
		Short: "Show the student clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.insights.Clusters(cmd.Context())
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Cluster", "Size", "Academic", "Discipline", "Emotional"})
			for _, c := range res.Clusters {
				table.Append([]string{
					strconv.Itoa(c.Label),
					strconv.Itoa(c.Size),
					fmt.Sprintf("%.2f", c.Academic),
					fmt.Sprintf("%.2f", c.Discipline),
					fmt.Sprintf("%.2f", c.Emotional),
				})
			}
			table.Render()
			return nil
		},
	}
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write one CSV snapshot to the backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := scheduler.NewBackupScheduler(a.store, a.cfg.BackupDir, "", a.log).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
