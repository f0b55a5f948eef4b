package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/app"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/config"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/logger"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/validator"
)

// Directory is the subset of the directory client the CLI drives.
type Directory interface {
	Business(ctx context.Context, id string) (*domain.Business, error)
	Reviews(ctx context.Context, id string) ([]domain.Review, error)
	SubmitReview(ctx context.Context, id string, draft domain.ReviewDraft) (*domain.Review, error)
	Categories(ctx context.Context) ([]string, error)
	ByCategory(ctx context.Context, category string) ([]domain.Business, error)
}

type options struct {
	asJSON  bool
	timeout time.Duration
	level   string

	cfg     *config.Config
	dir     Directory
	connect func(cfg *config.Config, log *slog.Logger) (Directory, error)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{
		connect: func(cfg *config.Config, log *slog.Logger) (Directory, error) {
			return app.NewDirectoryClient(cfg, log)
		},
	}
	return buildRoot(opts, stdout, stderr)
}

func buildRoot(opts *options, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "tiendasctl",
		Short:         "Query the business directory from the command line",
		Long:          `tiendasctl talks to the Remote Directory API with the same endpoint fallback the web front-end uses. Configuration comes from the same environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.dir != nil {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = cfg
			log := logger.NewText("tiendasctl", opts.level, stderr)
			dir, err := opts.connect(cfg, log)
			if err != nil {
				return fmt.Errorf("init directory client: %w", err)
			}
			opts.dir = dir
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of text")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall time limit for the command")
	root.PersistentFlags().StringVar(&opts.level, "log-level", "warn", "Log level written to stderr")

	root.AddCommand(
		businessCmd(opts),
		reviewsCmd(opts),
		reviewCmd(opts),
		categoriesCmd(opts),
		categoryCmd(opts),
	)
	return root
}

func (o *options) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

func (o *options) commentRequired() bool {
	return o.cfg != nil && o.cfg.CommentRequired
}

func businessCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tienda <id>",
		Short: "Show one business and its rating summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			b, err := opts.dir.Business(ctx, args[0])
			if err != nil {
				return err
			}
			reviews, revErr := opts.dir.Reviews(ctx, args[0])
			agg := domain.Aggregate(reviews)

			if opts.asJSON {
				out := struct {
					Business  *domain.Business       `json:"business"`
					Aggregate domain.AggregateRating `json:"aggregate"`
				}{b, agg}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%s)\n", b.Name, b.ID)
			for _, f := range [][2]string{
				{"Categoría", b.Category},
				{"Dirección", b.Address},
				{"WhatsApp", b.WhatsappPhone},
				{"Sitio web", b.Website},
				{"Redes", b.SocialLinks},
			} {
				if f[1] != "" {
					fmt.Fprintf(w, "  %-10s %s\n", f[0]+":", f[1])
				}
			}
			switch {
			case revErr != nil:
				fmt.Fprintln(w, "  Reseñas:   no disponibles")
			case agg.HasAverage():
				fmt.Fprintf(w, "  Reseñas:   %d, promedio %s\n", agg.Count, agg.AverageText())
			default:
				fmt.Fprintln(w, "  Reseñas:   sin reseñas")
			}
			return nil
		},
	}
}

func reviewsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reviews <id>",
		Short: "List the reviews of a business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			reviews, err := opts.dir.Reviews(ctx, args[0])
			if err != nil {
				return err
			}
			agg := domain.Aggregate(reviews)

			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					Reviews   []domain.Review        `json:"reviews"`
					Aggregate domain.AggregateRating `json:"aggregate"`
				}{reviews, agg})
			}

			w := cmd.OutOrStdout()
			if len(reviews) == 0 {
				fmt.Fprintln(w, "Sin reseñas")
				return nil
			}
			fmt.Fprintf(w, "%d reseñas, promedio %s\n", agg.Count, agg.AverageText())
			for _, r := range reviews {
				line := strings.Repeat("★", r.Rating) + strings.Repeat("☆", domain.MaxRating-r.Rating)
				if r.Comment != "" {
					line += "  " + r.Comment
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
}

func reviewCmd(opts *options) *cobra.Command {
	var draft domain.ReviewDraft
	cmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Submit a review for a business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := draft.Normalize()
			if d.IsEmpty() {
				return fmt.Errorf("nothing to submit: pass --rating and optionally --comment")
			}
			var err error
			if opts.commentRequired() {
				err = validator.Validate(d.Strict())
			} else {
				err = validator.Validate(d)
			}
			if err != nil {
				return err
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			created, err := opts.dir.SubmitReview(ctx, args[0], d)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					Review *domain.Review `json:"review"`
				}{created})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "¡Reseña publicada!")
			return nil
		},
	}
	cmd.Flags().IntVar(&draft.Rating, "rating", 0, "Star rating from 1 to 5")
	cmd.Flags().StringVar(&draft.Comment, "comment", "", "Review comment")
	return cmd
}

func categoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categorias",
		Short: "List the business categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			names, err := opts.dir.Categories(ctx)
			if err != nil {
				return err
			}
			cats := domain.NewCategories(names)
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), cats)
			}
			for _, c := range cats {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", c.Icon, c.Name)
			}
			return nil
		},
	}
}

func categoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categoria <nombre>",
		Short: "List the businesses in one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			list, err := opts.dir.ByCategory(ctx, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			for _, b := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.ID, b.Name)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
