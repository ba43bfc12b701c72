package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Rrens/routine-advisor/internal/app"
	"github.com/Rrens/routine-advisor/internal/catalog"
	"github.com/Rrens/routine-advisor/internal/config"
	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/logging"
	"github.com/Rrens/routine-advisor/internal/relayclient"
	"github.com/Rrens/routine-advisor/internal/repository/postgres"
	"github.com/Rrens/routine-advisor/internal/repository/redis"
	"github.com/Rrens/routine-advisor/internal/store"
	"github.com/Rrens/routine-advisor/internal/view"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var _ app.View = (*view.Console)(nil)

// session is the state every command works on
type session struct {
	app     *app.App
	console *view.Console
	store   store.Store
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		log.Debug().Err(err).Msg("Failed to close store")
	}
}

var configPath string

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "advisor",
		Short:        "Browse the product catalog and chat with the routine advisor",
		SilenceUsage: true,
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "./configs/config.yaml"
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "path to the configuration file")

	root.AddCommand(
		productsCmd(),
		categoriesCmd(),
		showCmd(),
		selectCmd(),
		clearCmd(),
		selectedCmd(),
		chatCmd(),
		routineCmd(),
		historyCmd(),
	)
	return root
}

// open loads configuration, restores the persisted session and leaves the
// console rendering only the given sections.
func open(ctx context.Context, sections view.Section) (*session, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st = store.WithPrefix(st, cfg.Client.Profile+":")

	console := view.NewConsole(os.Stdout, view.SectionNone)
	httpClient := &http.Client{Timeout: cfg.Client.RequestTimeout}

	a := app.New(app.Options{
		Catalog: func(ctx context.Context) (*catalog.Catalog, error) {
			return catalog.Load(ctx, httpClient, cfg.Client.CatalogSource)
		},
		Store: st,
		View:  console,
		Relay: relayclient.New(cfg.Client.RelayEndpoint, cfg.Client.RequestTimeout),
	})

	if err := a.LoadCatalog(ctx); err != nil {
		log.Warn().Err(err).Str("source", cfg.Client.CatalogSource).Msg("Catalog unavailable")
	}
	a.RestoreSession(ctx)

	console.SetSections(sections)
	return &session{app: a, console: console, store: st}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Client.Store.Backend {
	case "memory":
		return store.NewMemory(), nil
	case "bolt":
		return store.OpenBolt(cfg.Client.Store.Path)
	case "sqlite":
		return store.OpenSQLite(ctx, cfg.Client.Store.Path)
	case "redis":
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return redis.NewStore(client), nil
	case "postgres":
		if err := postgres.RunMigrations(cfg.Database.DSN()); err != nil {
			return nil, err
		}
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store backend '%s'", cfg.Client.Store.Backend)
	}
}

func productsCmd() *cobra.Command {
	var query, category string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products matching the filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), view.SectionProducts)
			if err != nil {
				return err
			}
			defer s.Close()

			s.app.ApplyFilter(query, category)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "search text matched against name, brand and description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "exact category to show")
	return cmd
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the catalog categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), view.SectionNone)
			if err != nil {
				return err
			}
			defer s.Close()

			s.console.RenderCategories(s.app.Categories())
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), view.SectionNone)
			if err != nil {
				return err
			}
			defer s.Close()

			p, ok := s.app.Product(domain.ProductID(args[0]))
			if !ok {
				return fmt.Errorf("product %s not found", args[0])
			}
			s.console.RenderDetail(p)
			return nil
		},
	}
}

func selectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>...",
		Short: "Toggle products in or out of the selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), view.SectionStatus)
			if err != nil {
				return err
			}
			defer s.Close()

			var errs []error
			for _, id := range args {
				if _, err := s.app.ToggleSelect(cmd.Context(), domain.ProductID(id)); err != nil {
					errs = append(errs, fmt.Errorf("select %s: %w", id, err))
				}
			}

			s.console.SetSections(view.SectionSelection)
			s.console.RenderSelection(s.app.Selected())
			return errors.Join(errs...)
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), view.SectionSelection)
			if err != nil {
				return err
			}
			defer s.Close()

			s.app.ClearSelection(cmd.Context())
			return nil
		},
	}
}

func selectedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selected",
		Short: "Show the selected products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), view.SectionSelection)
			if err != nil {
				return err
			}
			defer s.Close()

			s.console.RenderSelection(s.app.Selected())
			return nil
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>...",
		Short: "Send a message to the advisor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), view.SectionChat|view.SectionStatus)
			if err != nil {
				return err
			}
			defer s.Close()

			if !s.app.SendUserMessage(cmd.Context(), strings.Join(args, " ")) {
				return errors.New("message is empty")
			}
			s.app.Wait()
			return nil
		},
	}
}

func routineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routine",
		Short: "Ask for a routine built from the selected products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), view.SectionChat|view.SectionStatus)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.app.GenerateRoutine(cmd.Context()) {
				s.app.Wait()
			}
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the persisted conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), view.SectionChat)
			if err != nil {
				return err
			}
			defer s.Close()

			// Restore already rendered the conversation silently; start over
			s.console.RenderChat(nil)
			s.console.RenderChat(s.app.Conversation())
			return nil
		},
	}
}
