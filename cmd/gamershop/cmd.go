// cmd/gamershop/cmd.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gamershop/internal/app"
	"gamershop/internal/cart"
	"gamershop/internal/catalog"
	"gamershop/internal/config"
	"gamershop/internal/storefront"
	"gamershop/internal/telemetry"
)

var (
	configPath string
	envFile    string
	logLevel   string
	genre      string
	page       int
)

var rootCmd = &cobra.Command{
	Use:           "gamershop",
	Short:         "Game storefront: catalog, cart and feature flags",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storefront HTTP API",
	Long:  `The serve command wires the stores, operators and abstractors and exposes them over HTTP. Without a catalog URL the catalog API is served from the same process under /api/games.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, log, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		shutdownTracing, err := telemetry.SetupTracing(ctx, "gamershop", a.Config.Telemetry.OTLPEndpoint, a.Config.Telemetry.OTLPInsecure)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				log.Error().Err(err).Msg("tracing shutdown failed")
			}
		}()

		if err := a.Start(ctx); err != nil {
			return fmt.Errorf("start storefront: %w", err)
		}

		srv := &http.Server{
			Addr:              a.Config.ListenAddr,
			Handler:           storefront.NewHandler(a).Routes(a.Config.Catalog.URL == ""),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return listenAndServe(ctx, srv, log)
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect and change the persisted cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, a *app.App) error { return nil })
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <game-id>",
	Short: "Add one unit of a catalog game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, a *app.App) error {
			game, err := a.Catalog.GetGame(ctx, args[0])
			if err != nil {
				return err
			}
			return a.Cart.AddItem(ctx, *game)
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <game-id>",
	Short: "Remove a game from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, a *app.App) error {
			return a.Cart.RemoveItem(ctx, args[0])
		})
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <game-id> <quantity>",
	Short: "Set the quantity of a game; zero removes it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q: %w", args[1], err)
		}
		if qty > cart.MaxQuantity {
			return fmt.Errorf("invalid quantity %d: must not exceed %d", qty, cart.MaxQuantity)
		}
		return withCart(cmd, func(ctx context.Context, a *app.App) error {
			return a.Cart.UpdateQuantity(ctx, args[0], qty)
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, a *app.App) error {
			return a.Cart.ClearCart(ctx)
		})
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List one page of the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Games.LoadGames(cmd.Context(), catalog.Query{Genre: genre, Page: page}); err != nil {
			return err
		}
		return printGames(cmd.OutOrStdout(), a)
	},
}

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Print the feature flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return printJSON(cmd.OutOrStdout(), a.FlagsView.State())
	},
}

// Execute runs the root command.
func Execute() error {
	rootCmd.AddCommand(serveCmd, cartCmd, gamesCmd, flagsCmd)
	cartCmd.AddCommand(cartAddCmd, cartRemoveCmd, cartSetCmd, cartClearCmd)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func bootstrap(ctx context.Context) (*app.App, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format)
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, log, err
	}
	return a, log, nil
}

// withCart loads the cart, runs fn and prints the resulting cart.
func withCart(cmd *cobra.Command, fn func(context.Context, *app.App) error) error {
	ctx := cmd.Context()
	a, _, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Cart.InitializeCart(ctx); err != nil {
		return err
	}
	if err := fn(ctx, a); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), a.CartView.State())
}

func listenAndServe(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("storefront listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func printGames(w io.Writer, a *app.App) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGENRE\tPRICE\tNEW")
	for _, g := range a.GamesView.Games() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%t\n", g.ID, g.Name, g.Genre, g.Price, g.IsNew)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d of %d, genres: %v\n", a.GamesView.CurrentPage(), a.GamesView.TotalPages(), a.GamesView.AvailableFilters())
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the TOML config file (default ~/.config/gamershop/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	gamesCmd.Flags().StringVarP(&genre, "genre", "g", "", "Only list games of this genre")
	gamesCmd.Flags().IntVarP(&page, "page", "p", 1, "Page to list")
}
