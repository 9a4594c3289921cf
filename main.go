package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"presslog/admin"
	"presslog/blog"
	"presslog/cache"
	"presslog/common"
	"presslog/database"
	"presslog/email"
	"presslog/metrics"
	"presslog/models"
	"presslog/store"
	"presslog/twitter"
)

const memoryCacheBytes = 64 << 20

func main() {
	root := &cobra.Command{
		Use:           "presslog",
		Short:         "A small multi-author blog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), createCodeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, builds the logger and opens a migrated database.
func bootstrap() (*common.Config, *zap.Logger, *store.Store, error) {
	cfg := common.LoadConfig()

	log, err := common.NewLogger(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := common.ConnectDb(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.RunMigrations(db, log); err != nil {
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	s := store.New(db)
	s.BcryptCost = cfg.BcryptCost
	return cfg, log, s, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, s, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.SessionSecret == "" {
				return fmt.Errorf("SESSION_SECRET environment variable not set")
			}

			m := metrics.New(nil)
			pages, err := newCache(cfg)
			if err != nil {
				return err
			}

			env := &common.Env{
				Config:  cfg,
				DB:      s.DB(),
				Cache:   cache.NewObserved(pages, m.ObserveCache),
				Mail:    newSender(cfg, log),
				Twitter: twitter.New(cfg.Twitter.ClientID, cfg.Twitter.ClientSecret, cfg.Twitter.RedirectURL),
				Log:     log,
				Metrics: m,
			}

			if !cfg.Debug {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.New()
			router.Use(gin.Recovery(), m.Middleware(), common.RequestID())

			secure := strings.HasPrefix(cfg.Domain, "https://")
			router.Use(sessions.Sessions(common.SessionName, common.NewSessionStore(cfg.SessionSecret, secure)))
			router.Use(common.LoadActor(env.DB, log))
			router.Use(cache.PageMiddleware(env.Cache, func(c *gin.Context) bool {
				return common.Actor(c) != nil
			}))

			router.GET("/metrics", gin.WrapH(m.Handler()))

			admin.NewAdminModule(env).RegisterRoutes(router)
			blog.NewBlogModule(env).RegisterRoutes(router)

			log.Info("starting server", zap.String("port", cfg.Port))
			return router.Run(":" + cfg.Port)
		},
	}
}

func newCache(cfg *common.Config) (cache.Store, error) {
	if cfg.CacheDir != "" {
		return cache.NewFileStore(cfg.CacheDir, cfg.CacheMaxAge)
	}
	return cache.NewMemoryStore(memoryCacheBytes)
}

func newSender(cfg *common.Config, log *zap.Logger) email.Sender {
	if cfg.SMTP.Host == "" {
		return email.LogSender{Log: log}
	}
	return email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			log.Info("migrations complete")
			return nil
		},
	}
}

func createCodeCmd() *cobra.Command {
	var role string
	var n int

	cmd := &cobra.Command{
		Use:   "createcode",
		Short: "Print new signup codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := models.ParseRole(role)
			if err != nil {
				return err
			}
			if n < 1 {
				return fmt.Errorf("-n must be at least 1")
			}

			_, log, s, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			codes, err := s.CreateCodes(context.Background(), r, n)
			if err != nil {
				return err
			}
			for _, code := range codes {
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "member", "role of the new accounts: member, moderator or admin")
	cmd.Flags().IntVarP(&n, "number", "n", 1, "number of codes")
	return cmd
}
