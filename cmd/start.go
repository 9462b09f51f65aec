package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"roster-workbench/core/loader"
	"roster-workbench/core/logger"
	"roster-workbench/core/middleware/rayid"
	"roster-workbench/feature/integrity"
	"roster-workbench/feature/roster"
	"roster-workbench/feature/workbench"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the roster workbench server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer rt.Close()
		zap.ReplaceGlobals(rt.logger)
		logg := rt.logger

		app := fiber.New(rt.cfg.Server.FiberConfig())

		mgr := loader.NewManager(logg)
		mgr.Register(integrity.NewFeature(rt.client, rt.cfg.Storage.Bucket, logg, rt.db, rt.cfg.Cache, rt.medium))
		mgr.Register(roster.NewFeature(rt.roster))
		mgr.Register(workbench.NewFeature(workbench.NewService(rt.roster)))

		// RayID must come first so every later log line carries it.
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		go func() {
			logg.Info("Starting server", zap.String("address", rt.cfg.Server.Address()))
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
