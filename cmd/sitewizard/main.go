package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitewizard/sitewizard/internal/profile"
	"github.com/sitewizard/sitewizard/server"
	"github.com/sitewizard/sitewizard/server/version"
	"github.com/sitewizard/sitewizard/store"
	"github.com/sitewizard/sitewizard/store/db"
)

const (
	greetingBanner = `SiteWizard: conversational website setup`
)

var rootCmd = &cobra.Command{
	Use:   "sitewizard",
	Short: "Backend service for the SiteWizard provisioning wizard",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Data:        viper.GetString("data"),
			Driver:      viper.GetString("driver"),
			DSN:         viper.GetString("dsn"),
			InstanceURL: viper.GetString("instance-url"),
			Version:     version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		setupLogger(instanceProfile)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create database driver", "error", err)
			os.Exit(1)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			os.Exit(1)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			slog.Info("received signal, shutting down", "signal", sig.String())
			s.Shutdown(ctx)
			cancel()
		}()

		fmt.Printf("%s\nversion %s, mode %s\n", greetingBanner, instanceProfile.Version, instanceProfile.Mode)
		if err := s.Start(ctx); err != nil {
			slog.Error("failed to start server", "error", err)
			cancel()
		}

		<-ctx.Done()
	},
}

func setupLogger(instanceProfile *profile.Profile) {
	level := slog.LevelInfo
	if instanceProfile.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func init() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("sitewizard")

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("instance-url", "", "the url of your sitewizard instance")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
