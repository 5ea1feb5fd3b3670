package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	app "github.com/rocketscienceinc/tictactoe-relay/internal"
	"github.com/rocketscienceinc/tictactoe-relay/internal/client"
	"github.com/rocketscienceinc/tictactoe-relay/internal/config"
)

const envPrefix = "TICTACTOE"

type playFlags struct {
	server    string
	publicURL string
	room      string
	step      time.Duration
	logLevel  string
	bot       bool
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "tictactoe",
		Short:         "Two-player Tic Tac Toe over a websocket relay.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the relay config file")

	cmd.AddCommand(newServeCmd(&configPath), newPlayCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the room relay and its HTTP API.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			conf, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			logger := initLogger(conf.LogLevel, os.Stdout)

			if err = app.RunApp(logger, conf); err != nil {
				return fmt.Errorf("app run failed: %w", err)
			}

			return nil
		},
	}
}

func newPlayCmd() *cobra.Command {
	flags := &playFlags{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in a terminal: type a position from 0 to 8 to move.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := initLogger(flags.logLevel, os.Stderr)

			return client.Play(cmd.Context(), logger, client.PlayOptions{
				ServerURL: flags.server,
				PublicURL: flags.publicURL,
				RoomID:    flags.room,
				Step:      flags.step,
				Bot:       flags.bot,
			}, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&flags.server, "server", "s", "ws://localhost:8080/ws", "relay websocket endpoint (env: TICTACTOE_SERVER)")
	fs.StringVar(&flags.publicURL, "public-url", "http://localhost:8080", "base URL used for the share link (env: TICTACTOE_PUBLIC_URL)")
	fs.StringVarP(&flags.room, "room", "r", "", "room to join, generated when empty (env: TICTACTOE_ROOM)")
	fs.DurationVar(&flags.step, "step", time.Second, "length of one countdown step after a game ends (env: TICTACTOE_STEP)")
	fs.BoolVar(&flags.bot, "bot", false, "let a bot pick random moves (env: TICTACTOE_BOT)")
	fs.StringVar(&flags.logLevel, "log-level", "warn", "log level written to stderr (env: TICTACTOE_LOG_LEVEL)")

	bindEnv(fs)

	return cmd
}

// bindEnv lets TICTACTOE_* variables fill flags that were not set on the command line.
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func defaultConfigPath() string {
	baseDir, err := os.Getwd()
	if err != nil {
		return "config.yml"
	}

	return filepath.Join(baseDir, "config.yml")
}
