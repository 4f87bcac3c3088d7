package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/wxnotify/internal/cliconfig"
	"github.com/bft-labs/wxnotify/pkg/cache"
	logAdapter "github.com/bft-labs/wxnotify/pkg/log"
	"github.com/bft-labs/wxnotify/pkg/message"
	"github.com/bft-labs/wxnotify/pkg/wxwork"
)

const longHelp = `Send WeCom (WeChat Work) application messages from the command line.

Credentials come from $HOME/.wxnotify/config.toml, WXNOTIFY_* environment
variables or flags, in increasing order of precedence. Without --to-user,
--to-party or --to-tag a message goes to everyone the app can reach.

The exit status is 1 when the message could not be sent or the platform
rejected it.`

var exampleUsage = strings.TrimSpace(`
  wxnotify text "backup finished"
  wxnotify markdown --to-user zhangsan "**deploy** done"
  wxnotify textcard --title "Build #42" --description passed --url https://ci.example.com/42
  wxnotify image ./chart.png
  tail -F app.log | wxnotify pipe --to-tag 3
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the resolved configuration of one invocation.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	changed map[string]bool

	log    zerolog.Logger
	client *wxwork.Client
	cache  *cache.Cache
	stdin  io.Reader
	stdout io.Writer
}

func newApp() *app {
	return &app{
		cfg:    cliconfig.DefaultConfig(),
		cache:  cache.Shared(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		log:    zerolog.New(os.Stderr),
	}
}

// configFile returns the config path in effect.
func (a *app) configFile() string {
	if a.cfgPath != "" {
		return a.cfgPath
	}
	return cliconfig.DefaultConfigPath()
}

// load layers file and environment configuration under the changed flags,
// then builds the logger and the client.
func (a *app) load(cmd *cobra.Command) error {
	a.changed = map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { a.changed[f.Name] = true })

	if err := cliconfig.LoadConfigFile(&a.cfg, a.configFile(), a.changed); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cliconfig.ApplyEnvConfig(&a.cfg, a.changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger, err := a.cfg.Logger()
	if err != nil {
		return err
	}
	a.log = logger
	a.log.Debug().Interface("config", a.cfg.Masked()).Msg("configuration")

	a.client = wxwork.NewClient(
		wxwork.WithBaseURL(a.cfg.BaseURL),
		wxwork.WithHTTPClient(&http.Client{Timeout: a.cfg.HTTPTimeout}),
		wxwork.WithCache(a.cache),
		wxwork.WithLogger(logAdapter.NewZerologAdapterWithLogger(a.log)),
	)
	return nil
}

// recipients turns the configured selectors into message options. No
// selector means everyone.
func (a *app) recipients() []message.RecipientOption {
	var opts []message.RecipientOption
	if a.cfg.ToUser != "" {
		opts = append(opts, message.ToUsers(a.cfg.ToUser))
	}
	if a.cfg.ToParty != "" {
		opts = append(opts, message.ToParties(a.cfg.ToParty))
	}
	if a.cfg.ToTag != "" {
		opts = append(opts, message.ToTags(a.cfg.ToTag))
	}
	if len(opts) == 0 {
		opts = append(opts, message.ToAll())
	}
	return opts
}

// address applies the configured recipients to h.
func (a *app) address(h *message.Header) {
	for _, opt := range a.recipients() {
		opt(h)
	}
}

func (a *app) safe() *bool {
	if a.cfg.Safe {
		return message.Bool(true)
	}
	return nil
}

// send delivers the sender's message and reports the outcome. A platform
// rejection is returned as an error so the process exits non-zero.
func (a *app) send(ctx context.Context, s *wxwork.Sender) error {
	res, err := s.Send(ctx)
	if err != nil {
		return err
	}
	if !res.Success {
		a.log.Error().
			Int("errcode", res.ErrCode).
			Str("errmsg", res.ErrMsg).
			Str("invaliduser", res.InvalidUser).
			Str("invalidparty", res.InvalidParty).
			Str("invalidtag", res.InvalidTag).
			Msg("message rejected")
		return res.Err()
	}
	fmt.Fprintln(a.stdout, res.MsgID)
	return nil
}

// content joins args, or reads stdin when args is empty or "-".
func (a *app) content(args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(b), "\n"), nil
	}
	return strings.Join(args, " "), nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "wxnotify",
		Short:         "Send WeCom application messages",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	cfg := &a.cfg
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.wxnotify/config.toml)")
	flags.StringVar(&cfg.CorpID, "corp-id", cfg.CorpID, "corp id")
	flags.StringVar(&cfg.Secret, "secret", cfg.Secret, "application secret")
	flags.IntVar(&cfg.AgentID, "agent-id", cfg.AgentID, "application agent id")
	flags.StringVar(&cfg.ToUser, "to-user", cfg.ToUser, `user ids, "|" separated`)
	flags.StringVar(&cfg.ToParty, "to-party", cfg.ToParty, `department ids, "|" separated`)
	flags.StringVar(&cfg.ToTag, "to-tag", cfg.ToTag, `tag ids, "|" separated`)
	flags.BoolVar(&cfg.Safe, "safe", cfg.Safe, "mark text and image messages confidential")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	flags.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, fmt.Sprintf("API base URL (defaults to %s)", cliconfig.DefaultBaseURL))
	if err := flags.MarkHidden("base-url"); err != nil {
		a.log.Info().Err(err).Msg("failed to hide base-url flag")
	}

	root.AddCommand(
		newTextCmd(a),
		newMarkdownCmd(a),
		newTextCardCmd(a),
		newImageCmd(a),
		newPipeCmd(a),
	)
	return root
}

func newTextCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "text [content...]",
		Short: "Send a text message (reads stdin without arguments)",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.content(args)
			if err != nil {
				return err
			}
			m := message.NewText(content, a.recipients()...)
			m.Safe = a.safe()
			s := a.client.NewSender().SetAuth(a.cfg.Auth()).SetMessage(m)
			return a.send(cmd.Context(), s)
		},
	}
}

func newMarkdownCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "markdown [content...]",
		Short: "Send a markdown message (reads stdin without arguments)",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.content(args)
			if err != nil {
				return err
			}
			s := a.client.NewSender().SetAuth(a.cfg.Auth()).
				SetMarkdownMessage(content, a.recipients()...)
			return a.send(cmd.Context(), s)
		},
	}
}

func newTextCardCmd(a *app) *cobra.Command {
	var title, description, url, button string
	cmd := &cobra.Command{
		Use:   "textcard",
		Short: "Send a text card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.client.NewSender().SetAuth(a.cfg.Auth()).
				SetTextCardMessage(title, description, url, button, a.recipients()...)
			return a.send(cmd.Context(), s)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "card title")
	cmd.Flags().StringVar(&description, "description", "", "card description")
	cmd.Flags().StringVar(&url, "url", "", "link opened by the card")
	cmd.Flags().StringVar(&button, "button", "", "button text (default: platform's)")
	for _, name := range []string{"title", "description", "url"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			a.log.Info().Err(err).Str("flag", name).Msg("failed to mark flag required")
		}
	}
	return cmd
}

func newImageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "image <path>",
		Short: "Upload an image and send it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.client.NewSender().SetAuth(a.cfg.Auth()).
				SetImageMessageFunc(args[0], func(m *message.Image) {
					a.address(&m.Header)
					m.Safe = a.safe()
				})
			return a.send(cmd.Context(), s)
		},
	}
}

func main() {
	a := newApp()
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		a.log.Error().Err(err).Msg("wxnotify")
		stop()
		os.Exit(1)
	}
}
