package main

import (
	"bufio"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/wxnotify/internal/batch"
	"github.com/bft-labs/wxnotify/internal/cliconfig"
	"github.com/bft-labs/wxnotify/internal/credwatch"
	logAdapter "github.com/bft-labs/wxnotify/pkg/log"
	"github.com/bft-labs/wxnotify/pkg/message"
	"github.com/bft-labs/wxnotify/pkg/wxwork"
)

// maxLineBytes bounds one stdin line; longer lines end the pipe.
const maxLineBytes = 1 << 20

func newPipeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Send stdin lines as batched text messages",
		Long: `Read lines from stdin and send them as text messages. Lines are joined
until the batch would exceed --max-batch-bytes or --flush-interval passes.
The config file is watched, and changed credentials apply to the next batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newPiper(a).run(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&a.cfg.FlushInterval, "flush-interval", a.cfg.FlushInterval, "send pending lines after this long")
	cmd.Flags().IntVar(&a.cfg.MaxBatchBytes, "max-batch-bytes", a.cfg.MaxBatchBytes, "maximum bytes per message")
	return cmd
}

// piper moves stdin lines through a batcher into text messages.
type piper struct {
	a       *app
	batcher *batch.LineBatcher

	mu   sync.Mutex
	auth wxwork.Auth

	failed int
}

func newPiper(a *app) *piper {
	return &piper{
		a:       a,
		batcher: batch.NewLineBatcher(a.cfg.MaxBatchBytes, a.cfg.FlushInterval),
		auth:    a.cfg.Auth(),
	}
}

func (p *piper) currentAuth() wxwork.Auth {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.auth
}

// reload re-reads the config file and swaps in changed credentials. The
// token cached for the old credentials is dropped.
func (p *piper) reload() {
	cfg := p.a.cfg
	if err := cliconfig.LoadConfigFile(&cfg, p.a.configFile(), p.a.changed); err != nil {
		p.a.log.Warn().Err(err).Msg("reload config")
		return
	}
	if err := cliconfig.ApplyEnvConfig(&cfg, p.a.changed); err != nil {
		p.a.log.Warn().Err(err).Msg("reload config")
		return
	}
	if err := cfg.Validate(); err != nil {
		p.a.log.Warn().Err(err).Msg("reloaded config is invalid, keeping current credentials")
		return
	}

	next := cfg.Auth()
	p.mu.Lock()
	prev := p.auth
	p.auth = next
	p.mu.Unlock()

	if prev != next {
		p.a.client.Tokens().Invalidate(prev)
		p.a.log.Info().Str("auth", next.String()).Msg("credentials reloaded")
	}
}

func (p *piper) run(ctx context.Context) error {
	if path := p.a.configFile(); path != "" && cliconfig.FileExists(path) {
		w := credwatch.New(path, p.reload,
			credwatch.WithLogger(logAdapter.NewZerologAdapterWithLogger(p.a.log)))
		if err := w.Start(ctx); err != nil {
			p.a.log.Warn().Err(err).Msg("credentials will not be reloaded")
		}
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(p.a.stdin)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	ticker := time.NewTicker(tick(p.a.cfg.FlushInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.flush(context.Background())
			return p.result(nil)

		case line, ok := <-lines:
			if !ok {
				p.flush(ctx)
				var err error
				select {
				case err = <-scanErr:
				default:
				}
				return p.result(err)
			}
			for _, content := range p.batcher.Add(line) {
				p.deliver(ctx, content)
			}

		case <-ticker.C:
			if p.batcher.ShouldSend() {
				p.flush(ctx)
			}
		}
	}
}

func (p *piper) flush(ctx context.Context) {
	if p.batcher.HasPending() {
		p.deliver(ctx, p.batcher.Flush())
	}
}

// deliver sends one batch. A refused token is dropped and the batch sent
// once more with a fresh one.
func (p *piper) deliver(ctx context.Context, content string) {
	auth := p.currentAuth()
	res, err := p.sendText(ctx, auth, content)
	if err == nil && res.TokenRejected() {
		p.a.log.Info().Int("errcode", res.ErrCode).Msg("access token refused, fetching a new one")
		p.a.client.Tokens().Invalidate(auth)
		res, err = p.sendText(ctx, auth, content)
	}

	switch {
	case err != nil:
		p.failed++
		p.a.log.Error().Err(err).Int("bytes", len(content)).Msg("send batch")
	case !res.Success:
		p.failed++
		p.a.log.Error().Int("errcode", res.ErrCode).Str("errmsg", res.ErrMsg).Msg("batch rejected")
	default:
		p.a.log.Debug().Str("msgid", res.MsgID).Int("bytes", len(content)).Msg("batch sent")
	}
}

func (p *piper) sendText(ctx context.Context, auth wxwork.Auth, content string) (wxwork.Result, error) {
	m := message.NewText(content, p.a.recipients()...)
	m.Safe = p.a.safe()
	return p.a.client.NewSender().SetAuth(auth).SetMessage(m).Send(ctx)
}

func (p *piper) result(scanErr error) error {
	if scanErr != nil {
		return fmt.Errorf("read stdin: %w", scanErr)
	}
	if p.failed > 0 {
		return fmt.Errorf("%d batches not delivered", p.failed)
	}
	return nil
}

// tick returns how often the flush deadline is checked.
func tick(interval time.Duration) time.Duration {
	t := interval / 4
	if t < 10*time.Millisecond {
		t = 10 * time.Millisecond
	}
	return t
}
