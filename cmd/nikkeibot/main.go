package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/ai"
	"github.com/CRaLFa/nikkei-bot/internal/attachment"
	"github.com/CRaLFa/nikkei-bot/internal/config"
	"github.com/CRaLFa/nikkei-bot/internal/disclosure"
	"github.com/CRaLFa/nikkei-bot/internal/history"
	"github.com/CRaLFa/nikkei-bot/internal/logging"
	"github.com/CRaLFa/nikkei-bot/internal/notify"
	"github.com/CRaLFa/nikkei-bot/internal/poller"
	"github.com/CRaLFa/nikkei-bot/internal/types"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

const discordReadyTimeout = 30 * time.Second

type Globals struct {
	Config   string `help:"Path to config file (default: ~/.nikkei-bot/config.yaml)." type:"path"`
	LogLevel string `help:"Override log level (debug, info, warn, error)."`
}

type CLI struct {
	Globals

	Run       RunCmd       `cmd:"" default:"1" help:"Start the bot and poll on schedule."`
	Scan      ScanCmd      `cmd:"" help:"Run one scan cycle and print matches."`
	Watermark WatermarkCmd `cmd:"" help:"Inspect or change stored watermarks."`
}

// app carries what every command needs after the config is loaded.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	loc    *time.Location
}

func (g *Globals) load(requireToken bool) (*app, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if requireToken {
		if err := cfg.RequireToken(); err != nil {
			return nil, err
		}
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, loc: loc}, nil
}

func (a *app) scanners() ([]poller.Scanner, error) {
	fetcher := disclosure.NewHTTPFetcher(a.cfg.FetchTimeout, a.logger)

	scanners := make([]poller.Scanner, 0, len(a.cfg.Sites))
	for _, name := range a.cfg.Sites {
		site, err := disclosure.NewSite(name)
		if err != nil {
			return nil, err
		}
		scanners = append(scanners, disclosure.NewScanner(site, fetcher, a.logger,
			disclosure.WithLocation(a.loc),
			disclosure.WithMaxPages(a.cfg.MaxPages),
			disclosure.WithEnrichConcurrency(a.cfg.EnrichConcurrency),
		))
	}
	return scanners, nil
}

func (a *app) pipeline(ctx context.Context, dests []notify.Destination) *notify.Pipeline {
	docs := attachment.NewFetcher(a.cfg.FetchTimeout, a.logger)
	p := notify.NewPipeline(dests, docs, a.logger)

	if a.cfg.GeminiAPIKey == "" {
		return p
	}
	summarizer, err := ai.NewSummarizer(ctx, a.cfg.GeminiAPIKey, a.cfg.AI.Model)
	if err != nil {
		a.logger.Warn("AI summaries disabled", zap.Error(err))
		return p
	}
	return p.WithSummarizer(summarizer, docs)
}

func (a *app) discord(ctx context.Context) (notify.Destination, func(), error) {
	readyCtx, cancel := context.WithTimeout(ctx, discordReadyTimeout)
	defer cancel()

	session, guildIDs, err := notify.OpenDiscord(readyCtx, a.cfg.BotToken, a.logger)
	if err != nil {
		return nil, nil, err
	}
	channelIDs, err := notify.ResolveChannels(readyCtx, session, guildIDs, a.cfg.Discord.ChannelName)
	if err != nil {
		session.Close()
		return nil, nil, err
	}
	if len(channelIDs) == 0 {
		a.logger.Warn("no channel matched", zap.String("channel_name", a.cfg.Discord.ChannelName))
	}
	a.logger.Info("discord ready", zap.Int("guilds", len(guildIDs)), zap.Int("channels", len(channelIDs)))

	return notify.NewDiscordDestination(session, channelIDs), func() { session.Close() }, nil
}

func (a *app) emailDestination() (notify.Destination, bool) {
	settings := a.cfg.EmailSettings()
	if !settings.Enabled() {
		return nil, false
	}
	return notify.NewEmailDestination(settings), true
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

type RunCmd struct{}

func (c *RunCmd) Run(g *Globals) error {
	a, err := g.load(true)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	store, err := history.Open(a.cfg.Store.Type, a.cfg.Store.DSN, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	patterns, err := disclosure.CompilePatterns(a.cfg.Keywords)
	if err != nil {
		return err
	}
	scanners, err := a.scanners()
	if err != nil {
		return err
	}

	discord, closeDiscord, err := a.discord(ctx)
	if err != nil {
		return err
	}
	defer closeDiscord()

	dests := []notify.Destination{discord}
	if email, ok := a.emailDestination(); ok {
		dests = append(dests, email)
	}

	p := poller.New(scanners, store, patterns, a.pipeline(ctx, dests), a.logger)
	return p.Start(ctx, a.cfg.Schedule, a.cfg.SettleDelay, a.loc)
}

type ScanCmd struct {
	DryRun  bool `help:"Never persist watermarks, even with --deliver."`
	Deliver bool `help:"Send matches to the configured Discord channels and email and persist the watermark."`
}

// persistent reports whether the scan may advance the stored watermark.
func (c *ScanCmd) persistent() bool {
	return c.Deliver && !c.DryRun
}

func (c *ScanCmd) Run(g *Globals) error {
	a, err := g.load(c.Deliver)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	store, err := c.openStore(a)
	if err != nil {
		return err
	}
	defer store.Close()

	patterns, err := disclosure.CompilePatterns(a.cfg.Keywords)
	if err != nil {
		return err
	}
	scanners, err := a.scanners()
	if err != nil {
		return err
	}

	dests := []notify.Destination{notify.NewConsoleDestination(os.Stdout)}
	if c.Deliver {
		discord, closeDiscord, err := a.discord(ctx)
		if err != nil {
			return err
		}
		defer closeDiscord()
		dests = append(dests, discord)
		if email, ok := a.emailDestination(); ok {
			dests = append(dests, email)
		}
	}

	p := poller.New(scanners, store, patterns, a.pipeline(ctx, dests), a.logger)
	results, _ := p.RunOnce(ctx)
	for _, r := range results {
		fmt.Printf("%s: %d new entries (watermark %d -> %d)\n",
			r.Site, len(r.Disclosure.Entries), r.Previous, r.Disclosure.LatestEntryTime)
	}
	return nil
}

// openStore returns the configured store when the scan is persistent. Other
// scans start from the stored watermark but write to a throwaway copy.
func (c *ScanCmd) openStore(a *app) (history.Store, error) {
	persisted, err := history.Open(a.cfg.Store.Type, a.cfg.Store.DSN, a.logger)
	if err != nil {
		return nil, err
	}
	if c.persistent() {
		return persisted, nil
	}
	defer persisted.Close()
	return snapshot(context.Background(), persisted, a.cfg.Sites)
}

// snapshot copies the watermarks of sites into a memory store.
func snapshot(ctx context.Context, src history.Store, sites []string) (history.Store, error) {
	mem := history.NewMemoryStore()
	for _, name := range sites {
		key, err := siteKey(name)
		if err != nil {
			return nil, err
		}
		v, ok, err := src.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if ok {
			if err := mem.Set(ctx, key, v); err != nil {
				return nil, err
			}
		}
	}
	return mem, nil
}

type WatermarkCmd struct {
	Show  WatermarkShowCmd  `cmd:"" help:"Print the stored watermark of every configured site."`
	Set   WatermarkSetCmd   `cmd:"" help:"Store a watermark (YYYYMMDDHHMM) for a site."`
	Reset WatermarkResetCmd `cmd:"" help:"Reset a site's watermark to zero."`
}

func openStore(g *Globals) (*app, history.Store, error) {
	a, err := g.load(false)
	if err != nil {
		return nil, nil, err
	}
	store, err := history.Open(a.cfg.Store.Type, a.cfg.Store.DSN, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return a, store, nil
}

func siteKey(name string) (history.Key, error) {
	site, err := disclosure.NewSite(name)
	if err != nil {
		return history.Key{}, err
	}
	return history.WatermarkKey(site.Name()), nil
}

type WatermarkShowCmd struct{}

func (c *WatermarkShowCmd) Run(g *Globals) error {
	a, store, err := openStore(g)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	for _, name := range a.cfg.Sites {
		key, err := siteKey(name)
		if err != nil {
			return err
		}
		v, ok, err := store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !ok {
			fmt.Printf("%s\t(unset)\n", key)
			continue
		}
		w := types.Watermark(v)
		note := ""
		if !w.Valid() {
			note = "\t(malformed)"
		}
		fmt.Printf("%s\t%d%s\n", key, v, note)
	}
	return nil
}

type WatermarkSetCmd struct {
	Site  string `arg:"" help:"Site name (nikkei, tdnet)."`
	Value string `arg:"" help:"Watermark as YYYYMMDDHHMM."`
}

func (c *WatermarkSetCmd) Run(g *Globals) error {
	v, err := strconv.ParseInt(c.Value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid watermark %q: %w", c.Value, err)
	}
	if !types.Watermark(v).Valid() {
		return fmt.Errorf("invalid watermark %q: not a valid date and time", c.Value)
	}
	return setWatermark(g, c.Site, v)
}

type WatermarkResetCmd struct {
	Site string `arg:"" help:"Site name (nikkei, tdnet)."`
}

func (c *WatermarkResetCmd) Run(g *Globals) error {
	return setWatermark(g, c.Site, 0)
}

func setWatermark(g *Globals, site string, v int64) error {
	key, err := siteKey(site)
	if err != nil {
		return err
	}
	_, store, err := openStore(g)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Set(context.Background(), key, v); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	fmt.Printf("%s\t%d\n", key, v)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("nikkeibot"),
		kong.Description("Watches Japanese timely-disclosure listings and posts keyword matches to Discord."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
