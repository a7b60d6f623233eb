package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/ryosukesatoh/newsletter-digest/internal/config"
	"github.com/ryosukesatoh/newsletter-digest/internal/mail"
	"github.com/ryosukesatoh/newsletter-digest/internal/publisher"
	"github.com/ryosukesatoh/newsletter-digest/internal/report"
	"github.com/ryosukesatoh/newsletter-digest/internal/runner"
	"github.com/ryosukesatoh/newsletter-digest/internal/summarizer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run the pipeline once and exit")
	preview := flag.Bool("preview", false, "print the digest to stdout instead of delivering it")
	hours := flag.Int("hours", 0, "override the lookback window in hours")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	rep := report.NewStderr(*debug)

	cfg, err := config.Load(*configPath)
	if err != nil {
		rep.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}
	if *hours > 0 {
		cfg.HoursLookback = *hours
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailClient, err := mail.NewClient(ctx, cfg.Gmail.ClientID, cfg.Gmail.ClientSecret, cfg.Gmail.RefreshToken, cfg.Newsletters.AllowedSenders, rep)
	if err != nil {
		rep.Errorf("Failed to create Gmail client: %v", err)
		os.Exit(1)
	}

	s, err := summarizer.New(cfg)
	if err != nil {
		rep.Errorf("Failed to create summarizer: %v", err)
		os.Exit(1)
	}

	// Preview mode forces the stdout sink and leaves messages unread.
	var pubs []publisher.Publisher
	if *preview {
		rep.Infof("Preview mode: digest will be printed, not delivered")
		pubs = append(pubs, publisher.NewStdoutPublisher())
	} else {
		switch cfg.Publisher.Type {
		case "stdout":
			pubs = append(pubs, publisher.NewStdoutPublisher())
		case "gmail":
			p, err := publisher.NewGmailPublisher(ctx, cfg.Gmail.ClientID, cfg.Gmail.ClientSecret, cfg.Gmail.RefreshToken, cfg.Digest.From, cfg.Digest.Recipient)
			if err != nil {
				rep.Errorf("Failed to create Gmail publisher: %v", err)
				os.Exit(1)
			}
			pubs = append(pubs, p)
		case "discord":
			pubs = append(pubs, publisher.NewDiscordPublisher(cfg.Publisher.Discord.WebhookURL))
		}
	}

	r := runner.New(mailClient, s, pubs, rep, cfg.HoursLookback, !*preview)

	// Single-run mode: run the pipeline once and exit
	if *once {
		rep.Infof("Running digest (once mode)...")
		if err := r.Run(ctx); err != nil {
			rep.Errorf("Pipeline failed: %v", err)
			os.Exit(1)
		}
		rep.Infof("Done")
		return
	}

	// Run immediately on startup if configured
	if cfg.RunOnStart {
		rep.Infof("Running initial digest...")
		if err := r.Run(ctx); err != nil {
			rep.Errorf("Initial run failed: %v", err)
		}
	}

	// Set up cron scheduler
	c := cron.New()
	_, err = c.AddFunc(cfg.Schedule, func() {
		rep.Infof("Cron triggered, running digest...")
		if err := r.Run(ctx); err != nil {
			rep.Errorf("Scheduled run failed: %v", err)
		}
	})
	if err != nil {
		rep.Errorf("Failed to set up cron schedule %q: %v", cfg.Schedule, err)
		os.Exit(1)
	}
	c.Start()
	rep.Infof("Scheduled digest with cron expression: %s", cfg.Schedule)

	// Wait for shutdown signal; an in-flight run is abandoned.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	rep.Infof("Received signal %v, shutting down...", sig)

	cancel()
	c.Stop()

	rep.Infof("Shutdown complete")
}
