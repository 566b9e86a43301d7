package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"twscraper/pkg/auth"
	"twscraper/pkg/config"
	"twscraper/pkg/logger"
	"twscraper/pkg/media"
	"twscraper/pkg/scraper"
	"twscraper/pkg/store"
	"twscraper/pkg/twitter"
)

var (
	// Scrape command flags
	infoOnly    bool
	deepScan    bool
	rateLimit   int
	profileName string
	dbPath      string
	mediaDir    string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <account-code> <handle>",
	Short: "Harvest profile stats and timeline posts for a Twitter account",
	Long: `Harvest one Twitter account: profile statistics first, then the
timeline page by page until the stored watermark (or the page cap) is
reached.

The account code is your own identifier for the tracked account; the
handle is the Twitter screen name. Credentials come from:
  - Stored bearer token (use 'twscraper auth login' to store)
  - TWSCRAPER_BEARER_TOKEN environment variable
  - Configuration file`,
	Example: `  # Incremental harvest (new posts since the last run)
  twscraper scrape acme-corp acmecorp

  # Profile statistics only, no timeline pagination
  twscraper scrape acme-corp acmecorp --info

  # Full historical pass, ignoring the watermark
  twscraper scrape acme-corp acmecorp --deep

  # Use a specific stored credential profile
  twscraper scrape acme-corp acmecorp --profile work`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runScrape(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().BoolVar(&infoOnly, "info", false, "collect profile statistics only")
	scrapeCmd.Flags().BoolVar(&deepScan, "deep", false, "ignore the watermark and harvest the full timeline")
	scrapeCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute (overrides config)")
	scrapeCmd.Flags().StringVarP(&profileName, "profile", "p", "", "use specific stored credential profile")
	scrapeCmd.Flags().StringVar(&dbPath, "database", "", "path to the sqlite database (overrides config)")
	scrapeCmd.Flags().StringVar(&mediaDir, "media-dir", "", "directory for downloaded media (overrides config)")
}

func runScrape(cmd *cobra.Command, args []string) {
	accountCode := strings.TrimSpace(args[0])
	handle := strings.TrimSpace(args[1])

	config.LoadDotEnv()

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	// Flag overrides
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if rateLimit > 0 {
		cfg.RateLimit.RequestsPerMinute = rateLimit
	}
	if dbPath != "" {
		cfg.Storage.DatabasePath = dbPath
	}
	if mediaDir != "" {
		cfg.Media.Directory = mediaDir
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("twscraper starting")

	// Resolve credentials: stored profile first, config/env as fallback
	if cfg.Twitter.BearerToken == "" || profileName != "" {
		manager, err := auth.NewManager()
		if err != nil {
			log.WithError(err).Error("failed to initialize credential manager")
			os.Exit(1)
		}

		name := profileName
		if name == "" {
			name = "default"
		}

		cred, err := manager.Retrieve(name)
		if err != nil {
			log.Error("no Twitter credentials found")
			fmt.Fprintln(os.Stderr, "No Twitter bearer token found.")
			fmt.Fprintln(os.Stderr, "\nTo store a token securely, run:")
			fmt.Fprintln(os.Stderr, "  twscraper auth login")
			fmt.Fprintln(os.Stderr, "\nOr set the environment variable:")
			fmt.Fprintln(os.Stderr, "  export TWSCRAPER_BEARER_TOKEN=your_token")
			os.Exit(1)
		}

		cfg.Twitter.BearerToken = cred.BearerToken
		if cred.UserAgent != "" {
			cfg.Twitter.UserAgent = cred.UserAgent
		}
		log.WithField("profile", cred.Name).Info("using stored credentials")
	}

	client := twitter.NewClient(cfg, log)

	db, err := store.New(cfg.Storage.DatabasePath, log)
	if err != nil {
		log.WithError(err).Error("failed to open database")
		os.Exit(1)
	}
	defer db.Close()

	resolver, err := media.NewResolver(cfg.Media.Directory, cfg.Media.DownloadTimeout, log)
	if err != nil {
		log.WithError(err).Error("failed to initialize media resolver")
		os.Exit(1)
	}

	job := scraper.Job{
		AccountCode: accountCode,
		Handle:      handle,
		Mode:        scraper.ModeFull,
		Deep:        deepScan,
	}
	if infoOnly {
		job.Mode = scraper.ModeInfo
	}

	s := scraper.New(client, db, resolver, log)

	result, err := s.Run(context.Background(), job)
	if err != nil {
		log.WithError(err).WithField("account", accountCode).Error("harvest failed")
		fmt.Fprintln(os.Stderr, "harvest failed:", err)
		os.Exit(1)
	}

	log.WithField("account", accountCode).Info("harvest completed")

	fmt.Printf("Account %s (%s)\n", accountCode, handle)
	fmt.Printf("  Tweets on profile: %d\n", result.TweetCount)
	if !infoOnly {
		fmt.Printf("  Text posts stored: %d\n", result.Texts)
		fmt.Printf("  Images stored:     %d\n", result.Images)
		fmt.Printf("  Videos stored:     %d\n", result.Videos)
		if !result.TimeCheck.IsZero() {
			fmt.Printf("  Oldest processed:  %s\n", result.TimeCheck.Format("2006-01-02 15:04:05"))
		}
	}
}
