package main

import (
	"time"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/contacts"
	"github.com/sells-group/outreach-cli/internal/provider"
	"github.com/sells-group/outreach-cli/internal/waterfall"
	"github.com/sells-group/outreach-cli/pkg/apify"
	"github.com/sells-group/outreach-cli/pkg/apollo"
	"github.com/sells-group/outreach-cli/pkg/hunter"
)

// buildProviders assembles the capability set from whatever vendors are
// configured. Unconfigured vendors leave their capability nil and the
// waterfall skips the stage.
func buildProviders(cfg *config.Config) waterfall.Providers {
	var p waterfall.Providers

	if cfg.Hunter.Key != "" {
		client := hunter.NewClient(cfg.Hunter.Key, hunter.WithBaseURL(cfg.Hunter.BaseURL))
		p.Finder = provider.NewHunterFinder(client)
		p.Verifier = provider.NewHunterVerifier(client)
	}
	if cfg.Apollo.Key != "" {
		p.Matcher = provider.NewApolloMatcher(
			apollo.NewClient(cfg.Apollo.Key, apollo.WithBaseURL(cfg.Apollo.BaseURL)),
		)
	}

	return p
}

// buildSearcher assembles the scraping-based contact searcher, or nil when
// no actor is configured.
func buildSearcher(cfg *config.Config) provider.ContactSearcher {
	if cfg.Apify.Token == "" || cfg.Apify.ActorID == "" {
		return nil
	}
	client := apify.NewClient(cfg.Apify.Token, apify.WithBaseURL(cfg.Apify.BaseURL))
	return provider.NewApifySearcher(client, cfg.Apify.ActorID,
		apify.RunOptions{
			MemoryMBytes: cfg.Apify.MemoryMB,
			TimeoutSecs:  cfg.Apify.TimeoutSecs,
		},
		apify.WithMaxWait(time.Duration(cfg.Apify.MaxWaitSecs)*time.Second),
	)
}

// buildExecutor creates the waterfall executor from config, loading the
// policy file when one is set.
func buildExecutor(cfg *config.Config) (*waterfall.Executor, error) {
	policy := waterfall.DefaultPolicy()
	if cfg.Waterfall.PolicyPath != "" {
		loaded, err := waterfall.LoadPolicy(cfg.Waterfall.PolicyPath)
		if err != nil {
			return nil, err
		}
		policy = loaded
	}
	return waterfall.NewExecutor(policy, buildProviders(cfg)), nil
}

// buildDiscoverer creates the company contact discoverer, or nil when no
// scraper is configured.
func buildDiscoverer(cfg *config.Config) *contacts.Discoverer {
	searcher := buildSearcher(cfg)
	if searcher == nil {
		return nil
	}
	return contacts.NewDiscoverer(searcher, buildProviders(cfg).Verifier)
}

// batchOptions maps config to waterfall batch options.
func batchOptions(cfg *config.Config) waterfall.BatchOptions {
	return waterfall.BatchOptions{
		Concurrency: cfg.Batch.Concurrency,
		Pacing:      time.Duration(cfg.Batch.PacingMs) * time.Millisecond,
	}
}
