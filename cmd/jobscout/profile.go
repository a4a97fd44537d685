package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"jobscout-engine/internal/config"
)

// runProfile persists the search profile into config.yml so plain `jobscout`
// runs need no flags.
func runProfile(args []string) int {
	fs := flag.NewFlagSet("jobscout profile", flag.ExitOnError)
	var (
		titles   = fs.String("titles", "", "comma separated job titles")
		country  = fs.String("country", "", "country to search in")
		language = fs.String("language", "", "posting language")
		budget   = fs.Int("budget", 0, "query budget, 1..10")
	)
	fs.Parse(args)

	dataDir := os.Getenv("JOBSCOUT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	cfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		log.Printf("config bootstrap failed: %v", err)
		return 2
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("config load failed (%s): %v", cfgPath, err)
		return 2
	}

	if *titles != "" {
		cfg.Profile.JobTitles = strings.Split(*titles, ",")
	}
	if *country != "" {
		cfg.Profile.Country = *country
	}
	if *language != "" {
		cfg.Profile.Language = *language
	}
	if *budget != 0 {
		cfg.Profile.QueryBudget = *budget
	}

	normalized, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.Printf("[config] warn: %s", w)
	}
	if !v.OK() {
		for _, e := range v.Errors {
			log.Printf("[config] error: %s", e)
		}
		return 2
	}

	if err := config.SaveAtomic(cfgPath, normalized); err != nil {
		log.Printf("save config: %v", err)
		return 5
	}
	log.Printf("profile saved to %s: %s in %s (%s, budget %d)",
		cfgPath, strings.Join(normalized.Profile.JobTitles, ", "),
		normalized.Profile.Country, normalized.Profile.Language,
		normalized.Profile.QueryBudget)
	return 0
}
