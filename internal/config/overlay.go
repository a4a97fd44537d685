package config

// Overrides are per-run profile tweaks from the command line. Zero fields
// leave the loaded config untouched.
type Overrides struct {
	JobTitles    []string
	Country      string
	Language     string
	QueryBudget  int
	OutputDir    string
	ScrapeEngine string
	DocxExport   *bool
}

func ApplyOverrides(cfg *Config, o Overrides) {
	if len(o.JobTitles) > 0 {
		cfg.Profile.JobTitles = o.JobTitles
	}
	if o.Country != "" {
		cfg.Profile.Country = o.Country
	}
	if o.Language != "" {
		cfg.Profile.Language = o.Language
	}
	if o.QueryBudget != 0 {
		cfg.Profile.QueryBudget = o.QueryBudget
	}
	if o.OutputDir != "" {
		cfg.App.OutputDir = o.OutputDir
	}
	if o.ScrapeEngine != "" {
		cfg.Providers.ScrapeEngine = o.ScrapeEngine
	}
	if o.DocxExport != nil {
		cfg.Report.DocxExport = *o.DocxExport
	}
}
