package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy: trimmed lists, defaults
// filled in for unset operational knobs. The profile itself is never
// defaulted; a run with no titles or country is a configuration error, not
// a guess.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Profile.JobTitles = trimList(out.Profile.JobTitles)
	out.Profile.Country = strings.TrimSpace(out.Profile.Country)
	out.Profile.Language = strings.TrimSpace(out.Profile.Language)

	// ---- defaults for unset knobs ----

	if out.App.DataDir == "" {
		out.App.DataDir = "."
	}
	if out.App.OutputDir == "" {
		out.App.OutputDir = "./jobscout-output"
	}
	if out.Profile.Language == "" {
		out.Profile.Language = "english"
	}
	if out.Profile.QueryBudget == 0 {
		out.Profile.QueryBudget = MaxQueryBudget
	}
	if out.Pipeline.MinResults == 0 {
		out.Pipeline.MinResults = 20
	}
	if out.Pipeline.MaxToolRounds == 0 {
		out.Pipeline.MaxToolRounds = 8
	}
	if out.LLM.Model == "" {
		out.LLM.Model = "gpt-4o"
	}
	if out.Providers.SearchMaxResults == 0 {
		out.Providers.SearchMaxResults = 10
	}
	if out.Providers.ScrapeEngine == "" {
		out.Providers.ScrapeEngine = "scrapegraph"
	}
	if out.Providers.HostReqPerSec == 0 {
		out.Providers.HostReqPerSec = 1
	}
	if out.Providers.HostBurst == 0 {
		out.Providers.HostBurst = 2
	}

	// ---- validation rules ----

	if len(out.Profile.JobTitles) == 0 {
		res.addErr("profile.job_titles is required")
	}
	if out.Profile.Country == "" {
		res.addErr("profile.country is required")
	}
	if out.Profile.QueryBudget < 1 || out.Profile.QueryBudget > MaxQueryBudget {
		res.addErr("profile.query_budget must be 1..%d", MaxQueryBudget)
	}
	if out.Pipeline.MinResults < 1 {
		res.addErr("pipeline.min_results must be > 0")
	} else if out.Pipeline.MinResults > 50 {
		res.addWarn("pipeline.min_results is high (%d); the search provider may not return that many postings.", out.Pipeline.MinResults)
	}
	if out.Pipeline.MaxToolRounds < 1 {
		res.addErr("pipeline.max_tool_rounds must be > 0")
	}
	if out.LLM.Temperature < 0 || out.LLM.Temperature > 2 {
		res.addErr("llm.temperature must be 0..2")
	}
	switch out.Providers.ScrapeEngine {
	case "scrapegraph", "local":
	default:
		res.addErr("providers.scrape_engine must be scrapegraph or local, got %q", out.Providers.ScrapeEngine)
	}
	if out.Providers.SearchMaxResults < 1 {
		res.addErr("providers.search_max_results must be > 0")
	}
	if out.Providers.HostReqPerSec <= 0 {
		res.addErr("providers.host_req_per_sec must be > 0")
	} else if out.Providers.HostReqPerSec > 5 {
		res.addWarn("providers.host_req_per_sec is aggressive (%.1f); job boards ban fast crawlers.", out.Providers.HostReqPerSec)
	}
	if out.Providers.HostBurst < 1 {
		res.addErr("providers.host_burst must be > 0")
	}

	return out, res
}
