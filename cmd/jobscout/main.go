// Command jobscout runs the staged job search: the model proposes search
// queries, collects postings through web search, extracts details from each
// posting page and composes a report. Every stage writes its artifact under
// the output directory before the next stage starts.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"jobscout-engine/internal/artifacts"
	"jobscout-engine/internal/config"
	"jobscout-engine/internal/llm"
	"jobscout-engine/internal/netutil"
	"jobscout-engine/internal/pipeline"
	"jobscout-engine/internal/report"
	"jobscout-engine/internal/scrape"
	"jobscout-engine/internal/search"
	"jobscout-engine/internal/secrets"
	"jobscout-engine/internal/session"
	"jobscout-engine/internal/tools"
)

const docxArtifact = "recruitment_report.docx"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "keys":
			os.Exit(runKeys(os.Args[2:]))
		case "profile":
			os.Exit(runProfile(os.Args[2:]))
		}
	}
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("jobscout", flag.ExitOnError)
	var (
		titles   = fs.String("titles", "", "comma separated job titles, overrides the config profile")
		country  = fs.String("country", "", "country to search in, overrides the config profile")
		language = fs.String("language", "", "posting language, overrides the config profile")
		budget   = fs.Int("budget", 0, "query budget for this run, 1..10")
		outDir   = fs.String("out", "", "artifact output directory, overrides the config")
		engine   = fs.String("engine", "", "scrape engine: scrapegraph or local")
		docx     = fs.Bool("docx", false, "also export the extracted jobs as "+docxArtifact)
	)
	fs.Parse(args)

	// .env is a convenience for local runs; the real environment wins.
	_ = godotenv.Load()

	// Data dir: env if provided, else local folder.
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
	// the env var that located the config also pins the data dir
	if env := os.Getenv("JOBSCOUT_DATA_DIR"); env != "" {
		cfg.App.DataDir = env
	}

	o := config.Overrides{
		Country:      strings.TrimSpace(*country),
		Language:     strings.TrimSpace(*language),
		QueryBudget:  *budget,
		OutputDir:    *outDir,
		ScrapeEngine: *engine,
	}
	if *titles != "" {
		o.JobTitles = strings.Split(*titles, ",")
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "docx" {
			o.DocxExport = docx
		}
	})
	config.ApplyOverrides(&cfg, o)

	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.Printf("[config] warn: %s", w)
	}
	if !v.OK() {
		for _, e := range v.Errors {
			log.Printf("[config] error: %s", e)
		}
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runPipeline(ctx, cfg)
}

func runPipeline(ctx context.Context, cfg config.Config) int {
	store, err := artifacts.New(cfg.App.OutputDir)
	if err != nil {
		log.Printf("%v", err)
		return 5
	}

	// one writer per output dir
	lock := flock.New(filepath.Join(cfg.App.OutputDir, ".jobscout.lock"))
	held, err := lock.TryLock()
	if err != nil {
		log.Printf("run lock: %v", err)
		return 5
	}
	if !held {
		log.Printf("another run is writing to %s", cfg.App.OutputDir)
		return 2
	}
	defer lock.Unlock()

	needed := []secrets.Provider{secrets.OpenAI, secrets.Tavily}
	if cfg.Providers.ScrapeEngine == "scrapegraph" {
		needed = append(needed, secrets.ScrapeGraph)
	}
	creds, err := secrets.ResolveAll(ctx, needed...)
	if err != nil {
		log.Printf("%v", err)
		return 2
	}

	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		log.Printf("create data dir: %v", err)
		return 5
	}
	db, err := session.Open(filepath.Join(cfg.App.DataDir, "jobscout.db"))
	if err != nil {
		log.Printf("%v", err)
		return 5
	}
	defer db.Close()

	limiter := netutil.NewHostLimiter(cfg.Providers.HostReqPerSec, cfg.Providers.HostBurst)
	searcher := search.New(search.Config{
		APIKey:     creds[secrets.Tavily.Name],
		MaxResults: cfg.Providers.SearchMaxResults,
		Limiter:    limiter,
	})
	var provider scrape.Provider
	if cfg.Providers.ScrapeEngine == "local" {
		provider = scrape.NewLocal(limiter)
	} else {
		provider = scrape.NewGraph(scrape.GraphConfig{
			APIKey:  creds[secrets.ScrapeGraph.Name],
			Limiter: limiter,
		})
	}
	scrapeInstruction, err := pipeline.ScrapeInstruction()
	if err != nil {
		log.Printf("%v", err)
		return 2
	}

	model := llm.New(llm.Config{
		APIKey:        creds[secrets.OpenAI.Name],
		BaseURL:       cfg.LLM.BaseURL,
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		MaxToolRounds: cfg.Pipeline.MaxToolRounds,
	})

	params := pipeline.Params{
		JobTitles:   cfg.Profile.JobTitles,
		Country:     cfg.Profile.Country,
		Language:    cfg.Profile.Language,
		QueryBudget: cfg.Profile.QueryBudget,
		MinResults:  cfg.Pipeline.MinResults,
	}
	stages, vars := pipeline.JobSearch(params)

	rec, err := db.Begin(params.JobTitles, params.Country, params.Language, params.QueryBudget)
	if err != nil {
		log.Printf("%v", err)
		return 5
	}

	p, err := pipeline.New(pipeline.Config{
		Capability: model,
		Store:      store,
		Recorder:   rec,
		Tools: []tools.Tool{
			tools.Search(searcher),
			tools.Scrape(provider, scrapeInstruction),
		},
		Stages: stages,
		Vars:   vars,
	})
	if err != nil {
		rec.Finish(session.StatusFailed, err)
		log.Printf("%v", err)
		return exitCode(err)
	}

	log.Printf("[jobscout] run %s: %s in %s (budget %d, engine %s)",
		rec.RunID(), strings.Join(params.JobTitles, ", "), params.Country,
		params.QueryBudget, cfg.Providers.ScrapeEngine)

	out, err := p.Run(ctx)
	if err != nil {
		rec.Finish(session.StatusFailed, err)
		if errors.Is(err, context.Canceled) {
			log.Printf("[jobscout] interrupted")
			return 1
		}
		log.Printf("[jobscout] run failed: %v", err)
		return exitCode(err)
	}
	rec.Finish(session.StatusCompleted, nil)
	log.Printf("[jobscout] done, report at %s", out.Report)

	if cfg.Report.DocxExport {
		docxPath := store.Path(docxArtifact)
		if err := report.ExportDocx(store.Path(pipeline.ArtifactJobs), docxPath); err != nil {
			log.Printf("[report] docx export failed: %v", err)
			return 5
		}
		log.Printf("[report] docx export at %s", docxPath)
	}
	return 0
}

func exitCode(err error) int {
	kind, ok := pipeline.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case pipeline.KindConfig:
		return 2
	case pipeline.KindValidation:
		return 3
	case pipeline.KindCollaborator:
		return 4
	case pipeline.KindPersistence:
		return 5
	}
	return 1
}
