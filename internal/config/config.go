package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// MaxQueryBudget caps profile.query_budget. The model gets noticeably
// repetitive past ten queries for one profile.
const MaxQueryBudget = 10

type Config struct {
	App struct {
		DataDir   string `yaml:"data_dir"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"app"`

	Profile struct {
		JobTitles   []string `yaml:"job_titles"`
		Country     string   `yaml:"country"`
		Language    string   `yaml:"language"`
		QueryBudget int      `yaml:"query_budget"`
	} `yaml:"profile"`

	Pipeline struct {
		MinResults    int `yaml:"min_results"`
		MaxToolRounds int `yaml:"max_tool_rounds"`
	} `yaml:"pipeline"`

	LLM struct {
		Model       string  `yaml:"model"`
		BaseURL     string  `yaml:"base_url"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`

	Providers struct {
		SearchMaxResults int     `yaml:"search_max_results"`
		ScrapeEngine     string  `yaml:"scrape_engine"` // scrapegraph/local
		HostReqPerSec    float64 `yaml:"host_req_per_sec"`
		HostBurst        int     `yaml:"host_burst"`
	} `yaml:"providers"`

	Report struct {
		DocxExport bool `yaml:"docx_export"`
	} `yaml:"report"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
