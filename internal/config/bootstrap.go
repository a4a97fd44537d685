package config

import (
	"errors"
	"os"
	"path/filepath"
)

const defaultYAML = `# jobscout configuration
app:
  data_dir: .
  output_dir: ./jobscout-output

profile:
  job_titles: []        # e.g. ["AI Engineer", "ML Engineer"]
  country: ""           # e.g. Egypt
  language: english
  query_budget: 10      # 1..10

pipeline:
  min_results: 20       # stage 2 must collect at least this many postings
  max_tool_rounds: 8

llm:
  model: gpt-4o
  base_url: ""          # set to use another OpenAI-compatible backend
  temperature: 0

providers:
  search_max_results: 10
  scrape_engine: scrapegraph   # or: local
  host_req_per_sec: 1
  host_burst: 2

report:
  docx_export: false
`

// EnsureUserConfig writes the commented default config on first run and
// returns the config path either way.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(userPath, []byte(defaultYAML), 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}
