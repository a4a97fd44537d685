package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"jobscout-engine/internal/schema"
)

// Stage names, stable across runs; the ledger keys stage rows by them.
const (
	StageQueries = "queries"
	StageSearch  = "search"
	StageExtract = "extract"
	StageReport  = "report"
)

// Artifact file names, fixed so a re-run overwrites the previous run in
// place.
const (
	ArtifactQueries = "step_1_suggested_job_search_queries.json"
	ArtifactResults = "step_2_job_search_results.json"
	ArtifactJobs    = "step_3_extracted_jobs.json"
	ArtifactReport  = "step_4_recruitment_report.html"
)

// ScrapeInstruction renders what the scrape tool asks its engine to pull
// from each posting page: one job in the same shape the extract stage
// validates against.
func ScrapeInstruction() (string, error) {
	def, err := schema.JobDetailsContract().Definition()
	if err != nil {
		return "", fmt.Errorf("scrape instruction: %w", err)
	}
	return "Extract the job posting details from this web page as a single " +
		"JSON object matching this schema:\n```json\n" + string(def) + "\n```", nil
}

// Params describes one job search run.
type Params struct {
	JobTitles   []string
	Country     string
	Language    string
	QueryBudget int
	MinResults  int
}

func (p Params) vars() map[string]string {
	return map[string]string{
		"job_titles":   strings.Join(p.JobTitles, ", "),
		"country_name": p.Country,
		"language":     p.Language,
		"query_budget": strconv.Itoa(p.QueryBudget),
		"min_results":  strconv.Itoa(p.MinResults),
	}
}

// JobSearch assembles the four-stage flow and the placeholder values its
// templates need.
func JobSearch(p Params) ([]Stage, map[string]string) {
	queryPlan := schema.QueryPlanContract(p.QueryBudget)
	resultSet := schema.ResultSetContract(p.MinResults)
	jobSet := schema.JobSetContract()

	stages := []Stage{
		{
			Name: StageQueries,
			Role: "You are a job search expert. You know how job boards index postings " +
				"and how search engines treat quoting and site filters, and you write " +
				"queries that surface fresh, relevant listings.",
			Instruction: "Propose web search queries for finding current job postings.\n\n" +
				"Job titles: {job_titles}\n" +
				"Country: {country_name}\n" +
				"Posting language: {language}\n\n" +
				"Write between 1 and {query_budget} queries. Prefer precise queries over " +
				"broad ones. Quote exact titles and add {country_name} or one of its major " +
				"cities. Operators like site:linkedin.com/jobs or OR are welcome when they " +
				"sharpen a query. Every query must target postings written in {language}.",
			Artifact: ArtifactQueries,
			Handoff:  "Suggested search queries",
			Contract: &queryPlan,
		},
		{
			Name: StageSearch,
			Role: "You are a diligent research assistant collecting job postings. You run " +
				"searches one query at a time and keep only results that look like real " +
				"postings.",
			Instruction: "Run every proposed query with the search tool and collect job " +
				"posting results.\n\n" +
				"Collect at least {min_results} results in total. When a pass comes back " +
				"thin, vary the phrasing or split a query and search again. Keep only " +
				"results that plausibly point at a posting or a job board listing for " +
				"{job_titles} in {country_name}. For each kept result record its title, " +
				"its url, a snippet and the query that found it.",
			Artifact: ArtifactResults,
			Handoff:  "Collected search results",
			Tools:    []string{"search"},
			Contract: &resultSet,
		},
		{
			Name: StageExtract,
			Role: "You are a meticulous recruitment analyst. You read job posting pages " +
				"and pull out the facts a candidate compares offers by.",
			Instruction: "Visit each collected result with the scrape tool and extract the " +
				"posting details.\n\n" +
				"Work through every url from the search results. For each page that turns " +
				"out to be a real job posting, record the job title, the company, the " +
				"location, the url of the posting, the posting date and the salary when " +
				"the page states one. Omit the salary field entirely when it does not. " +
				"Add up to 5 short specs naming what the employer asks for, such as " +
				"seniority, stack or years of experience. Rank the postings by how well " +
				"they match {job_titles}, starting at 1 for the best match, and close " +
				"each one with one or two sentences of notes.\n\n" +
				"Skip pages that are not postings. A scrape failure for one url must not " +
				"stop the rest; move on to the next one.",
			Artifact: ArtifactJobs,
			Handoff:  "Extracted job postings",
			Tools:    []string{"scrape"},
			Contract: &jobSet,
		},
		{
			Name: StageReport,
			Role: "You are a recruitment report writer. You turn structured job data into " +
				"a clean standalone document.",
			Instruction: "Compose an HTML recruitment report from the extracted jobs.\n\n" +
				"Write a complete HTML5 document in {language}. Link the Bootstrap 5 " +
				"stylesheet from its public CDN and lay the postings out as cards ordered " +
				"by rank. Each card shows the job title and company as its header, the " +
				"location, posting date and salary as labeled fields, the specs as a " +
				"bullet list, the notes as a short paragraph and a link to the posting. " +
				"Open the document with a short summary stating how many postings were " +
				"found for {job_titles} in {country_name}.\n\n" +
				"Respond with the HTML document only, no surrounding commentary.",
			Artifact: ArtifactReport,
		},
	}
	return stages, p.vars()
}
