// Package domain holds the artifact types the pipeline stages hand to each
// other. Tags serve three readers: json for the wire, validate for contract
// checks, jsonschema for the shape description embedded in stage instructions.
package domain

// QueryPlan is the stage-1 artifact: the search queries to run.
type QueryPlan struct {
	Queries []string `json:"queries" validate:"dive,required" jsonschema:"description=Google-ready job search query strings"`
}

// SearchResult is one posting page found by the search collaborator.
type SearchResult struct {
	Title   string `json:"title" validate:"required" jsonschema:"description=Title of the job posting page"`
	URL     string `json:"url" validate:"required,url" jsonschema:"description=URL of the job posting page"`
	Snippet string `json:"snippet" validate:"required" jsonschema:"description=Short content snippet from the page"`
	Query   string `json:"search_query" validate:"required" jsonschema:"description=The search query that produced this result"`
}

// ResultSet is the stage-2 artifact.
type ResultSet struct {
	Results []SearchResult `json:"results" validate:"dive" jsonschema:"description=Collected job posting search results"`
}

// JobSpec is a single named requirement taken from a posting, e.g.
// {"name": "experience", "value": "3+ years"}.
type JobSpec struct {
	Name  string `json:"name" validate:"required" jsonschema:"description=Specification name"`
	Value string `json:"value" validate:"required" jsonschema:"description=Specification value"`
}

// ExtractedJob carries the fields pulled from one posting page. Salary is
// the only optional field; postings routinely omit it.
type ExtractedJob struct {
	SourceURL   string    `json:"source_url" validate:"required,url" jsonschema:"description=URL of the page the job was extracted from"`
	Title       string    `json:"title" validate:"required" jsonschema:"description=Job title"`
	Company     string    `json:"company" validate:"required" jsonschema:"description=Hiring company name"`
	Location    string    `json:"location" validate:"required" jsonschema:"description=Job location"`
	PostingURL  string    `json:"posting_url" validate:"required,url" jsonschema:"description=URL to apply for the job"`
	PostingDate string    `json:"posting_date" validate:"required" jsonschema:"description=Date the job was posted"`
	Salary      string    `json:"salary,omitempty" jsonschema:"description=Salary if stated on the posting"`
	Specs       []JobSpec `json:"specs" validate:"required,dive" jsonschema:"description=Named requirements listed by the posting"`
	Rank        int       `json:"rank" validate:"min=1" jsonschema:"description=Relevance rank starting at 1 for the best match"`
	Notes       []string  `json:"notes" validate:"required" jsonschema:"description=Short remarks on how well the job fits the search profile"`
}

// JobSet is the stage-3 artifact.
type JobSet struct {
	Jobs []ExtractedJob `json:"jobs" validate:"dive" jsonschema:"description=Jobs extracted from the collected posting pages"`
}
