package pipeline

import (
	"strings"
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	vars := map[string]string{"job_titles": "golang developer", "query_budget": "5"}
	got, err := renderTemplate("find {job_titles} with up to {query_budget} queries", vars)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "find golang developer with up to 5 queries"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderTemplateReportsMissingNames(t *testing.T) {
	_, err := renderTemplate("find {job_titles} in {country_name}", map[string]string{"job_titles": "dev"})
	if err == nil {
		t.Fatal("expected an error for the unknown placeholder")
	}
	if !strings.Contains(err.Error(), "country_name") {
		t.Fatalf("error %q does not name the missing placeholder", err)
	}
}

func TestRenderTemplateLeavesLiteralBracesAlone(t *testing.T) {
	in := `respond with {"queries": []} when nothing matches`
	got, err := renderTemplate(in, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != in {
		t.Fatalf("literal braces were rewritten: %q", got)
	}
}
