// Package report renders secondary exports of the extracted jobs. The
// canonical report is the HTML document the model composes; the docx export
// is a plain summary that travels well as a mail attachment.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gingfrederik/docx"

	"jobscout-engine/internal/domain"
)

// ExportDocx reads the extracted-jobs artifact at jobsPath and writes a Word
// document to outPath, postings ordered by rank.
func ExportDocx(jobsPath, outPath string) error {
	raw, err := os.ReadFile(jobsPath)
	if err != nil {
		return fmt.Errorf("report: read jobs artifact: %w", err)
	}
	var set domain.JobSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return fmt.Errorf("report: decode jobs artifact: %w", err)
	}
	sort.Slice(set.Jobs, func(i, j int) bool { return set.Jobs[i].Rank < set.Jobs[j].Rank })

	f := docx.NewFile()
	f.AddParagraph().AddText("Recruitment Report").Size(16)
	f.AddParagraph().AddText(fmt.Sprintf("%d postings", len(set.Jobs))).Color("808080")

	for _, job := range set.Jobs {
		f.AddParagraph().AddText(fmt.Sprintf("%d. %s, %s", job.Rank, job.Title, job.Company)).Size(13)
		f.AddParagraph().AddText(metaLine(job)).Color("404040")
		for _, spec := range job.Specs {
			f.AddParagraph().AddText("  - " + spec.Name + ": " + spec.Value)
		}
		if len(job.Notes) > 0 {
			f.AddParagraph().AddText(strings.Join(job.Notes, " "))
		}
		f.AddParagraph().AddText(job.PostingURL).Size(10).Color("0000FF")
	}

	if err := f.Save(outPath); err != nil {
		return fmt.Errorf("report: save %s: %w", outPath, err)
	}
	return nil
}

func metaLine(j domain.ExtractedJob) string {
	parts := []string{j.Location, "posted " + j.PostingDate}
	if j.Salary != "" {
		parts = append(parts, j.Salary)
	}
	return strings.Join(parts, ", ")
}
