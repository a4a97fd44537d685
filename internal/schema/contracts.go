package schema

import "jobscout-engine/internal/domain"

// QueryPlanContract bounds the stage-1 artifact to 1..budget queries.
func QueryPlanContract(budget int) Contract {
	return Contract{
		Name:     "query plan",
		Artifact: func() any { return &domain.QueryPlan{} },
		Limits:   []Limit{{Field: "queries", Min: 1, Max: budget}},
	}
}

// ResultSetContract requires at least minResults collected postings.
func ResultSetContract(minResults int) Contract {
	return Contract{
		Name:     "result set",
		Artifact: func() any { return &domain.ResultSet{} },
		Limits:   []Limit{{Field: "results", Min: minResults}},
	}
}

// JobSetContract carries no cardinality bound; a thin page yields few jobs.
func JobSetContract() Contract {
	return Contract{
		Name:     "job set",
		Artifact: func() any { return &domain.JobSet{} },
	}
}

// JobDetailsContract describes a single extracted job. It is never validated
// against directly; its definition is serialized into the scrape tool's
// instruction so the engine knows the target shape.
func JobDetailsContract() Contract {
	return Contract{
		Name:     "job details",
		Artifact: func() any { return &domain.ExtractedJob{} },
	}
}
