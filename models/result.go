package models

import "fmt"

// Scope stages that can leave a query with no rows.
const (
	StageScope  = "scope"
	StageFilter = "filter"
)

// EmptyResultWarning marks an informational empty state. It is not an error.
type EmptyResultWarning struct {
	Stage string `json:"stage"`
}

func (w EmptyResultWarning) Message() string {
	if w.Stage == StageScope {
		return "No students in your scope"
	}
	return "No records found matching your query"
}

// ResultSet is the outcome of executing a QuerySpec.
type ResultSet struct {
	Aggregate Aggregate           `json:"aggregate"`
	Count     int                 `json:"count"`
	Columns   []string            `json:"columns"`
	Records   []StudentRecord     `json:"records"`
	Empty     *EmptyResultWarning `json:"empty,omitempty"`
}

// IsCount reports whether the result is a scalar count.
func (r *ResultSet) IsCount() bool {
	return r.Aggregate == AggregateCount
}

// Rows returns the records projected onto Columns.
func (r *ResultSet) Rows() [][]string {
	rows := make([][]string, 0, len(r.Records))
	for _, rec := range r.Records {
		row := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			row[i] = rec.Text(col)
		}
		rows = append(rows, row)
	}
	return rows
}

// Summary describes the result in one line.
func (r *ResultSet) Summary() string {
	switch {
	case r.Count == 0:
		if r.Empty != nil {
			return r.Empty.Message() + "."
		}
		return "No records found matching your query."
	case r.IsCount():
		return fmt.Sprintf("Found %d record(s) matching your criteria.", r.Count)
	case r.Count == 1:
		return "Found 1 record matching your query."
	}
	return fmt.Sprintf("Found %d records matching your query.", r.Count)
}

// ScoreStats summarizes quiz scores over a set of records.
type ScoreStats struct {
	Total             int     `json:"total_students"`
	HomeworkSubmitted int     `json:"homework_submitted"`
	HomeworkPending   int     `json:"homework_pending"`
	AverageScore      float64 `json:"avg_score"`
	HighestScore      int     `json:"highest_score"`
	LowestScore       int     `json:"lowest_score"`
}

// ComputeStats aggregates homework and score figures. Zero records give zero stats.
func ComputeStats(records []StudentRecord) ScoreStats {
	stats := ScoreStats{Total: len(records)}
	if len(records) == 0 {
		return stats
	}
	sum := 0
	stats.HighestScore = records[0].QuizScore
	stats.LowestScore = records[0].QuizScore
	for _, r := range records {
		switch r.HomeworkStatus {
		case HomeworkSubmitted:
			stats.HomeworkSubmitted++
		case HomeworkPending:
			stats.HomeworkPending++
		}
		sum += r.QuizScore
		if r.QuizScore > stats.HighestScore {
			stats.HighestScore = r.QuizScore
		}
		if r.QuizScore < stats.LowestScore {
			stats.LowestScore = r.QuizScore
		}
	}
	stats.AverageScore = float64(sum) / float64(len(records))
	return stats
}
