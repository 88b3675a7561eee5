package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	err      error
	runs     int
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(&stubJob{name: "cycle", schedule: "@hourly"}))
	err := s.AddJob(&stubJob{name: "cycle", schedule: "@daily"})
	assert.ErrorContains(t, err, "already exists")
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(logger.NewNop())

	err := s.AddJob(&stubJob{name: "cycle", schedule: "not a cron expr"})
	assert.Error(t, err)
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(logger.NewNop())
	job := &stubJob{name: "cycle", schedule: "@hourly"}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	history, err := s.GetJobHistory("cycle")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
	assert.Equal(t, 1, job.runs)
	assert.Equal(t, 1.0, history.GetSuccessRate())
}

func TestRunJobRetriesOnFailure(t *testing.T) {
	s := New(logger.NewNop())
	s.maxRetries = 2
	s.retryDelay = 0

	job := &stubJob{name: "cycle", schedule: "@hourly", err: errors.New("upstream down")}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, 3, job.runs) // initial attempt + 2 retries

	history, err := s.GetJobHistory("cycle")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Equal(t, "upstream down", history.Results[0].Error)
}

func TestRunJobUnknownName(t *testing.T) {
	s := New(logger.NewNop())
	assert.Error(t, s.RunJob("missing"))
}

func TestGetJobStats(t *testing.T) {
	s := New(logger.NewNop())
	ok := &stubJob{name: "sync", schedule: "@daily"}
	require.NoError(t, s.AddJob(ok))

	s.runJob(ok)
	s.runJob(ok)

	stats := s.GetJobStats()
	require.Contains(t, stats, "sync")
	assert.Equal(t, 2, stats["sync"].TotalRuns)
	assert.Equal(t, 2, stats["sync"].SuccessCount)
	assert.Equal(t, "@daily", stats["sync"].Schedule)
	require.NotNil(t, stats["sync"].LastRun)
}

func TestJobHistoryCaps(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "cycle", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, 100)
	assert.Len(t, h.GetLatestResults(10), 10)
}
