package agent

import (
	"context"
	"encoding/json"
	"hr-comparator/internal/config"
	"hr-comparator/internal/domain"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleRequest() domain.CompareBatchRequest {
	return domain.CompareBatchRequest{
		WorkflowID: "WF-1",
		JDText:     "Backend Engineer\n\nGo, Postgres and Kubernetes",
		Resumes: []domain.ResumeInput{
			{ResumeID: "r1", ResumeText: "Go developer with Postgres"},
			{ResumeID: "r2", ResumeText: "Java developer"},
		},
	}
}

func TestClient_CompareBatch_Success(t *testing.T) {
	var got domain.CompareBatchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/compare-batch", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"processing_time_ms": 1234,
			"results": [
				{"resume_id": "r1", "match_score": 88.5, "fit_category": "Best Fit", "selection_reason": "strong"},
				{"resume_id": "r2", "match_score": 30, "fit_category": "Not Fit"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second, zap.NewNop())
	resp, err := client.CompareBatch(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "WF-1", got.WorkflowID)
	assert.Len(t, got.Resumes, 2)
	assert.EqualValues(t, 1234, resp.ProcessingTimeMs)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 88.5, resp.Results[0].MatchScore)
	assert.Equal(t, domain.FitBest, resp.Results[0].FitCategory)
}

func TestClient_CompareBatch_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-200", http.StatusBadGateway, `{"detail":"upstream down"}`},
		{"malformed json", http.StatusOK, `{"results": [`},
		{"missing results", http.StatusOK, `{"processing_time_ms": 10}`},
		{"score out of range", http.StatusOK, `{"processing_time_ms": 10, "results": [{"resume_id":"r1","match_score":140}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second, zap.NewNop()).CompareBatch(context.Background(), sampleRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrAgentProtocol)
		})
	}
}

func TestClient_CompareBatch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 50*time.Millisecond, zap.NewNop()).CompareBatch(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAgentTimeout)
	assert.Contains(t, err.Error(), "timeout")
}

func TestClient_CompareBatch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, zap.NewNop()).CompareBatch(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAgentUnavailable)
	assert.Contains(t, err.Error(), "connection failed")
}

func TestNew_DisabledUsesMock(t *testing.T) {
	a := New(config.AgentConfig{Enabled: false, Version: "v2"}, zap.NewNop())
	_, ok := a.(*Mock)
	assert.True(t, ok)
}

func TestMock_DeterministicScores(t *testing.T) {
	m := NewMock("")
	req := sampleRequest()

	first, err := m.CompareBatch(context.Background(), req)
	require.NoError(t, err)
	second, err := m.CompareBatch(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, first.Results, 2)
	assert.Equal(t, first.Results[0].MatchScore, second.Results[0].MatchScore)
	assert.Greater(t, first.Results[0].MatchScore, first.Results[1].MatchScore)
	assert.Contains(t, first.Results[0].ResumeExtracted.SkillsMatched, "postgres")
	assert.Equal(t, domain.FitForScore(first.Results[1].MatchScore), first.Results[1].FitCategory)
	require.NotNil(t, first.Results[0].AgentVersion)
	assert.Equal(t, "mock-v1.0.0", *first.Results[0].AgentVersion)
}

func TestMock_FullOverlapIsBestFit(t *testing.T) {
	res, err := NewMock("v1").CompareBatch(context.Background(), domain.CompareBatchRequest{
		JDText:  "Go Kubernetes",
		Resumes: []domain.ResumeInput{{ResumeID: "r1", ResumeText: "kubernetes and go"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Results[0].MatchScore)
	assert.Equal(t, domain.FitBest, res.Results[0].FitCategory)
}
