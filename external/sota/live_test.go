package sota

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/resilience"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

func newTestLiveClient(t *testing.T, handler http.Handler) *LiveClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewLiveClient(LiveClientConfig{
		BaseURL: srv.URL + "/em",
		Tokens:  staticToken("live-token"),
		Retry:   resilience.RetryPolicy{MaxAttempts: 2, BaseDelay: 0, Multiplier: 1},
		Logger:  logging.NewNop(),
	})
}

func TestLiveClient_FetchLiveLineupSignsRequest(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/em/g1-team-away.json", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("access_token"); got != "live-token" {
			t.Errorf("unexpected access_token: got=%q", got)
		}
		_, _ = w.Write([]byte(`[{"number":"TEAM","first_name":"Астана"},{"number":"STARTING"},{"number":1,"gk":"1"}]`))
	})
	client := newTestLiveClient(t, mux)

	feed, err := client.FetchLiveLineup(context.Background(), "g1", lineup.SideAway)
	if err != nil {
		t.Fatalf("fetch live lineup: %v", err)
	}
	if feed.TeamName != "Астана" {
		t.Fatalf("unexpected team name: got=%q", feed.TeamName)
	}
	if len(feed.Starters) != 1 || feed.Starters[0].Amplua != lineup.AmpluaGoalkeeper {
		t.Fatalf("unexpected starters: %+v", feed.Starters)
	}
}

func TestLiveClient_FetchLiveEventsAcceptsStringDocument(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/em/g1-list.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"[{\"half\":1,\"time\":12,\"action\":\"ЖК\",\"first_name1\":\"Иван\"}]"`))
	})
	client := newTestLiveClient(t, mux)

	events, err := client.FetchLiveEvents(context.Background(), "g1")
	if err != nil {
		t.Fatalf("fetch live events: %v", err)
	}
	if len(events) != 1 || events[0].Minute != 12 || events[0].Action != "ЖК" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestLiveClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/em/g1-list.json", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	client := newTestLiveClient(t, mux)

	events, err := client.FetchLiveEvents(context.Background(), "g1")
	if err != nil {
		t.Fatalf("fetch live events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("unexpected events: got=%d want=0", len(events))
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("unexpected attempts: got=%d want=2", got)
	}
}

func TestLiveClient_MissingDocument(t *testing.T) {
	t.Parallel()

	client := newTestLiveClient(t, http.NewServeMux())

	_, err := client.FetchLiveLineup(context.Background(), "missing", lineup.SideHome)
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}
