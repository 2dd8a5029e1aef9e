package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentalx/mentalxbot/internal/config"
	"github.com/mentalx/mentalxbot/internal/database"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, database.Store) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, nil)
	return New(config.ReportConfig{Enabled: true, Addr: ":0"}, store, nil), store
}

func seedStore(t *testing.T, store database.Store) {
	t.Helper()
	ctx := context.Background()

	auths := []database.Authorization{
		{UserID: 1, AgeRange: "18-24", Gender: "Female", Country: "Armenia"},
		{UserID: 2, AgeRange: "25-34", Gender: "Male", Country: "Armenia"},
		{UserID: 3, AgeRange: "25-34", Gender: "Female", Country: "Moldova"},
	}
	for i := range auths {
		if err := store.UpsertAuthorization(ctx, &auths[i]); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.UpsertRiskScore(ctx, &database.RiskScore{UserID: 1, Percent: 70, Category: "Red"}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertRiskScore(ctx, &database.RiskScore{UserID: 2, Percent: 10, Category: "Green"}); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, day := range []string{"2024-03-01", "2024-03-01", "2024-03-04"} {
		msg := &database.Message{ChatID: 1, UserID: 1, Content: "hello", Timestamp: base.Add(time.Duration(i) * time.Hour)}
		if err := store.AppendMessage(ctx, msg); err != nil {
			t.Fatal(err)
		}
		if err := store.IncrementDailyCount(ctx, 1, day); err != nil {
			t.Fatal(err)
		}
	}
}

func get(t *testing.T, s *Server, target string, out any) int {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Header().Get(requestIDHeader) == "" {
		t.Errorf("%s: missing %s header", target, requestIDHeader)
	}
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s: decode: %v body=%s", target, err, rec.Body.String())
		}
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	var body map[string]string
	if code := get(t, s, "/health", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("GET /health = %d %v", code, body)
	}
}

func TestListUsers(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)
	seedStore(t, store)

	var all struct {
		Users []userView `json:"users"`
	}
	if code := get(t, s, "/api/v1/users", &all); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(all.Users) != 3 {
		t.Fatalf("got %d users, want 3", len(all.Users))
	}
	if all.Users[2].Risk != nil {
		t.Errorf("user 3 risk = %+v, want null", all.Users[2].Risk)
	}

	var red struct {
		Users []userView `json:"users"`
	}
	if code := get(t, s, "/api/v1/users?risk=red", &red); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(red.Users) != 1 || red.Users[0].UserID != 1 || red.Users[0].Risk.Percent != 70 {
		t.Errorf("red users = %+v", red.Users)
	}

	if code := get(t, s, "/api/v1/users?risk=purple", nil); code != http.StatusBadRequest {
		t.Errorf("unknown category status = %d, want 400", code)
	}
}

func TestGetUser(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)
	seedStore(t, store)

	var detail userDetailView
	if code := get(t, s, "/api/v1/users/1", &detail); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if detail.Authorization == nil || detail.Authorization.Country != "Armenia" {
		t.Errorf("authorization = %+v", detail.Authorization)
	}
	if len(detail.Messages) != 3 {
		t.Errorf("messages = %d, want 3", len(detail.Messages))
	}
	if detail.Analysis.Text != NoAnalysisText || detail.Analysis.UpdatedAt != nil {
		t.Errorf("analysis = %+v", detail.Analysis)
	}
	want := []dayView{{"2024-03-01", 2}, {"2024-03-02", 0}, {"2024-03-03", 0}, {"2024-03-04", 1}}
	if len(detail.DailyCounts) != len(want) {
		t.Fatalf("daily counts = %+v", detail.DailyCounts)
	}
	for i := range want {
		if detail.DailyCounts[i] != want[i] {
			t.Errorf("day %d = %+v, want %+v", i, detail.DailyCounts[i], want[i])
		}
	}

	if code := get(t, s, "/api/v1/users/999", nil); code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", code)
	}
	if code := get(t, s, "/api/v1/users/abc", nil); code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", code)
	}
}

func TestDistribution(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)
	seedStore(t, store)

	var body map[string][]database.DistributionEntry
	if code := get(t, s, "/api/v1/distribution", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	country := body["country"]
	if len(country) != 2 || country[0] != (database.DistributionEntry{Label: "Armenia", Count: 2}) {
		t.Errorf("country distribution = %+v", country)
	}
	if len(body["age_range"]) != 2 || len(body["gender"]) != 2 {
		t.Errorf("distribution = %+v", body)
	}
}

func TestFillDays(t *testing.T) {
	t.Parallel()

	if got := fillDays(nil); len(got) != 0 {
		t.Errorf("fillDays(nil) = %v", got)
	}
	got := fillDays([]*database.DailyCount{{Date: "2024-02-28", Count: 1}, {Date: "2024-03-01", Count: 4}})
	want := []dayView{{"2024-02-28", 1}, {"2024-02-29", 0}, {"2024-03-01", 4}}
	if len(got) != len(want) {
		t.Fatalf("fillDays() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
