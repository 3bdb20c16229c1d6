package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/raysh454/tempusfetch/internal/archive"
	"github.com/raysh454/tempusfetch/internal/extract"
	"github.com/raysh454/tempusfetch/internal/logging"
	"github.com/raysh454/tempusfetch/internal/session"
	"github.com/raysh454/tempusfetch/internal/tempus"
	"github.com/raysh454/tempusfetch/internal/testutil"
	"github.com/raysh454/tempusfetch/internal/webclient"
)

// newTestApplication returns an Application whose client factory hands out
// wc, writing outputs into a temp dir.
func newTestApplication(t *testing.T, wc *testutil.DummyWebClient) *Application {
	t.Helper()
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()

	a := NewApplication(cfg, &testutil.DummyLogger{})
	a.NewClient = func(webclient.Config, logging.Logger) (webclient.WebClient, error) {
		return wc, nil
	}
	return a
}

// seedOutput writes a previous run's output to path and returns its bytes.
func seedOutput(t *testing.T, path string) []byte {
	t.Helper()
	prev := []byte("[\n  {\n    \"rank\": 1\n  }\n]")
	if err := os.WriteFile(path, prev, 0o644); err != nil {
		t.Fatal(err)
	}
	return prev
}

// assertUnchanged fails unless path still holds want.
func assertUnchanged(t *testing.T, path string, want []byte) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("previous output lost: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("previous output overwritten with %s", got)
	}
}

func TestRun_SearchWritesWholeResponse(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Page: testutil.TokenPage("tok%3D", "sess"),
		Body: []byte(`[{"id":269397,"first_name":"Victor","last_name":"Johansson","club":"Malmö KK"}]`),
	}
	a := newTestApplication(t, wc)

	rep, err := a.Run(context.Background(), a.Config.SearchJob(tempus.DefaultSearchQuery()))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "[\n  {\n    \"id\": 269397,\n    \"first_name\": \"Victor\",\n    \"last_name\": \"Johansson\",\n    \"club\": \"Malmö KK\"\n  }\n]"
	data, err := os.ReadFile(filepath.Join(a.Config.OutputDir, "swimmer_output.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != want {
		t.Errorf("output mismatch\n got %s\nwant %s", data, want)
	}

	if len(wc.Navigations) != 1 || wc.Navigations[0] != "https://www.tempusopen.se/swimmers" {
		t.Errorf("unexpected navigations %v", wc.Navigations)
	}
	if len(wc.Requests) != 1 || wc.Requests[0].Method != http.MethodPost {
		t.Fatalf("expected one POST, got %v", wc.Requests)
	}
	if wc.Requests[0].Headers.Get("X-Xsrf-Token") != "tok=" {
		t.Errorf("expected decoded token header, got %q", wc.Requests[0].Headers.Get("X-Xsrf-Token"))
	}
	if wc.Closed != 1 {
		t.Errorf("expected client closed once, got %d", wc.Closed)
	}
	if rep.Status != 200 || rep.Verified != -1 || rep.Extraction != nil {
		t.Errorf("unexpected report %+v", rep)
	}
}

func TestRun_SwimmerAndEventTargets(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Page: testutil.TokenPage("a", "b"), Body: []byte(`{"component":"x"}`)}
	a := newTestApplication(t, wc)
	ctx := context.Background()

	if _, err := a.Run(ctx, a.Config.SwimmerJob(42)); err != nil {
		t.Fatalf("swimmer: %v", err)
	}
	if _, err := a.Run(ctx, a.Config.EventJob(42, 7)); err != nil {
		t.Fatalf("event: %v", err)
	}

	if wc.Requests[0].URL != "https://www.tempusopen.se/swimmers/42" {
		t.Errorf("swimmer url %q", wc.Requests[0].URL)
	}
	if wc.Navigations[1] != "https://www.tempusopen.se/swimmers/42/swimming" {
		t.Errorf("event bootstrap %q", wc.Navigations[1])
	}
	if wc.Requests[1].URL != "https://www.tempusopen.se/swimmers/42/events/7" {
		t.Errorf("event url %q", wc.Requests[1].URL)
	}
	for _, name := range []string{"swimmer_details_output.json", "event_details_output.json"} {
		if _, err := os.Stat(filepath.Join(a.Config.OutputDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if wc.Closed != 2 {
		t.Errorf("expected a close per run, got %d", wc.Closed)
	}
}

func TestRun_StatsExtractsAndVerifies(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Page: testutil.TokenPage("a", "b"),
		Body: []byte(`{"component":"Statistics/Swimming","props":{"results":{"data":[{"rank":1},{"rank":2}],"total":2}}}`),
	}
	a := newTestApplication(t, wc)

	rep, err := a.Run(context.Background(), a.Config.StatsJob(tempus.DefaultStatsQuery()))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Extraction == nil || rep.Extraction.Kind != extract.KindResults {
		t.Fatalf("unexpected extraction %+v", rep.Extraction)
	}
	if rep.Verified != 2 {
		t.Errorf("expected 2 verified records, got %d", rep.Verified)
	}
	if string(rep.FirstRecord()) != `{"rank":1}` {
		t.Errorf("unexpected first record %s", rep.FirstRecord())
	}
	data, err := os.ReadFile(filepath.Join(a.Config.OutputDir, "output.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[\n  {\n    \"rank\": 1\n  },\n  {\n    \"rank\": 2\n  }\n]" {
		t.Errorf("unexpected output %s", data)
	}
}

func TestRun_StatsWithoutListWritesNothing(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Page: testutil.TokenPage("a", "b"), Body: []byte(`{"props":{"other":[]}}`)}
	a := newTestApplication(t, wc)

	rep, err := a.Run(context.Background(), a.Config.StatsJob(tempus.DefaultStatsQuery()))
	if err != nil {
		t.Fatalf("shape miss must not be an error: %v", err)
	}
	if rep.Extraction.Found() || string(rep.Extraction.Props) != `{"other":[]}` {
		t.Errorf("expected props surfaced, got %+v", rep.Extraction)
	}
	if rep.Written != nil {
		t.Error("expected nothing written")
	}
	if _, err := os.Stat(rep.OutputPath); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat err %v", err)
	}
}

func TestRun_StatsEmptyListKeepsExistingOutput(t *testing.T) {
	t.Parallel()
	for _, body := range []string{
		`{"props":{"results":[]}}`,
		`{"props":{"results":{"data":[],"total":0}}}`,
	} {
		wc := &testutil.DummyWebClient{Page: testutil.TokenPage("a", "b"), Body: []byte(body)}
		a := newTestApplication(t, wc)
		job := a.Config.StatsJob(tempus.DefaultStatsQuery())
		prev := seedOutput(t, job.OutputPath)

		rep, err := a.Run(context.Background(), job)
		if err != nil {
			t.Fatalf("empty list must not be an error: %v", err)
		}
		if rep.Extraction.Found() || rep.Extraction.Kind != extract.KindNone || len(rep.Extraction.Props) == 0 {
			t.Errorf("%s: expected a miss with props surfaced, got %+v", body, rep.Extraction)
		}
		if rep.Written != nil {
			t.Errorf("%s: expected nothing written, got %s", body, rep.Written)
		}
		assertUnchanged(t, job.OutputPath, prev)
	}
}

func TestRun_StatsInvalidUTF8IsWritten(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Page: testutil.TokenPage("a", "b"),
		Body: []byte("{\"props\":{\"results\":[{\"name\":\"bad\xff\"}]}}"),
	}
	a := newTestApplication(t, wc)

	rep, err := a.Run(context.Background(), a.Config.StatsJob(tempus.DefaultStatsQuery()))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Verified != 1 {
		t.Errorf("expected 1 verified record, got %d", rep.Verified)
	}
	if string(rep.Written) != "[\n  {\n    \"name\": \"bad\ufffd\"\n  }\n]" {
		t.Errorf("unexpected output %q", rep.Written)
	}
}

func TestRun_MissingTokensStopsBeforeCall(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Page: &webclient.Page{StatusCode: 403}}
	a := newTestApplication(t, wc)
	job := a.Config.SearchJob(tempus.DefaultSearchQuery())
	prev := seedOutput(t, job.OutputPath)

	_, err := a.Run(context.Background(), job)
	if !errors.Is(err, session.ErrTokensNotFound) {
		t.Fatalf("expected ErrTokensNotFound, got %v", err)
	}
	if len(wc.Requests) != 0 {
		t.Errorf("expected no API call, got %d", len(wc.Requests))
	}
	if wc.Closed != 1 {
		t.Errorf("expected client closed on early return, got %d", wc.Closed)
	}
	assertUnchanged(t, job.OutputPath, prev)
}

func TestRun_ExpiredSessionIsNotRetried(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Page:    testutil.TokenPage("a", "b"),
		Respond: testutil.StatusResponder(419, `{"message":"CSRF token mismatch."}`),
	}
	a := newTestApplication(t, wc)
	job := a.Config.StatsJob(tempus.DefaultStatsQuery())
	prev := seedOutput(t, job.OutputPath)

	rep, err := a.Run(context.Background(), job)
	var serr *tempus.StatusError
	if !errors.As(err, &serr) || serr.Code != 419 {
		t.Fatalf("expected 419 StatusError, got %v", err)
	}
	if rep.Status != 419 {
		t.Errorf("expected report status 419, got %d", rep.Status)
	}
	if len(wc.Navigations) != 1 || len(wc.Requests) != 1 {
		t.Errorf("expected single attempt, got %d navigations and %d requests", len(wc.Navigations), len(wc.Requests))
	}
	assertUnchanged(t, job.OutputPath, prev)
}

func TestRun_NonJSONWritesNothing(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Page: testutil.TokenPage("a", "b"), Body: []byte("<!doctype html>")}
	a := newTestApplication(t, wc)

	rep, err := a.Run(context.Background(), a.Config.SwimmerJob(1))
	var derr *tempus.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if _, err := os.Stat(rep.OutputPath); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat err %v", err)
	}
}

func TestRun_ClientFactoryError(t *testing.T) {
	t.Parallel()
	a := newTestApplication(t, nil)
	boom := errors.New("chrome not found")
	a.NewClient = func(webclient.Config, logging.Logger) (webclient.WebClient, error) { return nil, boom }

	if _, err := a.Run(context.Background(), a.Config.SwimmerJob(1)); !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}
}

func TestRun_RecordsCapture(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Page: testutil.TokenPage("a", "b"),
		Body: []byte(`{"props":{"swimmers":[{"id":1},{"id":2},{"id":3}]}}`),
	}
	a := newTestApplication(t, wc)
	a.Config.Archive = archive.Config{Enabled: true, Dir: t.TempDir()}
	if err := a.OpenArchive(); err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	ctx := context.Background()
	rep, err := a.Run(ctx, a.Config.StatsJob(tempus.DefaultStatsQuery()))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Capture == nil {
		t.Fatal("expected a capture")
	}
	if rep.Capture.RecordCount == nil || *rep.Capture.RecordCount != 3 {
		t.Errorf("unexpected record count %v", rep.Capture.RecordCount)
	}

	_, body, err := a.Archive.Get(ctx, rep.Capture.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != string(rep.Written) {
		t.Errorf("archived body differs from output file")
	}
}

func TestConfigJobs_OutputDir(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.OutputDir = "out"
	if got := cfg.StatsJob(tempus.DefaultStatsQuery()).OutputPath; got != filepath.Join("out", "output.json") {
		t.Errorf("unexpected stats output %q", got)
	}
	if !cfg.StatsJob(tempus.DefaultStatsQuery()).Extract || cfg.SearchJob(tempus.SearchQuery{}).Extract {
		t.Error("only the stats job extracts")
	}
}
