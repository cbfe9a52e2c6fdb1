package pipeline_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"framecast/internal/composition"
	"framecast/internal/config"
	"framecast/internal/fetch"
	"framecast/internal/jobstore"
	"framecast/internal/logging"
	"framecast/internal/pipeline"
	"framecast/internal/render"
	"framecast/internal/runner"
	"framecast/internal/testsupport"
)

const happyEncoder = `
for out; do :; done
printf encoded > "$out"
exit 0
`

// recordingStore remembers every Put so tests can assert on the full status
// document sequence, not just the terminal snapshot.
type recordingStore struct {
	jobstore.Store
	mu   sync.Mutex
	docs []jobstore.Document
}

func (r *recordingStore) Put(ctx context.Context, doc jobstore.Document) error {
	r.mu.Lock()
	r.docs = append(r.docs, doc)
	r.mu.Unlock()
	return r.Store.Put(ctx, doc)
}

func (r *recordingStore) history() []jobstore.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]jobstore.Document(nil), r.docs...)
}

type fixture struct {
	cfg   *config.Config
	store *recordingStore
	orc   *pipeline.Orchestrator
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	opts = append([]testsupport.ConfigOption{testsupport.WithEncoderScript(happyEncoder)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Encoder.ValidateOutput = false

	store := &recordingStore{Store: testsupport.MustOpenStore(t, cfg)}
	orc := pipeline.NewOrchestrator(
		cfg,
		store,
		fetch.NewClient(cfg.DownloadTimeout()),
		render.NewEngine(cfg, runner.New(), logging.NewNop()),
		logging.NewNop(),
	)
	return &fixture{cfg: cfg, store: store, orc: orc}
}

func (f *fixture) newJob(t *testing.T, payload string) *pipeline.Job {
	t.Helper()
	req, err := composition.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	job, err := pipeline.NewJob(context.Background(), f.cfg, f.store, req, []byte(payload))
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	return job
}

func (f *fixture) finalDoc(t *testing.T, jobID string) jobstore.Document {
	t.Helper()
	doc, ok, err := f.store.Get(context.Background(), jobID)
	if err != nil || !ok {
		t.Fatalf("Get(%s) = ok=%v err=%v", jobID, ok, err)
	}
	return doc
}

func newMediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("media-bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProcessHappyPath(t *testing.T) {
	f := newFixture(t)
	srv := newMediaServer(t)

	payload := `{
		"scenes": [
			{"elements": [{"type": "image", "src": "` + srv.URL + `/a.jpg"}], "duration": 3},
			{"elements": [{"type": "image", "src": "` + srv.URL + `/b.jpg"}]}
		],
		"elements": [
			{"type": "audio", "src": "` + srv.URL + `/track.mp3"},
			{"type": "caption", "text": "Hello: it's done"}
		]
	}`
	job := f.newJob(t, payload)
	f.orc.Process(context.Background(), job)

	doc := f.finalDoc(t, job.ID)
	if doc.Status != jobstore.StatusDone {
		t.Fatalf("status = %s (error %q), want done", doc.Status, doc.Error)
	}
	if doc.VideoURL != "/result/"+job.ID+".mp4" {
		t.Errorf("video_url = %q", doc.VideoURL)
	}
	if doc.Progress == nil || *doc.Progress != 100 {
		t.Errorf("progress = %v, want 100", doc.Progress)
	}
	if _, err := os.Stat(filepath.Join(f.cfg.Paths.PublicDir, job.ID+".mp4")); err != nil {
		t.Errorf("published artifact missing: %v", err)
	}
	// Intermediates stay in the job directory.
	for _, name := range []string{"img_0.jpg", "img_1.jpg", "audio.mp3", "clip_0.mp4", "clip_1.mp4", "final_noaudio.mp4"} {
		if _, err := os.Stat(filepath.Join(job.Dir, name)); err != nil {
			t.Errorf("intermediate %s missing: %v", name, err)
		}
	}
}

func TestProcessProgressIsMonotonic(t *testing.T) {
	f := newFixture(t)
	srv := newMediaServer(t)

	payload := `{"scenes": [
		{"elements": [{"type": "image", "src": "` + srv.URL + `/a.jpg"}]},
		{"elements": [{"type": "image", "src": "` + srv.URL + `/b.jpg"}]},
		{"elements": [{"type": "image", "src": "` + srv.URL + `/c.jpg"}]}
	]}`
	job := f.newJob(t, payload)
	f.orc.Process(context.Background(), job)

	last := -1
	for _, doc := range f.store.history() {
		if doc.Progress == nil {
			t.Fatalf("document %s has no progress", doc.Status)
		}
		if *doc.Progress < last {
			t.Fatalf("progress went backwards: %d after %d", *doc.Progress, last)
		}
		last = *doc.Progress
	}
	if last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}
}

func TestProcessNoRenderableScenesFailsFrozenAtFifteen(t *testing.T) {
	f := newFixture(t)

	// One element-less scene and one whose first element lacks a src: both
	// are skipped, so nothing is renderable.
	payload := `{"scenes": [
		{"elements": []},
		{"elements": [{"type": "image"}]}
	]}`
	job := f.newJob(t, payload)
	f.orc.Process(context.Background(), job)

	doc := f.finalDoc(t, job.ID)
	if doc.Status != jobstore.StatusFailed {
		t.Fatalf("status = %s, want failed", doc.Status)
	}
	if doc.Error != "no images" {
		t.Errorf("error = %q, want %q", doc.Error, "no images")
	}
	if doc.Progress == nil || *doc.Progress != 15 {
		t.Errorf("progress = %v, want frozen at 15", doc.Progress)
	}
	if doc.VideoURL != "" {
		t.Errorf("video_url = %q, want empty", doc.VideoURL)
	}
}

func TestProcessImageFetchFailureFailsJob(t *testing.T) {
	f := newFixture(t)
	srv := newMediaServer(t)

	payload := `{"scenes": [{"elements": [{"type": "image", "src": "` + srv.URL + `/missing.jpg"}]}]}`
	job := f.newJob(t, payload)
	f.orc.Process(context.Background(), job)

	doc := f.finalDoc(t, job.ID)
	if doc.Status != jobstore.StatusFailed {
		t.Fatalf("status = %s, want failed", doc.Status)
	}
	if doc.Error == "" {
		t.Error("failed document has no error text")
	}
	if doc.Progress == nil || *doc.Progress != 5 {
		t.Errorf("progress = %v, want frozen at 5", doc.Progress)
	}
}

func TestProcessAudioFetchFailureDegradesToNoAudio(t *testing.T) {
	f := newFixture(t)
	srv := newMediaServer(t)

	payload := `{
		"scenes": [{"elements": [{"type": "image", "src": "` + srv.URL + `/a.jpg"}]}],
		"elements": [{"type": "audio", "src": "` + srv.URL + `/missing.mp3"}]
	}`
	job := f.newJob(t, payload)
	f.orc.Process(context.Background(), job)

	doc := f.finalDoc(t, job.ID)
	if doc.Status != jobstore.StatusDone {
		t.Fatalf("status = %s (error %q), want done despite audio failure", doc.Status, doc.Error)
	}
	if _, err := os.Stat(filepath.Join(job.Dir, "audio.mp3")); !os.IsNotExist(err) {
		t.Error("partial audio file left behind")
	}
}

func TestProcessEncoderFailureTruncatesDiagnostics(t *testing.T) {
	// The stub floods stderr well past the configured excerpt length.
	noisyEncoder := `
i=0
while [ $i -lt 100 ]; do
  printf "0123456789" >&2
  i=$((i+1))
done
exit 1
`
	f := newFixture(t, testsupport.WithEncoderScript(noisyEncoder))
	f.cfg.Pipeline.RenderErrorExcerpt = 120
	srv := newMediaServer(t)

	payload := `{"scenes": [{"elements": [{"type": "image", "src": "` + srv.URL + `/a.jpg"}]}]}`
	job := f.newJob(t, payload)
	f.orc.Process(context.Background(), job)

	doc := f.finalDoc(t, job.ID)
	if doc.Status != jobstore.StatusFailed {
		t.Fatalf("status = %s, want failed", doc.Status)
	}
	if len(doc.Error) == 0 || len(doc.Error) > 120 {
		t.Errorf("error length = %d, want 1..120", len(doc.Error))
	}
	if doc.Progress == nil || *doc.Progress != 15 {
		t.Errorf("progress = %v, want frozen at 15", doc.Progress)
	}
}

func TestProcessRecoversPanic(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithEncoderScript(happyEncoder))
	cfg.Encoder.ValidateOutput = false
	store := &recordingStore{Store: testsupport.MustOpenStore(t, cfg)}
	srv := newMediaServer(t)

	// A nil engine panics on the first render; the orchestrator must turn
	// that into a failed document instead of crashing the process.
	orc := pipeline.NewOrchestrator(cfg, store, fetch.NewClient(cfg.DownloadTimeout()), nil, logging.NewNop())

	payload := `{"scenes": [{"elements": [{"type": "image", "src": "` + srv.URL + `/a.jpg"}]}]}`
	req, err := composition.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	job, err := pipeline.NewJob(context.Background(), cfg, store, req, []byte(payload))
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	orc.Process(context.Background(), job)

	doc, ok, err := store.Get(context.Background(), job.ID)
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if doc.Status != jobstore.StatusFailed {
		t.Fatalf("status = %s, want failed", doc.Status)
	}
	if doc.Error == "" {
		t.Error("failed document has no error text")
	}
}

func TestProcessSingleSceneWithoutAudioOrCaption(t *testing.T) {
	f := newFixture(t)
	srv := newMediaServer(t)

	payload := `{"scenes": [{"elements": [{"type": "image", "src": "` + srv.URL + `/a.jpg"}]}]}`
	job := f.newJob(t, payload)
	f.orc.Process(context.Background(), job)

	doc := f.finalDoc(t, job.ID)
	if doc.Status != jobstore.StatusDone {
		t.Fatalf("status = %s (error %q), want done", doc.Status, doc.Error)
	}
}
