package worker

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nkapoor/docuchat/internal/agent/tools"
	"github.com/nkapoor/docuchat/internal/data/store"
	"github.com/nkapoor/docuchat/internal/domain/jobModel"
	"github.com/nkapoor/docuchat/internal/job"
	"github.com/nkapoor/docuchat/internal/rag/rag_test"
	"github.com/nkapoor/docuchat/internal/rag/vectorDB"
	"github.com/nkapoor/docuchat/internal/rag/vectorDB/memoryDB"
)

type MockJobStore struct {
	mu    sync.Mutex
	saved []jobModel.Job
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == jobId {
			return m.saved[i], true
		}
	}
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, j)
	return nil
}

func newTestSessions() *store.SessionStore {
	factory := func(string) vectorDB.Index { return memoryDB.NewIndex(3) }
	provider := &rag_test.MockProvider{}
	return store.InitSessionStore(factory, provider, provider, &rag_test.MockEmbedder{}, tools.DefaultRegistry())
}

func waitForJob(t *testing.T, jobStore *MockJobStore, id string, status jobModel.JobStatus) jobModel.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if j, ok := jobStore.GetJob(context.Background(), id); ok && j.Status == status {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, status)
	return jobModel.Job{}
}

func TestWorkerPool_Flow(t *testing.T) {
	jobStore := &MockJobStore{}
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          jobStore,
		Sessions:          newTestSessions(),
	}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		time.Sleep(50 * time.Millisecond)

		if count := atomic.LoadInt64(&currentWorkerCount); count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker runs an ingest job", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.txt")
		if err := os.WriteFile(path, []byte("alpha beta gamma delta"), 0o600); err != nil {
			t.Fatal(err)
		}

		jobSvc.JobChannel <- jobModel.Job{
			Id:      "ingest-1",
			ChatId:  "chat-1",
			JobType: jobModel.JobTypeIngest,
			JobPayload: jobModel.JobPayload{
				IngestFileName: "doc.txt",
				IngestFilePath: path,
			},
		}

		done := waitForJob(t, jobStore, "ingest-1", jobModel.JobStatusComplete)
		if done.JobPayload.ChunkCount != 1 {
			t.Errorf("want 1 chunk, got %d", done.JobPayload.ChunkCount)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("staged upload not removed after ingest")
		}
	})

	t.Run("Worker runs a query job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{
			Id:         "query-1",
			ChatId:     "chat-1",
			JobType:    jobModel.JobTypeQuery,
			JobPayload: jobModel.JobPayload{Question: "what is alpha?"},
		}

		done := waitForJob(t, jobStore, "query-1", jobModel.JobStatusComplete)
		if done.JobPayload.Answer == "" {
			t.Error("query job finished without an answer")
		}
		if len(done.JobPayload.Sources) == 0 {
			t.Error("query job finished without sources")
		}
	})

	t.Run("Query before ingest fails the job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{
			Id:         "query-cold",
			ChatId:     "chat-without-doc",
			JobType:    jobModel.JobTypeQuery,
			JobPayload: jobModel.JobPayload{Question: "anything"},
		}

		failed := waitForJob(t, jobStore, "query-cold", jobModel.JobStatusError)
		if failed.Error.Message == "" {
			t.Error("failed job carries no error message")
		}
		if failed.Error.Retry {
			t.Error("asking before ingest is not retryable")
		}
	})

	t.Run("Blank upload fails the ingest job", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blank.txt")
		if err := os.WriteFile(path, []byte("  \n\n  "), 0o600); err != nil {
			t.Fatal(err)
		}

		jobSvc.JobChannel <- jobModel.Job{
			Id:      "ingest-blank",
			ChatId:  "chat-blank",
			JobType: jobModel.JobTypeIngest,
			JobPayload: jobModel.JobPayload{
				IngestFileName: "blank.txt",
				IngestFilePath: path,
			},
		}

		failed := waitForJob(t, jobStore, "ingest-blank", jobModel.JobStatusError)
		if failed.Error.Code != http.StatusUnprocessableEntity {
			t.Errorf("error code got %d, want %d", failed.Error.Code, http.StatusUnprocessableEntity)
		}
		if failed.Error.Retry {
			t.Error("a blank document is not retryable")
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}
