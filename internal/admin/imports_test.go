package admin

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// MockImportAPI implements ImportAPI. Each status poll advances the job one
// step: pending -> processing -> terminal.
type MockImportAPI struct {
	terminal    domain.ImportStatus
	statusPolls int32
	listCalls   int32
	job         domain.ImportJob
}

func newMockImportAPI(terminal domain.ImportStatus) *MockImportAPI {
	return &MockImportAPI{
		terminal: terminal,
		job:      domain.ImportJob{ID: "job1", FileName: "products.csv", Status: domain.ImportPending},
	}
}

func (m *MockImportAPI) UploadImport(_ context.Context, filename string, _ io.Reader) (*domain.ImportJob, error) {
	m.job = domain.ImportJob{ID: "job1", FileName: filename, Status: domain.ImportPending}
	return &m.job, nil
}

func (m *MockImportAPI) GetImport(context.Context, string) (*domain.ImportJob, error) {
	polls := atomic.AddInt32(&m.statusPolls, 1)
	switch polls {
	case 1:
		m.job.Status = domain.ImportPending
	case 2:
		m.job.Status = domain.ImportProcessing
	default:
		m.job.Status = m.terminal
	}
	job := m.job
	return &job, nil
}

func (m *MockImportAPI) ListImports(context.Context) ([]domain.ImportJob, error) {
	atomic.AddInt32(&m.listCalls, 1)
	return []domain.ImportJob{m.job}, nil
}

func TestWatch_StopsOnCompletedAndRefreshesListOnce(t *testing.T) {
	mock := newMockImportAPI(domain.ImportCompleted)
	editor := NewImportEditor(mock, nil)
	editor.SetPollInterval(time.Millisecond)

	job, err := editor.Watch(context.Background(), "job1")
	require.NoError(t, err)
	assert.Equal(t, domain.ImportCompleted, job.Status)

	polls := atomic.LoadInt32(&mock.statusPolls)
	assert.Equal(t, int32(3), polls, "polling stops at the first terminal status")
	assert.Equal(t, int32(1), atomic.LoadInt32(&mock.listCalls), "job list refreshed exactly once")

	// No further requests after the watch returned.
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, polls, atomic.LoadInt32(&mock.statusPolls))

	jobs := editor.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.ImportCompleted, jobs[0].Status)
}

func TestWatch_StopsOnFailedToo(t *testing.T) {
	mock := newMockImportAPI(domain.ImportFailed)
	editor := NewImportEditor(mock, nil)
	editor.SetPollInterval(time.Millisecond)

	job, err := editor.Watch(context.Background(), "job1")
	require.NoError(t, err)
	assert.Equal(t, domain.ImportFailed, job.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&mock.listCalls))
}

func TestWatch_CancelledContextTearsDownPoller(t *testing.T) {
	mock := newMockImportAPI(domain.ImportCompleted)
	editor := NewImportEditor(mock, nil)
	editor.SetPollInterval(time.Hour) // never fires

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := editor.Watch(ctx, "job1")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&mock.statusPolls), "no poll issued before the first tick")
}

func TestUpload_PrependsPendingJob(t *testing.T) {
	mock := newMockImportAPI(domain.ImportCompleted)
	editor := NewImportEditor(mock, nil)

	job, err := editor.Upload(context.Background(), "products.csv", strings.NewReader("name,sku\n"))
	require.NoError(t, err)
	assert.Equal(t, domain.ImportPending, job.Status)

	jobs := editor.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "products.csv", jobs[0].FileName)
}
