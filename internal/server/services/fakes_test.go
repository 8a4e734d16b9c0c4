package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/jobs"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// -------- test fakes --------

type memFiles struct {
	files.Repository
	mu        sync.Mutex
	order     []*models.File
	byID      map[string]*models.File
	createErr error
}

func newMemFiles() *memFiles {
	return &memFiles{byID: map[string]*models.File{}}
}

func (m *memFiles) Create(_ context.Context, f *models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *f
	m.order = append(m.order, &cp)
	m.byID[f.ID] = &cp
	return nil
}

func (m *memFiles) GetByID(_ context.Context, id string) (*models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFiles) List(_ context.Context, ownerID, parentID string, offset, limit int) ([]*models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.File{}
	skipped := 0
	for _, f := range m.order {
		if f.OwnerID != ownerID || f.ParentID != parentID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(out) == limit {
			break
		}
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memFiles) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

type memJobs struct {
	jobs.Repository
	mu         sync.Mutex
	enqueued   []models.ThumbnailJob
	enqueueErr error
}

func (m *memJobs) Enqueue(_ context.Context, job models.ThumbnailJob) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enqueueErr != nil {
		return nil, m.enqueueErr
	}
	m.enqueued = append(m.enqueued, job)
	return &models.Job{ID: "job-" + job.FileID, Payload: job, Status: models.JobPending}, nil
}

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	err     error
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return common.ErrAlreadyExists
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeIssuer struct {
	issued []string
}

func (f *fakeIssuer) Issue(_ context.Context, userID string) (string, error) {
	f.issued = append(f.issued, userID)
	return "token-for-" + userID, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	files *memFiles
	jobs  *memJobs
	users *memUsers
}

func (f *fakeRepoManager) Files(dbx.DBTX) files.Repository { return f.files }
func (f *fakeRepoManager) Jobs(dbx.DBTX) jobs.Repository   { return f.jobs }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository { return f.users }

// newTxDB returns a database that only serves to begin and commit
// transactions; all reads and writes go to the in-memory repositories.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestCatalog(t *testing.T) (*Catalog, *fakeRepoManager) {
	t.Helper()
	rm := &fakeRepoManager{files: newMemFiles(), jobs: &memJobs{}}
	return NewCatalog(newTxDB(t), rm, 20), rm
}
