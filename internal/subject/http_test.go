package subject_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/akkm9120/sctp02-crud-mongo/internal/events"
	"github.com/akkm9120/sctp02-crud-mongo/internal/httputil"
	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
	"github.com/akkm9120/sctp02-crud-mongo/internal/store"
	"github.com/akkm9120/sctp02-crud-mongo/internal/subject"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository keeps subjects in insertion order.
type memoryRepository struct {
	mu       sync.Mutex
	seq      int
	subjects []subject.Subject
	err      error
}

func (m *memoryRepository) Find(_ context.Context) ([]subject.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]subject.Subject{}, m.subjects...), nil
}

func (m *memoryRepository) FindByName(_ context.Context, name string) (*subject.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.subjects {
		if s.SubjectName == name {
			found := s
			return &found, nil
		}
	}
	return nil, subject.ErrSubjectNotFound
}

func (m *memoryRepository) Insert(_ context.Context, s *subject.Subject) (store.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return store.InsertResult{}, m.err
	}
	m.seq++
	s.ID = "sub-" + strconv.Itoa(m.seq)
	m.subjects = append(m.subjects, *s)
	return store.InsertResult{Acknowledged: true, InsertedID: s.ID}, nil
}

func (m *memoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, s := range m.subjects {
		if s.ID == id {
			m.subjects = append(m.subjects[:i], m.subjects[i+1:]...)
			return nil
		}
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func setupRouter(repo subject.Repository, pub events.Publisher) chi.Router {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	var emitter *events.Emitter
	if pub != nil {
		emitter = events.NewEmitter(pub, logger, metrics.NewMock())
	}
	handler := subject.NewHandler(subject.NewService(repo, emitter), logger, metrics.NewMock())

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubjectHandler(t *testing.T) {
	t.Run("CreateAllowsDuplicates", func(t *testing.T) {
		repo := &memoryRepository{}
		pub := &recordingPublisher{}
		router := setupRouter(repo, pub)

		first := do(router, http.MethodPost, "/subjects/Alchemy")
		second := do(router, http.MethodPost, "/subjects/Alchemy")

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)

		var response struct {
			Result store.InsertResult `json:"result"`
		}
		require.NoError(t, json.NewDecoder(first.Body).Decode(&response))
		assert.True(t, response.Result.Acknowledged)
		assert.Equal(t, "sub-1", response.Result.InsertedID)

		require.Len(t, repo.subjects, 2)
		assert.Equal(t, "Alchemy", repo.subjects[1].SubjectName)

		require.Len(t, pub.events, 2)
		assert.Equal(t, events.SubjectCreated, pub.events[0].Type)
		assert.Equal(t, "sub-1", pub.events[0].ResourceID)
	})

	t.Run("List", func(t *testing.T) {
		repo := &memoryRepository{}
		router := setupRouter(repo, nil)

		w := do(router, http.MethodGet, "/subjects")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"subjects":[]}`, w.Body.String())

		do(router, http.MethodPost, "/subjects/Potions")

		w = do(router, http.MethodGet, "/subjects")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"subjects":[{"id":"sub-1","subjectName":"Potions"}]}`, w.Body.String())
	})

	t.Run("DeleteRemovesFirstMatch", func(t *testing.T) {
		repo := &memoryRepository{}
		pub := &recordingPublisher{}
		router := setupRouter(repo, pub)

		do(router, http.MethodPost, "/subjects/Charms")
		do(router, http.MethodPost, "/subjects/Charms")

		w := do(router, http.MethodDelete, "/subjects/Charms")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Deleted"}`, w.Body.String())

		require.Len(t, repo.subjects, 1)
		assert.Equal(t, "sub-2", repo.subjects[0].ID)

		last := pub.events[len(pub.events)-1]
		assert.Equal(t, events.SubjectDeleted, last.Type)
		assert.Equal(t, "sub-1", last.ResourceID)
	})

	t.Run("DeleteUnknownNameSucceeds", func(t *testing.T) {
		repo := &memoryRepository{}
		pub := &recordingPublisher{}
		router := setupRouter(repo, pub)

		w := do(router, http.MethodDelete, "/subjects/Divination")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Deleted"}`, w.Body.String())
		assert.Empty(t, pub.events)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		repo := &memoryRepository{err: errors.New("connection refused")}
		router := setupRouter(repo, nil)

		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
			path := "/subjects/Alchemy"
			if method == http.MethodGet {
				path = "/subjects"
			}

			w := do(router, method, path)
			assert.Equal(t, http.StatusInternalServerError, w.Code, method)

			var response httputil.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, httputil.KindStore, response.Kind)
			assert.Contains(t, response.Error, "connection refused")
		}
	})
}
