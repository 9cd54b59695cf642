// Package recordstoretest provides an in-memory collection server speaking the
// record store REST contract, for tests.
package recordstoretest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"partners-cli/internal/model"
	"partners-cli/internal/recordstore"
)

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	records  []model.Record
	nextID   int
	failures map[string]int
	counts   map[string]int
	gates    map[string]chan struct{}
	entered  map[string]chan struct{}
}

// NewServer starts a server for the "users" collection seeded with records.
// Callers must Close it.
func NewServer(seed ...model.Record) *Server {
	s := &Server{
		nextID:   1,
		failures: map[string]int{},
		counts:   map[string]int{},
		gates:    map[string]chan struct{}{},
		entered:  map[string]chan struct{}{},
	}
	for _, r := range seed {
		s.records = append(s.records, cloneRecord(r))
		if n, err := strconv.Atoi(r.ID); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", s.handleList)
	mux.HandleFunc("POST /users", s.handleCreate)
	mux.HandleFunc("GET /users/{id}", s.handleGet)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /users/{id}", s.handleDelete)
	s.Server = httptest.NewServer(mux)
	return s
}

// Client returns a record store client pointed at s.
func (s *Server) Client() *recordstore.Client {
	c, err := recordstore.New(recordstore.Config{Endpoint: s.URL, HTTPClient: s.Server.Client()})
	if err != nil {
		panic(err)
	}
	return c
}

// Records returns a copy of the stored records.
func (s *Server) Records() []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, cloneRecord(r))
	}
	return out
}

// Put stores r directly, bypassing the API.
func (s *Server) Put(r model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == r.ID {
			s.records[i] = cloneRecord(r)
			return
		}
	}
	s.records = append(s.records, cloneRecord(r))
}

// Fail makes the next n calls of op answer 500. n < 0 fails until reset with n == 0.
func (s *Server) Fail(op string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = n
}

// Count reports how many requests of op were received.
func (s *Server) Count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[op]
}

// Hold blocks every subsequent op request until release is called. entered
// receives one value per request that reached the gate.
func (s *Server) Hold(op string) (entered <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	in := make(chan struct{}, 64)
	s.gates[op] = gate
	s.entered[op] = in
	var once sync.Once
	return in, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.gates, op)
			delete(s.entered, op)
			s.mu.Unlock()
			close(gate)
		})
	}
}

// begin records the call and reports whether it should fail.
func (s *Server) begin(op string) bool {
	s.mu.Lock()
	s.counts[op]++
	gate := s.gates[op]
	in := s.entered[op]
	s.mu.Unlock()

	if gate != nil {
		select {
		case in <- struct{}{}:
		default:
		}
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.failures[op]
	switch {
	case n < 0:
		return true
	case n > 0:
		s.failures[op] = n - 1
		return true
	}
	return false
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.begin(recordstore.OpList) {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.Records())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.begin(recordstore.OpGet) {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ID == id {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.begin(recordstore.OpCreate) {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	var d model.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	rec := d.WithID(strconv.Itoa(s.nextID))
	s.nextID++
	s.records = append(s.records, rec)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.begin(recordstore.OpUpdate) {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	var d model.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i] = d.WithID(id)
			writeJSON(w, http.StatusOK, s.records[i])
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.begin(recordstore.OpDelete) {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{}"))
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cloneRecord(r model.Record) model.Record {
	r.Countries = model.CloneCountries(r.Countries)
	return r
}
