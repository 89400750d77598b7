// Package apitest runs an in-memory implementation of the remote animal API
// on an httptest server. It backs the client tests and keeps state that
// tests can seed, inspect and break on purpose.
package apitest

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/animaltrack/internal/logger"
	"github.com/atinyakov/animaltrack/internal/models"
)

// Failure makes a route answer with Status. When Message is set the body is
// {"message": Message}, otherwise it is plain text.
type Failure struct {
	Status  int
	Message string
}

// Server is the fake remote API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string][]byte
	animals  []models.Animal
	failures map[string]Failure
	calls    map[string]int
}

// New starts a plain HTTP Server. log may be nil.
func New(log *zap.Logger) *Server {
	s := newServer()
	s.Server = httptest.NewServer(NewRouter(s, logger.OrNop(log)))
	return s
}

// NewMutualTLS starts an HTTPS Server that only accepts clients presenting
// a certificate issued by ca.
func NewMutualTLS(log *zap.Logger, ca *CA) *Server {
	s := newServer()
	s.Server = httptest.NewUnstartedServer(NewRouter(s, logger.OrNop(log)))
	s.Server.TLS = &tls.Config{
		ClientAuth: tls.RequireAndVerifyClientCert,
		ClientCAs:  ca.Pool(),
		MinVersion: tls.VersionTLS12,
	}
	s.Server.StartTLS()
	return s
}

func newServer() *Server {
	return &Server{
		users:    make(map[string][]byte),
		failures: make(map[string]Failure),
		calls:    make(map[string]int),
	}
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// AddUser registers a login. The password is stored as a bcrypt hash.
func (s *Server) AddUser(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(email)] = hash
	return nil
}

// SetAnimals replaces the stored list. Records without a FID get one.
func (s *Server) SetAnimals(animals []models.Animal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animals = make([]models.Animal, len(animals))
	for i, a := range animals {
		if a.FID == "" {
			a.FID = uuid.NewString()
		}
		s.animals[i] = a
	}
}

// Animals returns a copy of the stored list.
func (s *Server) Animals() []models.Animal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Animal{}, s.animals...)
}

// Fail makes every request to method+path fail until Recover is called.
func (s *Server) Fail(method, path string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[routeKey(method, path)] = f
}

// Recover removes all injected failures.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]Failure)
}

// Calls returns how many requests reached method+path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[routeKey(method, path)]
}

// TotalCalls returns how many requests reached the server.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// countAndFail records the call and serves an injected failure if one is set.
func (s *Server) countAndFail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r.Method, r.URL.Path)
		s.mu.Lock()
		s.calls[key]++
		f, failing := s.failures[key]
		s.mu.Unlock()

		if failing {
			if f.Message != "" {
				writeMessage(w, f.Status, f.Message)
			} else {
				http.Error(w, http.StatusText(f.Status), f.Status)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}
