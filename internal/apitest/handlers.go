package apitest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/animaltrack/internal/models"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// Login checks the credentials and returns a session payload.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	s.mu.Lock()
	hash, ok := s.users[strings.ToLower(req.User)]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "invalid e-mail or password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": uuid.NewString(),
		"user":  map[string]string{"email": req.User},
	})
}

// ListAnimals returns every stored animal.
func (s *Server) ListAnimals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Animals())
}

// UpdateAnimal applies name and status to the animal with the given fid.
func (s *Server) UpdateAnimal(w http.ResponseWriter, r *http.Request) {
	var req models.AnimalUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FID == "" {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.animals {
		if s.animals[i].FID == req.FID {
			s.animals[i].Name = req.Name
			s.animals[i].Status = models.Text(req.Status)
			writeJSON(w, http.StatusOK, s.animals[i])
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "animal not found")
}

// DeleteAnimal removes the animal named by the fid query parameter.
func (s *Server) DeleteAnimal(w http.ResponseWriter, r *http.Request) {
	fid := r.URL.Query().Get("fid")
	if fid == "" {
		writeMessage(w, http.StatusBadRequest, "fid is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.animals {
		if s.animals[i].FID == fid {
			s.animals = append(s.animals[:i], s.animals[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "animal not found")
}
