package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/animaltrack/internal/apitest"
	"github.com/atinyakov/animaltrack/internal/models"
)

// roundTripperFunc lets a test stand in for the network.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(t *testing.T, fn roundTripperFunc) *Client {
	t.Helper()
	c, err := New("http://example.com", &http.Client{Transport: fn, Timeout: time.Second}, nil)
	require.NoError(t, err)
	return c
}

func newServer(t *testing.T) (*apitest.Server, *Client) {
	t.Helper()
	srv := apitest.New(nil)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, srv.Client(), nil)
	require.NoError(t, err)
	return srv, c
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("not a url", nil, nil)
	assert.Error(t, err)
}

func TestAuthenticate_ValidationSkipsNetwork(t *testing.T) {
	tests := []struct {
		name      string
		user      string
		password  string
		wantField string
	}{
		{"not an email", "not-an-email", "1234", "user"},
		{"missing tld", "a@b", "1234", "user"},
		{"whitespace", "a b@c.com", "1234", "user"},
		{"empty", "", "1234", "user"},
		{"short secret", "a@b.com", "123", "password"},
		{"empty secret", "a@b.com", "", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, c := newServer(t)

			_, err := c.Authenticate(context.Background(), tt.user, tt.password)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, 0, srv.TotalCalls(), "validation must not reach the network")
		})
	}
}

func TestAuthenticate_Success(t *testing.T) {
	srv, c := newServer(t)
	require.NoError(t, srv.AddUser("a@b.com", "1234"))

	sess, err := c.Authenticate(context.Background(), "a@b.com", "1234")
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(sess, &payload))
	assert.NotEmpty(t, payload["token"])
	assert.Equal(t, 1, srv.Calls(http.MethodPost, "/login"))
}

func TestAuthenticate_ServerMessage(t *testing.T) {
	srv, c := newServer(t)
	require.NoError(t, srv.AddUser("a@b.com", "1234"))

	_, err := c.Authenticate(context.Background(), "a@b.com", "4321")

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusUnauthorized, re.StatusCode)
	assert.Equal(t, "invalid e-mail or password", re.Message)
	assert.Equal(t, "invalid e-mail or password", Message(err))
}

func TestAuthenticate_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
	})
	_, err := c.Authenticate(context.Background(), "a@b.com", "1234")
	var re *RemoteError
	assert.ErrorAs(t, err, &re)
}

func TestListAnimals(t *testing.T) {
	srv, c := newServer(t)
	want := []models.Animal{
		{ID: "1", FID: "f1", Name: "Rex", Location: "Farm A"},
		{ID: "2", FID: "f2", Name: "Mimosa", Location: "Pasto"},
	}
	srv.SetAnimals(want)

	got, err := c.ListAnimals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListAnimals_LargeList(t *testing.T) {
	srv, c := newServer(t)
	want := make([]models.Animal, 10000)
	for i := range want {
		want[i] = models.Animal{
			ID:           strconv.Itoa(i),
			FID:          fmt.Sprintf("fid-%d", i),
			Name:         fmt.Sprintf("Animal %d", i),
			Location:     "Pasto norte",
			Breed:        "Nelore",
			AnimalType:   "bovino",
			TrackingCode: fmt.Sprintf("BR-%06d", i),
			Status:       "ativo",
		}
	}
	srv.SetAnimals(want)

	b, err := json.Marshal(want)
	require.NoError(t, err)
	require.Greater(t, len(b), maxErrorBodySize)

	got, err := c.ListAnimals(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, len(want))
	assert.Equal(t, want[len(want)-1], got[len(got)-1])
}

func TestListAnimals_RequestShape(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "http://example.com/animals", req.URL.String())
		assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`[{"id":"1","fid":"f1","nome":"Rex","localizacao":"Farm A","statusAnimal":2}]`)),
		}, nil
	})

	got, err := c.ListAnimals(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rex", got[0].Name)
	assert.Equal(t, models.Text("2"), got[0].Status)
}

func TestListAnimals_Errors(t *testing.T) {
	tests := []struct {
		name       string
		rt         roundTripperFunc
		wantStatus int
		wantMsg    string
	}{
		{
			name: "network error",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("network down")
			},
			wantMsg: "network down",
		},
		{
			name: "status without message",
			rt: func(*http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 500, Body: io.NopCloser(strings.NewReader("internal error\n"))}, nil
			},
			wantStatus: 500,
			wantMsg:    "request failed with status code 500",
		},
		{
			name: "status with message",
			rt: func(*http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 403, Body: io.NopCloser(strings.NewReader(`{"message":"session expired"}`))}, nil
			},
			wantStatus: 403,
			wantMsg:    "session expired",
		},
		{
			name: "invalid JSON",
			rt: func(*http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("not-json"))}, nil
			},
			wantStatus: 200,
			wantMsg:    "invalid response from server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.rt)
			_, err := c.ListAnimals(context.Background())

			var re *RemoteError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.wantStatus, re.StatusCode)
			assert.Equal(t, tt.wantMsg, Message(err))
		})
	}
}

func TestUpdateAnimal(t *testing.T) {
	srv, c := newServer(t)
	srv.SetAnimals([]models.Animal{{ID: "1", FID: "f1", Name: "Rex", Status: "ativo"}})

	require.NoError(t, c.UpdateAnimal(context.Background(), "f1", "Rex II", "vendido"))
	// resubmitting the same fields is harmless
	require.NoError(t, c.UpdateAnimal(context.Background(), "f1", "Rex II", "vendido"))

	got := srv.Animals()[0]
	assert.Equal(t, "Rex II", got.Name)
	assert.Equal(t, models.Text("vendido"), got.Status)
}

func TestUpdateAnimal_Body(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, map[string]string{"fid": "f1", "nome": "Rex", "statusAnimal": "1"}, body)
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
	})
	require.NoError(t, c.UpdateAnimal(context.Background(), "f1", "Rex", "1"))
}

func TestUpdateAnimal_RequiresFID(t *testing.T) {
	srv, c := newServer(t)
	err := c.UpdateAnimal(context.Background(), "", "Rex", "1")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, srv.TotalCalls())
}

func TestDeleteAnimal(t *testing.T) {
	srv, c := newServer(t)
	srv.SetAnimals([]models.Animal{{ID: "1", FID: "f1"}, {ID: "2", FID: "f 2"}})

	require.NoError(t, c.DeleteAnimal(context.Background(), "f 2"))
	assert.Len(t, srv.Animals(), 1)

	err := c.DeleteAnimal(context.Background(), "missing")
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.Equal(t, "animal not found", Message(err))

	var ve *ValidationError
	assert.ErrorAs(t, c.DeleteAnimal(context.Background(), ""), &ve)
}

func TestDeleteAnimal_CanceledContext(t *testing.T) {
	_, c := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.DeleteAnimal(ctx, "f1")
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, FallbackMessage, Message(errors.New("")))
	assert.Equal(t, "too short", Message(&ValidationError{Message: "too short"}))
	assert.Equal(t, "request failed with status code 502", Message(&RemoteError{StatusCode: 502}))
}
