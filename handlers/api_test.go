package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rtchat/config"
	"rtchat/hub"
	"rtchat/repository"
	"rtchat/services"
	"rtchat/ws"
)

type testEnv struct {
	srv    *httptest.Server
	msgSvc *services.MessageService
}

// newTestEnv wires the full gateway the same way cmd/server does.
func newTestEnv(t *testing.T, strict bool) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		MaxMessageLength:   1000,
		MessageListDefault: 50,
		MessageListCap:     200,
		WSStrictErrors:     strict,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRepo := repository.NewInMemoryUserRepo()
	roomRepo := repository.NewInMemoryRoomRepo()
	messageRepo := repository.NewInMemoryMessageRepo()

	fanout := hub.New(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go fanout.Run(ctx)

	authSvc := services.NewAuthService(userRepo, cfg)
	roomSvc := services.NewRoomService(roomRepo)
	msgSvc := services.NewMessageService(messageRepo, roomRepo, ws.NewPublisher(fanout, log), cfg)

	authH := NewAuthHandler(authSvc)
	roomH := NewRoomHandler(roomSvc, msgSvc)
	msgH := NewMessageHandler(msgSvc)
	gateway := ws.NewGateway(fanout, authSvc, msgSvc, strict, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signup", authH.Signup)
	mux.HandleFunc("POST /auth/login", authH.Login)
	mux.HandleFunc("POST /me/fcm", RequireAuth(authSvc, authH.UpdatePushToken))
	mux.HandleFunc("GET /rooms", RequireAuth(authSvc, roomH.List))
	mux.HandleFunc("POST /rooms", RequireAuth(authSvc, roomH.Create))
	mux.HandleFunc("GET /rooms/{id}", RequireAuth(authSvc, roomH.Get))
	mux.HandleFunc("GET /rooms/{id}/messages", RequireAuth(authSvc, msgH.List))
	mux.HandleFunc("POST /rooms/{id}/messages", RequireAuth(authSvc, msgH.Post))
	mux.HandleFunc("GET /ws", gateway.ServeWS)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, msgSvc: msgSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func (e *testEnv) signup(t *testing.T, email, password string) (token, userID string) {
	t.Helper()

	status, body := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, status)

	var session struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body["user"], &session.User))
	require.NoError(t, json.Unmarshal(body["token"], &token))
	return token, session.User.ID
}

func (e *testEnv) createRoom(t *testing.T, token, name string) string {
	t.Helper()

	status, body := e.do(t, http.MethodPost, "/rooms", token, map[string]string{"name": name})
	require.Equal(t, http.StatusOK, status)

	var room struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body["room"], &room))
	return room.ID
}

func TestSignupAndLogin(t *testing.T) {
	t.Run("should signup then login with the same credentials", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		token, _ := env.signup(t, "a@x.com", "pw1234")
		req.NotEmpty(token)

		status, body := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "a@x.com", "password": "pw1234",
		})
		req.Equal(http.StatusOK, status)
		req.Contains(body, "token")

		// The fresh token is accepted by an authenticated route.
		var loginToken string
		req.NoError(json.Unmarshal(body["token"], &loginToken))
		status, _ = env.do(t, http.MethodGet, "/rooms", loginToken, nil)
		req.Equal(http.StatusOK, status)
	})

	t.Run("should conflict on a duplicate email differing only in case", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		env.signup(t, "a@x.com", "pw1234")

		status, _ := env.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
			"email": "A@X.com", "password": "pw5678",
		})
		req.Equal(http.StatusConflict, status)
	})

	t.Run("should reject a bad login", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		env.signup(t, "a@x.com", "pw1234")

		status, _ := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "a@x.com", "password": "wrong",
		})
		req.Equal(http.StatusUnauthorized, status)

		status, _ = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "ghost@x.com", "password": "pw1234",
		})
		req.Equal(http.StatusUnauthorized, status)
	})

	t.Run("should store a push token", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		token, _ := env.signup(t, "a@x.com", "pw1234")

		status, body := env.do(t, http.MethodPost, "/me/fcm", token, map[string]string{
			"fcm_token": "fcm-123",
		})
		req.Equal(http.StatusOK, status)
		req.Contains(body, "user")
	})
}

func TestRoomRoutes(t *testing.T) {
	t.Run("should require a bearer token", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		status, _ := env.do(t, http.MethodGet, "/rooms", "", nil)
		req.Equal(http.StatusUnauthorized, status)

		status, _ = env.do(t, http.MethodGet, "/rooms", "garbage-token", nil)
		req.Equal(http.StatusUnauthorized, status)
	})

	t.Run("should create and list rooms in creation order", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		token, _ := env.signup(t, "a@x.com", "pw1234")
		env.createRoom(t, token, "first")
		env.createRoom(t, token, "second")

		status, body := env.do(t, http.MethodGet, "/rooms", token, nil)
		req.Equal(http.StatusOK, status)

		var rooms []struct {
			Name string `json:"name"`
		}
		req.NoError(json.Unmarshal(body["rooms"], &rooms))
		req.Len(rooms, 2)
		req.Equal("first", rooms[0].Name)
		req.Equal("second", rooms[1].Name)
	})

	t.Run("should reject an empty room name", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		token, _ := env.signup(t, "a@x.com", "pw1234")
		status, _ := env.do(t, http.MethodPost, "/rooms", token, map[string]string{"name": ""})
		req.Equal(http.StatusBadRequest, status)
	})

	t.Run("should return the room with its recent messages", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		token, userID := env.signup(t, "a@x.com", "pw1234")
		roomID := env.createRoom(t, token, "General")

		status, _ := env.do(t, http.MethodPost, "/rooms/"+roomID+"/messages", token, map[string]string{
			"content": "hello",
		})
		req.Equal(http.StatusOK, status)

		status, body := env.do(t, http.MethodGet, "/rooms/"+roomID, token, nil)
		req.Equal(http.StatusOK, status)

		var messages []struct {
			UserID  string `json:"user_id"`
			Content string `json:"content"`
		}
		req.NoError(json.Unmarshal(body["messages"], &messages))
		req.Len(messages, 1)
		req.Equal(userID, messages[0].UserID)
		req.Equal("hello", messages[0].Content)
	})

	t.Run("should 404 on an unknown room", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		token, _ := env.signup(t, "a@x.com", "pw1234")
		status, _ := env.do(t, http.MethodGet, "/rooms/ghost", token, nil)
		req.Equal(http.StatusNotFound, status)
	})
}

func TestMessageRoutes(t *testing.T) {
	t.Run("should 404 when posting to a nonexistent room", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		token, _ := env.signup(t, "a@x.com", "pw1234")
		status, _ := env.do(t, http.MethodPost, "/rooms/ghost/messages", token, map[string]string{
			"content": "hello",
		})
		req.Equal(http.StatusNotFound, status)
	})

	t.Run("should reject empty content", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		token, _ := env.signup(t, "a@x.com", "pw1234")
		roomID := env.createRoom(t, token, "General")

		status, _ := env.do(t, http.MethodPost, "/rooms/"+roomID+"/messages", token, map[string]string{
			"content": "",
		})
		req.Equal(http.StatusBadRequest, status)
	})

	t.Run("should validate limit and before", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		token, _ := env.signup(t, "a@x.com", "pw1234")
		roomID := env.createRoom(t, token, "General")

		status, _ := env.do(t, http.MethodGet, "/rooms/"+roomID+"/messages?limit=abc", token, nil)
		req.Equal(http.StatusBadRequest, status)

		status, _ = env.do(t, http.MethodGet, "/rooms/"+roomID+"/messages?before=yesterday", token, nil)
		req.Equal(http.StatusBadRequest, status)
	})

	t.Run("should page with limit and before", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t, false)

		token, _ := env.signup(t, "a@x.com", "pw1234")
		roomID := env.createRoom(t, token, "General")

		for _, content := range []string{"m0", "m1", "m2"} {
			status, _ := env.do(t, http.MethodPost, "/rooms/"+roomID+"/messages", token, map[string]string{
				"content": content,
			})
			req.Equal(http.StatusOK, status)
		}

		status, body := env.do(t, http.MethodGet, "/rooms/"+roomID+"/messages?limit=2", token, nil)
		req.Equal(http.StatusOK, status)

		var messages []struct {
			Content   string    `json:"content"`
			Timestamp time.Time `json:"timestamp"`
		}
		req.NoError(json.Unmarshal(body["messages"], &messages))
		req.Len(messages, 2)
		req.Equal("m1", messages[0].Content)
		req.Equal("m2", messages[1].Content)

		before := url.QueryEscape(messages[0].Timestamp.Format(time.RFC3339Nano))
		status, body = env.do(t, http.MethodGet, "/rooms/"+roomID+"/messages?before="+before, token, nil)
		req.Equal(http.StatusOK, status)
		req.NoError(json.Unmarshal(body["messages"], &messages))
		req.Len(messages, 1)
		req.Equal("m0", messages[0].Content)
	})
}
