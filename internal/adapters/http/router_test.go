package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Huddle/internal/adapters/rtc"
	"github.com/dkeye/Huddle/internal/adapters/signal"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type fixedIssuer domain.RoomID

func (f fixedIssuer) NewRoomToken() domain.RoomID { return domain.RoomID(f) }

func testConfig() *config.Config {
	return &config.Config{
		Mode:        "test",
		StaticPath:  "./testdata",
		Secret:      "test-secret",
		DefaultName: "John Doe",
	}
}

func newTestRouter(t *testing.T, issuer domain.TokenIssuer) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	o := orch.New(app.NewRegistry(true), app.IgnorePolicy{})
	ctl := signal.NewSignalWSController(o, signal.Limits{
		ReadLimit:  4096,
		PingPeriod: 30 * time.Second,
		PongWait:   time.Minute,
		WriteWait:  time.Second,
		SendBuffer: 16,
	}, nil)
	r := SetupRouter(context.Background(), testConfig(), Deps{
		Orch:   o,
		Signal: ctl,
		Issuer: issuer,
		ICE:    rtc.DefaultWebRTCConfig(),
	})
	return r, o
}

func get(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRootRedirectsToFreshToken(t *testing.T) {
	r, _ := newTestRouter(t, domain.UUIDIssuer{})

	w := get(r, "/")
	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/"))
	_, err := uuid.Parse(strings.TrimPrefix(loc, "/"))
	require.NoError(t, err)

	require.NotEqual(t, loc, get(r, "/").Header().Get("Location"))
}

func TestRoomPageRendersTokenAndName(t *testing.T) {
	r, _ := newTestRouter(t, fixedIssuer("fresh"))

	w := get(r, "/abc")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `data-room-id="abc"`)
	require.Contains(t, w.Body.String(), `data-candidate-name="John Doe"`)

	w = get(r, "/abc?name=Ada")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `data-candidate-name="Ada"`)

	// The name sticks to the session cookie.
	w = get(r, "/other", w.Result().Cookies()...)
	require.Contains(t, w.Body.String(), `data-room-id="other"`)
	require.Contains(t, w.Body.String(), `data-candidate-name="Ada"`)
}

func TestRoomPageEscapesName(t *testing.T) {
	r, _ := newTestRouter(t, fixedIssuer("fresh"))

	w := get(r, "/abc?name=%3Cscript%3E")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `data-candidate-name="&lt;script&gt;"`)
}

func TestClientTokenCookieIsIssued(t *testing.T) {
	r, _ := newTestRouter(t, fixedIssuer("fresh"))

	w := get(r, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "ct" {
			found = true
			require.NotEmpty(t, c.Value)
		}
	}
	require.True(t, found)
}

func TestClientTokenMiddlewareMarksIssuedTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ClientTokenMiddleware())
	r.GET("/t", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"token":  c.GetString("client_token"),
			"issued": c.GetBool(signal.ClientTokenIssuedKey),
		})
	})

	var body struct {
		Token  string `json:"token"`
		Issued bool   `json:"issued"`
	}
	w := get(r, "/t")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Issued)
	require.NotEmpty(t, body.Token)

	w = get(r, "/t", &http.Cookie{Name: "ct", Value: "known"})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.False(t, body.Issued)
	require.Equal(t, "known", body.Token)
}

func TestICEEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, fixedIssuer("fresh"))

	w := get(r, "/api/ice")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"iceServers":[{"urls":["stun:stun.l.google.com:19302"]}]}`, w.Body.String())
}

func TestRoomsAPIFollowsPresence(t *testing.T) {
	r, o := newTestRouter(t, fixedIssuer("fresh"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(map[string]string{"type": "join", "room": "abc", "peerId": "px", "name": "Ada"}))
	require.Eventually(t, func() bool { return o.Registry.MemberCount("abc") == 1 }, 2*time.Second, 10*time.Millisecond)

	w := get(r, "/api/rooms")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"rooms":[{"name":"abc","client_count":1}]}`, w.Body.String())

	w = get(r, "/api/rooms/abc/members")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Room    string `json:"room"`
		Members []struct {
			PeerID string `json:"peer_id"`
			Name   string `json:"name"`
		} `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "abc", body.Room)
	require.Len(t, body.Members, 1)
	require.Equal(t, "px", body.Members[0].PeerID)
	require.Equal(t, "Ada", body.Members[0].Name)

	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool { return !o.Registry.HasRoom("abc") }, 2*time.Second, 10*time.Millisecond)
	require.JSONEq(t, `{"rooms":[]}`, get(r, "/api/rooms").Body.String())
}
