package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/samuelfneumann/craft2d/environment/craft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

// receive reads one message, returning its type and raw bytes
func receive(t *testing.T, conn *websocket.Conn) (string, []byte) {
	t.Helper()
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var base Base
	require.NoError(t, json.Unmarshal(msg, &base))
	return base.Type, msg
}

func newTestServer(t *testing.T, limit int) *httptest.Server {
	t.Helper()
	s, err := NewServer(craft.BasicConfig(), 0.9, limit, 1, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestSession(t *testing.T) {
	srv := newTestServer(t, 3)
	conn := dial(t, srv)

	typ, msg := receive(t, conn)
	require.Equal(t, TypeWelcome, typ)
	var welcome WelcomeMsg
	require.NoError(t, json.Unmarshal(msg, &welcome))
	assert.NotEmpty(t, welcome.Session)
	assert.Equal(t, "basic", welcome.World)
	assert.Equal(t, []string{"get-wood", "get-stone", "get-grass"},
		welcome.Tasks)
	assert.Equal(t, []string{"tree", "stone", "grass"}, welcome.Kinds)
	assert.Equal(t, craft.NumActions, welcome.Actions)
	assert.Equal(t, 3, welcome.Limit)

	// Stepping before the first reset fails, but keeps the session open
	send(t, conn, StepMsg{Type: TypeStep, Action: 0})
	typ, msg = receive(t, conn)
	require.Equal(t, TypeError, typ)
	assert.Contains(t, string(msg), craft.ErrNotInitialized.Error())

	send(t, conn, ResetMsg{Type: TypeReset, Task: "get-stone"})
	typ, msg = receive(t, conn)
	require.Equal(t, TypeTimeStep, typ)
	var step TimeStepMsg
	require.NoError(t, json.Unmarshal(msg, &step))
	assert.Equal(t, "get-stone", step.Task)
	assert.Equal(t, "First", step.StepType)
	assert.Equal(t, 0, step.Number)
	assert.Equal(t, 10, step.Observation.Rows)
	assert.Len(t, step.Observation.Cells, 100)
	assert.Equal(t, []int{0, 0, 0}, step.Observation.Inventory)
	assert.Equal(t, "none", step.Observation.Facing)

	send(t, conn, StepMsg{Type: TypeStep, Action: 9})
	typ, _ = receive(t, conn)
	assert.Equal(t, TypeError, typ)

	for i := 1; i <= 3; i++ {
		send(t, conn, StepMsg{Type: TypeStep, Action: int(craft.Left)})
		typ, msg = receive(t, conn)
		require.Equal(t, TypeTimeStep, typ)
		step = TimeStepMsg{}
		require.NoError(t, json.Unmarshal(msg, &step))
		assert.Equal(t, i, step.Number)
		assert.Equal(t, "left", step.Observation.Facing)
		assert.Equal(t, 0, step.Observation.Col)
	}
	assert.True(t, step.Done)
	assert.Equal(t, "Timeout", step.End)

	// Resetting without a task keeps the current one
	send(t, conn, ResetMsg{Type: TypeReset})
	_, msg = receive(t, conn)
	step = TimeStepMsg{}
	require.NoError(t, json.Unmarshal(msg, &step))
	assert.Equal(t, "get-stone", step.Task)
	assert.False(t, step.Done)
}

func TestBadRequests(t *testing.T) {
	conn := dial(t, newTestServer(t, 0))
	receive(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte("not json")))
	typ, _ := receive(t, conn)
	assert.Equal(t, TypeError, typ)

	send(t, conn, Base{Type: "teleport"})
	typ, msg := receive(t, conn)
	assert.Equal(t, TypeError, typ)
	assert.Contains(t, string(msg), "teleport")

	send(t, conn, ResetMsg{Type: TypeReset, Task: "get-gem"})
	typ, _ = receive(t, conn)
	assert.Equal(t, TypeError, typ)
}

func TestSessionsAreIndependent(t *testing.T) {
	srv := newTestServer(t, 0)
	a, b := dial(t, srv), dial(t, srv)

	var welcomeA, welcomeB WelcomeMsg
	_, msg := receive(t, a)
	require.NoError(t, json.Unmarshal(msg, &welcomeA))
	_, msg = receive(t, b)
	require.NoError(t, json.Unmarshal(msg, &welcomeB))
	assert.NotEqual(t, welcomeA.Session, welcomeB.Session)

	send(t, a, ResetMsg{Type: TypeReset})
	typ, _ := receive(t, a)
	require.Equal(t, TypeTimeStep, typ)

	// b has not been reset
	send(t, b, StepMsg{Type: TypeStep, Action: 0})
	typ, _ = receive(t, b)
	assert.Equal(t, TypeError, typ)
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(craft.BasicConfig(), 0.9, -1, 1, nil)
	assert.Error(t, err)

	c := craft.BasicConfig()
	c.Rows = 0
	_, err = NewServer(c, 0.9, 0, 1, nil)
	assert.Error(t, err)
}

func TestResetTaskRestartsLimit(t *testing.T) {
	s, err := NewServer(craft.BasicConfig(), 0.9, 2, 1, nil)
	require.NoError(t, err)
	sess, err := s.newSession()
	require.NoError(t, err)

	request := func(v interface{}) interface{} {
		msg, err := json.Marshal(v)
		require.NoError(t, err)
		return s.handle(sess, msg)
	}

	request(ResetMsg{Type: TypeReset})
	request(StepMsg{Type: TypeStep, Action: int(craft.Left)})
	request(StepMsg{Type: TypeStep, Action: int(craft.Left)})
	current := sess.env.CurrentTimeStep()
	require.True(t, current.Last())

	reply := request(ResetMsg{Type: TypeReset, Task: "get-grass"})
	step, ok := reply.(TimeStepMsg)
	require.True(t, ok, "reply %#v", reply)
	assert.Equal(t, "get-grass", step.Task)

	current = sess.env.CurrentTimeStep()
	assert.True(t, current.First())
	assert.Equal(t, 0, current.Number)

	reply = request(ResetMsg{Type: TypeReset, Task: "get-gem"})
	_, ok = reply.(ErrorMsg)
	assert.True(t, ok, "reply %#v", reply)
	assert.Equal(t, "get-grass", sess.craft.Task().Name())
}
