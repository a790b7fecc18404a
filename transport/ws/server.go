// Package ws serves Craft environments over websockets. Each
// connection drives its own environment with JSON reset and step
// requests, each answered by one reply.
package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	env "github.com/samuelfneumann/craft2d/environment"
	"github.com/samuelfneumann/craft2d/environment/craft"
	"github.com/samuelfneumann/craft2d/environment/wrappers"
	ts "github.com/samuelfneumann/craft2d/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

const (
	readTimeout  = 5 * time.Minute
	writeTimeout = 5 * time.Second
)

// Server creates one Craft environment per websocket connection
type Server struct {
	config   craft.Config
	discount float64
	limit    int
	seed     uint64
	sessions atomic.Uint64
	logger   *slog.Logger

	upgrader websocket.Upgrader
}

// NewServer returns a Server of the world c. Episodes are cut off
// after limit steps, or run until the task is completed if limit is
// zero. The environment of the n-th connection is seeded with seed+n.
func NewServer(c craft.Config, discount float64, limit int, seed uint64,
	logger *slog.Logger) (*Server, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newServer: %w", err)
	}
	if limit < 0 {
		return nil, fmt.Errorf("newServer: step limit cannot be negative, "+
			"have %d", limit)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:   c,
		discount: discount,
		limit:    limit,
		seed:     seed,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}, nil
}

// session is the environment of a single connection
type session struct {
	id    string
	craft *craft.Craft
	env   env.Environment
}

// Handler returns the http.HandlerFunc upgrading requests to
// websocket sessions
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.logger.WarnContext(r.Context(), "upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		sess, err := s.newSession()
		if err != nil {
			s.logger.ErrorContext(r.Context(), "could not create session",
				"error", err)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr,
					"could not create environment"),
				time.Now().Add(time.Second))
			return
		}
		log := s.logger.With("session", sess.id)
		log.InfoContext(r.Context(), "session opened",
			"remote", r.RemoteAddr)

		if err := writeJSON(conn, s.welcome(sess)); err != nil {
			log.WarnContext(r.Context(), "could not send welcome",
				"error", err)
			return
		}

		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure,
					websocket.CloseGoingAway) {
					log.DebugContext(r.Context(), "read failed", "error", err)
				}
				break
			}

			reply := s.handle(sess, msg)
			if e, ok := reply.(ErrorMsg); ok {
				log.DebugContext(r.Context(), "request failed",
					"error", e.Error)
			}
			if err := writeJSON(conn, reply); err != nil {
				log.WarnContext(r.Context(), "write failed", "error", err)
				break
			}
		}
		log.InfoContext(r.Context(), "session closed")
	}
}

func (s *Server) newSession() (*session, error) {
	n := s.sessions.Add(1)
	c, err := craft.New(s.config, s.discount, rand.NewSource(s.seed+n))
	if err != nil {
		return nil, err
	}

	sess := &session{id: uuid.NewString(), craft: c, env: c}
	if s.limit > 0 {
		limited, err := wrappers.NewTimeLimit(c, s.limit)
		if err != nil {
			return nil, err
		}
		sess.env = limited
	}
	return sess, nil
}

func (s *Server) welcome(sess *session) WelcomeMsg {
	reg := sess.craft.Registry()
	kinds := make([]string, reg.NumKinds())
	for i, k := range reg.Kinds() {
		kinds[i] = k.Name
	}
	return WelcomeMsg{
		Type:    TypeWelcome,
		Session: sess.id,
		World:   s.config.Name,
		Tasks:   s.config.TaskNames(),
		Kinds:   kinds,
		Items:   reg.Items(),
		Actions: craft.NumActions,
		Limit:   s.limit,
	}
}

// handle serves one request, returning the reply to send
func (s *Server) handle(sess *session, msg []byte) interface{} {
	var base Base
	if err := json.Unmarshal(msg, &base); err != nil {
		return errorMsg(fmt.Errorf("malformed message: %w", err))
	}

	switch base.Type {
	case TypeReset:
		var reset ResetMsg
		if err := json.Unmarshal(msg, &reset); err != nil {
			return errorMsg(fmt.Errorf("malformed reset: %w", err))
		}
		if reset.Task != "" {
			if err := sess.craft.SetTask(reset.Task); err != nil {
				return errorMsg(err)
			}
		}
		step, err := sess.env.Reset()
		if err != nil {
			return errorMsg(err)
		}
		return s.timeStep(sess, step)

	case TypeStep:
		var req StepMsg
		if err := json.Unmarshal(msg, &req); err != nil {
			return errorMsg(fmt.Errorf("malformed step: %w", err))
		}
		action := mat.NewVecDense(1, []float64{float64(req.Action)})
		step, _, err := sess.env.Step(action)
		if err != nil {
			return errorMsg(err)
		}
		return s.timeStep(sess, step)
	}

	return errorMsg(fmt.Errorf("unknown message type %q", base.Type))
}

func (s *Server) timeStep(sess *session, step ts.TimeStep) TimeStepMsg {
	return newTimeStepMsg(sess.craft.Task().Name(), step,
		sess.craft.Observe())
}

func errorMsg(err error) ErrorMsg {
	return ErrorMsg{Type: TypeError, Error: err.Error()}
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	}
	return nil
}
