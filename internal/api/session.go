package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/proctor_service"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the cors layer and the bearer token
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandlerProctorSession runs a proctoring session over a websocket. The
// registration gate and attempt start happen before the upgrade so a refused
// student gets a plain http error.
func (a *Api) HandlerProctorSession(w http.ResponseWriter, r *http.Request) {
	contestID, ok := urlUUID(w, r, "contestId")
	if !ok {
		return
	}
	claims, err := service.GetClaimsFromContext(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		handlerError(err, w)
		return
	}

	attempt, contest, err := a.SubmissionServiceConfig.StartAttemptAs(r.Context(), userID, contestID)
	if err != nil {
		handlerError(err, w)
		return
	}
	if attempt.SubmittedAt != nil {
		handlerError(fmt.Errorf("%w, attempt was submitted at %s", app_errors.ErrAlreadySubmitted, attempt.SubmittedAt.Format(time.RFC3339)), w)
		return
	}

	ls, err := a.ProctorManager.Open(userID, contestID, contest.EndTime)
	if err != nil {
		handlerError(err, w)
		return
	}
	defer ls.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade failed for user %s, %v", userID, err)
		return
	}

	writerDone := make(chan struct{})
	go writePushes(conn, ls, writerDone)

	conn.SetReadLimit(maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		var ev proctor_service.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("proctor session of user %s closed, %v", userID, err)
			}
			break
		}
		ls.Dispatch(ev)
	}

	ls.Close()
	<-writerDone
}

// writePushes is the only writer of conn. It returns once the session is
// done and every queued push was written, then closes the connection.
func writePushes(conn *websocket.Conn, ls *proctor_service.LiveSession, done chan<- struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		close(done)
	}()

	write := func(p proctor_service.Push) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(p); err != nil {
			log.Debugf("proctor push failed, %v", err)
			return false
		}
		return true
	}

	for {
		select {
		case p := <-ls.Pushes():
			if !write(p) {
				return
			}
		case <-ls.Done():
			for {
				select {
				case p := <-ls.Pushes():
					if !write(p) {
						return
					}
				default:
					_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
					_ = conn.WriteMessage(
						websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session finished"),
					)
					return
				}
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
