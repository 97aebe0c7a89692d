// Session status and session creation handlers.
//
// GET /clientstatus/:clientId preserves the legacy contract: 200 with an
// {"isReady": bool} body when the session id is known, plain-text 404 when
// it is not. "Known but still pairing" is NOT an error; it answers 200 with
// isReady=false so the frontend can poll.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientStatusResponse is the readiness payload for a known session.
type ClientStatusResponse struct {
	IsReady bool `json:"isReady"`
}

// ClientStatus godoc
// @ID          clientStatus
// @Summary     Session readiness
// @Description Reports whether the named messaging session has completed
// @Description pairing. Unknown session ids yield 404.
// @Tags        Sessions
// @Produce     json
//
// @Param       clientId  path  string  true  "Session id"
//
// @Success     200  {object}  handlers.ClientStatusResponse
// @Failure     404  {string}  string  "Client not found"
// @Router      /clientstatus/{clientId} [get]
func (h *Handlers) ClientStatus(c *gin.Context) {
	clientID := c.Param("clientId")

	found, ready := h.status.Status(clientID)
	if !found {
		text(c, http.StatusNotFound, msgClientNotFound)
		return
	}
	ok(c, http.StatusOK, ClientStatusResponse{IsReady: ready})
}

// CreateSession godoc
// @ID          createSession
// @Summary     Register a messaging session
// @Description Registers the session id and starts its pairing sequence in
// @Description the background. Registering an existing id is a no-op.
// @Tags        Sessions
// @Produce     json
//
// @Param       id  path  string  true  "Session id"
//
// @Success     202  {object}  handlers.ClientStatusResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /sessions/{id} [post]
func (h *Handlers) CreateSession(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id required")
		return
	}

	h.sessions.Create(id)

	_, ready := h.status.Status(id)
	ok(c, http.StatusAccepted, ClientStatusResponse{IsReady: ready})
}
