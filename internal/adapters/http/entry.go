package http

import (
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionNameKey = "name"

// roomEntry issues room tokens and renders the page a client joins from.
type roomEntry struct {
	issuer      domain.TokenIssuer
	defaultName string
}

func (e *roomEntry) redirectToFresh(c *gin.Context) {
	token := e.issuer.NewRoomToken()
	log.Debug().Str("module", "adapters.http").Str("room", string(token)).Msg("issued room token")
	c.Redirect(http.StatusFound, "/"+url.PathEscape(string(token)))
}

func (e *roomEntry) render(c *gin.Context) {
	room, err := domain.ParseRoomID(c.Param("room"))
	if err != nil {
		e.redirectToFresh(c)
		return
	}

	c.HTML(http.StatusOK, "room.tmpl", gin.H{
		"RoomID":        room,
		"CandidateName": e.displayName(c),
	})
}

// displayName prefers ?name=, then the name remembered in the session, then
// the configured default.
func (e *roomEntry) displayName(c *gin.Context) string {
	session := sessions.Default(c)
	if name := c.Query("name"); name != "" && utf8.RuneCountInString(name) <= domain.MaxDisplayNameLen {
		session.Set(sessionNameKey, name)
		if err := session.Save(); err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
		}
		return name
	}
	if name, ok := session.Get(sessionNameKey).(string); ok && name != "" {
		return name
	}
	return e.defaultName
}
