// Package flash carries one-shot user notices ("Venue X was successfully
// listed!") from the request that produced them to the page that shows them.
// Messages not rendered in the current response survive a redirect in a
// signed cookie.
package flash

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/utils"
)

// Category selects how a message is styled.
type Category string

const (
	Info   Category = "info"
	Danger Category = "danger"
)

// Message is a single notice.
type Message struct {
	Category Category
	Text     string
}

// CookieName is the cookie holding messages across a redirect.
const CookieName = "fyyur_flash"

const ctxKey = "flash.state"

type state struct {
	messages []Message
	incoming bool // request carried a flash cookie
}

// Manager signs and verifies the flash cookie.
type Manager struct {
	secret string
	ttl    time.Duration
	secure bool
}

// NewManager returns a Manager signing cookies with secret. Secure marks
// the cookie HTTPS-only.
func NewManager(secret string, secure bool) *Manager {
	return &Manager{secret: secret, ttl: 5 * time.Minute, secure: secure}
}

// Middleware loads messages from an incoming cookie and, right before the
// response headers go out, persists whatever was not rendered.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st := m.state(c)
			if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
				st.incoming = true
				if msgs, err := utils.ParseFlash(m.secret, ck.Value); err == nil {
					for _, p := range msgs {
						st.messages = append(st.messages, Message{Category: Category(p[0]), Text: p[1]})
					}
				}
			}
			c.Response().Before(func() { m.persist(c, st) })
			return next(c)
		}
	}
}

// Add queues a message for the next rendered page.
func (m *Manager) Add(c echo.Context, cat Category, text string) {
	st := m.state(c)
	st.messages = append(st.messages, Message{Category: cat, Text: text})
}

// Pop returns and clears every queued message.
func (m *Manager) Pop(c echo.Context) []Message {
	st := m.state(c)
	out := st.messages
	st.messages = nil
	return out
}

func (m *Manager) state(c echo.Context) *state {
	if st, ok := c.Get(ctxKey).(*state); ok {
		return st
	}
	st := &state{}
	c.Set(ctxKey, st)
	return st
}

func (m *Manager) persist(c echo.Context, st *state) {
	if len(st.messages) == 0 {
		if st.incoming {
			c.SetCookie(m.cookie("", -1))
		}
		return
	}
	msgs := make([][2]string, 0, len(st.messages))
	for _, msg := range st.messages {
		msgs = append(msgs, [2]string{string(msg.Category), msg.Text})
	}
	raw, err := utils.SignFlash(m.secret, msgs, m.ttl)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "Failed to sign flash cookie", "err", err)
		return
	}
	c.SetCookie(m.cookie(raw, int(m.ttl/time.Second)))
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
