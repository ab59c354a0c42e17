package chat

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// maxEventBody bounds webhook payloads.
const maxEventBody = 1 << 20

// signatureMaxSkew rejects replayed requests with stale timestamps.
const signatureMaxSkew = 5 * time.Minute

// Handler consumes verified inbound events.
type Handler interface {
	HandleEvent(ev Event)
}

// NewRouter creates a chi router with the events webhook and health probes
// mounted. Events are acknowledged immediately and dispatched to the handler
// asynchronously; the workspace retries any response slower than 3 seconds.
func NewRouter(signingSecret string, handler Handler, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	w := &webhook{secret: signingSecret, handler: handler, logger: logger, now: time.Now}

	r := chi.NewRouter()
	r.Post("/slack/events", w.events)
	r.Get("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusNoContent)
	})
	r.Get("/readyz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusNoContent)
	})
	return r
}

type webhook struct {
	secret  string
	handler Handler
	logger  *slog.Logger
	now     func() time.Time
}

type eventEnvelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	Event     json.RawMessage `json:"event"`
}

func (w *webhook) events(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		http.Error(rw, "read failed", http.StatusBadRequest)
		return
	}

	if err := w.verify(r.Header, body); err != nil {
		w.logger.Warn("rejected unsigned event", slog.String("error", err.Error()))
		http.Error(rw, "invalid signature", http.StatusUnauthorized)
		return
	}

	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		http.Error(rw, "malformed payload", http.StatusBadRequest)
		return
	}

	switch env.Type {
	case "url_verification":
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = rw.Write([]byte(env.Challenge))

	case "event_callback":
		var ev Event
		if err := json.Unmarshal(env.Event, &ev); err != nil {
			http.Error(rw, "malformed event", http.StatusBadRequest)
			return
		}
		rw.WriteHeader(http.StatusOK)
		go w.handler.HandleEvent(ev)

	default:
		rw.WriteHeader(http.StatusOK)
	}
}

// verify checks the v0 HMAC-SHA256 request signature.
func (w *webhook) verify(h http.Header, body []byte) error {
	ts := h.Get("X-Slack-Request-Timestamp")
	sig := h.Get("X-Slack-Signature")
	if ts == "" || sig == "" {
		return fmt.Errorf("missing signature headers")
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("bad timestamp: %w", err)
	}
	if skew := w.now().Sub(time.Unix(unix, 0)); skew > signatureMaxSkew || skew < -signatureMaxSkew {
		return fmt.Errorf("timestamp outside allowed window")
	}

	mac := hmac.New(sha256.New, []byte(w.secret))
	mac.Write([]byte("v0:" + ts + ":"))
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
