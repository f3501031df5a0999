package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MKhiriev/go-plan-keeper/internal/config"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/go-resty/resty/v2"
)

// HTTPServerAdapter implements [RemoteStore] and [SessionProvider] over the
// server's REST API.
type HTTPServerAdapter struct {
	client *utils.HTTPClient
	// stream has no client-wide timeout; the change feed is long-lived.
	stream *utils.HTTPClient

	mu      sync.RWMutex
	session *models.Session

	logger *logger.Logger
}

// NewHTTPServerAdapter normalises adapterCfg.HTTPAddress and configures the
// underlying HTTP clients with the resolved base URL. The request timeout
// applies to every call except the change feed.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (*HTTPServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &HTTPServerAdapter{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		stream: utils.NewHTTPClient(baseURL, 0),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// ── SessionProvider ──────────────────────────────────────────────────────────

// SetSession implements [SessionProvider].
func (h *HTTPServerAdapter) SetSession(session *models.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session == nil {
		h.session = nil
		return
	}
	s := *session
	h.session = &s
}

// Session implements [SessionProvider].
func (h *HTTPServerAdapter) Session() *models.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.session == nil {
		return nil
	}
	s := *h.session
	return &s
}

func (h *HTTPServerAdapter) token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.session == nil {
		return ""
	}
	return h.session.AccessToken
}

// Register implements [SessionProvider]. POST /api/auth/register.
func (h *HTTPServerAdapter) Register(ctx context.Context, login, password string) (*models.Session, error) {
	return h.authenticate(ctx, "register", "/api/auth/register", models.User{Login: login, Password: password})
}

// Login implements [SessionProvider]. POST /api/auth/login.
func (h *HTTPServerAdapter) Login(ctx context.Context, login, password string) (*models.Session, error) {
	return h.authenticate(ctx, "login", "/api/auth/login", models.User{Login: login, Password: password})
}

// RestoreSession implements [SessionProvider]. POST /api/auth/refresh with
// the stored refresh token. A rejected refresh token drops the session.
func (h *HTTPServerAdapter) RestoreSession(ctx context.Context) (bool, error) {
	current := h.Session()
	if current == nil || current.RefreshToken == "" {
		return false, nil
	}

	_, err := h.authenticate(ctx, "refresh", "/api/auth/refresh", models.RefreshRequest{RefreshToken: current.RefreshToken})
	if err != nil {
		if isAuthRejection(err) {
			h.SetSession(nil)
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// GetSession implements [SessionProvider]. GET /api/auth/session confirms the
// access token and refreshes the account status.
func (h *HTTPServerAdapter) GetSession(ctx context.Context) (*models.Session, error) {
	current := h.Session()
	if current == nil || current.AccessToken == "" {
		return nil, ErrNoSession
	}

	var info models.AuthResponse
	resp, err := h.authedRequest(ctx, h.client).
		SetResult(&info).
		Get("/api/auth/session")
	if err != nil {
		return nil, mapTransportError("get session request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		if isAuthRejection(err) {
			return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
		}
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		return nil, ErrNoSession
	}
	h.session.Status = info.Status
	h.session.UserID = info.UserID
	if info.Login != "" {
		h.session.Login = info.Login
	}
	s := *h.session
	return &s, nil
}

func (h *HTTPServerAdapter) authenticate(ctx context.Context, op, path string, body any) (*models.Session, error) {
	var info models.AuthResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&info).
		Post(path)
	if err != nil {
		return nil, mapTransportError(op+" request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return nil, fmt.Errorf("%s parse bearer token: %w: %w", op, ErrMalformedResponse, err)
	}

	session := &models.Session{
		UserID:       info.UserID,
		Login:        info.Login,
		Status:       info.Status,
		AccessToken:  token,
		RefreshToken: info.RefreshToken,
		ExpiresAt:    info.ExpiresAt,
	}
	if session.UserID == 0 || session.ExpiresAt.IsZero() {
		if userID, expiresAt, parseErr := utils.ParseUnverifiedClaims(token); parseErr == nil {
			if session.UserID == 0 {
				session.UserID = userID
			}
			if session.ExpiresAt.IsZero() {
				session.ExpiresAt = expiresAt
			}
		}
	}

	h.SetSession(session)
	h.logger.Debug().Str("func", "HTTPServerAdapter.authenticate").Str("op", op).Int64("user_id", session.UserID).Msg("session established")

	return h.Session(), nil
}

// ── RemoteStore ──────────────────────────────────────────────────────────────

// GetAll implements [RemoteStore]. GET /api/records/. ownerID is unused by the
// HTTP implementation; the server infers the owner from the bearer token.
func (h *HTTPServerAdapter) GetAll(ctx context.Context, ownerID int64) ([]models.Record, error) {
	resp, err := h.authedRequest(ctx, h.client).Get("/api/records/")
	if err != nil {
		return nil, mapTransportError("list records request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var records []models.Record
	if err = json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, fmt.Errorf("decode records response: %w: %w", ErrMalformedResponse, err)
	}
	return records, nil
}

// Save implements [RemoteStore]. POST /api/records/ creates or updates.
func (h *HTTPServerAdapter) Save(ctx context.Context, record models.Record, ownerID int64) (models.Record, error) {
	record.OwnerID = ownerID

	var saved models.Record
	resp, err := h.authedRequest(ctx, h.client).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		SetResult(&saved).
		Post("/api/records/")
	if err != nil {
		return models.Record{}, mapTransportError("save record request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Record{}, err
	}
	if saved.ID == "" {
		return models.Record{}, fmt.Errorf("save record: %w: empty id", ErrMalformedResponse)
	}

	return saved, nil
}

// Delete implements [RemoteStore]. DELETE /api/records/{id}.
func (h *HTTPServerAdapter) Delete(ctx context.Context, id string) error {
	resp, err := h.authedRequest(ctx, h.client).
		SetPathParam("id", id).
		Delete("/api/records/{id}")
	if err != nil {
		return mapTransportError("delete record request", err)
	}

	return mapHTTPError(resp)
}

// SubscribeToChanges implements [RemoteStore]. It reads the server-sent
// events of GET /api/records/changes and hands every decoded "data:" line to
// callback. Events of other owners are skipped.
func (h *HTTPServerAdapter) SubscribeToChanges(ctx context.Context, ownerID int64, callback func(models.ChangeEvent)) error {
	resp, err := h.authedRequest(ctx, h.stream).
		SetHeader("Accept", "text/event-stream").
		SetDoNotParseResponse(true).
		Get("/api/records/changes")
	if err != nil {
		return mapTransportError("subscribe to changes request", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 300 {
		return mapHTTPError(resp)
	}

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}

		var event models.ChangeEvent
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &event); err != nil {
			h.logger.Warn().Err(err).Str("func", "HTTPServerAdapter.SubscribeToChanges").Msg("skipping malformed change event")
			continue
		}
		if event.OwnerID != 0 && event.OwnerID != ownerID {
			continue
		}
		callback(event)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return mapTransportError("read change feed", err)
	}
	return fmt.Errorf("change feed: %w: stream closed", ErrNetwork)
}

func (h *HTTPServerAdapter) authedRequest(ctx context.Context, client *utils.HTTPClient) *resty.Request {
	req := client.R().SetContext(ctx)
	if token := h.token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func isAuthRejection(err error) bool {
	return errorsIsAny(err, ErrUnauthorized, ErrForbidden)
}
