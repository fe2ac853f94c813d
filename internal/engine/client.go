package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"othello_webapp/internal/domain"
)

// Operation names, used in errors and metric labels.
const (
	OpFetchBoard      = "fetch_board"
	OpSubmitMove      = "submit_move"
	OpTriggerOpponent = "trigger_opponent"
	OpFetchOutcome    = "fetch_outcome"
	OpReset           = "reset"
	OpBegin           = "begin"
	OpPing            = "ping"
)

// Paths are the engine endpoints. The strings are the real contract.
type Paths struct {
	State     string
	UserMove  string
	AgentMove string
	Outcome   string
	Reset     string
	// Begin starts a game for a chosen colour; empty skips the call.
	Begin string
}

func DefaultPaths() Paths {
	return Paths{
		State:     "/get_game_state",
		UserMove:  "/user_move",
		AgentMove: "/agent_move",
		Outcome:   "/get_game_outcome",
		Reset:     "/reset_game",
		Begin:     "/play_game",
	}
}

// Config holds engine client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Paths   Paths
}

// Client talks to one engine session. The engine keeps its game in a
// cookie session, so every Client owns a private cookie jar.
type Client struct {
	baseURL    string
	paths      Paths
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("engine base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		baseURL: base,
		paths:   cfg.Paths,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

type boardResponse struct {
	GameState [][]string `json:"game_state"`
}

type moveResponse struct {
	GameOver *bool `json:"game_over"`
}

type agentResponse struct {
	GameOver     *bool `json:"game_over"`
	AgentMoved   *bool `json:"agent_moved"`
	UserHasMoves *bool `json:"user_has_moves"`
}

type outcomeResponse struct {
	OutcomeMessage *string `json:"outcome_message"`
}

// FetchBoard returns the engine's current board.
func (c *Client) FetchBoard(ctx context.Context) (domain.BoardSnapshot, error) {
	var resp boardResponse
	if err := c.do(ctx, OpFetchBoard, http.MethodGet, c.paths.State, nil, "", &resp); err != nil {
		return domain.BoardSnapshot{}, err
	}
	if resp.GameState == nil {
		return domain.BoardSnapshot{}, malformedErr(OpFetchBoard, errors.New("missing game_state"))
	}
	snap, err := domain.ParseSnapshot(resp.GameState)
	if err != nil {
		return domain.BoardSnapshot{}, malformedErr(OpFetchBoard, err)
	}
	return snap, nil
}

// SubmitMove plays the human's move.
func (c *Client) SubmitMove(ctx context.Context, m domain.MoveIntent) (domain.MoveResult, error) {
	if !m.Valid() {
		return domain.MoveResult{}, &Error{Op: OpSubmitMove, Kind: ErrInvalidMove, Err: fmt.Errorf("(%d,%d)", m.Row, m.Col)}
	}
	body, err := json.Marshal(m)
	if err != nil {
		return domain.MoveResult{}, err
	}
	var resp moveResponse
	if err := c.do(ctx, OpSubmitMove, http.MethodPost, c.paths.UserMove, bytes.NewReader(body), "application/json", &resp); err != nil {
		return domain.MoveResult{}, err
	}
	if resp.GameOver == nil {
		return domain.MoveResult{}, malformedErr(OpSubmitMove, errors.New("missing game_over"))
	}
	return domain.MoveResult{GameOver: *resp.GameOver}, nil
}

// TriggerOpponent asks the engine to play the opponent's move.
func (c *Client) TriggerOpponent(ctx context.Context) (domain.OpponentResult, error) {
	var resp agentResponse
	if err := c.do(ctx, OpTriggerOpponent, http.MethodPost, c.paths.AgentMove, nil, "", &resp); err != nil {
		return domain.OpponentResult{}, err
	}
	switch {
	case resp.GameOver == nil:
		return domain.OpponentResult{}, malformedErr(OpTriggerOpponent, errors.New("missing game_over"))
	case resp.AgentMoved == nil:
		return domain.OpponentResult{}, malformedErr(OpTriggerOpponent, errors.New("missing agent_moved"))
	case resp.UserHasMoves == nil:
		return domain.OpponentResult{}, malformedErr(OpTriggerOpponent, errors.New("missing user_has_moves"))
	}
	return domain.OpponentResult{
		GameOver:     *resp.GameOver,
		AgentMoved:   *resp.AgentMoved,
		UserHasMoves: *resp.UserHasMoves,
	}, nil
}

// FetchOutcome returns the engine-authored outcome text.
func (c *Client) FetchOutcome(ctx context.Context) (string, error) {
	var resp outcomeResponse
	if err := c.do(ctx, OpFetchOutcome, http.MethodGet, c.paths.Outcome, nil, "", &resp); err != nil {
		return "", err
	}
	if resp.OutcomeMessage == nil {
		return "", malformedErr(OpFetchOutcome, errors.New("missing outcome_message"))
	}
	return *resp.OutcomeMessage, nil
}

// Reset asks the engine to discard the session's game. The reply body is ignored;
// callers treat a failure as advisory since Begin starts a new game anyway.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, OpReset, http.MethodPost, c.paths.Reset, nil, "", nil)
}

// Begin starts a game with the human playing side.
func (c *Client) Begin(ctx context.Context, side domain.Side) error {
	if c.paths.Begin == "" {
		return nil
	}
	form := url.Values{"color": {string(side)}}
	return c.do(ctx, OpBegin, http.MethodPost, c.paths.Begin, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil)
}

// Ping checks that the engine answers HTTP at all; any status counts.
func (c *Client) Ping(ctx context.Context) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(OpPing).Observe(time.Since(start).Seconds())
	if err != nil {
		err = networkErr(OpPing, err)
		requestsTotal.WithLabelValues(OpPing, errorKind(err)).Inc()
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	requestsTotal.WithLabelValues(OpPing, "ok").Inc()
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) (err error) {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		requestsTotal.WithLabelValues(op, errorKind(err)).Inc()
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return networkErr(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return networkErr(op, fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(msg))))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return malformedErr(op, err)
	}
	return nil
}
