// Package client is the REST client of the liftlog API, and the optimistic caches built on it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/2beens/liftlog/internal/gymstats/folders"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/sets"
	"github.com/2beens/liftlog/internal/gymstats/templates"
	"github.com/2beens/liftlog/internal/gymstats/workouts"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNetwork marks requests that never got an HTTP response.
var ErrNetwork = errors.New("network failure")

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("new request %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s response: %w", ErrNetwork, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
			apiErr.Details = errBody.Details
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	creds := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/a/login", creds, &resp); err != nil {
		return err
	}
	c.SetToken(resp.Token)
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/a/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) Workouts(ctx context.Context, page, limit int) (*workouts.ListResponse, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))
	var resp workouts.ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/workouts?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Workout(ctx context.Context, id string) (*model.Workout, error) {
	var resp struct {
		Workout *model.Workout `json:"workout"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/workouts/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Workout, nil
}

func (c *Client) StartWorkout(ctx context.Context, req workouts.StartRequest) (*model.Workout, error) {
	var resp struct {
		Workout *model.Workout `json:"workout"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/workouts/start", req, &resp); err != nil {
		return nil, err
	}
	return resp.Workout, nil
}

func (c *Client) AddExercise(ctx context.Context, workoutID, exerciseID string) (*model.WorkoutExercise, error) {
	var resp struct {
		Exercise *model.WorkoutExercise `json:"exercise"`
	}
	path := "/api/workouts/" + url.PathEscape(workoutID) + "/exercises"
	if err := c.do(ctx, http.MethodPost, path, workouts.AddExerciseRequest{ExerciseID: exerciseID}, &resp); err != nil {
		return nil, err
	}
	return resp.Exercise, nil
}

func (c *Client) CompleteWorkout(ctx context.Context, id string) (*model.Workout, error) {
	var resp struct {
		Workout *model.Workout `json:"workout"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/workouts/"+url.PathEscape(id)+"/complete", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Workout, nil
}

func (c *Client) WorkoutSummary(ctx context.Context, id string) (*workouts.Summary, error) {
	var resp workouts.Summary
	if err := c.do(ctx, http.MethodGet, "/api/workouts/"+url.PathEscape(id)+"/summary", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateSet(ctx context.Context, setID string, patch sets.Patch) (*sets.UpdateResult, error) {
	var resp sets.UpdateResult
	if err := c.do(ctx, http.MethodPatch, "/api/workouts/sets/"+url.PathEscape(setID), patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AddSet(ctx context.Context, workoutExerciseID string) (*model.WorkoutSet, error) {
	var resp struct {
		Set *model.WorkoutSet `json:"set"`
	}
	path := "/api/workouts/exercises/" + url.PathEscape(workoutExerciseID) + "/sets"
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Set, nil
}

func (c *Client) DeleteSet(ctx context.Context, setID string) error {
	return c.do(ctx, http.MethodDelete, "/api/workouts/sets/"+url.PathEscape(setID), nil, nil)
}

func (c *Client) Exercises(ctx context.Context, search string) ([]model.Exercise, error) {
	path := "/api/exercises"
	if search != "" {
		path += "?" + url.Values{"search": {search}}.Encode()
	}
	var resp struct {
		Exercises []model.Exercise `json:"exercises"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Exercises, nil
}

func (c *Client) ExerciseRecords(ctx context.Context, exerciseID string) ([]model.PersonalRecord, error) {
	var resp struct {
		Records []model.PersonalRecord `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/exercises/"+url.PathEscape(exerciseID)+"/records", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

func (c *Client) Folders(ctx context.Context) (*folders.Listing, error) {
	var resp folders.Listing
	if err := c.do(ctx, http.MethodGet, "/api/folders", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateFolder(ctx context.Context, req folders.CreateRequest) (*model.RoutineFolder, error) {
	var resp struct {
		Folder *model.RoutineFolder `json:"folder"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/folders", req, &resp); err != nil {
		return nil, err
	}
	return resp.Folder, nil
}

func (c *Client) UpdateFolder(ctx context.Context, id string, req folders.UpdateRequest) (*model.RoutineFolder, error) {
	var resp struct {
		Folder *model.RoutineFolder `json:"folder"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/folders/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	return resp.Folder, nil
}

func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/folders/"+url.PathEscape(id), nil, nil)
}

// MoveTemplate moves a template into folderID, or out of any folder with folders.NoFolder.
func (c *Client) MoveTemplate(ctx context.Context, folderID, templateID string) (*model.WorkoutTemplate, error) {
	var resp struct {
		Template *model.WorkoutTemplate `json:"template"`
	}
	path := "/api/folders/" + url.PathEscape(folderID) + "/templates"
	if err := c.do(ctx, http.MethodPost, path, folders.MoveTemplateRequest{TemplateID: templateID}, &resp); err != nil {
		return nil, err
	}
	return resp.Template, nil
}

func (c *Client) Templates(ctx context.Context) ([]model.WorkoutTemplate, error) {
	var resp struct {
		Templates []model.WorkoutTemplate `json:"templates"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/templates", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Templates, nil
}

func (c *Client) CreateTemplate(ctx context.Context, req templates.CreateRequest) (*model.WorkoutTemplate, error) {
	var resp struct {
		Template *model.WorkoutTemplate `json:"template"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/templates", req, &resp); err != nil {
		return nil, err
	}
	return resp.Template, nil
}
