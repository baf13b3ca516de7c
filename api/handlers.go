package api

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-board/domain"
	"kanban-board/render"
	"kanban-board/session"
)

const postTaskMaxSize = 64 * 1024 // 64 KiB

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, sessions Sessions, auth Authenticator, deduper Deduper, stream Streamer, logger *log.Logger) {
	e.GET("/api/tasks", getTasks(sessions, auth, logger))
	e.GET("/api/board", getBoard(sessions, auth))
	e.GET("/api/board/fragments", getBoardFragments(sessions, auth))
	e.GET("/api/archive", getArchive(sessions, auth))
	e.POST("/api/tasks", postTask(sessions, auth, deduper))
	e.POST("/api/tasks/:id/status", postTaskStatus(sessions, auth))
	e.POST("/api/tasks/:id/archive", postTaskArchive(sessions, auth))
	e.POST("/api/tasks/:id/unarchive", postTaskUnarchive(sessions, auth))
	e.POST("/api/tasks/:id/subtasks/:index/toggle", postSubtaskToggle(sessions, auth))
	e.DELETE("/api/tasks/:id", deleteTask(sessions, auth))
	e.GET("/api/boards", getBoards(sessions, auth))
	e.POST("/api/boards", postBoard(sessions, auth))
	e.DELETE("/api/boards/:id", deleteBoard(sessions, auth))
	e.POST("/api/signout", postSignout(sessions, auth))
	e.GET("/stream", streamTasks(stream, auth))
	e.GET("/healthz", healthz())
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type taskRequest struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	DueDate        string           `json:"dueDate"`
	DueTime        string           `json:"dueTime"`
	Tags           []domain.Tag     `json:"tags"`
	Subtasks       []domain.Subtask `json:"subtasks"`
	Status         string           `json:"status"`
	Board          string           `json:"board"`
	IdempotencyKey string           `json:"idempotencyKey"`
}

type taskResponse struct {
	Task           domain.Task `json:"task"`
	IdempotencyKey string      `json:"idempotencyKey"`
	Duplicate      bool        `json:"duplicate,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type boardRequest struct {
	Name string `json:"name"`
}

type boardResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Field string `json:"field,omitempty"`
	Error string `json:"error"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// authenticate resolves the caller's user id, writing the 401 itself when the
// token is rejected.
func authenticate(c echo.Context, auth Authenticator) (string, bool) {
	userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		_ = c.String(http.StatusUnauthorized, err.Error())
		return "", false
	}
	return userID, true
}

// writeError maps domain failures onto HTTP responses: rejected input is the
// client's problem, persistence trouble is the backend's.
func writeError(c echo.Context, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, errorResponse{Field: verr.Field, Error: verr.Message})
	}
	if errors.Is(err, domain.ErrDefaultBoard) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: domain.UserMessage(perr.Code)})
	}
	c.Logger().Error(err)
	return c.String(http.StatusInternalServerError, "internal error")
}

func getTasks(sessions Sessions, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTaskRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		userID, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		fetchStart := time.Now()
		tasks := sessions.Get(ctx, userID).Tasks.Tasks()
		metrics.ObserveFetch(time.Since(fetchStart))
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasksResponse{Tasks: tasks})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

// activeBoardFor resolves the board query parameter, falling back to the
// session's active board and recording an explicit switch.
func activeBoardFor(c echo.Context, s *session.Session) string {
	if boardID := c.QueryParam("board"); boardID != "" {
		s.SetActiveBoard(boardID)
	}
	return s.ActiveBoard()
}

func getBoard(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		s := sessions.Get(c.Request().Context(), userID)
		boardID := activeBoardFor(c, s)
		columns := render.Columns(s.Tasks.Tasks(), boardID, time.Now())
		return c.JSON(http.StatusOK, columns)
	}
}

func getBoardFragments(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		s := sessions.Get(c.Request().Context(), userID)
		boardID := activeBoardFor(c, s)
		columns := render.Columns(s.Tasks.Tasks(), boardID, time.Now())
		return c.JSON(http.StatusOK, render.Fragments(columns))
	}
}

// getArchive lists the archived tasks of the active board, created dates
// included, for the archive viewer.
func getArchive(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		s := sessions.Get(c.Request().Context(), userID)
		boardID := activeBoardFor(c, s)
		archived := s.Tasks.GetTasksByStatus(boardID, domain.StatusArchive)
		return c.JSON(http.StatusOK, tasksResponse{Tasks: archived})
	}
}

// contentKey derives an idempotency key from the submitted content, so a
// double submit without a client key still lands on one document. Creating a
// second task with identical content inside the dedup window needs a client
// supplied key.
func contentKey(req taskRequest) string {
	data, err := sonic.ConfigStd.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func postTask(sessions Sessions, auth Authenticator, deduper Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}

		lr := io.LimitReader(c.Request().Body, postTaskMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()
		var req taskRequest
		if err := dec.Decode(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		key := req.IdempotencyKey
		if key == "" {
			key = contentKey(req)
		}
		added, err := deduper.Add(ctx, userID, key)
		if err != nil {
			return writeError(c, err)
		}
		if !added {
			return c.JSON(http.StatusOK, taskResponse{IdempotencyKey: key, Duplicate: true})
		}

		s := sessions.Get(ctx, userID)
		saved, inFlight, err := s.SubmitTask(ctx, session.TaskDraft{
			TaskID:      req.ID,
			Title:       req.Title,
			Description: req.Description,
			DueDate:     req.DueDate,
			DueTime:     req.DueTime,
			Tags:        req.Tags,
			Subtasks:    req.Subtasks,
			Status:      req.Status,
			Board:       req.Board,
		})
		if err != nil {
			// The key is released so the client may retry the corrected request.
			if rerr := deduper.Remove(ctx, userID, key); rerr != nil {
				c.Logger().Errorf("release idempotency key: %v", rerr)
			}
			return writeError(c, err)
		}
		if inFlight {
			if rerr := deduper.Remove(ctx, userID, key); rerr != nil {
				c.Logger().Errorf("release idempotency key: %v", rerr)
			}
			return c.JSON(http.StatusOK, taskResponse{IdempotencyKey: key, Duplicate: true})
		}
		return c.JSON(http.StatusCreated, taskResponse{Task: saved, IdempotencyKey: key})
	}
}

func postTaskStatus(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		var req statusRequest
		if err := c.Bind(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		status, ok := domain.ParseStatus(req.Status)
		if !ok {
			return c.JSON(http.StatusBadRequest, errorResponse{Field: "status", Error: "unknown status"})
		}
		s := sessions.Get(ctx, userID)
		if err := s.Tasks.UpdateStatus(ctx, c.Param("id"), status); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func postTaskArchive(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		if err := sessions.Get(ctx, userID).Archive(ctx, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func postTaskUnarchive(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		if err := sessions.Get(ctx, userID).Unarchive(ctx, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func postSubtaskToggle(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Field: "index", Error: "invalid subtask index"})
		}
		s := sessions.Get(ctx, userID)
		if err := s.Tasks.ToggleSubtask(ctx, c.Param("id"), index); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteTask(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		if err := sessions.Get(ctx, userID).Tasks.DeleteTask(ctx, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func getBoards(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		s := sessions.Get(ctx, userID)
		boards, err := s.Boards.LoadBoards(ctx)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, boards)
	}
}

func postBoard(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		var req boardRequest
		if err := c.Bind(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		id, err := sessions.Get(ctx, userID).Boards.CreateBoard(ctx, req.Name)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, boardResponse{ID: id})
	}
}

func deleteBoard(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		if err := sessions.Get(ctx, userID).DeleteBoard(ctx, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func postSignout(sessions Sessions, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := authenticate(c, auth)
		if !ok {
			return nil
		}
		sessions.End(userID)
		return c.NoContent(http.StatusNoContent)
	}
}
