package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"maragu.dev/gomponents"

	"datamapper/internal/db"
	"datamapper/internal/domain"
	"datamapper/internal/middleware"
	"datamapper/internal/repository"
)

// UserCardTemplate is the template file rendered by the user card route.
const UserCardTemplate = "user_card.html"

type Handler struct {
	Conn    db.Connection
	Forward *Forward
	Logger  *slog.Logger
}

func NewHandler(conn db.Connection, forward *Forward, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if forward == nil {
		forward = NewForward("", logger)
	}
	return &Handler{Conn: conn, Forward: forward, Logger: logger}
}

// MountRoutes registers the user pages on r.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/users", h.UsersList)
	r.Get("/users/{userID}", h.UsersDetail)
	r.Get("/users/{userID}/card", h.UsersCard)
}

// users returns a mapper scoped to one request.
func (h *Handler) users(r *http.Request) *repository.UserMapper {
	return repository.NewUserMapper(h.Conn, middleware.LoggerFromContext(r.Context(), h.Logger))
}

func (h *Handler) UsersList(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	users, next, err := h.users(r).FindPage(r.Context(), filter, pageFromRequest(r))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	nextHref := ""
	if next != "" {
		q := r.URL.Query()
		q.Set("page_token", next)
		nextHref = "/users?" + q.Encode()
	}
	h.send(w, r, http.StatusOK, usersPage("Users", users, nextHref))
}

func (h *Handler) UsersDetail(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "userID"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	user, err := h.users(r).Find(r.Context(), id)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	h.send(w, r, http.StatusOK, userPage(user))
}

func (h *Handler) UsersCard(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "userID"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	user, err := h.users(r).Find(r.Context(), id)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	if err := h.Forward.SendFile(w, UserCardTemplate, user); err != nil {
		h.renderServiceError(w, r, err)
	}
}

func pageFromRequest(r *http.Request) domain.PageRequest {
	page := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page.MaxResults = parsed
		}
	}
	return page
}

func filterFromRequest(r *http.Request) (domain.UserFilter, error) {
	q := r.URL.Query()
	var f domain.UserFilter
	if raw := q.Get("min_age"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, domain.ErrValidation("min_age must be an integer, got %q", raw)
		}
		f.MinAge = n
	}
	f.NamePrefix = strings.TrimSpace(q.Get("name"))
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return f, domain.ErrValidation("active must be a boolean, got %q", raw)
		}
		f.ActiveOnly = active
	}
	return f, f.Validate()
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request, status int, node gomponents.Node) {
	if err := h.Forward.SendNode(w, status, node); err != nil {
		h.Logger.Error("render page", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var ioErr *IOError
	var storage *domain.StorageError
	var mapping *domain.MappingError
	if errors.As(err, &notFound) {
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Error()
	} else if errors.As(err, &validation) {
		status = http.StatusBadRequest
		title = "Invalid Request"
		message = validation.Error()
	} else if errors.As(err, &ioErr) {
		status = http.StatusNotFound
		title = "Page Unavailable"
		message = "The requested page is not available."
	} else if errors.As(err, &storage) {
		title = "Storage Error"
		message = "The user store is unavailable."
	} else if errors.As(err, &mapping) {
		title = "Mapping Error"
	}

	logger := middleware.LoggerFromContext(r.Context(), h.Logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	h.send(w, r, status, errorPage(title, message))
}
