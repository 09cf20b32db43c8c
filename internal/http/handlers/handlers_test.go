package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/taskboard/internal/actorctx"
	"github.com/geocoder89/taskboard/internal/domain/task"
	"github.com/geocoder89/taskboard/internal/domain/user"
	"github.com/geocoder89/taskboard/internal/http/handlers"
	"github.com/geocoder89/taskboard/internal/http/middlewares"
	"github.com/geocoder89/taskboard/web"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementations of the handler interfaces

type fakeBoard struct {
	listFn    func(ctx context.Context) ([]task.Task, error)
	addFn     func(ctx context.Context, name string, ownerID *int64) (task.Task, error)
	advanceFn func(ctx context.Context, id int64) (task.Task, error)
	deleteFn  func(ctx context.Context, id int64) error
}

func (f *fakeBoard) ListAllOrderedByOwner(ctx context.Context) ([]task.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeBoard) Add(ctx context.Context, name string, ownerID *int64) (task.Task, error) {
	if f.addFn != nil {
		return f.addFn(ctx, name, ownerID)
	}
	return task.Task{}, nil
}

func (f *fakeBoard) Advance(ctx context.Context, id int64) (task.Task, error) {
	if f.advanceFn != nil {
		return f.advanceFn(ctx, id)
	}
	return task.Task{}, nil
}

func (f *fakeBoard) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeAccounts struct {
	registerFn     func(ctx context.Context, email, password, name string) (user.User, error)
	authenticateFn func(ctx context.Context, email, password string) (user.User, error)
}

func (f *fakeAccounts) Register(ctx context.Context, email, password, name string) (user.User, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, email, password, name)
	}
	return user.User{ID: 1, Email: email, Name: name}, nil
}

func (f *fakeAccounts) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	if f.authenticateFn != nil {
		return f.authenticateFn(ctx, email, password)
	}
	return user.User{ID: 1, Email: email}, nil
}

type fakeSessions struct {
	revoked []string
}

func (f *fakeSessions) Issue(userID int64) (string, time.Time, error) {
	return "token-for-user", time.Now().Add(time.Hour), nil
}

func (f *fakeSessions) Revoke(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

// setupRouter mounts one handler with templates loaded and, optionally, a logged-in user.
func setupRouter(method, path string, as *user.User, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(web.MustTemplates())

	if as != nil {
		u := *as
		r.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(actorctx.WithUser(c.Request.Context(), u))
			c.Next()
		})
	}

	r.Handle(method, path, h)

	return r
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHomeHandler(t *testing.T) {
	owner := int64(1)

	tests := []struct {
		name       string
		listFn     func(ctx context.Context) ([]task.Task, error)
		wantStatus int
		wantBody   []string
	}{
		{
			name: "renders_columns",
			listFn: func(context.Context) ([]task.Task, error) {
				return []task.Task{
					{ID: 1, Name: "write tests", Category: task.CategoryDoing, OwnerID: &owner},
					{ID: 2, Name: "ship it", Category: task.CategoryToDo, OwnerID: &owner},
				}, nil
			},
			wantStatus: http.StatusOK,
			wantBody:   []string{"write tests", "ship it", "/update/1", "/delete/2"},
		},
		{
			name: "store_error",
			listFn: func(context.Context) ([]task.Task, error) {
				return nil, errors.New("db down")
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   []string{"Something went wrong"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewTasksHandler(&fakeBoard{listFn: tt.listFn})
			r := setupRouter(http.MethodGet, "/", nil, h.Home)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d", w.Code, tt.wantStatus)
			}

			for _, s := range tt.wantBody {
				if !strings.Contains(w.Body.String(), s) {
					t.Fatalf("body missing %q", s)
				}
			}
		})
	}
}

func TestAddTaskHandler(t *testing.T) {
	alice := user.User{ID: 7, Name: "Alice"}

	tests := []struct {
		name       string
		form       url.Values
		addErr     error
		wantStatus int
	}{
		{name: "created", form: url.Values{"task": {"Buy milk"}}, wantStatus: http.StatusFound},
		{name: "missing_name", form: url.Values{}, wantStatus: http.StatusBadRequest},
		{name: "too_long", form: url.Values{"task": {strings.Repeat("x", 251)}}, wantStatus: http.StatusBadRequest},
		{name: "blank_name", form: url.Values{"task": {"   "}}, addErr: task.ErrEmptyName, wantStatus: http.StatusBadRequest},
		{name: "duplicate", form: url.Values{"task": {"Buy milk"}}, addErr: task.ErrDuplicateName, wantStatus: http.StatusConflict},
		{name: "store_error", form: url.Values{"task": {"Buy milk"}}, addErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOwner *int64

			board := &fakeBoard{addFn: func(_ context.Context, name string, ownerID *int64) (task.Task, error) {
				gotOwner = ownerID
				if tt.addErr != nil {
					return task.Task{}, tt.addErr
				}
				return task.Task{ID: 1, Name: name, Category: task.CategoryToDo, OwnerID: ownerID}, nil
			}}

			h := handlers.NewTasksHandler(board)
			r := setupRouter(http.MethodPost, "/add", &alice, h.Add)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, formRequest(http.MethodPost, "/add", tt.form))

			if w.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusFound && (gotOwner == nil || *gotOwner != alice.ID) {
				t.Fatalf("task should be owned by the caller, got %v", gotOwner)
			}
		})
	}
}

func TestUpdateAndDeleteHandlers(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
	}{
		{name: "ok", path: "/3", wantStatus: http.StatusFound},
		{name: "unknown", path: "/3", err: task.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "non_numeric", path: "/abc", wantStatus: http.StatusNotFound},
		{name: "zero", path: "/0", wantStatus: http.StatusNotFound},
		{name: "store_error", path: "/3", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &fakeBoard{
				advanceFn: func(_ context.Context, id int64) (task.Task, error) {
					if id != 3 {
						t.Fatalf("unexpected id %d", id)
					}
					return task.Task{ID: id, Category: task.CategoryDoing}, tt.err
				},
				deleteFn: func(_ context.Context, id int64) error {
					if id != 3 {
						t.Fatalf("unexpected id %d", id)
					}
					return tt.err
				},
			}
			h := handlers.NewTasksHandler(board)

			for _, route := range []struct {
				prefix string
				fn     gin.HandlerFunc
			}{
				{"/update", h.Update},
				{"/delete", h.Delete},
			} {
				r := setupRouter(http.MethodGet, route.prefix+"/:task_id", nil, route.fn)

				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, route.prefix+tt.path, nil))

				if w.Code != tt.wantStatus {
					t.Fatalf("%s: got %d, want %d", route.prefix, w.Code, tt.wantStatus)
				}
				if w.Code == http.StatusFound && w.Header().Get("Location") != "/" {
					t.Fatalf("%s: redirect to %q", route.prefix, w.Header().Get("Location"))
				}
			}
		})
	}
}

func TestAPIListHandler_ETag(t *testing.T) {
	board := &fakeBoard{listFn: func(context.Context) ([]task.Task, error) {
		return []task.Task{{ID: 1, Name: "a", Category: task.CategoryToDo}}, nil
	}}

	h := handlers.NewTasksHandler(board)
	r := setupRouter(http.MethodGet, "/api/tasks", nil, h.APIList)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"count":1`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	etag := w.Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("If-None-Match", "W/"+etag)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("got %d, want 304", w.Code)
	}
}

func TestRegisterHandler(t *testing.T) {
	valid := url.Values{
		"register-email":    {"ada@example.com"},
		"register-password": {"pw"},
		"register-name":     {"Ada"},
	}

	tests := []struct {
		name        string
		form        url.Values
		registerErr error
		wantStatus  int
		wantBody    string
		wantCookie  bool
	}{
		{name: "created", form: valid, wantStatus: http.StatusFound, wantCookie: true},
		{name: "duplicate", form: valid, registerErr: user.ErrEmailTaken, wantStatus: http.StatusOK, wantBody: "already signed up with that email"},
		{name: "duplicate_keeps_email", form: valid, registerErr: user.ErrEmailTaken, wantStatus: http.StatusOK, wantBody: `value="ada@example.com"`},
		{
			name:        "blank_name",
			form:        url.Values{"register-email": {"ada@example.com"}, "register-password": {"pw"}, "register-name": {"   "}},
			registerErr: user.ErrEmptyName,
			wantStatus:  http.StatusBadRequest,
			wantBody:    "register-name is required",
		},
		{name: "invalid", form: url.Values{"register-email": {"x"}}, wantStatus: http.StatusBadRequest, wantBody: "register-password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &fakeAccounts{registerFn: func(_ context.Context, email, _, name string) (user.User, error) {
				if tt.registerErr != nil {
					return user.User{}, tt.registerErr
				}
				return user.User{ID: 1, Email: email, Name: name}, nil
			}}

			h := handlers.NewAuthHandler(accounts, &fakeSessions{}, false)
			r := setupRouter(http.MethodPost, "/register", nil, h.Register)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, formRequest(http.MethodPost, "/register", tt.form))

			if w.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Fatalf("body missing %q: %s", tt.wantBody, w.Body.String())
			}

			gotCookie := strings.Contains(w.Header().Get("Set-Cookie"), "session=token-for-user")
			if gotCookie != tt.wantCookie {
				t.Fatalf("session cookie set = %v, want %v", gotCookie, tt.wantCookie)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name         string
		authErr      error
		form         url.Values
		wantLocation string
		wantFlash    bool
	}{
		{name: "ok", form: url.Values{"login-email": {"a@example.com"}, "login-password": {"pw"}}, wantLocation: "/"},
		{name: "unknown_email", authErr: user.ErrUnknownEmail, form: url.Values{"login-email": {"a@example.com"}, "login-password": {"pw"}}, wantLocation: "/login", wantFlash: true},
		{name: "wrong_password", authErr: user.ErrInvalidPassword, form: url.Values{"login-email": {"a@example.com"}, "login-password": {"pw"}}, wantLocation: "/login", wantFlash: true},
		{name: "missing_fields", form: url.Values{}, wantLocation: "/login", wantFlash: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &fakeAccounts{authenticateFn: func(_ context.Context, email, _ string) (user.User, error) {
				if tt.authErr != nil {
					return user.User{}, tt.authErr
				}
				return user.User{ID: 1, Email: email}, nil
			}}

			h := handlers.NewAuthHandler(accounts, &fakeSessions{}, false)
			r := setupRouter(http.MethodPost, "/login", nil, h.Login)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, formRequest(http.MethodPost, "/login", tt.form))

			if w.Code != http.StatusFound {
				t.Fatalf("got %d, want 302", w.Code)
			}
			if got := w.Header().Get("Location"); got != tt.wantLocation {
				t.Fatalf("got location %q, want %q", got, tt.wantLocation)
			}

			gotFlash := strings.Contains(w.Header().Get("Set-Cookie"), "flash=")
			if gotFlash != tt.wantFlash {
				t.Fatalf("flash set = %v, want %v", gotFlash, tt.wantFlash)
			}
		})
	}
}

func TestLoginHandler_FlashFollowsCookiePolicy(t *testing.T) {
	for _, secure := range []bool{false, true} {
		accounts := &fakeAccounts{authenticateFn: func(context.Context, string, string) (user.User, error) {
			return user.User{}, user.ErrInvalidPassword
		}}

		h := handlers.NewAuthHandler(accounts, &fakeSessions{}, secure)

		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(middlewares.CtxSecureCookies, secure)
			c.Next()
		})
		r.POST("/login", h.Login)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, formRequest(http.MethodPost, "/login", url.Values{"login-email": {"a@example.com"}, "login-password": {"pw"}}))

		cookie := w.Header().Get("Set-Cookie")
		if !strings.Contains(cookie, "flash=") {
			t.Fatalf("expected a flash cookie, got %q", cookie)
		}
		if got := strings.Contains(cookie, "; Secure"); got != secure {
			t.Fatalf("secure=%v: flash cookie %q", secure, cookie)
		}
	}
}

func TestLogoutHandler_RevokesSession(t *testing.T) {
	sessions := &fakeSessions{}
	h := handlers.NewAuthHandler(&fakeAccounts{}, sessions, false)
	r := setupRouter(http.MethodGet, "/logout", nil, h.Logout)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("got %d to %q", w.Code, w.Header().Get("Location"))
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "abc" {
		t.Fatalf("revoked %v, want [abc]", sessions.revoked)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "session=;") {
		t.Fatalf("session cookie not cleared: %q", w.Header().Get("Set-Cookie"))
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	tests := []struct {
		name       string
		ping       func(ctx context.Context) error
		draining   bool
		wantStatus int
	}{
		{name: "no_probe", ping: nil, wantStatus: http.StatusOK},
		{name: "ready", ping: func(context.Context) error { return nil }, wantStatus: http.StatusOK},
		{name: "down", ping: func(context.Context) error { return errors.New("refused") }, wantStatus: http.StatusServiceUnavailable},
		{name: "draining", ping: func(context.Context) error { return nil }, draining: true, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(tt.ping, func() bool { return tt.draining })
			r := setupRouter(http.MethodGet, "/readyz", nil, h.Readyz)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
