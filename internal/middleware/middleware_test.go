package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wallet_api/internal/apperr"
	"wallet_api/internal/domain"
	"wallet_api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Message string              `json:"message"`
	Body    []apperr.FieldError `json:"body"`
	Error   map[string]any      `json:"error"`
}

func newEngine(dev bool) *gin.Engine {
	log, _ := test.NewNullLogger()
	r := gin.New()
	r.Use(ErrorHandler(dev), Recovery(log))
	r.NoRoute(NoRoute())
	return r
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func do(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body errorBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func token(t *testing.T, userID, roleID uint) string {
	t.Helper()
	tok, err := utils.GenerateJWT(userID, roleID, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAuth(t *testing.T) {
	r := newEngine(false)
	r.GET("/me", Auth(secret), func(c *gin.Context) {
		identity, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"userId": identity.UserID, "roleId": identity.RoleID})
	})

	t.Run("missing token", func(t *testing.T) {
		w, body := do(t, r, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No token provided", body.Message)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(TokenHeader, "garbage")
		w, body := do(t, r, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid token", body.Message)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(TokenHeader, token(t, 7, domain.RoleStandard))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":7,"roleId":2}`, w.Body.String())
	})
}

type ownedPayload struct {
	UserID uint `json:"userId" binding:"required"`
}

func (p *ownedPayload) OwnerID() uint { return p.UserID }

func TestOwnership(t *testing.T) {
	r := newEngine(false)
	r.GET("/users/:id", Auth(secret), Ownership(FromParams, domain.RoleAdmin), ok)
	r.GET("/list", Auth(secret), Ownership(FromQuery, domain.RoleAdmin), ok)
	r.POST("/things", Auth(secret), Validate[ownedPayload](), Ownership(FromBody, domain.RoleAdmin), ok)

	cases := []struct {
		name   string
		method string
		target string
		body   string
		user   uint
		role   uint
		status int
	}{
		{"params owner", http.MethodGet, "/users/3", "", 3, domain.RoleStandard, http.StatusOK},
		{"params other", http.MethodGet, "/users/4", "", 3, domain.RoleStandard, http.StatusForbidden},
		{"params admin", http.MethodGet, "/users/4", "", 1, domain.RoleAdmin, http.StatusOK},
		{"params bad id", http.MethodGet, "/users/abc", "", 3, domain.RoleStandard, http.StatusBadRequest},
		{"query owner", http.MethodGet, "/list?userId=3", "", 3, domain.RoleStandard, http.StatusOK},
		{"query other", http.MethodGet, "/list?userId=9", "", 3, domain.RoleStandard, http.StatusForbidden},
		{"query missing", http.MethodGet, "/list", "", 3, domain.RoleStandard, http.StatusOK},
		{"query bad id", http.MethodGet, "/list?userId=x", "", 3, domain.RoleStandard, http.StatusBadRequest},
		{"body owner", http.MethodPost, "/things", `{"userId":3}`, 3, domain.RoleStandard, http.StatusOK},
		{"body other", http.MethodPost, "/things", `{"userId":5}`, 3, domain.RoleStandard, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(TokenHeader, token(t, tc.user, tc.role))
			w, body := do(t, r, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusForbidden {
				assert.Equal(t, "the record does not belong to you", body.Message)
			}
		})
	}
}

func TestOwnership_RequiresIdentity(t *testing.T) {
	r := newEngine(false)
	r.GET("/users/:id", Ownership(FromParams, domain.RoleAdmin), ok)

	w, _ := do(t, r, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeFinder map[uint]*domain.Transaction

func (f fakeFinder) FindByID(_ context.Context, id uint) (*domain.Transaction, error) {
	tx, found := f[id]
	if !found {
		return nil, apperr.NotFound("transaction", id)
	}
	return tx, nil
}

func TestOwnershipTransaction(t *testing.T) {
	finder := fakeFinder{10: {ID: 10, UserID: 3, Description: "coffee"}}
	r := newEngine(false)
	r.GET("/transactions/:id", Auth(secret), OwnershipTransaction(finder, domain.RoleAdmin), func(c *gin.Context) {
		tx, _ := TransactionFrom(c)
		c.JSON(http.StatusOK, gin.H{"description": tx.Description})
	})

	get := func(target string, user, role uint) (*httptest.ResponseRecorder, errorBody) {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set(TokenHeader, token(t, user, role))
		return do(t, r, req)
	}

	w, _ := get("/transactions/10", 3, domain.RoleStandard)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"description":"coffee"}`, w.Body.String())

	w, body := get("/transactions/10", 4, domain.RoleStandard)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "the transaction does not belong to you", body.Message)

	w, _ = get("/transactions/10", 1, domain.RoleAdmin)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = get("/transactions/99", 3, domain.RoleStandard)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = get("/transactions/0", 3, domain.RoleStandard)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type schema struct {
	Email string `json:"email" binding:"required,email"`
	Date  string `json:"date" binding:"required,flexdate"`
}

func TestValidate(t *testing.T) {
	r := newEngine(false)
	r.POST("/v", Validate[schema](), func(c *gin.Context) {
		p, found := Payload[schema](c)
		require.True(t, found)
		c.JSON(http.StatusOK, gin.H{"email": p.Email})
	})
	post := func(body string) (*httptest.ResponseRecorder, errorBody) {
		req := httptest.NewRequest(http.MethodPost, "/v", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return do(t, r, req)
	}

	w, _ := post(`{"email":"a@b.co","date":"2024-03-01"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = post(`{"email":"a@b.co","date":"2024-03-01T10:00:00Z"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := post(`{"email":"nope","date":"yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", body.Message)
	assert.ElementsMatch(t, []apperr.FieldError{
		{Field: "email", Rule: "email"},
		{Field: "date", Rule: "flexdate"},
	}, body.Body)

	w, body = post(`{"email":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []apperr.FieldError{{Field: "email", Rule: "type"}}, body.Body)

	w, body = post(``)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request body is empty", body.Message)
}

func TestCheckID(t *testing.T) {
	r := newEngine(false)
	r.GET("/users/:id", CheckID(), ok)

	for target, status := range map[string]int{
		"/users/1":   http.StatusOK,
		"/users/0":   http.StatusBadRequest,
		"/users/-1":  http.StatusBadRequest,
		"/users/abc": http.StatusBadRequest,
	} {
		w, _ := do(t, r, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, status, w.Code, target)
	}
}

func TestErrorHandler_Details(t *testing.T) {
	fail := func(c *gin.Context) {
		Abort(c, apperr.Persistence("user - GET", assert.AnError))
	}

	prod := newEngine(false)
	prod.GET("/fail", fail)
	w, body := do(t, prod, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", body.Message)
	assert.Empty(t, body.Error)

	dev := newEngine(true)
	dev.GET("/fail", fail)
	w, body = do(t, dev, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, body.Message, "[user - GET]")
	assert.Equal(t, "persistence", body.Error["kind"])
}

func TestRecoveryAndNoRoute(t *testing.T) {
	r := newEngine(true)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w, body := do(t, r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "panic: boom", body.Message)

	w, body = do(t, r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "route GET /missing not found", body.Message)
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := newEngine(false)
	r.Use(RequestLogger(log))
	r.GET("/ok", ok)
	r.GET("/bad", func(c *gin.Context) { Abort(c, apperr.Validation("nope")) })

	do(t, r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])

	do(t, r, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "nope", hook.LastEntry().Data["error"])
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSingleImage(t *testing.T) {
	dir := t.TempDir()
	r := newEngine(false)
	r.POST("/upload", SingleImage("image", dir, 1024), func(c *gin.Context) {
		f, _ := UploadFrom(c)
		c.JSON(http.StatusOK, gin.H{"name": f.Name, "url": f.URL, "mime": f.MIME})
	})

	t.Run("png accepted", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "image", "avatar.png", pngHeader))
		require.Equal(t, http.StatusOK, w.Code)

		var got map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "image/png", got["mime"])
		assert.True(t, strings.HasSuffix(got["name"], ".png"))
		assert.Equal(t, UploadURLPrefix+got["name"], got["url"])
		_, err := os.Stat(filepath.Join(dir, got["name"]))
		assert.NoError(t, err)
	})

	t.Run("wrong extension", func(t *testing.T) {
		w, body := do(t, r, multipartRequest(t, "image", "avatar.gif", pngHeader))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []apperr.FieldError{{Field: "image", Rule: "image"}}, body.Body)
	})

	t.Run("content is not an image", func(t *testing.T) {
		w, _ := do(t, r, multipartRequest(t, "image", "avatar.png", []byte("plain text, not a picture")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		w, body := do(t, r, multipartRequest(t, "image", "avatar.png", append(pngHeader, make([]byte, 2048)...)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "File too large", body.Message)
	})

	t.Run("missing field", func(t *testing.T) {
		w, _ := do(t, r, multipartRequest(t, "other", "avatar.png", pngHeader))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
