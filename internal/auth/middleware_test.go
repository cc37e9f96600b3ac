package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitcalc/profitcalc-backend/internal/users"
)

// The development fallback path: no Firebase client configured, caller
// identity comes from headers and a users row is ensured on the way in.
func TestWithUserDevFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
		t.Helper()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		r := gin.New()
		r.Use(WithUser(nil, users.NewRepo(db)))
		r.GET("/whoami", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"user_id":      UserID(c),
				"provider_uid": ProviderUID(c),
			})
		})
		return r, mock
	}

	t.Run("missing identity header is 401", func(t *testing.T) {
		r, mock := newRouter(t)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("identity header ensures the user and fills the context", func(t *testing.T) {
		r, mock := newRouter(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("dev-uid", "a@b.test", "Alex").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-1"))

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-User-Id", "dev-uid")
		req.Header.Set("X-User-Email", "a@b.test")
		req.Header.Set("X-User-Name", "Alex")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
		assert.Contains(t, w.Body.String(), `"provider_uid":"dev-uid"`)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user upsert failure is a 500", func(t *testing.T) {
		r, mock := newRouter(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("dev-uid", "", "").
			WillReturnError(assert.AnError)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-User-Id", "dev-uid")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
