package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	assert.NotNil(t, mockDB.SqlDB)

	// no expectations queued, so this must pass
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext(t *testing.T) {
	t.Run("defaults to GET /", func(t *testing.T) {
		tc := NewTestContext(t)
		require.NotNil(t, tc.Context)
		require.NotNil(t, tc.Recorder)
		require.NotNil(t, tc.Engine)
		assert.Equal(t, http.MethodGet, tc.Context.Request.Method)
	})

	t.Run("context setters store under header-style keys", func(t *testing.T) {
		tc := NewTestContext(t)
		tc.SetRequestID("req-123")
		tc.SetTenantID("tenant-456")
		tc.SetUserID("user-789")

		for key, want := range map[string]string{
			"X-Request-ID": "req-123",
			"X-Tenant-ID":  "tenant-456",
			"X-User-ID":    "user-789",
		} {
			val, ok := tc.Context.Get(key)
			require.True(t, ok, key)
			assert.Equal(t, want, val)
		}
	})

	t.Run("SetHeader writes to the request", func(t *testing.T) {
		tc := NewTestContext(t)
		tc.SetHeader("Authorization", "Bearer token")
		assert.Equal(t, "Bearer token", tc.Context.Request.Header.Get("Authorization"))
	})

	t.Run("ResponseCode reflects the recorder", func(t *testing.T) {
		tc := NewTestContext(t)
		tc.Recorder.WriteHeader(http.StatusCreated)
		assert.Equal(t, http.StatusCreated, tc.ResponseCode())
	})
}

func TestDeterministicIDs(t *testing.T) {
	t.Run("same seed, same UUID", func(t *testing.T) {
		assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
		assert.NotEqual(t, NewTestUUID("seed"), NewTestUUID("other"))
	})

	t.Run("random UUIDs differ", func(t *testing.T) {
		assert.NotEqual(t, NewRandomUUID(), NewRandomUUID())
	})

	t.Run("well-known IDs are stable and distinct", func(t *testing.T) {
		assert.Equal(t, TestTenantID(), TestTenantID())
		assert.Equal(t, TestUserID(), TestUserID())
		assert.Equal(t, TestDatabaseID(), TestDatabaseID())

		ids := map[string]bool{
			TestTenantID().String():   true,
			TestUserID().String():     true,
			TestDatabaseID().String(): true,
		}
		assert.Len(t, ids, 3)
	})
}

func TestContextHelpers(t *testing.T) {
	t.Run("timeout context carries a deadline", func(t *testing.T) {
		ctx, cancel := ContextWithTimeout(t, 100*time.Millisecond)
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.True(t, deadline.After(time.Now()))
	})

	t.Run("cancel context cancels", func(t *testing.T) {
		ctx, cancel := ContextWithCancel(t)

		select {
		case <-ctx.Done():
			t.Fatal("context cancelled too early")
		default:
		}

		cancel()
		<-ctx.Done()
	})
}

func TestPollingAssertions(t *testing.T) {
	t.Run("AssertEventually sees delayed condition", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			time.Sleep(50 * time.Millisecond)
			close(done)
		}()

		AssertEventually(t, func() bool {
			select {
			case <-done:
				return true
			default:
				return false
			}
		}, 200*time.Millisecond, 10*time.Millisecond)
	})

	t.Run("AssertNever holds for a false condition", func(t *testing.T) {
		AssertNever(t, func() bool { return false }, 50*time.Millisecond, 10*time.Millisecond)
	})
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "pong"})
	}

	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{
			Name:           "status and body keys",
			Method:         http.MethodGet,
			Path:           "/ping",
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   map[string]any{"success": true},
		},
		{
			Name:           "defaults fill method and path",
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *TestContext) {
				AssertSuccessResponse(t, tc)
			},
		},
	})
}

func TestJSONResponseHelpers(t *testing.T) {
	t.Run("generic map", func(t *testing.T) {
		tc := NewTestContext(t)
		tc.Context.JSON(http.StatusOK, gin.H{"key": "value"})
		assert.Equal(t, "value", JSONResponse(t, tc)["key"])
	})

	t.Run("typed struct", func(t *testing.T) {
		type response struct {
			Key string `json:"key"`
		}
		tc := NewTestContext(t)
		tc.Context.JSON(http.StatusOK, gin.H{"key": "value"})
		assert.Equal(t, "value", JSONResponseAs[response](t, tc).Key)
	})

	t.Run("error envelope assertion", func(t *testing.T) {
		tc := NewTestContext(t)
		tc.Context.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ERR_NOT_FOUND"},
		})
		AssertErrorResponse(t, tc, "ERR_NOT_FOUND")
	})

	t.Run("ToJSONReader round trip", func(t *testing.T) {
		reader := ToJSONReader(t, map[string]string{"name": "Invoices"})
		require.NotNil(t, reader)
	})
}
