package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestLimiter(maxAttempts int) (*RateLimiter, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     maxAttempts,
		WindowDuration:  time.Minute,
		LockoutDuration: 5 * time.Minute,
	})
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_AllowsInitialAttempts(t *testing.T) {
	rl, _ := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		if allowed, _ := rl.Allow("10.0.0.1"); !allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
		rl.RecordFailure("10.0.0.1")
	}
	if allowed, _ := rl.Allow("10.0.0.1"); !allowed {
		t.Error("third attempt should be allowed")
	}
}

func TestRateLimiter_LockoutExpires(t *testing.T) {
	rl, now := newTestLimiter(2)
	defer rl.Stop()

	rl.RecordFailure("10.0.0.1")
	if locked := rl.RecordFailure("10.0.0.1"); !locked {
		t.Fatal("second failure should lock out")
	}

	allowed, retryAfter := rl.Allow("10.0.0.1")
	if allowed || retryAfter != 5*time.Minute {
		t.Fatalf("expected lockout of 5m, got allowed=%v retryAfter=%v", allowed, retryAfter)
	}

	*now = now.Add(6 * time.Minute)
	if allowed, _ := rl.Allow("10.0.0.1"); !allowed {
		t.Error("lockout should have expired")
	}
}

func TestRateLimiter_SuccessResetsCounter(t *testing.T) {
	rl, _ := newTestLimiter(2)
	defer rl.Stop()

	rl.RecordFailure("10.0.0.1")
	rl.RecordSuccess("10.0.0.1")
	if locked := rl.RecordFailure("10.0.0.1"); locked {
		t.Error("success should reset the failure count")
	}
}

func TestRateLimiter_DifferentIPsAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(1)
	defer rl.Stop()

	rl.RecordFailure("10.0.0.1")

	if allowed, _ := rl.Allow("10.0.0.2"); !allowed {
		t.Error("another IP should not be affected")
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, now := newTestLimiter(1)
	defer rl.Stop()

	rl.RecordFailure("10.0.0.1")
	*now = now.Add(time.Hour)
	rl.cleanup()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	if len(rl.attempts) != 0 {
		t.Errorf("expected expired records to be removed, have %d", len(rl.attempts))
	}
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	headers := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "no-referrer",
	}
	for header, expected := range headers {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("Header %s = %q, want %q", header, got, expected)
		}
	}
	if csp := rr.Header().Get("Content-Security-Policy"); csp == "" {
		t.Error("Content-Security-Policy header should be set")
	}
}
