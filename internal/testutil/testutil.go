package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/dropline/dropline/internal/model"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with a name and no avatar.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	name := "Test User"
	return &model.User{
		Email: email,
		Name:  &name,
	}
}

// NewTestRequest creates a sent text-only request owned by email.
func NewTestRequest(t testing.TB, email, text string) *model.Request {
	t.Helper()
	return &model.Request{
		Email:  email,
		Text:   &text,
		Status: model.RequestStatusSent,
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
