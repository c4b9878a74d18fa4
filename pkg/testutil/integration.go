package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// IntegrationTestSuite is embedded by suites that run against an external
// service. SetupIntegration skips the suite unless the service is configured.
type IntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// SetupIntegration skips the suite in short mode or when env is unset, and
// otherwise returns the value of env. Call it from SetupSuite.
func (s *IntegrationTestSuite) SetupIntegration(env string) string {
	IntegrationTest(s.T())
	v := RequireEnv(s.T(), env)
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()
	return v
}

// TearDownSuite cancels the suite context.
func (s *IntegrationTestSuite) TearDownSuite() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.T().Logf("suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context. It is cancelled after five minutes.
func (s *IntegrationTestSuite) Context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// IntegrationTest skips the test in short mode.
func IntegrationTest(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireEnv returns the value of an environment variable, skipping the test
// when it is unset.
func RequireEnv(t *testing.T, name string) string {
	t.Helper()
	v := os.Getenv(name)
	if v == "" {
		t.Skipf("%s not set", name)
	}
	return v
}
