package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver/propertyservertest"
	"github.com/ajitpratap0/ocf/pkg/testutil"
)

func Test(t *testing.T) {
	suite.Run(t, new(PostgresServerTestSuite))
}

type PostgresServerTestSuite struct {
	testutil.IntegrationTestSuite
	base   propertyservertest.SuiteBase
	server *Server
}

func (s *PostgresServerTestSuite) SetupSuite() {
	dsn := s.SetupIntegration("OCF_TEST_POSTGRES_DSN")

	srv, err := New(s.Context(), config.PropertyServerConfig{DSN: dsn}, zaptest.NewLogger(s.T()))
	s.Require().NoError(err)
	s.server = srv
	s.base.SetServer(srv)
}

func (s *PostgresServerTestSuite) SetupTest() {
	s.Require().NoError(s.server.Truncate(s.Context()))
}

func (s *PostgresServerTestSuite) TearDownSuite() {
	if s.server != nil {
		s.NoError(s.server.Truncate(s.Context()))
		s.NoError(s.server.Close(s.Context()))
	}
	s.IntegrationTestSuite.TearDownSuite()
}

func (s *PostgresServerTestSuite) TestContract() {
	s.base.Run(s.T())
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.PropertyServerConfig{}, nil)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeConfig))

	_, err = New(context.Background(), config.PropertyServerConfig{DSN: "://bad"}, nil)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeConfig))
}

func TestClassify(t *testing.T) {
	assert.True(t, ocferrors.IsType(classify(context.DeadlineExceeded, "x"), ocferrors.ErrorTypeTimeout))
	assert.True(t, ocferrors.IsRetryable(classify(assert.AnError, "x")))
}
