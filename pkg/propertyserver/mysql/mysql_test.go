package mysql

import (
	"context"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver/propertyservertest"
	"github.com/ajitpratap0/ocf/pkg/testutil"
)

func Test(t *testing.T) {
	suite.Run(t, new(MySQLServerTestSuite))
}

type MySQLServerTestSuite struct {
	testutil.IntegrationTestSuite
	base   propertyservertest.SuiteBase
	server *Server
}

func (s *MySQLServerTestSuite) SetupSuite() {
	dsn := s.SetupIntegration("OCF_TEST_MYSQL_DSN")

	srv, err := New(s.Context(), config.PropertyServerConfig{DSN: dsn}, zaptest.NewLogger(s.T()))
	s.Require().NoError(err)
	s.server = srv
	s.base.SetServer(srv)
}

func (s *MySQLServerTestSuite) SetupTest() {
	s.Require().NoError(s.server.Truncate(s.Context()))
}

func (s *MySQLServerTestSuite) TearDownSuite() {
	if s.server != nil {
		s.NoError(s.server.Truncate(s.Context()))
		s.NoError(s.server.Close(s.Context()))
	}
	s.IntegrationTestSuite.TearDownSuite()
}

func (s *MySQLServerTestSuite) TestContract() {
	s.base.Run(s.T())
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.PropertyServerConfig{}, nil)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeConfig))
}

func TestClassify(t *testing.T) {
	err := classify(&mysql.MySQLError{Number: 1064, Message: "syntax"}, "x")
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeData))
	assert.False(t, ocferrors.IsRetryable(err))

	assert.True(t, ocferrors.IsRetryable(classify(mysql.ErrInvalidConn, "x")))
	assert.True(t, ocferrors.IsType(classify(context.Canceled, "x"), ocferrors.ErrorTypeTimeout))
}
