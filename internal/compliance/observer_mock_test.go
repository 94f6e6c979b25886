package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockRepository struct {
	mock.Mock
	cadomain.Repository
}

func (m *mockRepository) Create(ctx context.Context, db *gorm.DB, action *cadomain.CorrectiveAction) error {
	return m.Called(ctx, db, action).Error(0)
}

func newMockObserver(t *testing.T, repo cadomain.Repository) Observer {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewObserver(ObserverParams{
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clock.NewFakeClock(time.Date(2024, 3, 12, 6, 0, 0, 0, time.UTC)),
		Compliance: config.NewStaticComplianceHolder(config.DefaultComplianceConfig()),
		Repo:       repo,
	})
}

func TestReportPassesCallerTransactionAndPriority(t *testing.T) {
	repo := &mockRepository{}
	tx := &gorm.DB{}
	repo.On("Create", mock.Anything, tx, mock.MatchedBy(func(a *cadomain.CorrectiveAction) bool {
		return a.Priority == cadomain.PriorityCritical && a.Status == cadomain.StatusOpen && a.SourceType != nil && *a.SourceType == "pest_check"
	})).Return(nil).Once()

	outcome := EvaluatePestCheck("Stacja 4", "REQUIRES_SERVICE", "uszkodzona pokrywa")
	action, err := newMockObserver(t, repo).Report(context.Background(), tx, outcome)
	require.NoError(t, err)
	require.NotNil(t, action)
	repo.AssertExpectations(t)
}

func TestReportReturnsRepositoryError(t *testing.T) {
	repo := &mockRepository{}
	boom := errors.New("insert failed")
	repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(boom).Once()

	action, err := newMockObserver(t, repo).Report(context.Background(), nil, EvaluateTemperature("Chłodnia 2", 9, 0, 4))
	require.ErrorIs(t, err, boom)
	require.Nil(t, action)
	repo.AssertExpectations(t)
}

func TestReportCompliantNeverTouchesRepository(t *testing.T) {
	repo := &mockRepository{}

	action, err := newMockObserver(t, repo).Report(context.Background(), nil, EvaluateTemperature("Chłodnia 2", 2, 0, 4))
	require.NoError(t, err)
	require.Nil(t, action)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}
