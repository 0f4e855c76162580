package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"ekam.build/ekam/internal/app"
	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports/mocks"
)

func TestApp_Clean_RemovesOutputRoot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).Times(2)

	outputRoot := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(outputRoot, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outputRoot, "artifact"), []byte("x"), 0o644))

	a := app.New(mockLogger, nil)
	require.NoError(t, a.Clean(context.Background(), outputRoot))

	_, err := os.Stat(outputRoot)
	assert.True(t, os.IsNotExist(err))
}

func TestApp_Run_NoSourceRootsFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockDashboard := mocks.NewMockDashboard(ctrl)

	a := app.New(mockLogger, nil)
	_, err := a.Run(context.Background(), mockDashboard, app.RunOptions{
		OutputRoot: t.TempDir(),
	})
	assert.ErrorIs(t, err, domain.ErrNoRoots)
}

func TestApp_Run_EmptyRootConverges(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockDashboard := mocks.NewMockDashboard(ctrl)

	a := app.New(mockLogger, nil)
	result, err := a.Run(context.Background(), mockDashboard, app.RunOptions{
		SourceRoots: []string{t.TempDir()},
		OutputRoot:  t.TempDir(),
		Concurrency: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, app.Result{Passed: 0, Failed: 0}, result)
}
