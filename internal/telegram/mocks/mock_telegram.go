package mocks

import (
	"context"
	"io"
	"time"

	"tgdocs/internal/telegram"

	"github.com/stretchr/testify/mock"
)

type MockFileGetter struct {
	mock.Mock
}

func (m *MockFileGetter) GetFile(ctx context.Context, fileID string, timeout time.Duration, opts ...telegram.RequestOption) (*telegram.File, error) {
	args := m.Called(ctx, fileID, timeout, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telegram.File), args.Error(1)
}

type MockDownloader struct {
	mock.Mock
}

func (m *MockDownloader) DownloadFile(ctx context.Context, filePath string) (io.ReadCloser, error) {
	args := m.Called(ctx, filePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
