package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) Claim(ctx context.Context, updateID int64) (bool, error) {
	args := m.Called(ctx, updateID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeduper) Release(ctx context.Context, updateID int64) error {
	args := m.Called(ctx, updateID)
	return args.Error(0)
}
