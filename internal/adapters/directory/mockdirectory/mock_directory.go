package mockdirectory

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/okian/podium/internal/adapters/directory"
)

type Directory struct {
	mock.Mock
}

func (d *Directory) GetCommunity(ctx context.Context, id string) (directory.Community, bool, error) {
	args := d.Called(ctx, id)
	return args.Get(0).(directory.Community), args.Bool(1), args.Error(2)
}

func (d *Directory) CommunityExists(ctx context.Context, id string) (bool, error) {
	args := d.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (d *Directory) SportExists(ctx context.Context, id string) (bool, error) {
	args := d.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
