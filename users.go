package kurrentdb

import (
	"context"

	"github.com/mcastellin/kurrentdb-client-go/internal/transport"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// UserDetails describes one server-managed user account.
type UserDetails struct {
	LoginName string
	FullName  string
	Groups    []string
	Disabled  bool
}

// Users is the administrative facade over server-managed accounts.
type Users struct {
	client *Client
}

func (c *Client) Users() *Users { return &Users{client: c} }

func (u *Users) empty(ctx context.Context, callOpts []CallOption, fn func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error)) error {
	opts := u.client.callOptions(callOpts)
	_, err := transport.Unary(ctx, u.client.executor, opts, fn)
	return err
}

func (u *Users) Create(ctx context.Context, loginName, fullName, password string, groups []string, callOpts ...CallOption) error {
	req := &wire.UserCreateReq{LoginName: loginName, FullName: fullName, Groups: groups, Password: password}
	return u.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewUsersClient(cc).Create(ctx, req, grpc.Trailer(trailer))
	})
}

func (u *Users) Update(ctx context.Context, loginName, fullName string, groups []string, callOpts ...CallOption) error {
	req := &wire.UserUpdateReq{LoginName: loginName, FullName: fullName, Groups: groups}
	return u.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewUsersClient(cc).Update(ctx, req, grpc.Trailer(trailer))
	})
}

func (u *Users) Delete(ctx context.Context, loginName string, callOpts ...CallOption) error {
	req := &wire.UserDeleteReq{LoginName: loginName}
	return u.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewUsersClient(cc).Delete(ctx, req, grpc.Trailer(trailer))
	})
}

func (u *Users) Enable(ctx context.Context, loginName string, callOpts ...CallOption) error {
	req := &wire.UserEnableReq{LoginName: loginName}
	return u.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewUsersClient(cc).Enable(ctx, req, grpc.Trailer(trailer))
	})
}

func (u *Users) Disable(ctx context.Context, loginName string, callOpts ...CallOption) error {
	req := &wire.UserDisableReq{LoginName: loginName}
	return u.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewUsersClient(cc).Disable(ctx, req, grpc.Trailer(trailer))
	})
}

func (u *Users) ChangePassword(ctx context.Context, loginName, currentPassword, newPassword string, callOpts ...CallOption) error {
	req := &wire.UserChangePasswordReq{LoginName: loginName, CurrentPassword: currentPassword, NewPassword: newPassword}
	return u.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewUsersClient(cc).ChangePassword(ctx, req, grpc.Trailer(trailer))
	})
}

func (u *Users) Details(ctx context.Context, loginName string, callOpts ...CallOption) (*UserDetails, error) {
	req := &wire.UserDetailsReq{LoginName: loginName}
	opts := u.client.callOptions(append(callOpts, withIdempotentRetry()))
	resp, err := transport.Unary(ctx, u.client.executor, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.UserDetails, error) {
		return wire.NewUsersClient(cc).Details(ctx, req, grpc.Trailer(trailer))
	})
	if err != nil {
		return nil, err
	}
	return &UserDetails{LoginName: resp.LoginName, FullName: resp.FullName, Groups: resp.Groups, Disabled: resp.Disabled}, nil
}
