package wire

import (
	"context"

	"google.golang.org/grpc"
)

const (
	usersServiceName     = "/event_store.client.users.Users/"
	methodUserCreate     = usersServiceName + "Create"
	methodUserUpdate     = usersServiceName + "Update"
	methodUserDelete     = usersServiceName + "Delete"
	methodUserEnable     = usersServiceName + "Enable"
	methodUserDisable    = usersServiceName + "Disable"
	methodUserChangePass = usersServiceName + "ChangePassword"
	methodUserDetails    = usersServiceName + "Details"
)

type UserCreateReq struct {
	LoginName string   `json:"loginName"`
	FullName  string   `json:"fullName"`
	Groups    []string `json:"groups"`
	Password  string   `json:"password"`
}

type UserUpdateReq struct {
	LoginName string   `json:"loginName"`
	FullName  string   `json:"fullName"`
	Groups    []string `json:"groups"`
}

type UserDeleteReq struct {
	LoginName string `json:"loginName"`
}

type UserEnableReq struct {
	LoginName string `json:"loginName"`
}

type UserDisableReq struct {
	LoginName string `json:"loginName"`
}

type UserChangePasswordReq struct {
	LoginName       string `json:"loginName"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserDetailsReq struct {
	LoginName string `json:"loginName"`
}

type UserDetails struct {
	LoginName string   `json:"loginName"`
	FullName  string   `json:"fullName"`
	Groups    []string `json:"groups"`
	Disabled  bool     `json:"disabled"`
}

type UsersClient interface {
	Create(ctx context.Context, req *UserCreateReq, opts ...grpc.CallOption) (*Empty, error)
	Update(ctx context.Context, req *UserUpdateReq, opts ...grpc.CallOption) (*Empty, error)
	Delete(ctx context.Context, req *UserDeleteReq, opts ...grpc.CallOption) (*Empty, error)
	Enable(ctx context.Context, req *UserEnableReq, opts ...grpc.CallOption) (*Empty, error)
	Disable(ctx context.Context, req *UserDisableReq, opts ...grpc.CallOption) (*Empty, error)
	ChangePassword(ctx context.Context, req *UserChangePasswordReq, opts ...grpc.CallOption) (*Empty, error)
	Details(ctx context.Context, req *UserDetailsReq, opts ...grpc.CallOption) (*UserDetails, error)
}

func NewUsersClient(cc grpc.ClientConnInterface) UsersClient {
	return &usersClient{cc: cc}
}

type usersClient struct {
	cc grpc.ClientConnInterface
}

func (c *usersClient) Create(ctx context.Context, req *UserCreateReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodUserCreate, req, out, opts...)
}

func (c *usersClient) Update(ctx context.Context, req *UserUpdateReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodUserUpdate, req, out, opts...)
}

func (c *usersClient) Delete(ctx context.Context, req *UserDeleteReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodUserDelete, req, out, opts...)
}

func (c *usersClient) Enable(ctx context.Context, req *UserEnableReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodUserEnable, req, out, opts...)
}

func (c *usersClient) Disable(ctx context.Context, req *UserDisableReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodUserDisable, req, out, opts...)
}

func (c *usersClient) ChangePassword(ctx context.Context, req *UserChangePasswordReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodUserChangePass, req, out, opts...)
}

func (c *usersClient) Details(ctx context.Context, req *UserDetailsReq, opts ...grpc.CallOption) (*UserDetails, error) {
	out := new(UserDetails)
	return out, c.cc.Invoke(ctx, methodUserDetails, req, out, opts...)
}
