package wire

import (
	"context"

	"google.golang.org/grpc"
)

const getSupportedMethodsMethod = "/event_store.client.server_features.ServerFeatures/GetSupportedMethods"

// SupportedMethod names one (service, method) pair the connected
// server advertises, plus the feature flags the server lists for it.
type SupportedMethod struct {
	ServiceName string   `json:"serviceName"`
	MethodName  string   `json:"methodName"`
	Features    []string `json:"features"`
}

// SupportedMethods is the reply to ServerFeatures.GetSupportedMethods.
type SupportedMethods struct {
	Methods       []SupportedMethod `json:"methods"`
	ServerVersion string            `json:"eventStoreServerVersion"`
}

// ServerFeaturesClient is the probe the feature detector (C7) issues
// once per channel rebuild.
type ServerFeaturesClient interface {
	GetSupportedMethods(ctx context.Context, opts ...grpc.CallOption) (*SupportedMethods, error)
}

func NewServerFeaturesClient(cc grpc.ClientConnInterface) ServerFeaturesClient {
	return &serverFeaturesClient{cc: cc}
}

type serverFeaturesClient struct {
	cc grpc.ClientConnInterface
}

func (c *serverFeaturesClient) GetSupportedMethods(ctx context.Context, opts ...grpc.CallOption) (*SupportedMethods, error) {
	out := new(SupportedMethods)
	if err := c.cc.Invoke(ctx, getSupportedMethodsMethod, &struct{}{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
