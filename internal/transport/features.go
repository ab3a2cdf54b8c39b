package transport

import (
	"context"

	"github.com/Masterminds/semver/v3"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// minimumKnownMethods is the capability set assumed when the server
// does not support the feature probe at all (spec.md §4.7: "If the RPC
// is Unimplemented, default to the minimum-known capability set").
// It covers the baseline operations every supported server version has
// always had; optional/newer RPCs like batch_append are absent.
var minimumKnownMethods = map[string]bool{
	key("streams", "append"):                  true,
	key("streams", "read"):                    true,
	key("streams", "delete"):                  true,
	key("streams", "tombstone"):               true,
	key("persistent_subscriptions", "create"): true,
	key("persistent_subscriptions", "update"): true,
	key("persistent_subscriptions", "delete"): true,
	key("persistent_subscriptions", "read"):   true,
	key("gossip", "read"):                     true,
}

func key(service, method string) string { return service + "/" + method }

// FeatureSet is the immutable result of one feature-detection probe
// (C7): the server's supported (service, method) pairs and its parsed
// version, gating optional RPCs without re-probing per call.
type FeatureSet struct {
	ServerVersion *semver.Version
	methods       map[string]bool
}

// Supports reports whether the connected server advertises the named
// (service, method) RPC.
func (f *FeatureSet) Supports(service, method string) bool {
	if f == nil {
		return false
	}
	return f.methods[key(service, method)]
}

var zeroVersion = semver.MustParse("0.0.0")

// detectFeatures issues ServerFeatures.GetSupportedMethods against cc.
// If unimplemented, it returns the minimum-known set with
// server_version 0.0.0, per spec.md §4.7.
func detectFeatures(ctx context.Context, cc grpc.ClientConnInterface) *FeatureSet {
	client := wire.NewServerFeaturesClient(cc)
	resp, err := client.GetSupportedMethods(ctx)
	if err != nil {
		if status.Code(err) == codes.Unimplemented {
			return &FeatureSet{ServerVersion: zeroVersion, methods: minimumKnownMethods}
		}
		// Any other failure (transport down, etc.) also degrades to the
		// minimum-known set rather than failing channel construction;
		// the caller will observe the real problem on its first RPC.
		return &FeatureSet{ServerVersion: zeroVersion, methods: minimumKnownMethods}
	}

	methods := make(map[string]bool, len(resp.Methods))
	for _, m := range resp.Methods {
		methods[key(m.ServiceName, m.MethodName)] = true
	}

	version, err := semver.NewVersion(resp.ServerVersion)
	if err != nil {
		version = zeroVersion
	}
	return &FeatureSet{ServerVersion: version, methods: methods}
}
