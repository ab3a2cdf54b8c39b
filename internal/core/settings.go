package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaxDiscoverAttempts  = 10
	defaultDiscoveryInterval    = 100 * time.Millisecond
	defaultGossipTimeout        = 5 * time.Second
	defaultKeepAliveInterval    = 10 * time.Second
	defaultKeepAliveTimeout     = 10 * time.Second
	defaultThrowOnAppendFailure = true
)

// Credentials is a username/password pair sent as HTTP Basic auth.
type Credentials struct {
	Username string
	Password string
}

// ClientSettings is the immutable result of parsing a connection
// string (C1). Nothing in the core mutates a ClientSettings after
// ParseConnectionString returns it; per-call
// overrides are threaded separately as CallOptions.
type ClientSettings struct {
	DNSDiscover bool
	Hosts       []Endpoint

	TLS           bool
	TLSVerifyCert bool
	TLSCAFile     string

	DefaultUserCredentials *Credentials
	ConnectionName         string

	NodePreference NodePreference

	MaxDiscoverAttempts uint32
	DiscoveryInterval   time.Duration
	GossipTimeout       time.Duration

	KeepAliveInterval time.Duration
	KeepAliveTimeout  time.Duration

	DefaultDeadline *time.Duration

	ThrowOnAppendFailure bool

	Logger *zap.Logger
}

// Option customizes a parsed ClientSettings without re-encoding the
// change into the connection-string grammar (WithLogger,
// WithConnectionName). Mirrors the teacher's OptsFn pattern
// in distributed-queue/domain.go (WithLimit/WithOffset) generalized to
// client construction.
type Option func(*ClientSettings)

// WithLogger overrides the zap.Logger used for all ambient logging.
func WithLogger(l *zap.Logger) Option {
	return func(s *ClientSettings) { s.Logger = l }
}

// WithConnectionName overrides ConnectionName post-parse.
func WithConnectionName(name string) Option {
	return func(s *ClientSettings) { s.ConnectionName = name }
}

func defaultSettings() ClientSettings {
	return ClientSettings{
		TLS:                  true,
		TLSVerifyCert:        true,
		NodePreference:       NodePreferenceLeader,
		MaxDiscoverAttempts:  defaultMaxDiscoverAttempts,
		DiscoveryInterval:    defaultDiscoveryInterval,
		GossipTimeout:        defaultGossipTimeout,
		KeepAliveInterval:    defaultKeepAliveInterval,
		KeepAliveTimeout:     defaultKeepAliveTimeout,
		ThrowOnAppendFailure: defaultThrowOnAppendFailure,
		Logger:               zap.NewNop(),
	}
}

// recognizedQueryKeys is the exhaustive set of query parameters
// ParseConnectionString accepts. Any other key is a parse error naming
// the key, per spec.md §4.1.
var recognizedQueryKeys = map[string]bool{
	"tls":                  true,
	"tlsverifycert":        true,
	"tlscafile":            true,
	"nodepreference":       true,
	"maxdiscoverattempts":  true,
	"discoveryinterval":    true,
	"gossiptimeout":        true,
	"keepaliveinterval":    true,
	"keepalivetimeout":     true,
	"defaultdeadline":      true,
	"throwonappendfailure": true,
	"connectionname":       true,
}

// ParseConnectionString parses a URI of shape
//
//	esdb[+discover]://[user:pass@]host[:port][,host[:port]]*[/?key=value&...]
//
// into a ClientSettings, applying opts afterward. See spec.md §4.1 and §6.
func ParseConnectionString(s string, opts ...Option) (ClientSettings, error) {
	settings := defaultSettings()

	u, err := url.Parse(s)
	if err != nil {
		return ClientSettings{}, newErr(CodeConnectionStringParseError, err, "malformed connection string")
	}

	switch strings.ToLower(u.Scheme) {
	case "esdb", "kurrentdb":
		settings.DNSDiscover = false
	case "esdb+discover", "kurrentdb+discover":
		settings.DNSDiscover = true
	default:
		return ClientSettings{}, &Error{
			Code: CodeConnectionStringParseError, Key: "scheme",
			Msg: fmt.Sprintf("unsupported scheme %q", u.Scheme),
		}
	}

	if u.User != nil {
		username := u.User.Username()
		password, _ := u.User.Password()
		settings.DefaultUserCredentials = &Credentials{Username: username, Password: password}
	}

	hosts, err := parseAuthorities(u.Host)
	if err != nil {
		return ClientSettings{}, err
	}
	settings.Hosts = hosts

	if err := applyQuery(&settings, u.Query()); err != nil {
		return ClientSettings{}, err
	}

	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Logger == nil {
		settings.Logger = zap.NewNop()
	}
	if settings.ConnectionName == "" {
		settings.ConnectionName = "ES-" + uuid.NewString()
	}

	return settings, nil
}

// parseAuthorities splits the comma-separated authority list produced
// by the grammar in spec.md §6 ("authority *("," authority)").
// url.Parse only understands a single host:port pair, so the raw Host
// component (which legitimately contains commas here) is split by hand.
func parseAuthorities(raw string) ([]Endpoint, error) {
	if raw == "" {
		return nil, &Error{Code: CodeConnectionStringParseError, Key: "host", Msg: "no host specified"}
	}

	parts := strings.Split(raw, ",")
	hosts := make([]Endpoint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		host, portStr, err := splitHostPort(part)
		if err != nil {
			return nil, &Error{Code: CodeConnectionStringParseError, Key: "host", Msg: err.Error()}
		}
		port := uint16(2113)
		if portStr != "" {
			p, err := strconv.ParseUint(portStr, 10, 16)
			if err != nil {
				return nil, &Error{Code: CodeConnectionStringParseError, Key: "host", Msg: fmt.Sprintf("invalid port in %q", part)}
			}
			port = uint16(p)
		}
		hosts = append(hosts, Endpoint{Host: host, Port: port})
	}
	if len(hosts) == 0 {
		return nil, &Error{Code: CodeConnectionStringParseError, Key: "host", Msg: "no host specified"}
	}
	return hosts, nil
}

func splitHostPort(authority string) (host, port string, err error) {
	idx := strings.LastIndex(authority, ":")
	if idx < 0 {
		return authority, "", nil
	}
	return authority[:idx], authority[idx+1:], nil
}

func applyQuery(settings *ClientSettings, q url.Values) error {
	for key := range q {
		if !recognizedQueryKeys[strings.ToLower(key)] {
			return &Error{Code: CodeConnectionStringParseError, Key: key, Msg: fmt.Sprintf("unknown query parameter %q", key)}
		}
	}

	if v, err := queryBool(q, "tls", settings.TLS); err != nil {
		return err
	} else {
		settings.TLS = v
	}
	if v, err := queryBool(q, "tlsVerifyCert", settings.TLSVerifyCert); err != nil {
		return err
	} else {
		settings.TLSVerifyCert = v
	}
	if v := findQueryValue(q, "tlsCAFile"); v != "" {
		settings.TLSCAFile = v
	}
	if v := findQueryValue(q, "connectionName"); v != "" {
		settings.ConnectionName = v
	}

	if v := findQueryValue(q, "nodePreference"); v != "" {
		pref, err := parseNodePreference(v)
		if err != nil {
			return err
		}
		settings.NodePreference = pref
	}

	if v, err := queryUint(q, "maxDiscoverAttempts"); err != nil {
		return err
	} else if v != nil {
		settings.MaxDiscoverAttempts = *v
	}
	if v, err := queryDurationMs(q, "discoveryInterval"); err != nil {
		return err
	} else if v != nil {
		settings.DiscoveryInterval = *v
	}
	if v, err := queryDurationMs(q, "gossipTimeout"); err != nil {
		return err
	} else if v != nil {
		settings.GossipTimeout = *v
	}
	if v, err := queryDurationMs(q, "keepAliveInterval"); err != nil {
		return err
	} else if v != nil {
		settings.KeepAliveInterval = *v
	}
	if v, err := queryDurationMs(q, "keepAliveTimeout"); err != nil {
		return err
	} else if v != nil {
		settings.KeepAliveTimeout = *v
	}
	if v, err := queryDurationMs(q, "defaultDeadline"); err != nil {
		return err
	} else if v != nil {
		settings.DefaultDeadline = v
	}
	if v, err := queryBoolPtr(q, "throwOnAppendFailure"); err != nil {
		return err
	} else if v != nil {
		settings.ThrowOnAppendFailure = *v
	}

	return nil
}

func parseNodePreference(v string) (NodePreference, error) {
	switch strings.ToLower(v) {
	case "leader":
		return NodePreferenceLeader, nil
	case "follower":
		return NodePreferenceFollower, nil
	case "random":
		return NodePreferenceRandom, nil
	case "readonlyreplica":
		return NodePreferenceReadOnlyReplica, nil
	default:
		return 0, &Error{Code: CodeConnectionStringParseError, Key: "nodePreference",
			Msg: fmt.Sprintf("expected one of leader|follower|random|readonlyreplica, got %q", v)}
	}
}

func queryBool(q url.Values, key string, def bool) (bool, error) {
	v, err := queryBoolPtr(q, key)
	if err != nil {
		return false, err
	}
	if v == nil {
		return def, nil
	}
	return *v, nil
}

func queryBoolPtr(q url.Values, key string) (*bool, error) {
	raw := findQueryValue(q, key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &Error{Code: CodeConnectionStringParseError, Key: key,
			Msg: fmt.Sprintf("expected boolean, got %q", raw)}
	}
	return &b, nil
}

func queryUint(q url.Values, key string) (*uint32, error) {
	raw := findQueryValue(q, key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, &Error{Code: CodeConnectionStringParseError, Key: key,
			Msg: fmt.Sprintf("expected non-negative integer, got %q", raw)}
	}
	v := uint32(n)
	return &v, nil
}

func queryDurationMs(q url.Values, key string) (*time.Duration, error) {
	raw := findQueryValue(q, key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &Error{Code: CodeConnectionStringParseError, Key: key,
			Msg: fmt.Sprintf("expected integer milliseconds, got %q", raw)}
	}
	d := time.Duration(n) * time.Millisecond
	return &d, nil
}

// findQueryValue looks a query key up case-insensitively, since
// spec.md §4.1 recognizes query parameters "case-insensitively".
func findQueryValue(q url.Values, key string) string {
	lower := strings.ToLower(key)
	for k, vs := range q {
		if strings.ToLower(k) == lower && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// ClusterMode reports whether settings imply gossip-driven discovery
// (multiple seed hosts or DNS discovery) rather than a direct
// single-node connection, per spec.md §4.4 step 2.
func (s ClientSettings) ClusterMode() bool {
	return s.DNSDiscover || len(s.Hosts) > 1
}
