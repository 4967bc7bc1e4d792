package grpcvault

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"identik.app/stamp/store"
)

// Client implements the store interfaces over a Vault gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client VaultClient

	// Timeout applies per RPC when non-zero, in addition to the caller's
	// context deadline.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewVaultClient(cc)}, nil
}

// NewClient wraps an existing connection, for tests and in-process wiring.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewVaultClient(cc)}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) FindIdentityByName(ctx context.Context, name string) (*store.Identity, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.FindIdentity(ctx, wrapperspb.String(name))
	if err != nil {
		return nil, mapRPC(err)
	}
	var identity store.Identity
	if err := json.Unmarshal(reply.GetValue(), &identity); err != nil {
		return nil, store.ErrInvalidRecord
	}
	return &identity, nil
}

func (c *Client) FindKeyByFingerprint(ctx context.Context, fingerprint string) (*store.SigningKey, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.FindKey(ctx, wrapperspb.String(fingerprint))
	if err != nil {
		return nil, mapRPC(err)
	}
	var key store.SigningKey
	if err := json.Unmarshal(reply.GetValue(), &key); err != nil {
		return nil, store.ErrInvalidRecord
	}
	return &key, nil
}

func (c *Client) PutMedia(ctx context.Context, record *store.MediaRecord) error {
	if record == nil {
		return store.ErrInvalidRecord
	}
	b, err := json.Marshal(record)
	if err != nil {
		return store.ErrInvalidRecord
	}

	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.PutMedia(ctx, wrapperspb.Bytes(b))
	if err != nil {
		return mapRPC(err)
	}
	if reply.GetValue() != record.PayloadHash {
		return store.ErrInvalidRecord
	}
	return nil
}

func (c *Client) FindMediaByPayloadHash(ctx context.Context, payloadHash string) (*store.MediaRecord, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.FindMedia(ctx, wrapperspb.String(payloadHash))
	if err != nil {
		return nil, mapRPC(err)
	}
	var record store.MediaRecord
	if err := json.Unmarshal(reply.GetValue(), &record); err != nil {
		return nil, store.ErrInvalidRecord
	}
	return &record, nil
}

func (c *Client) HasMedia(ctx context.Context, payloadHash string) bool {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.HasMedia(ctx, wrapperspb.String(payloadHash))
	if err != nil {
		return false
	}
	return reply.GetValue()
}

func (c *Client) AppendEvent(ctx context.Context, event store.Event) error {
	b, err := json.Marshal(event)
	if err != nil {
		return store.ErrInvalidRecord
	}

	ctx, cancel := c.ctx(ctx)
	defer cancel()

	if _, err := c.client.AppendEvent(ctx, wrapperspb.Bytes(b)); err != nil {
		return mapRPC(err)
	}
	return nil
}

func (c *Client) SignerSignals(ctx context.Context, identityID string) (store.SignerSignalSnapshot, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.SignerSignals(ctx, wrapperspb.String(identityID))
	if err != nil {
		return store.SignerSignalSnapshot{}, mapRPC(err)
	}
	var snap store.SignerSignalSnapshot
	if err := json.Unmarshal(reply.GetValue(), &snap); err != nil {
		return store.SignerSignalSnapshot{}, store.ErrInvalidRecord
	}
	return snap, nil
}

func (c *Client) TotalEventWeight(ctx context.Context, identityID string) (float64, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.TotalEventWeight(ctx, wrapperspb.String(identityID))
	if err != nil {
		return 0, mapRPC(err)
	}
	return reply.GetValue(), nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}
