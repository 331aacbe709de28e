package workflow

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"minter/internal/domain"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	payload domain.ImagePayload
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (g *fakeGenerator) GenerateImage(ctx context.Context, prompt string) (domain.ImagePayload, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return domain.ImagePayload{}, ctx.Err()
		}
	}
	return g.payload, g.err
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type addCall struct {
	data []byte
	opts domain.AddOptions
}

type fakeContentStore struct {
	mu    sync.Mutex
	cids  []string
	errs  []error
	calls []addCall
}

func (s *fakeContentStore) Add(ctx context.Context, data []byte, opts domain.AddOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.calls)
	s.calls = append(s.calls, addCall{data: append([]byte(nil), data...), opts: opts})
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx >= len(s.cids) {
		return "", fmt.Errorf("unexpected add call %d", idx)
	}
	return s.cids[idx], nil
}

type fakeSigner string

func (s fakeSigner) Address() string { return string(s) }

type fakeWallet struct {
	address string
	err     error
}

func (w *fakeWallet) Signer(ctx context.Context) (domain.Signer, error) {
	if w.err != nil {
		return nil, w.err
	}
	return fakeSigner(w.address), nil
}

type fakeTx struct {
	hash    string
	waitErr error
}

func (t *fakeTx) Hash() string                   { return t.hash }
func (t *fakeTx) Wait(ctx context.Context) error { return t.waitErr }

type mintCall struct {
	signer   string
	tokenURI string
	value    *big.Int
}

type fakeContract struct {
	mu       sync.Mutex
	mints    []mintCall
	metadata []domain.Metadata
	err      error
	waitErr  error
}

func (c *fakeContract) Mint(ctx context.Context, signer domain.Signer, tokenURI string, value *big.Int) (domain.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mints = append(c.mints, mintCall{signer: signer.Address(), tokenURI: tokenURI, value: new(big.Int).Set(value)})
	if c.err != nil {
		return nil, c.err
	}
	return &fakeTx{hash: fmt.Sprintf("0xmint%d", len(c.mints)), waitErr: c.waitErr}, nil
}

func (c *fakeContract) StoreMetadata(ctx context.Context, signer domain.Signer, metadata domain.Metadata) (domain.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata = append(c.metadata, metadata)
	if c.err != nil {
		return nil, c.err
	}
	return &fakeTx{hash: "0xmeta", waitErr: c.waitErr}, nil
}

func (c *fakeContract) mintCalls() []mintCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]mintCall(nil), c.mints...)
}

type fakePublisher struct {
	mu    sync.Mutex
	calls int
	pub   *domain.Publication
	err   error
}

func (p *fakePublisher) Publish(ctx context.Context, image domain.ImagePayload, description string) (*domain.Publication, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.pub, p.err
}

type fakeMinter struct {
	mu     sync.Mutex
	inputs []string
	err    error
}

func (m *fakeMinter) Mint(ctx context.Context, tokenURI string) (*domain.MintReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, tokenURI)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.MintReceipt{TxHash: "0xabc", TokenURI: tokenURI}, nil
}

func (m *fakeMinter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

type fakeArchiver struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (a *fakeArchiver) Write(ctx context.Context, key string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	if a.err != nil {
		return "", a.err
	}
	return "archive/" + key, nil
}
