package membership

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const PageSize = 5

var (
	ErrBlankName = errors.New("organization name is required")
	ErrNotMember = errors.New("not a member of this organization")
)

type Organization struct {
	ID   string
	Name string
}

type Membership struct {
	Organization Organization
	Role         string
	JoinedAt     time.Time
}

// Page is one page of a user's memberships. Page numbers start at 1.
type Page struct {
	Data            []Membership
	Number          int
	TotalCount      int
	HasNextPage     bool
	HasPreviousPage bool
}

// Provider is the organization-membership service the posting page reads.
type Provider interface {
	List(ctx context.Context, userID string, page int) (Page, error)
	Get(ctx context.Context, userID, organizationID string) (Membership, error)
	Create(ctx context.Context, userID, name string) (Membership, error)
}

// MemoryProvider keeps memberships in process memory. The creator of an
// organization becomes its admin.
type MemoryProvider struct {
	mu          sync.RWMutex
	memberships map[string][]Membership
	now         func() time.Time
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		memberships: make(map[string][]Membership),
		now:         time.Now,
	}
}

func (p *MemoryProvider) Create(ctx context.Context, userID, name string) (Membership, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Membership{}, ErrBlankName
	}
	m := Membership{
		Organization: Organization{ID: "org_" + uuid.NewString(), Name: name},
		Role:         "admin",
		JoinedAt:     p.now().UTC(),
	}

	p.mu.Lock()
	p.memberships[userID] = append(p.memberships[userID], m)
	p.mu.Unlock()
	return m, nil
}

func (p *MemoryProvider) Get(ctx context.Context, userID, organizationID string) (Membership, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, m := range p.memberships[userID] {
		if m.Organization.ID == organizationID {
			return m, nil
		}
	}
	return Membership{}, ErrNotMember
}

// List returns memberships newest first. A page past the end is empty.
func (p *MemoryProvider) List(ctx context.Context, userID string, page int) (Page, error) {
	if page < 1 {
		page = 1
	}

	p.mu.RLock()
	all := append([]Membership(nil), p.memberships[userID]...)
	p.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].JoinedAt.After(all[j].JoinedAt)
	})

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	return Page{
		Data:            all[start:end],
		Number:          page,
		TotalCount:      len(all),
		HasNextPage:     end < len(all),
		HasPreviousPage: page > 1,
	}, nil
}

var _ Provider = (*MemoryProvider)(nil)
