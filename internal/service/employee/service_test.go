package employee

import (
	"context"
	"testing"

	"github.com/officecorner/officecorner-backend-go/internal/domain/employee"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt/jwttest"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	user.UserRepository
	users      map[string]user.User
	lastFilter user.UserFilter
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id string, status user.Status) (user.User, error) {
	u := r.users[id]
	u.Status = status
	r.users[id] = u
	return u, nil
}

func (r *fakeUserRepo) List(_ context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	r.lastFilter = filter
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

type decision struct {
	user   user.User
	reason *string
}

type fakeNotifier struct {
	decisions []decision
}

func (n *fakeNotifier) NotifyDecision(_ context.Context, u user.User, reason *string) {
	n.decisions = append(n.decisions, decision{user: u, reason: reason})
}

func (n *fakeNotifier) Subscribe(string) (<-chan realtime.Event, func()) {
	ch := make(chan realtime.Event)
	return ch, func() {}
}

func newFixture() (*EmployeeServiceImpl, *fakeUserRepo, *fakeNotifier) {
	repo := &fakeUserRepo{users: map[string]user.User{
		"emp-1": {ID: "emp-1", Name: "Pending", Role: user.RoleEmployee, Status: user.StatusPending},
		"emp-2": {ID: "emp-2", Name: "Approved", Role: user.RoleEmployee, Status: user.StatusApproved},
		"adm-1": {ID: "adm-1", Name: "Boss", Role: user.RoleAdmin, Status: user.StatusPending},
	}}
	notifier := &fakeNotifier{}
	svc := NewEmployeeService(fakeTx{}, repo, notifier).(*EmployeeServiceImpl)
	return svc, repo, notifier
}

func TestApproveEmployee(t *testing.T) {
	svc, repo, notifier := newFixture()

	resp, err := svc.ApproveEmployee(jwttest.Admin(t, "adm-9"), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
	assert.Equal(t, user.StatusApproved, repo.users["emp-1"].Status)

	require.Len(t, notifier.decisions, 1)
	assert.Equal(t, "emp-1", notifier.decisions[0].user.ID)
	assert.Nil(t, notifier.decisions[0].reason)
}

func TestRejectEmployee_WithReason(t *testing.T) {
	svc, _, notifier := newFixture()
	reason := "unknown person"

	resp, err := svc.RejectEmployee(jwttest.Admin(t, "adm-9"), "emp-1", employee.RejectRequest{Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)
	require.Len(t, notifier.decisions, 1)
	assert.Equal(t, &reason, notifier.decisions[0].reason)
}

func TestDecisionErrors(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func(t *testing.T) context.Context
		id      string
		wantErr error
	}{
		{"employee caller", func(t *testing.T) context.Context { return jwttest.Employee(t, "emp-2") }, "emp-1", user.ErrAdminPrivilegeRequired},
		{"unknown id", func(t *testing.T) context.Context { return jwttest.Admin(t, "adm-9") }, "nope", employee.ErrEmployeeNotFound},
		{"already decided", func(t *testing.T) context.Context { return jwttest.Admin(t, "adm-9") }, "emp-2", user.ErrUserNotPending},
		{"admin account", func(t *testing.T) context.Context { return jwttest.Admin(t, "adm-9") }, "adm-1", employee.ErrNotAnEmployee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, notifier := newFixture()
			_, err := svc.ApproveEmployee(tt.ctx(t), tt.id)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, notifier.decisions)
		})
	}
}

func TestListEmployees_DefaultsToEmployeeRole(t *testing.T) {
	svc, repo, _ := newFixture()

	resp, err := svc.ListEmployees(context.Background(), user.UserFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.Role)
	assert.Equal(t, "employee", *repo.lastFilter.Role)
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Len(t, resp.Users, 3)
}
