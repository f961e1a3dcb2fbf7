package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sentinel-health/auth-module/internal/domain/model"
)

func newTestRoleService(roles *fakeRoleRepo) *RoleService {
	return NewRoleService(roles, testLogger())
}

func TestGetRoles(t *testing.T) {
	svc := newTestRoleService(testRoleRepo())

	roles, err := svc.GetRoles(context.Background(), "demo")
	if err != nil {
		t.Fatalf("GetRoles() ошибка: %v", err)
	}
	if len(roles) != 2 {
		t.Errorf("len(roles) = %d, хотели 2", len(roles))
	}

	empty, err := svc.GetRoles(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("GetRoles(nowhere) ошибка: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("GetRoles(nowhere) = %v, хотели пусто", empty)
	}
}

func TestGetAllAccess(t *testing.T) {
	svc := newTestRoleService(testRoleRepo())

	got, err := svc.GetAllAccess(context.Background(), "demo", "manager")
	if err != nil {
		t.Fatalf("GetAllAccess() ошибка: %v", err)
	}
	want := []string{"manager", "registered"}
	if len(got) != len(want) {
		t.Fatalf("GetAllAccess() = %v, хотели %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetAllAccess()[%d] = %q, хотели %q", i, got[i], want[i])
		}
	}
}

func TestGetAllAccess_UnknownRole(t *testing.T) {
	svc := newTestRoleService(testRoleRepo())

	_, err := svc.GetAllAccess(context.Background(), "demo", "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAllAccess() = %v, хотели ErrNotFound", err)
	}
}

func TestGetGraph(t *testing.T) {
	svc := newTestRoleService(testRoleRepo())

	g, err := svc.GetGraph(context.Background(), "demo")
	if err != nil {
		t.Fatalf("GetGraph() ошибка: %v", err)
	}
	if len(g.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, хотели 2", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Errorf("len(Edges) = %d, хотели 1", len(g.Edges))
	}
}

func TestValidateGrants(t *testing.T) {
	svc := newTestRoleService(testRoleRepo())
	ctx := context.Background()

	tests := []struct {
		name    string
		grants  []model.Grant
		wantErr bool
	}{
		{
			name:   "существующие назначения",
			grants: []model.Grant{{Country: "demo", Role: "manager"}, {Country: "ke", Role: "viewer"}},
		},
		{
			name:    "несуществующая роль",
			grants:  []model.Grant{{Country: "demo", Role: "ghost"}},
			wantErr: true,
		},
		{
			name:    "роль из другой страны",
			grants:  []model.Grant{{Country: "ke", Role: "manager"}},
			wantErr: true,
		},
		{
			name:    "пустое назначение",
			grants:  []model.Grant{{Country: "", Role: ""}},
			wantErr: true,
		},
		{name: "пустой список"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateGrants(ctx, tt.grants)
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("ValidateGrants() = %v, хотели ErrValidation", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateGrants() ошибка: %v", err)
			}
		})
	}
}

func TestAccessMap(t *testing.T) {
	svc := newTestRoleService(testRoleRepo())

	acc, err := svc.AccessMap(context.Background(), []model.Grant{
		{Country: "demo", Role: "manager"},
		{Country: "demo", Role: "registered"},
		{Country: "ke", Role: "viewer"},
	})
	if err != nil {
		t.Fatalf("AccessMap() ошибка: %v", err)
	}

	// Замыкания ролей demo объединены без дублей
	if len(acc["demo"]) != 2 {
		t.Errorf("acc[demo] = %v, хотели [manager registered]", acc["demo"])
	}
	if len(acc["ke"]) != 1 || acc["ke"][0] != "viewer" {
		t.Errorf("acc[ke] = %v, хотели [viewer]", acc["ke"])
	}
}

func TestAccessMap_BrokenGrant(t *testing.T) {
	svc := newTestRoleService(testRoleRepo())

	_, err := svc.AccessMap(context.Background(), []model.Grant{
		{Country: "demo", Role: "ghost"},
	})
	if !errors.Is(err, ErrBrokenAccess) {
		t.Errorf("AccessMap() = %v, хотели ErrBrokenAccess", err)
	}
}
