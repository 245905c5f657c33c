package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/giftvault/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.Bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	return svc
}

func TestEnforceRoleDefaultPolicies(t *testing.T) {
	svc := setupAuthzServiceTest(t)

	cases := []struct {
		role   string
		action string
		want   bool
	}{
		{constants.RoleAdministrator, constants.GiftCardActionIssue, true},
		{constants.RoleAdministrator, constants.GiftCardActionUse, true},
		{constants.RoleAdministrator, constants.GiftCardActionDispose, true},
		{constants.RoleAdministrator, constants.GiftCardActionList, true},
		{constants.RoleOrdinary, constants.GiftCardActionUse, true},
		{constants.RoleOrdinary, constants.GiftCardActionIssue, false},
		{constants.RoleOrdinary, constants.GiftCardActionDispose, false},
		{constants.RoleOrdinary, constants.GiftCardActionList, false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceRole(tc.role, constants.GiftCardObject, tc.action)
		if err != nil {
			t.Fatalf("enforce role=%s action=%s failed: %v", tc.role, tc.action, err)
		}
		if allow != tc.want {
			t.Fatalf("enforce role=%s action=%s expected %v, got %v", tc.role, tc.action, tc.want, allow)
		}
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.Bootstrap(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	allow, err := svc.EnforceRole(constants.RoleAdministrator, constants.GiftCardObject, constants.GiftCardActionIssue)
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected administrator issue to stay allowed")
	}
}

func TestSubjectForRole(t *testing.T) {
	if got := SubjectForRole("Administrator"); got != "role:administrator" {
		t.Fatalf("expected role:administrator, got: %s", got)
	}
	if got := SubjectForRole("role:ordinary"); got != "role:ordinary" {
		t.Fatalf("expected role:ordinary unchanged, got: %s", got)
	}
	if got := SubjectForRole("  "); got != "" {
		t.Fatalf("expected empty subject for blank role, got: %s", got)
	}
}
