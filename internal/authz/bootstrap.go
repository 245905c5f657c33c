package authz

import (
	"fmt"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/logger"
)

// Policy is one allow rule.
type Policy struct {
	Subject string
	Object  string
	Action  string
}

func defaultPolicies() []Policy {
	adminSubject := SubjectForRole(constants.RoleAdministrator)
	ordinarySubject := SubjectForRole(constants.RoleOrdinary)
	return []Policy{
		{Subject: adminSubject, Object: constants.GiftCardObject, Action: constants.GiftCardActionIssue},
		{Subject: adminSubject, Object: constants.GiftCardObject, Action: constants.GiftCardActionUse},
		{Subject: adminSubject, Object: constants.GiftCardObject, Action: constants.GiftCardActionDispose},
		{Subject: adminSubject, Object: constants.GiftCardObject, Action: constants.GiftCardActionList},
		{Subject: ordinarySubject, Object: constants.GiftCardObject, Action: constants.GiftCardActionUse},
	}
}

// Bootstrap seeds the built-in role policies. Existing rules are left alone.
func (s *Service) Bootstrap() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	added := 0
	for _, p := range defaultPolicies() {
		ok, err := s.enforcer.AddPolicy(p.Subject, p.Object, p.Action)
		if err != nil {
			return fmt.Errorf("seed authz policy failed: %w", err)
		}
		if ok {
			added++
		}
	}
	if added > 0 {
		logger.Infow("authz_policies_seeded", "added", added)
	}
	return nil
}
