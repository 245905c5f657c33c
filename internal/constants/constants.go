package constants

// Account roles.
const (
	RoleAdministrator = "administrator"
	RoleOrdinary      = "ordinary"
)

// Gift card stored statuses. Expiry is derived from expires_at at read time
// and is never written back as a status.
const (
	GiftCardStatusActive   = "active"
	GiftCardStatusUsed     = "used"
	GiftCardStatusDisposed = "disposed"
)

// GiftCardStatusExpired is a derived, query-only status accepted by list
// filters.
const GiftCardStatusExpired = "expired"

// Lifecycle actions checked against the role policy.
const (
	GiftCardActionIssue   = "issue"
	GiftCardActionUse     = "use"
	GiftCardActionDispose = "dispose"
	GiftCardActionList    = "list"
)

// GiftCardObject is the policy object all lifecycle actions apply to.
const GiftCardObject = "gift-card"

// Gift card event kinds recorded in the audit trail.
const (
	GiftCardEventIssued   = "issued"
	GiftCardEventUsed     = "used"
	GiftCardEventDisposed = "disposed"
)

// Queue and task names.
const (
	QueueDefault      = "default"
	TaskGiftCardEvent = "gift_card:event"
)

// Captcha scenes.
const (
	CaptchaSceneLogin       = "login"
	CaptchaSceneGiftCardUse = "gift_card_use"
)

// Captcha providers.
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)
