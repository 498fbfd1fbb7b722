package visionary

import "context"

// UserLevel is the CoLa access level requested during login, in both the
// legacy and secure authentication schemes.
type UserLevel int8

const (
	// UserLevelRun is the default, unauthenticated level.
	UserLevelRun UserLevel = 0
	// UserLevelOperator grants operator-level access.
	UserLevelOperator UserLevel = 1
	// UserLevelMaintenance grants maintenance-level access.
	UserLevelMaintenance UserLevel = 2
	// UserLevelAuthorizedClient grants authorized-client-level access.
	UserLevelAuthorizedClient UserLevel = 3
	// UserLevelService grants service-level access.
	UserLevelService UserLevel = 4
)

var userLevelPrefixes = map[UserLevel]string{
	UserLevelRun:              "Run",
	UserLevelOperator:         "Operator",
	UserLevelMaintenance:      "Maintenance",
	UserLevelAuthorizedClient: "AuthorizedClient",
	UserLevelService:          "Service",
}

// String returns the level's CoLa password-prefix label, or "" for an
// out-of-range value.
func (l UserLevel) String() string {
	return userLevelPrefixes[l]
}

// Authenticator is the login/logout contract both authentication schemes
// implement against a ControlSession.
type Authenticator interface {
	Login(ctx context.Context, level UserLevel, password string) bool
	Logout(ctx context.Context) bool
}
