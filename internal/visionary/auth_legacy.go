package visionary

import "context"

// LegacyAuthenticator implements the older SetAccessMode/Run login scheme:
// a user level and an MD5-folded password sent in one call, a plain
// boolean read-back, and a "Run" method call to log back out to the
// default level.
type LegacyAuthenticator struct {
	session *ControlSession
}

// NewLegacyAuthenticator wraps session for legacy authentication.
func NewLegacyAuthenticator(session *ControlSession) *LegacyAuthenticator {
	return &LegacyAuthenticator{session: session}
}

// Login invokes SetAccessMode(level, LegacyPasswordHash(password)) and
// returns the boolean result, or false on any CoLa or transport error.
func (a *LegacyAuthenticator) Login(ctx context.Context, level UserLevel, password string) bool {
	req := Build(KindMethodInvocation, "SetAccessMode",
		a.session.PrepareCall("SetAccessMode").
			AppendSInt(int8(level)).
			AppendLegacyPasswordHash(password),
	)
	resp := a.session.Send(ctx, req)
	if resp.Error() != ColaErrOK {
		return false
	}
	ok, err := NewCommandReader(resp).ReadBool()
	return err == nil && ok
}

// Logout invokes the "Run" method to drop back to the default access
// level and returns its boolean result.
func (a *LegacyAuthenticator) Logout(ctx context.Context) bool {
	req := Build(KindMethodInvocation, "Run", a.session.PrepareCall("Run"))
	resp := a.session.Send(ctx, req)
	if resp.Error() != ColaErrOK {
		return false
	}
	ok, err := NewCommandReader(resp).ReadBool()
	return err == nil && ok
}
