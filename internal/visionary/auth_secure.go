package visionary

import (
	"context"
	"crypto/sha256"
)

// challengeResponseSuccess is the device-side result code meaning the
// challenge or the subsequent SetUserLevel call succeeded.
const challengeResponseSuccess = 0

// SecureAuthenticator implements the newer salted-SHA256 challenge/
// response login scheme: GetChallenge fetches a per-attempt salt and
// challenge, SetUserLevel then proves knowledge of the password without
// ever sending it.
type SecureAuthenticator struct {
	session *ControlSession
}

// NewSecureAuthenticator wraps session for secure authentication.
func NewSecureAuthenticator(session *ControlSession) *SecureAuthenticator {
	return &SecureAuthenticator{session: session}
}

// Login fetches a challenge for level, derives the response from
// password, and submits it via SetUserLevel. It returns false if either
// round trip fails, is rejected by the device, or level is not one of
// the five known levels.
func (a *SecureAuthenticator) Login(ctx context.Context, level UserLevel, password string) bool {
	prefix := level.String()
	if prefix == "" {
		return false
	}

	challengeReq := Build(KindMethodInvocation, "GetChallenge",
		a.session.PrepareCall("GetChallenge").AppendUSInt(uint8(level)),
	)
	challengeResp := a.session.Send(ctx, challengeReq)
	if challengeResp.Error() != ColaErrOK {
		return false
	}

	r := NewCommandReader(challengeResp)
	result, err := r.ReadUSInt()
	if err != nil || result != challengeResponseSuccess {
		return false
	}

	var challenge, salt [16]byte
	for i := range challenge {
		b, err := r.ReadUSInt()
		if err != nil {
			return false
		}
		challenge[i] = b
	}
	for i := range salt {
		b, err := r.ReadUSInt()
		if err != nil {
			return false
		}
		salt[i] = b
	}

	response := secureChallengeResponse(prefix, password, challenge, salt)

	builder := a.session.PrepareCall("SetUserLevel")
	for _, b := range response {
		builder.AppendUSInt(b)
	}
	builder.AppendUSInt(uint8(level))

	userLevelResp := a.session.Send(ctx, Build(KindMethodInvocation, "SetUserLevel", builder))
	if userLevelResp.Error() != ColaErrOK {
		return false
	}
	result, err = NewCommandReader(userLevelResp).ReadUSInt()
	return err == nil && result == challengeResponseSuccess
}

// Logout invokes the "Run" method and treats any non-zero byte in its
// response as success — a different read width than LegacyAuthenticator's
// boolean read, preserved per DESIGN.md's recorded Open Question.
func (a *SecureAuthenticator) Logout(ctx context.Context) bool {
	req := Build(KindMethodInvocation, "Run", a.session.PrepareCall("Run"))
	resp := a.session.Send(ctx, req)
	if resp.Error() != ColaErrOK {
		return false
	}
	v, err := NewCommandReader(resp).ReadUSInt()
	return err == nil && v != 0
}

// secureChallengeResponse computes SHA256(passwordHash || challenge)
// where passwordHash = SHA256(prefix + ":SICK Sensor:" + password + ":" + salt).
func secureChallengeResponse(prefix, password string, challenge, salt [16]byte) [32]byte {
	ph := sha256.New()
	ph.Write([]byte(prefix + ":SICK Sensor:" + password))
	ph.Write([]byte(":"))
	ph.Write(salt[:])
	passwordHash := ph.Sum(nil)

	rh := sha256.New()
	rh.Write(passwordHash)
	rh.Write(challenge[:])
	var out [32]byte
	copy(out[:], rh.Sum(nil))
	return out
}
