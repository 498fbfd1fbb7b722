package visionary

import "context"

// ProtocolType identifies which framing variant a control connection
// speaks, numbered after the control port the device listens on for it.
type ProtocolType int

const (
	// ProtocolInvalid marks a Device that has not been opened, or whose
	// protocol could not be determined.
	ProtocolInvalid ProtocolType = -1
	// ProtocolColaA is the ASCII variant; not implemented by this package.
	ProtocolColaA ProtocolType = 2111
	// ProtocolColaB selects the stream-framed, XOR-checksummed framer.
	ProtocolColaB ProtocolType = 2112
	// ProtocolCola2 selects the session-oriented framer.
	ProtocolCola2 ProtocolType = 2122
)

// DefaultSessionTimeoutSecs is the session idle timeout negotiated at
// open time unless the caller overrides it.
const DefaultSessionTimeoutSecs uint8 = 5

// Device is the composition root tying a Transport, a Framer, a
// ControlSession, and an Authenticator together into the control-plane
// surface a caller drives: open, authenticate, configure acquisition,
// issue arbitrary read/write/call commands, close. It owns its transport
// and framer exclusively; nothing else may use them concurrently.
type Device struct {
	transport Transport
	framer    Framer
	session   *ControlSession
	auth      Authenticator
	protocol  ProtocolType
	metrics   MetricsRecorder
}

// NewDevice builds a Device around an already-dialed transport and the
// framing variant matching protocol. secure selects SecureAuthenticator
// over LegacyAuthenticator for Login/Logout.
func NewDevice(transport Transport, protocol ProtocolType, clientID string, secure bool) *Device {
	var framer Framer
	switch protocol {
	case ProtocolCola2:
		framer = NewCola2Framer(transport, clientID)
	default:
		framer = NewColaBFramer(transport)
	}

	session := NewControlSession(framer)
	d := &Device{transport: transport, framer: framer, session: session, protocol: protocol}
	if secure {
		d.auth = NewSecureAuthenticator(session)
	} else {
		d.auth = NewLegacyAuthenticator(session)
	}
	return d
}

// Open begins the framer's session (a handshake for Variant 2, a no-op
// for Variant B) with the given or default session timeout.
func (d *Device) Open(ctx context.Context, sessionTimeoutSecs uint8) error {
	if sessionTimeoutSecs == 0 {
		sessionTimeoutSecs = DefaultSessionTimeoutSecs
	}
	return d.session.Open(ctx, sessionTimeoutSecs)
}

// Close ends the session and closes the underlying transport. It is safe
// to call on a Device that was never successfully opened.
func (d *Device) Close(ctx context.Context) error {
	_ = d.session.Close(ctx)
	return d.transport.Close()
}

// SetMetrics attaches m to observe this Device's control-channel command
// latency and authentication failures. Passing nil disables
// instrumentation; a Device has none by default.
func (d *Device) SetMetrics(m MetricsRecorder) {
	d.metrics = m
	d.session.SetMetrics(m)
}

// Login authenticates at the given level via whichever scheme this
// Device was constructed with.
func (d *Device) Login(ctx context.Context, level UserLevel, password string) bool {
	ok := d.auth.Login(ctx, level, password)
	if !ok && d.metrics != nil {
		d.metrics.RecordAuthFailure()
	}
	return ok
}

// Logout drops back to the default access level.
func (d *Device) Logout(ctx context.Context) bool {
	return d.auth.Logout(ctx)
}

// DeviceIdent calls the "DeviceIdent" method and returns its flex-string result.
func (d *Device) DeviceIdent(ctx context.Context) (string, error) {
	req := Build(KindMethodInvocation, "DeviceIdent", d.session.PrepareCall("DeviceIdent"))
	resp := d.session.Send(ctx, req)
	if resp.Error() != ColaErrOK {
		return "", resp.Error()
	}
	return NewCommandReader(resp).ReadFlexString()
}

// StartAcquisition calls "PLAYSTART"; it only takes effect when
// acquisition is currently stopped.
func (d *Device) StartAcquisition(ctx context.Context) bool {
	return d.callBool(ctx, "PLAYSTART")
}

// StepAcquisition calls "PLAYSTEP" to trigger a single acquisition; it
// only takes effect when acquisition is currently stopped.
func (d *Device) StepAcquisition(ctx context.Context) bool {
	return d.callBool(ctx, "PLAYSTEP")
}

// StopAcquisition calls "PLAYSTOP"; it is always effective, including
// when acquisition is already stopped.
func (d *Device) StopAcquisition(ctx context.Context) bool {
	return d.callBool(ctx, "PLAYSTOP")
}

// GetDataStreamConfig invokes "GetBlobClientConfig" to tell the device a
// streaming channel exists before it starts sending blobs.
func (d *Device) GetDataStreamConfig(ctx context.Context) bool {
	return d.callBool(ctx, "GetBlobClientConfig")
}

func (d *Device) callBool(ctx context.Context, method string) bool {
	req := Build(KindMethodInvocation, method, d.session.PrepareCall(method))
	resp := d.session.Send(ctx, req)
	if resp.Error() != ColaErrOK {
		return false
	}
	ok, err := NewCommandReader(resp).ReadBool()
	return err == nil && ok
}

// ReadVariable issues an "sRN" read for name and returns the parsed
// response Command for the caller to decode with a CommandReader.
func (d *Device) ReadVariable(ctx context.Context, name string) Command {
	req := Build(KindReadVariable, name, NewCommandBuilder(KindReadVariable, name))
	return d.session.Send(ctx, req)
}

// WriteVariable builds an "sWN" write for name from build (which should
// append the variable's parameters to the builder it receives) and sends it.
func (d *Device) WriteVariable(ctx context.Context, name string, build func(*CommandBuilder)) Command {
	b := d.session.PrepareWrite(name)
	build(b)
	return d.session.Send(ctx, Build(KindWriteVariable, name, b))
}

// InvokeMethod builds an "sMN" call for name from build and sends it.
func (d *Device) InvokeMethod(ctx context.Context, name string, build func(*CommandBuilder)) Command {
	b := d.session.PrepareCall(name)
	build(b)
	return d.session.Send(ctx, Build(KindMethodInvocation, name, b))
}

// Protocol returns the framing variant this Device was constructed with.
func (d *Device) Protocol() ProtocolType { return d.protocol }
