package domain

// Session is the sole authenticated identity: an opaque credential token
// and the display name it belongs to.
//
// A Session is never mutated in place. It is replaced wholesale on login
// and discarded on logout or when the server rejects the token.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Valid reports whether both fields are present. A partial session is
// treated as absent everywhere.
func (s Session) Valid() bool {
	return s.Token != "" && s.Username != ""
}

// Credentials are the login form input. They are never persisted.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the published view of the logged-in identity.
type User struct {
	Username string `json:"username"`
}

// AuthPhase is the lifecycle phase of the session manager.
type AuthPhase int

const (
	// PhaseLoading is the initial phase before the store has been read.
	PhaseLoading AuthPhase = iota
	// PhaseAnonymous means no session exists.
	PhaseAnonymous
	// PhaseAuthenticated means a valid session exists.
	PhaseAuthenticated
)

// String returns the phase name.
func (p AuthPhase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// AuthState is the authentication state published to consumers.
//
// Loading is true only until the initial restore completes. Consumers must
// treat a loading state as unknown and render neither view.
type AuthState struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user,omitempty"`
	Loading         bool  `json:"loading"`
}

// LoadingState returns the state published before restore.
func LoadingState() AuthState {
	return AuthState{Loading: true}
}

// AnonymousState returns the unauthenticated state.
func AnonymousState() AuthState {
	return AuthState{}
}

// AuthenticatedState returns the state for the given session.
func AuthenticatedState(s Session) AuthState {
	return AuthState{
		IsAuthenticated: true,
		User:            &User{Username: s.Username},
	}
}

// Phase derives the lifecycle phase from the state.
func (a AuthState) Phase() AuthPhase {
	switch {
	case a.Loading:
		return PhaseLoading
	case a.IsAuthenticated && a.User != nil:
		return PhaseAuthenticated
	default:
		return PhaseAnonymous
	}
}

// Username returns the logged-in username or "".
func (a AuthState) Username() string {
	if a.User == nil {
		return ""
	}
	return a.User.Username
}

// LoginResult is the outcome of a login attempt. Error holds a display
// message when Success is false.
type LoginResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Login failure messages.
const (
	MsgInvalidServerResponse = "Invalid response from server"
	MsgInvalidLoginResponse  = "Invalid login response"
	MsgNotInitialized        = "Session not initialized"
	MsgPersistFailed         = "Could not persist session"
	MsgLoginFailed           = "Login failed"
)
