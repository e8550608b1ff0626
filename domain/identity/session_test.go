package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_StartsAnonymous(t *testing.T) {
	session := NewSession()

	current := session.Current()
	assert.True(t, current.Anonymous())
	assert.NotEmpty(t, current.ID())
}

func TestSession_LoginTransitionsAndNotifies(t *testing.T) {
	session := NewSession()
	anonymous := session.Current()

	var gotOutgoing, gotIncoming Identity
	session.OnTransition(func(outgoing, incoming Identity) {
		gotOutgoing, gotIncoming = outgoing, incoming
	})

	authenticated, err := NewAuthenticated("13800138000", "13800138000")
	require.NoError(t, err)
	require.NoError(t, session.Login(authenticated))

	assert.True(t, session.Current().Authenticated())
	assert.True(t, gotOutgoing.Equals(anonymous))
	assert.True(t, gotIncoming.Equals(authenticated))
}

func TestSession_LoginTwiceFails(t *testing.T) {
	session := NewSession()
	authenticated, err := NewAuthenticated("13800138000", "13800138000")
	require.NoError(t, err)
	require.NoError(t, session.Login(authenticated))

	other, err := NewAuthenticated("13900139000", "13900139000")
	require.NoError(t, err)

	assert.Error(t, session.Login(other))
}

func TestSession_LoginRejectsAnonymousIdentity(t *testing.T) {
	session := NewSession()

	assert.Error(t, session.Login(NewAnonymous()))
}

func TestSession_LogoutMintsFreshAnonymousIdentity(t *testing.T) {
	session := NewSession()
	original := session.Current()
	authenticated, err := NewAuthenticated("13800138000", "13800138000")
	require.NoError(t, err)
	require.NoError(t, session.Login(authenticated))

	incoming := session.Logout()

	assert.True(t, incoming.Anonymous())
	assert.False(t, incoming.Equals(original))
	assert.True(t, session.Current().Equals(incoming))
}

func TestSession_ListenersRunSynchronously(t *testing.T) {
	session := NewSession()
	migrated := false
	session.OnTransition(func(outgoing, incoming Identity) {
		if outgoing.Anonymous() && incoming.Authenticated() {
			migrated = true
		}
	})

	authenticated, err := NewAuthenticated("13800138000", "13800138000")
	require.NoError(t, err)
	require.NoError(t, session.Login(authenticated))

	// The listener must have completed before Login returned.
	assert.True(t, migrated)
}
