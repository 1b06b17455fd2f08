package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Minute, RefreshTTL: time.Hour}
}

func TestJWTer_IssueAndParse(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue(42, "caregiver")
	require.NoError(t, err)

	c, err := j.ParseAs(tok, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), c.UID)
	assert.Equal(t, "caregiver", c.Role)
	assert.NotEmpty(t, c.ID)
}

func TestJWTer_PairTypes(t *testing.T) {
	j := newJWTer()
	pair, rc, err := j.IssuePair(7, "family")
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, rc.Type)

	_, err = j.ParseAs(pair.Refresh, AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	c, err := j.ParseAs(pair.Refresh, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, rc.ID, c.ID)
}

func TestJWTer_RejectsForeignSecretAndIssuer(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue(1, "admin")
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("other"), Issuer: "test", TTL: time.Minute}
	_, err = other.Parse(tok)
	assert.Error(t, err)

	otherIss := &JWTer{Secret: j.Secret, Issuer: "someone-else", TTL: time.Minute}
	_, err = otherIss.Parse(tok)
	assert.Error(t, err)
}

func TestJWTer_Expired(t *testing.T) {
	j := &JWTer{Secret: []byte("s"), Issuer: "test", TTL: -2 * time.Minute}
	tok, err := j.Issue(1, "family")
	require.NoError(t, err)
	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestAdminOrReadOnly(t *testing.T) {
	admin := &Principal{UID: 1, Role: "admin"}
	family := &Principal{UID: 2, Role: "family"}

	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.NoError(t, AdminOrReadOnly.Authorize(m, nil), m)
		assert.NoError(t, AdminOrReadOnly.Authorize(m, family), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.ErrorIs(t, AdminOrReadOnly.Authorize(m, nil), ErrUnauthenticated, m)
		assert.ErrorIs(t, AdminOrReadOnly.Authorize(m, family), ErrForbidden, m)
		assert.NoError(t, AdminOrReadOnly.Authorize(m, admin), m)
	}
}

func TestAuthenticatedAndAllowAny(t *testing.T) {
	assert.ErrorIs(t, Authenticated.Authorize(http.MethodGet, nil), ErrUnauthenticated)
	assert.NoError(t, Authenticated.Authorize(http.MethodDelete, &Principal{UID: 3, Role: "caregiver"}))
	assert.NoError(t, AllowAny.Authorize(http.MethodPost, nil))
}
