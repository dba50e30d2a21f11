package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/intelliservice-api/pkg/jwt"
)

const secret = "test-secret"

func TestParse_TokenValidoDevuelveIdentidad(t *testing.T) {
	id := pkgjwt.Identity{UserID: "u-1", CompanyID: "c-1", Role: "technician"}
	tok, err := pkgjwt.Generate(secret, id, "backend", time.Hour)
	require.NoError(t, err)

	got, err := pkgjwt.Parse(secret, "backend", tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, pkgjwt.Identity{UserID: "u-1"}, "", time.Hour)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret", "", tok)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, pkgjwt.Identity{UserID: "u-1"}, "", -time.Minute)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, "", tok)
	assert.Error(t, err)
}

func TestParse_IssuerDistinto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, pkgjwt.Identity{UserID: "u-1"}, "otro", time.Hour)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, "backend", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", pkgjwt.Identity{UserID: "u"}, "", time.Hour)
	assert.Error(t, err)
}
