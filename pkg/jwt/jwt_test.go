package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Manufactura-api/pkg/jwt"
)

const testSecret = "super-secreto-de-test"

// Un token generado se parsea de vuelta con los tres claims propios intactos.
func TestGenerateYParse_RoundTrip(t *testing.T) {
	token, err := jwt.Generate(testSecret, "user-1", "company-1", "supervisor", "manufactura-api", 30)
	require.NoError(t, err)

	userID, companyID, role, err := jwt.Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "company-1", companyID)
	assert.Equal(t, "supervisor", role)
}

// Con expMinutes <= 0 el token sale con la expiración por defecto, no expirado.
func TestGenerate_ExpiracionPorDefecto(t *testing.T) {
	token, err := jwt.Generate(testSecret, "user-1", "company-1", "admin", "manufactura-api", 0)
	require.NoError(t, err)

	_, _, _, err = jwt.Parse(testSecret, token)
	require.NoError(t, err, "un token recién emitido no puede estar vencido")

	parsed, err := gojwt.ParseWithClaims(token, &gojwt.RegisteredClaims{}, func(t *gojwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(*gojwt.RegisteredClaims)
	assert.WithinDuration(t, time.Now().Add(60*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

// Caso 1: firma con otro secret. Caso 2: secret vacío. Ambos rechazan.
func TestParse_Rechazos(t *testing.T) {
	token, err := jwt.Generate(testSecret, "user-1", "company-1", "admin", "manufactura-api", 30)
	require.NoError(t, err)

	_, _, _, err = jwt.Parse("otro-secreto", token)
	assert.Error(t, err, "firma con secret distinto")

	_, _, _, err = jwt.Parse("", token)
	assert.Error(t, err, "secret vacío")
}
