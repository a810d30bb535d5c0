package auth

import (
	"testing"

	"clinic-backoffice-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(7, "Dr. Alice", models.RolePractitioner)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, 7, claims.EmployeeID)
	require.Equal(t, "Dr. Alice", claims.EmployeeName)
	require.Equal(t, models.RolePractitioner, claims.Role)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := ValidateToken("invalid.token")
	require.Error(t, err)
}
