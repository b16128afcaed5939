package requests

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonContext(t *testing.T, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/spins", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestValidatePerformSpinDefaults(t *testing.T) {
	c := jsonContext(t, `{"user_id":"user-1","latitude":-6.26,"longitude":106.81}`)

	req, err := ValidatePerformSpin(c)
	require.NoError(t, err)

	assert.Equal(t, "user-1", req.UserID)
	// 未指定半径时使用默认值
	assert.Equal(t, DefaultRadiusKm, req.RadiusKm)
	assert.Empty(t, req.Category)
}

func TestValidatePerformSpinMissingUserID(t *testing.T) {
	c := jsonContext(t, `{"latitude":-6.26,"longitude":106.81}`)

	_, err := ValidatePerformSpin(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_id")
}

func TestValidatePerformSpinBadCoordinates(t *testing.T) {
	c := jsonContext(t, `{"user_id":"user-1","latitude":91,"longitude":106.81}`)
	_, err := ValidatePerformSpin(c)
	assert.Error(t, err)

	c = jsonContext(t, `{"user_id":"user-1","latitude":-6.26,"longitude":-191}`)
	_, err = ValidatePerformSpin(c)
	assert.Error(t, err)
}

func TestValidatePerformSpinRadiusBounds(t *testing.T) {
	c := jsonContext(t, `{"user_id":"user-1","latitude":-6.26,"longitude":106.81,"radius_km":5}`)
	req, err := ValidatePerformSpin(c)
	require.NoError(t, err)
	assert.Equal(t, 5.0, req.RadiusKm)

	c = jsonContext(t, `{"user_id":"user-1","latitude":-6.26,"longitude":106.81,"radius_km":50}`)
	_, err = ValidatePerformSpin(c)
	assert.Error(t, err)
}

func TestValidatePerformSpinCategory(t *testing.T) {
	c := jsonContext(t, `{"user_id":"user-1","latitude":-6.26,"longitude":106.81,"category":"cafe"}`)
	_, err := ValidatePerformSpin(c)
	assert.NoError(t, err)

	c = jsonContext(t, `{"user_id":"user-1","latitude":-6.26,"longitude":106.81,"category":"all"}`)
	_, err = ValidatePerformSpin(c)
	assert.NoError(t, err)

	c = jsonContext(t, `{"user_id":"user-1","latitude":-6.26,"longitude":106.81,"category":"karaoke"}`)
	_, err = ValidatePerformSpin(c)
	assert.Error(t, err)
}

func TestValidateRedeemVoucher(t *testing.T) {
	c := jsonContext(t, `{"user_id":"user-1"}`)
	req, err := ValidateRedeemVoucher(c)
	require.NoError(t, err)
	assert.Equal(t, "user-1", req.UserID)

	c = jsonContext(t, `{}`)
	_, err = ValidateRedeemVoucher(c)
	assert.Error(t, err)
}
