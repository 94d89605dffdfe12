package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulseguard/hypertension-api/api"
	"github.com/pulseguard/hypertension-api/databases/mocks"
	"github.com/pulseguard/hypertension-api/models"
)

func TestValidateOps(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sekret"), bcrypt.MinCost)
	assert.NoError(t, err)
	t.Setenv("OPS_USER", "ops")
	t.Setenv("OPS_PASSWORD_HASH", string(hash))

	r, _ := http.NewRequest("POST", "/internal/flush-fit-data", nil)

	info, err := api.ValidateOps(context.Background(), r, "ops", "sekret")
	assert.NoError(t, err)
	assert.Equal(t, "ops", info.UserName())

	_, err = api.ValidateOps(context.Background(), r, "ops", "wrong")
	assert.Error(t, err)

	_, err = api.ValidateOps(context.Background(), r, "somebody", "sekret")
	assert.Error(t, err)
}

func TestOpsMiddleware_RejectsBearerTokens(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sekret"), bcrypt.MinCost)
	assert.NoError(t, err)
	t.Setenv("OPS_USER", "ops")
	t.Setenv("OPS_PASSWORD_HASH", string(hash))
	t.Setenv("IDENTITY_JWT_SECRET", "test-secret")

	db := &mocks.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.User{ID: primitive.NewObjectID(), SubjectID: "sub-1"}, nil)
	m := api.MiddlewareDB{DB: db}
	m.SetupGoGuardian()

	// sign in like the app does and grab a bearer token
	identity := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "sub-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := identity.SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	tokenReq := httptest.NewRequest("POST", "/api/v1/auth/token", nil)
	tokenReq.Header.Set("Authorization", "Bearer "+signed)
	tokenRR := httptest.NewRecorder()
	m.CreateToken(tokenRR, tokenReq)
	assert.Equal(t, http.StatusOK, tokenRR.Code)

	var tokenResp map[string]string
	assert.NoError(t, json.Unmarshal(tokenRR.Body.Bytes(), &tokenResp))
	token := tokenResp["token"]
	assert.NotEmpty(t, token)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// the app token works on regular routes
	appReq := httptest.NewRequest("POST", "/api/v1/consults", nil)
	appReq.Header.Set("Authorization", "Bearer "+token)
	appRR := httptest.NewRecorder()
	api.Middleware(next).ServeHTTP(appRR, appReq)
	assert.Equal(t, http.StatusOK, appRR.Code)

	// but never on the operator endpoint
	opsReq := httptest.NewRequest("POST", "/internal/flush-fit-data", nil)
	opsReq.Header.Set("Authorization", "Bearer "+token)
	opsRR := httptest.NewRecorder()
	api.OpsMiddleware(next).ServeHTTP(opsRR, opsReq)
	assert.Equal(t, http.StatusUnauthorized, opsRR.Code)

	// the operator credential still does
	basicReq := httptest.NewRequest("POST", "/internal/flush-fit-data", nil)
	basicReq.SetBasicAuth("ops", "sekret")
	basicRR := httptest.NewRecorder()
	api.OpsMiddleware(next).ServeHTTP(basicRR, basicReq)
	assert.Equal(t, http.StatusOK, basicRR.Code)
}

func TestValidateOps_Unconfigured(t *testing.T) {
	t.Setenv("OPS_USER", "")
	t.Setenv("OPS_PASSWORD_HASH", "")

	r, _ := http.NewRequest("POST", "/internal/flush-fit-data", nil)

	_, err := api.ValidateOps(context.Background(), r, "ops", "anything")
	assert.Error(t, err)
}
