package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/ordenes-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/ordenes-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "ordenes-api-test"
)

func testSigner(t *testing.T, ttl time.Duration) *pkgjwt.Signer {
	t.Helper()
	s, err := pkgjwt.NewSigner(testJWTSecret, testIssuer, ttl)
	require.NoError(t, err)
	return s
}

func sign(t *testing.T, s *pkgjwt.Signer, id pkgjwt.Identity) string {
	t.Helper()
	tok, err := s.Sign(id)
	require.NoError(t, err)
	return "Bearer " + tok
}

// tokenForRole token válido del usuario y la empresa de prueba.
func tokenForRole(t *testing.T, role string) string {
	return sign(t, testSigner(t, time.Hour), pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: role})
}

// stockWriteApp imita una ruta de escritura de stock: JWT + roles de ajuste.
func stockWriteApp(t *testing.T, roles ...string) *fiber.App {
	app := fiber.New()
	app.Post("/stock-adjustments",
		apphttp.AuthMiddleware(testSigner(t, time.Hour)),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id":    apphttp.GetUserID(c),
				"company_id": apphttp.GetCompanyID(c),
				"role":       apphttp.GetRole(c),
			})
		},
	)
	return app
}

func post(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/stock-adjustments", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAuthMiddleware_DejaIdentidadEnLocals(t *testing.T) {
	resp := post(t, stockWriteApp(t), tokenForRole(t, "bodeguero"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, "bodeguero", body["role"])
}

func TestAuthMiddleware_TokensRechazados(t *testing.T) {
	vencido := sign(t, testSigner(t, -time.Minute), pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: "admin"})
	otroEmisor, err := pkgjwt.NewSigner(testJWTSecret, "otro-emisor", time.Hour)
	require.NoError(t, err)
	otroSecret, err := pkgjwt.NewSigner("otro-secret", testIssuer, time.Hour)
	require.NoError(t, err)
	admin := pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: "admin"}

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto", "Basic abc", "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"vencido", vencido, "INVALID_TOKEN"},
		{"otro emisor", sign(t, otroEmisor, admin), "INVALID_TOKEN"},
		{"otra firma", sign(t, otroSecret, admin), "INVALID_TOKEN"},
		{"sin empresa", sign(t, testSigner(t, time.Hour), pkgjwt.Identity{UserID: testUserID, Role: "admin"}), "INVALID_TOKEN"},
		{"sin usuario", sign(t, testSigner(t, time.Hour), pkgjwt.Identity{CompanyID: testCompanyID, Role: "admin"}), "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, stockWriteApp(t), tt.header)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tt.code, errorCode(t, resp))
		})
	}
}

func TestRequireRole_AjustesDeStock(t *testing.T) {
	tests := []struct {
		role   string
		status int
		code   string
	}{
		{"admin", http.StatusOK, ""},
		{"bodeguero", http.StatusOK, ""},
		{"vendedor", http.StatusForbidden, "FORBIDDEN"},
		{"", http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, tt := range tests {
		t.Run("rol "+tt.role, func(t *testing.T) {
			resp := post(t, stockWriteApp(t, "admin", "bodeguero"), tokenForRole(t, tt.role))

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, resp))
			}
		})
	}
}

func TestRequireRole_SinRolesPermiteCualquierRol(t *testing.T) {
	resp := post(t, stockWriteApp(t), tokenForRole(t, "vendedor"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSigner_IdaYVuelta(t *testing.T) {
	s := testSigner(t, time.Hour)
	want := pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: "vendedor"}

	tok, err := s.Sign(want)
	require.NoError(t, err)
	got, err := s.Parse(tok)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewSigner_SecretVacio(t *testing.T) {
	_, err := pkgjwt.NewSigner("", testIssuer, time.Hour)
	assert.Error(t, err)
}
