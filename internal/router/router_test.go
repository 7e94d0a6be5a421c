package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bni27/ogp-db-api/internal/auth"
)

// nopHandler satisfies every handler interface the router mounts. A
// request that reaches it gets the default 200, so status codes in
// these tests come from the middleware chain alone.
type nopHandler struct{}

func (nopHandler) Register(*gin.Context)            {}
func (nopHandler) Login(*gin.Context)               {}
func (nopHandler) UpdateRole(*gin.Context)          {}
func (nopHandler) List(*gin.Context)                {}
func (nopHandler) Create(*gin.Context)              {}
func (nopHandler) Delete(*gin.Context)              {}
func (nopHandler) ListFiles(*gin.Context)           {}
func (nopHandler) UploadFile(*gin.Context)          {}
func (nopHandler) DownloadFile(*gin.Context)        {}
func (nopHandler) DeleteFile(*gin.Context)          {}
func (nopHandler) LoadFile(*gin.Context)            {}
func (nopHandler) LoadAssetClass(*gin.Context)      {}
func (nopHandler) ListTables(*gin.Context)          {}
func (nopHandler) GetTable(*gin.Context)            {}
func (nopHandler) DeleteTable(*gin.Context)         {}
func (nopHandler) GetRecord(*gin.Context)           {}
func (nopHandler) AddRecord(*gin.Context)           {}
func (nopHandler) UpdateRecord(*gin.Context)        {}
func (nopHandler) DeleteRecord(*gin.Context)        {}
func (nopHandler) Stage(*gin.Context)               {}
func (nopHandler) GetData(*gin.Context)             {}
func (nopHandler) Update(*gin.Context)              {}
func (nopHandler) UpdateExchangeRates(*gin.Context) {}
func (nopHandler) UpdatePPPRates(*gin.Context)      {}
func (nopHandler) UpdateDeflators(*gin.Context)     {}
func (nopHandler) UpdateCountries(*gin.Context)     {}
func (nopHandler) AvailableFields(*gin.Context)     {}
func (nopHandler) Curve(*gin.Context)               {}

func stubHandlers() Handlers {
	s := nopHandler{}
	return Handlers{
		Auth:       s,
		AssetClass: s,
		RawData:    s,
		Staging:    s,
		Reference:  s,
		Prod:       s,
		RCF:        s,
	}
}

func bearerToken(t *testing.T, role string) string {
	t.Helper()

	token, err := auth.GenerateToken("11111111-1111-1111-1111-111111111111", "user@example.com", role)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(r *gin.Engine, method, target, authorization string) int {
	req := httptest.NewRequest(method, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(stubHandlers(), okPinger{}, okPinger{})

	for _, target := range []string{"/auth/register", "/auth/login"} {
		if code := doRequest(r, http.MethodPost, target, ""); code != http.StatusOK {
			t.Errorf("POST %s: expected 200 without a token, got %d", target, code)
		}
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(stubHandlers(), okPinger{}, okPinger{})

	routes := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/data"},
		{http.MethodPost, "/data/update"},
		{http.MethodGet, "/data/assetClasses"},
		{http.MethodPost, "/data/assetClasses/dams/stage"},
		{http.MethodGet, "/data/rawTables"},
		{http.MethodPost, "/data/reference/countries/update"},
		{http.MethodGet, "/data/rcf/dams/availableFields"},
		{http.MethodPut, "/auth/users/u1/role"},
	}

	for _, rt := range routes {
		if code := doRequest(r, rt.method, rt.target, ""); code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without a token, got %d", rt.method, rt.target, code)
		}
	}
}

func TestRouteRoleEnforcement(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "router-test-secret")
	r := NewRouter(stubHandlers(), okPinger{}, okPinger{})

	viewer := bearerToken(t, auth.RoleViewer)
	editor := bearerToken(t, auth.RoleEditor)
	admin := bearerToken(t, auth.RoleAdmin)

	cases := []struct {
		name   string
		method string
		target string
		auth   string
		want   int
	}{
		{"viewer reads prod data", http.MethodGet, "/data", viewer, http.StatusOK},
		{"viewer reads stage data", http.MethodGet, "/data/assetClasses/dams/stage/data", viewer, http.StatusOK},
		{"viewer reads rcf curve", http.MethodGet, "/data/rcf/dams/curve/cost_norm_ratio", viewer, http.StatusOK},
		{"viewer cannot stage", http.MethodPost, "/data/assetClasses/dams/stage", viewer, http.StatusForbidden},
		{"viewer cannot update prod", http.MethodPost, "/data/update", viewer, http.StatusForbidden},
		{"viewer cannot update reference", http.MethodPost, "/data/reference/exchangeRates/update", viewer, http.StatusForbidden},
		{"viewer cannot change roles", http.MethodPut, "/auth/users/u1/role", viewer, http.StatusForbidden},
		{"editor stages", http.MethodPost, "/data/assetClasses/dams/stage", editor, http.StatusOK},
		{"editor loads files", http.MethodPost, "/data/assetClasses/dams/load", editor, http.StatusOK},
		{"editor updates reference", http.MethodPost, "/data/reference/gdpDeflators/update", editor, http.StatusOK},
		{"editor cannot drop raw table", http.MethodDelete, "/data/rawTables/dams_2023", editor, http.StatusForbidden},
		{"editor cannot update prod", http.MethodPost, "/data/update", editor, http.StatusForbidden},
		{"editor cannot delete asset class", http.MethodDelete, "/data/assetClasses/dams", editor, http.StatusForbidden},
		{"admin updates prod", http.MethodPost, "/data/update", admin, http.StatusOK},
		{"admin drops raw table", http.MethodDelete, "/data/rawTables/dams_2023", admin, http.StatusOK},
		{"admin deletes stage table", http.MethodDelete, "/data/assetClasses/dams/stage", admin, http.StatusOK},
		{"admin changes roles", http.MethodPut, "/auth/users/u1/role", admin, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code := doRequest(r, tc.method, tc.target, tc.auth); code != tc.want {
				t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.target, tc.want, code)
			}
		})
	}
}
