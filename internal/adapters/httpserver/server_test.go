package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/phenrril/stylevision/internal/adapters/repo/memory"
	"github.com/phenrril/stylevision/internal/domain"
	"github.com/phenrril/stylevision/internal/handoff"
	"github.com/phenrril/stylevision/internal/overlay"
	"github.com/phenrril/stylevision/internal/usecase"
)

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	kv := memory.NewKVStore()
	garments := memory.NewGarmentRepo(usecase.DefaultGarments()...)
	hc := handoff.NewComposer("")
	reg := usecase.NewRegistry(kv, overlay.WithScheduler(func(time.Duration, func()) {}))
	photos := &usecase.PhotoUC{KV: kv, MaxBytes: 1 << 20}
	h := New(
		&usecase.CatalogUC{Garments: garments, Handoff: hc},
		&usecase.CartUC{Registry: reg, Garments: garments, Handoff: hc},
		&usecase.FittingUC{Registry: reg, Garments: garments, Photos: photos, KV: kv, Handoff: hc},
		photos,
		memory.NewCustomerRepo(),
		nil,
		Options{SessionKey: []byte("test-key"), AdminAPIKey: "admin", MaxUploadMB: 1},
	)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, client: &http.Client{Jar: jar}}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type cartResp struct {
	Items []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	LineCount     int     `json:"line_count"`
	TotalQuantity int     `json:"total_quantity"`
	TotalPrice    float64 `json:"total_price"`
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestCatalog(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodGet, "/api/catalog?category=camisetas", nil)
	require.Equal(t, 200, resp.StatusCode)
	body := decode[struct {
		Items      []map[string]any `json:"items"`
		Categories []string         `json:"categories"`
	}](t, resp)
	assert.Len(t, body.Items, 2)
	assert.Contains(t, body.Categories, "vestidos")

	resp = e.do(t, http.MethodGet, "/api/catalog/nao-existe", nil)
	assert.Equal(t, 404, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/catalog/calca-jeans/whatsapp", nil)
	require.Equal(t, 200, resp.StatusCode)
	link := decode[map[string]string](t, resp)["url"]
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Contains(t, u.Query().Get("text"), "Calça Jeans")

	resp = e.do(t, http.MethodPost, "/api/catalog", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCartFlow(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/api/cart/checkout", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/cart/items", map[string]string{"id": "camiseta-azul", "size": "M"})
	require.Equal(t, 201, resp.StatusCode)
	e.do(t, http.MethodPost, "/api/cart/items", map[string]string{"id": "camiseta-azul", "size": "M"})
	resp = e.do(t, http.MethodPost, "/api/cart/items", map[string]string{"id": "saia-elegante"})
	sum := decode[cartResp](t, resp)
	assert.Equal(t, 2, sum.LineCount)
	assert.Equal(t, 3, sum.TotalQuantity)
	assert.InDelta(t, 179.70, sum.TotalPrice, 1e-9)

	resp = e.do(t, http.MethodGet, "/api/cart/contains?id=camiseta-azul&size=M", nil)
	assert.True(t, decode[map[string]bool](t, resp)["contains"])

	resp = e.do(t, http.MethodPatch, "/api/cart/items", map[string]any{"id": "camiseta-azul", "size": "M", "quantity": 0})
	sum = decode[cartResp](t, resp)
	require.Len(t, sum.Items, 1)
	assert.Equal(t, "saia-elegante", sum.Items[0].ID)

	resp = e.do(t, http.MethodPost, "/api/cart/checkout", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, resp)["url"], "https://wa.me/"+handoff.DefaultNumber)

	resp = e.do(t, http.MethodGet, "/api/cart/export.xlsx", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "carrinho.xlsx")

	resp = e.do(t, http.MethodDelete, "/api/cart", nil)
	assert.Equal(t, 0, decode[cartResp](t, resp).LineCount)
}

func TestCartIsPerVisitor(t *testing.T) {
	a := newEnv(t)
	a.do(t, http.MethodPost, "/api/cart/items", map[string]string{"id": "camiseta-azul"})

	other := &http.Client{}
	resp, err := other.Get(a.srv.URL + "/api/cart")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 0, decode[cartResp](t, resp).LineCount)
}

func TestForgedCookieIsReplaced(t *testing.T) {
	e := newEnv(t)
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/cart", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: visitorCookie, Value: "abc.def"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var issued bool
	for _, c := range resp.Cookies() {
		if c.Name == visitorCookie {
			issued = true
			assert.NotEqual(t, "abc.def", c.Value)
		}
	}
	assert.True(t, issued)
}

type stateResp struct {
	Placements []struct {
		GarmentID  string       `json:"garment_id"`
		Position   domain.Point `json:"position"`
		Scale      float64      `json:"scale"`
		StackOrder int          `json:"stack_order"`
	} `json:"placements"`
	Focus   string `json:"focus"`
	Gesture string `json:"gesture"`
}

func TestFittingGestures(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPut, "/api/fitting/selection", map[string]any{"ids": []string{"fantasma"}})
	assert.Equal(t, 404, resp.StatusCode)

	resp = e.do(t, http.MethodPut, "/api/fitting/selection", map[string]any{"ids": []string{"camiseta-azul", "calca-jeans"}})
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, decode[stateResp](t, resp).Placements, 2)

	e.do(t, http.MethodPost, "/api/fitting/drag/begin", map[string]any{"garment_id": "camiseta-azul", "point": map[string]float64{"x": 10, "y": 10}})
	e.do(t, http.MethodPost, "/api/fitting/drag/move", map[string]any{"point": map[string]float64{"x": 30, "y": 5}})
	resp = e.do(t, http.MethodPost, "/api/fitting/drag/end", nil)
	st := decode[stateResp](t, resp)
	assert.Equal(t, "idle", st.Gesture)
	top := st.Placements[len(st.Placements)-1]
	assert.Equal(t, "camiseta-azul", top.GarmentID)
	assert.Equal(t, 20.0, top.Position.X)
	assert.Equal(t, -5.0, top.Position.Y)

	resp = e.do(t, http.MethodPost, "/api/fitting/zoom/in", nil)
	st = decode[stateResp](t, resp)
	assert.InDelta(t, 1.1, st.Placements[len(st.Placements)-1].Scale, 1e-9)

	e.do(t, http.MethodPost, "/api/fitting/pinch/begin", map[string]any{"garment_id": "calca-jeans", "touches": []map[string]float64{{"x": 0, "y": 0}, {"x": 100, "y": 0}}})
	resp = e.do(t, http.MethodPost, "/api/fitting/drag/begin", map[string]any{"garment_id": "calca-jeans", "point": map[string]float64{"x": 0, "y": 0}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp = e.do(t, http.MethodPost, "/api/fitting/pinch/move", map[string]any{"touches": []map[string]float64{{"x": 0, "y": 0}, {"x": 200, "y": 0}}})
	st = decode[stateResp](t, resp)
	assert.Equal(t, "pinching", st.Gesture)
	assert.Equal(t, "calca-jeans", st.Focus)
	e.do(t, http.MethodPost, "/api/fitting/pinch/end", nil)

	resp = e.do(t, http.MethodPost, "/api/fitting/cart", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "calca-jeans", decode[cartResp](t, resp).Items[0].ID)

	resp = e.do(t, http.MethodDelete, "/api/fitting/garments/calca-jeans", nil)
	assert.Len(t, decode[stateResp](t, resp).Placements, 1)

	resp = e.do(t, http.MethodPost, "/api/fitting/checkout", nil)
	require.Equal(t, 200, resp.StatusCode)
	link, err := url.Parse(decode[map[string]string](t, resp)["url"])
	require.NoError(t, err)
	assert.Contains(t, link.Query().Get("text"), "Camiseta Azul")

	resp = e.do(t, http.MethodDelete, "/api/fitting/garments", nil)
	assert.Empty(t, decode[stateResp](t, resp).Placements)
}

func TestFittingRejectsUnknownGarments(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPut, "/api/fitting/selection", map[string]any{"ids": []string{"camiseta-azul"}})

	for _, id := range []string{"ghost-1", "ghost-2", "../etc"} {
		resp := e.do(t, http.MethodPost, "/api/fitting/select", map[string]string{"garment_id": id})
		assert.Equal(t, 404, resp.StatusCode, id)
	}
	// está en el catálogo pero no en el probador
	resp := e.do(t, http.MethodPost, "/api/fitting/drag/begin", map[string]any{"garment_id": "calca-jeans", "point": map[string]float64{"x": 1, "y": 1}})
	assert.Equal(t, 404, resp.StatusCode)
	resp = e.do(t, http.MethodPost, "/api/fitting/pinch/begin", map[string]any{"garment_id": "ghost-3", "touches": []map[string]float64{{"x": 0, "y": 0}, {"x": 10, "y": 0}}})
	assert.Equal(t, 404, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/fitting", nil)
	st := decode[stateResp](t, resp)
	require.Len(t, st.Placements, 1)
	assert.Equal(t, "camiseta-azul", st.Placements[0].GarmentID)
	assert.Equal(t, "idle", st.Gesture)
}

func TestCartKeysAreTrimmed(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/api/cart/items", map[string]string{"id": "camiseta-azul", "size": " M "})

	resp := e.do(t, http.MethodGet, "/api/cart/contains?id=camiseta-azul&size=%20M%20", nil)
	assert.True(t, decode[map[string]bool](t, resp)["contains"])

	resp = e.do(t, http.MethodDelete, "/api/cart/items", map[string]string{"id": "camiseta-azul", "size": " M "})
	assert.Equal(t, 0, decode[cartResp](t, resp).LineCount)
}

func TestPhotoAndOutfit(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/api/fitting/outfit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	upload := func(data []byte) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("photo", "foto.png")
		require.NoError(t, err)
		_, _ = fw.Write(data)
		require.NoError(t, mw.Close())
		req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/photo", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := e.client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp = upload([]byte("texto plano"))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp = upload([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.Equal(t, 201, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/photo", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, resp)["image"], "data:image/png;base64,")

	e.do(t, http.MethodPut, "/api/fitting/selection", map[string]any{"ids": []string{"vestido-vermelho"}})
	resp = e.do(t, http.MethodPost, "/api/fitting/outfit", nil)
	require.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, 1, decode[map[string]int](t, resp)["clothes"])

	resp = e.do(t, http.MethodDelete, "/api/photo", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = e.do(t, http.MethodGet, "/api/photo", nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestAdminImportRequiresKey(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodPost, "/admin/catalog/import", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGoogleCallbackUpsertsCustomer(t *testing.T) {
	provider := http.NewServeMux()
	provider.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	})
	provider.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"email":"Ana@Example.com","name":"Ana"}`)
	})
	idp := httptest.NewServer(provider)
	t.Cleanup(idp.Close)

	customers := memory.NewCustomerRepo()
	kv := memory.NewKVStore()
	garments := memory.NewGarmentRepo(usecase.DefaultGarments()...)
	hc := handoff.NewComposer("")
	reg := usecase.NewRegistry(kv)
	cfg := &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/auth/google/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: idp.URL + "/auth", TokenURL: idp.URL + "/token", AuthStyle: oauth2.AuthStyleInParams},
	}
	h := New(
		&usecase.CatalogUC{Garments: garments, Handoff: hc},
		&usecase.CartUC{Registry: reg, Garments: garments, Handoff: hc},
		&usecase.FittingUC{Registry: reg, Garments: garments, KV: kv, Handoff: hc},
		&usecase.PhotoUC{KV: kv},
		customers,
		cfg,
		Options{SessionKey: []byte("k"), UserInfoURL: idp.URL + "/userinfo"},
	)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar, CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	login, err := client.Get(srv.URL + "/auth/google/login")
	require.NoError(t, err)
	login.Body.Close()
	require.Equal(t, 302, login.StatusCode)
	loc, err := url.Parse(login.Header.Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	for i := 0; i < 2; i++ {
		if i == 1 {
			// el state ya se consumió; se repite el login
			login, err = client.Get(srv.URL + "/auth/google/login")
			require.NoError(t, err)
			login.Body.Close()
			loc, _ = url.Parse(login.Header.Get("Location"))
			state = loc.Query().Get("state")
		}
		resp, err := client.Get(srv.URL + "/auth/google/callback?code=abc&state=" + url.QueryEscape(state))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, 302, resp.StatusCode)

		var cleared, session bool
		for _, c := range resp.Cookies() {
			switch c.Name {
			case "oauth_state":
				cleared = c.MaxAge < 0
			case userCookie:
				session = c.Value != ""
			}
		}
		assert.True(t, cleared)
		assert.True(t, session)
	}

	got, err := customers.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	// reusar el state consumido falla
	resp, err := client.Get(srv.URL + "/auth/google/callback?code=abc&state=" + url.QueryEscape(state))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGoogleLoginWithoutConfig(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodGet, "/auth/google/login", nil)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestUserSessionMovesCartNamespace(t *testing.T) {
	s := &Server{opts: Options{SessionKey: []byte("k")}}
	rec := httptest.NewRecorder()
	s.writeUserSession(rec, &sessionUser{Email: "ana@example.com", Name: "Ana"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	id := s.identify(httptest.NewRecorder(), req)
	require.NotNil(t, id.User)
	assert.Equal(t, "local:user:ana@example.com", id.LocalNS())
	assert.Equal(t, "session:"+id.SessionID, id.SessionNS())
}
