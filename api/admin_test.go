package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Kellerman81/holmes_admin/apiexternal"
	"github.com/Kellerman81/holmes_admin/config"
	"github.com/Kellerman81/holmes_admin/configuration"
	"github.com/Kellerman81/holmes_admin/i18n"
	"github.com/Kellerman81/holmes_admin/settings"
	"github.com/antchfx/htmlquery"
	gin "github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// holmesFake is an in-memory holmes backend.
type holmesFake struct {
	mu       sync.Mutex
	folders  map[string][]apiexternal.FolderEntry
	nextID   int
	refuse   string
	settings map[string]any
	saves    []map[string]any
	cfgForms []url.Values
}

func newHolmesFake() *holmesFake {
	return &holmesFake{
		folders: map[string][]apiexternal.FolderEntry{
			"VideoFolders":   {{ID: "1", Label: "Movies", Path: "/srv/movies"}},
			"AudioFolders":   {},
			"PictureFolders": {},
			"Podcasts":       {{ID: "2", Label: "News", Path: "http://example.com/feed"}},
		},
		nextID: 10,
		settings: map[string]any{
			"serverName": "Holmes", "httpServerPort": 8085, "logLevel": "INFO",
			"prependPodcastItem": false, "enableIcecastDirectory": true,
		},
	}
}

func (f *holmesFake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/backend/configuration/get") && path != apiexternal.PathGetConfiguration:
		_ = json.NewEncoder(w).Encode(f.folders[strings.TrimPrefix(path, "/backend/configuration/get")])
	case strings.HasPrefix(path, "/backend/configuration/edit") && path != apiexternal.PathEditConfiguration:
		_ = r.ParseForm()
		f.edit(w, strings.TrimPrefix(path, "/backend/configuration/edit"), r.PostForm)
	case path == apiexternal.PathGetConfiguration:
		_ = json.NewEncoder(w).Encode(map[string]any{"serverName": f.settings["serverName"], "httpServerPort": f.settings["httpServerPort"], "logLevel": f.settings["logLevel"]})
	case path == apiexternal.PathEditConfiguration:
		_ = r.ParseForm()
		f.cfgForms = append(f.cfgForms, r.PostForm)
		if _, err := strconv.Atoi(r.PostForm.Get("httpServerPort")); err != nil {
			_, _ = w.Write([]byte(`{"status":false,"message":"Invalid HTTP server port"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":true,"message":""}`))
	case path == apiexternal.PathSettings && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(f.settings)
	case path == apiexternal.PathSettings:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.saves = append(f.saves, body)
		if body["serverName"] == "" {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("Server name is mandatory"))
			return
		}
		f.settings["serverName"] = body["serverName"]
		f.settings["prependPodcastItem"] = body["prependPodcastItem"] == "true"
		f.settings["enableIcecastDirectory"] = body["enableIcecastDirectory"] == "true"
	default:
		http.NotFound(w, r)
	}
}

func (f *holmesFake) edit(w http.ResponseWriter, name string, form url.Values) {
	list := name + "s"
	oper, id := form.Get("oper"), form.Get("id")
	reply := func(status bool, message, id string) {
		_ = json.NewEncoder(w).Encode(map[string]any{"operation": oper, "status": status, "message": message, "id": id})
	}
	if f.refuse != "" {
		reply(false, f.refuse, id)
		return
	}
	switch oper {
	case "add":
		f.nextID++
		newID := strconv.Itoa(f.nextID)
		f.folders[list] = append(f.folders[list], apiexternal.FolderEntry{ID: newID, Label: form.Get("label"), Path: form.Get("path")})
		reply(true, "", newID)
	case "edit":
		for i := range f.folders[list] {
			if f.folders[list][i].ID == id {
				f.folders[list][i].Label = form.Get("label")
				f.folders[list][i].Path = form.Get("path")
			}
		}
		reply(true, "", id)
	case "del":
		kept := f.folders[list][:0]
		for _, e := range f.folders[list] {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		f.folders[list] = kept
		reply(true, "", "")
	}
}

func newTestRouter(t *testing.T, legacy bool) (*gin.Engine, *holmesFake) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := newHolmesFake()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := apiexternal.NewHolmesClient(config.BackendConfig{BaseURL: srv.URL, TimeoutSeconds: 5, LimiterSeconds: 1, LimiterCalls: 100, UserAgent: "test"})
	bundle, err := i18n.Load("en", "")
	require.NoError(t, err)
	grids, err := configuration.NewGridController(context.Background(), client, bundle, time.Minute, 300)
	require.NoError(t, err)
	t.Cleanup(func() { _ = grids.Close() })

	renderer := Renderer{}
	admin := &Admin{
		Grids:    grids,
		Config:   configuration.NewConfigForm(client, bundle, legacy),
		Settings: settings.NewView(client, renderer, bundle),
		Lookup:   bundle,
		Render:   renderer,
	}
	router := gin.New()
	AddHealthRoute(router)
	admin.AddRoutes(router.Group("/admin"))
	return router, fake
}

func do(t *testing.T, router http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *html.Node {
	t.Helper()
	doc, err := htmlquery.Parse(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return doc
}

func texts(nodes []*html.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, strings.TrimSpace(htmlquery.InnerText(n)))
	}
	return out
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, false)
	w := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAdminPage(t *testing.T) {
	router, _ := newTestRouter(t, false)
	w := do(t, router, http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)

	captions := texts(htmlquery.Find(doc, "//section/header/h5"))
	assert.Equal(t, []string{"Video folders", "Audio folders", "Picture folders", "Podcasts", "Configuration", "Settings"}, captions)
	assert.NotNil(t, htmlquery.FindOne(doc, "//section[@data-caption='video_folders']"))
	loaders := htmlquery.Find(doc, "//div[@hx-trigger='load']")
	require.Len(t, loaders, 6)
	assert.Equal(t, "/admin/grid/video", htmlquery.SelectAttr(loaders[0], "hx-get"))
	assert.Equal(t, "/admin/settings", htmlquery.SelectAttr(loaders[5], "hx-get"))
}

func TestGridFragment(t *testing.T) {
	router, _ := newTestRouter(t, false)
	w := do(t, router, http.MethodGet, "/admin/grid/podcast", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)

	grid := htmlquery.FindOne(doc, "//div[@id='grid-podcast']")
	require.NotNil(t, grid)
	assert.Equal(t, []string{"Id", "Label", "URL", ""}, texts(htmlquery.Find(grid, "//thead/tr/th")))
	assert.Equal(t, "display:none", htmlquery.SelectAttr(htmlquery.FindOne(grid, "//thead/tr/th[1]"), "style"))
	rows := htmlquery.Find(grid, "//tbody/tr")
	require.Len(t, rows, 1)
	assert.Equal(t, "2", htmlquery.SelectAttr(rows[0], "data-id"))
	assert.Contains(t, htmlquery.InnerText(rows[0]), "http://example.com/feed")
	assert.NotNil(t, htmlquery.FindOne(grid, "//div[@id='dialog-podcast']"))
	assert.Contains(t, htmlquery.SelectAttr(htmlquery.FindOne(grid, "//div[contains(@style,'height')]"), "style"), "height:300px")
}

func TestUnknownKind(t *testing.T) {
	router, _ := newTestRouter(t, false)
	w := do(t, router, http.MethodGet, "/admin/grid/music", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddDialogAndSubmit(t *testing.T) {
	router, fake := newTestRouter(t, false)

	w := do(t, router, http.MethodGet, "/admin/grid/audio/form", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Equal(t, "Add audio folder", strings.TrimSpace(htmlquery.InnerText(htmlquery.FindOne(doc, "//h5[@class='dialog-caption']"))))
	assert.Equal(t, "add", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@name='oper']"), "value"))
	assert.Equal(t, apiexternal.EmptyID, htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@name='id']"), "value"))
	assert.Equal(t, "70", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@name='path']"), "size"))

	w = do(t, router, http.MethodPost, "/admin/grid/audio", url.Values{"oper": {"add"}, "id": {apiexternal.EmptyID}, "label": {"Music"}, "path": {"/srv/music"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("HX-Retarget"))
	doc = parse(t, w)
	rows := htmlquery.Find(doc, "//div[@id='grid-audio']//tbody/tr")
	require.Len(t, rows, 1)
	assert.Equal(t, "11", htmlquery.SelectAttr(rows[0], "data-id"))
	assert.Len(t, fake.folders["AudioFolders"], 1)
}

func TestSubmitValidationReopensDialog(t *testing.T) {
	router, fake := newTestRouter(t, false)
	w := do(t, router, http.MethodPost, "/admin/grid/video", url.Values{"oper": {"add"}, "id": {apiexternal.EmptyID}, "label": {""}, "path": {"/x"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#dialog-video", w.Header().Get("HX-Retarget"))
	assert.Equal(t, "innerHTML", w.Header().Get("HX-Reswap"))
	doc := parse(t, w)
	assert.Contains(t, htmlquery.InnerText(htmlquery.FindOne(doc, "//div[@role='alert']")), "label")
	assert.Equal(t, "/x", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@name='path']"), "value"))
	assert.Len(t, fake.folders["VideoFolders"], 1)
}

func TestSubmitRefusedShowsServerMessage(t *testing.T) {
	router, fake := newTestRouter(t, false)
	fake.refuse = "Path does not exist"
	w := do(t, router, http.MethodPost, "/admin/grid/video", url.Values{"oper": {"edit"}, "id": {"1"}, "label": {"Movies"}, "path": {"/nowhere"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#dialog-video", w.Header().Get("HX-Retarget"))
	doc := parse(t, w)
	assert.Equal(t, "Edit video folder", strings.TrimSpace(htmlquery.InnerText(htmlquery.FindOne(doc, "//h5[@class='dialog-caption']"))))
	assert.Contains(t, htmlquery.InnerText(htmlquery.FindOne(doc, "//div[@role='alert']")), "Path does not exist")
}

func TestRefusedDeleteKeepsRowDetails(t *testing.T) {
	router, fake := newTestRouter(t, false)
	w := do(t, router, http.MethodGet, "/admin/grid/video/delete?id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	fake.refuse = "Folder is in use"
	w = do(t, router, http.MethodPost, "/admin/grid/video", url.Values{"oper": {"del"}, "id": {"1"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#dialog-video", w.Header().Get("HX-Retarget"))
	doc := parse(t, w)
	assert.Contains(t, htmlquery.InnerText(htmlquery.FindOne(doc, "//div[@role='alert']")), "Folder is in use")
	assert.Contains(t, htmlquery.InnerText(doc), "Movies")
	assert.Contains(t, htmlquery.InnerText(doc), "/srv/movies")
	assert.Equal(t, "1", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@name='id']"), "value"))
}

func TestEditAndDeleteDialogs(t *testing.T) {
	router, fake := newTestRouter(t, false)

	w := do(t, router, http.MethodGet, "/admin/grid/video/form?id=1", nil)
	doc := parse(t, w)
	assert.Equal(t, "Movies", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@name='label']"), "value"))
	assert.Equal(t, "edit", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@name='oper']"), "value"))

	w = do(t, router, http.MethodGet, "/admin/grid/video/delete?id=1", nil)
	doc = parse(t, w)
	assert.Contains(t, htmlquery.InnerText(doc), "Remove selected video folder?")
	assert.Equal(t, "del", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@name='oper']"), "value"))

	w = do(t, router, http.MethodGet, "/admin/grid/video/delete", nil)
	assert.Contains(t, w.Body.String(), "Please, select row")

	w = do(t, router, http.MethodPost, "/admin/grid/video", url.Values{"oper": {"del"}, "id": {"1"}})
	require.Equal(t, http.StatusOK, w.Code)
	doc = parse(t, w)
	assert.Empty(t, htmlquery.Find(doc, "//div[@id='grid-video']//tbody/tr"))
	assert.Empty(t, fake.folders["VideoFolders"])
}

func TestSubmitUnknownOperation(t *testing.T) {
	router, _ := newTestRouter(t, false)
	w := do(t, router, http.MethodPost, "/admin/grid/video", url.Values{"oper": {"move"}, "id": {"1"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfigurationForm(t *testing.T) {
	router, fake := newTestRouter(t, false)

	w := do(t, router, http.MethodGet, "/admin/configuration", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Equal(t, "Holmes", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@id='text_server_name']"), "value"))
	assert.Equal(t, "8085", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@id='text_http_server_port']"), "value"))
	assert.Equal(t, "INFO", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//select[@id='select_log_level']/option[@selected]"), "value"))
	assert.Equal(t, []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}, texts(htmlquery.Find(doc, "//select[@id='select_log_level']/option")))

	w = do(t, router, http.MethodPost, "/admin/configuration", url.Values{"serverName": {"Holmes"}, "httpServerPort": {"8086"}, "logLevel": {"DEBUG"}})
	assert.Contains(t, w.Body.String(), "Configuration saved")
	assert.Contains(t, w.Body.String(), "alert-success")

	w = do(t, router, http.MethodPost, "/admin/configuration", url.Values{"serverName": {"Holmes"}, "httpServerPort": {"80a"}, "logLevel": {"DEBUG"}})
	assert.Contains(t, w.Body.String(), "Invalid HTTP server port")
	assert.Contains(t, w.Body.String(), "alert-danger")
	require.Len(t, fake.cfgForms, 2)
	assert.Equal(t, "80a", fake.cfgForms[1].Get("httpServerPort"))

	w = do(t, router, http.MethodPost, "/admin/configuration/reset", nil)
	doc = parse(t, w)
	assert.Nil(t, htmlquery.FindOne(doc, "//div[@role='alert']"))
	assert.NotNil(t, htmlquery.FindOne(doc, "//div[@id='configuration']"))
}

func TestConfigurationLegacyMessage(t *testing.T) {
	router, _ := newTestRouter(t, true)
	w := do(t, router, http.MethodPost, "/admin/configuration", url.Values{"serverName": {"Holmes"}, "httpServerPort": {"80a"}, "logLevel": {"DEBUG"}})
	assert.Contains(t, w.Body.String(), configuration.LegacyErrorMessage)
}

func TestSettingsView(t *testing.T) {
	router, fake := newTestRouter(t, false)

	w := do(t, router, http.MethodGet, "/admin/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Equal(t, "Settings", strings.TrimSpace(htmlquery.InnerText(htmlquery.FindOne(doc, "//div[@id='settings']/h3"))))
	assert.Equal(t, "Holmes", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@id='settingsServerName']"), "value"))
	assert.Nil(t, htmlquery.FindOne(doc, "//input[@id='chkPrependPodcastItem'][@checked]"))
	assert.NotNil(t, htmlquery.FindOne(doc, "//input[@id='chkEnableIcecastDirectory'][@checked]"))
	token := htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@type='hidden'][@name='token']"), "value")
	require.NotEmpty(t, token)

	w = do(t, router, http.MethodPost, "/admin/settings", url.Values{"token": {token}, "serverName": {" Renamed "}, "prependPodcastItem": {"true"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Settings saved")
	require.Len(t, fake.saves, 1)
	assert.Equal(t, map[string]any{"serverName": "Renamed", "prependPodcastItem": "true", "enableIcecastDirectory": "false"}, fake.saves[0])

	w = do(t, router, http.MethodPost, "/admin/settings", url.Values{"serverName": {""}})
	assert.Contains(t, w.Body.String(), "Server name is mandatory")
	assert.Contains(t, w.Body.String(), "alert-danger")

	w = do(t, router, http.MethodPost, "/admin/settings/cancel", nil)
	doc = parse(t, w)
	assert.Equal(t, "Renamed", htmlquery.SelectAttr(htmlquery.FindOne(doc, "//input[@id='settingsServerName']"), "value"))
	assert.NotNil(t, htmlquery.FindOne(doc, "//input[@id='chkPrependPodcastItem'][@checked]"))
}

func TestBackendDownShowsBanner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fakeDown := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer fakeDown.Close()
	client := apiexternal.NewHolmesClient(config.BackendConfig{BaseURL: fakeDown.URL, TimeoutSeconds: 5, LimiterSeconds: 1, LimiterCalls: 100})
	bundle, err := i18n.Load("en", "")
	require.NoError(t, err)
	grids, err := configuration.NewGridController(context.Background(), client, bundle, time.Minute, 300)
	require.NoError(t, err)
	defer grids.Close()
	admin := &Admin{Grids: grids, Config: configuration.NewConfigForm(client, bundle, false), Settings: settings.NewView(client, Renderer{}, bundle), Lookup: bundle}
	router := gin.New()
	admin.AddRoutes(router.Group("/admin"))

	w := do(t, router, http.MethodGet, "/admin/grid/video", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gone")
	assert.Contains(t, w.Body.String(), "alert-danger")

	w = do(t, router, http.MethodGet, "/admin/settings", nil)
	assert.Contains(t, w.Body.String(), "gone")
}
