package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/Kellerman81/holmes_admin/apiexternal"
	"github.com/Kellerman81/holmes_admin/apperrors"
	"github.com/Kellerman81/holmes_admin/configuration"
	"github.com/Kellerman81/holmes_admin/i18n"
	"github.com/Kellerman81/holmes_admin/logger"
	"github.com/Kellerman81/holmes_admin/settings"
	gin "github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	. "maragu.dev/gomponents"
)

// PageTitle is the title of the admin page.
const PageTitle = "Holmes administration"

// Admin serves the console page and its fragments.
type Admin struct {
	Grids    *configuration.GridController
	Config   *configuration.ConfigForm
	Settings *settings.View
	Lookup   i18n.Lookup
	Render   Renderer
}

func (a *Admin) AddRoutes(rg *gin.RouterGroup) {
	rg.GET("", a.apiAdminPage)

	routergrid := rg.Group("/grid/:kind")
	{
		routergrid.GET("", a.apiGridGet)
		routergrid.GET("/form", a.apiGridForm)
		routergrid.GET("/delete", a.apiGridDelete)
		routergrid.POST("", a.apiGridSubmit)
	}

	rg.GET("/configuration", a.apiConfigurationGet)
	rg.POST("/configuration", a.apiConfigurationPost)
	rg.POST("/configuration/reset", a.apiConfigurationReset)

	rg.GET("/settings", a.apiSettingsGet)
	rg.POST("/settings", a.apiSettingsPost)
	rg.POST("/settings/cancel", a.apiSettingsCancel)
}

// AddHealthRoute registers the liveness probe.
func AddHealthRoute(r gin.IRoutes) {
	r.GET("/health", apiHealth)
}

// @Summary      Health
// @Description  Reports that the console is up. The backend is not contacted.
// @Tags         general
// @Success      200  {object}  string
// @Router       /health [get]
func apiHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func renderNode(c *gin.Context, status int, node Node) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := node.Render(c.Writer); err != nil {
		logger.Log.WithError(err).WithField("path", c.Request.URL.Path).Errorln("render failed")
	}
}

func logFailure(c *gin.Context, err error, msg string) {
	logger.Log.WithError(err).WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"class": apperrors.GetClass(err),
	}).Warnln(msg)
}

func (a *Admin) kind(c *gin.Context) (apiexternal.FolderKind, bool) {
	kind, err := apiexternal.ParseFolderKind(c.Param("kind"))
	if err != nil {
		renderNode(c, http.StatusNotFound, createAlert(err.Error(), "danger"))
		return "", false
	}
	return kind, true
}

func (a *Admin) navLabels() (navLabels, error) {
	m, err := i18n.Labels(a.Lookup, "msg.nav.add", "msg.nav.edit", "msg.nav.remove", "msg.nav.refresh")
	if err != nil {
		return navLabels{}, err
	}
	return navLabels{Add: m["msg.nav.add"], Edit: m["msg.nav.edit"], Remove: m["msg.nav.remove"], Refresh: m["msg.nav.refresh"]}, nil
}

func (a *Admin) dialogLabels() (dialogLabels, error) {
	m, err := i18n.Labels(a.Lookup, "msg.button.submit", "msg.button.cancel", "msg.button.remove")
	if err != nil {
		return dialogLabels{}, err
	}
	return dialogLabels{Submit: m["msg.button.submit"], Cancel: m["msg.button.cancel"], Remove: m["msg.button.remove"]}, nil
}

func (a *Admin) formLabels() (formLabels, error) {
	m, err := i18n.Labels(a.Lookup, "msg.configuration.title", "msg.configuration.serverName",
		"msg.configuration.httpServerPort", "msg.configuration.logLevel", "msg.button.save", "msg.button.reset")
	if err != nil {
		return formLabels{}, err
	}
	return formLabels{
		Title:          m["msg.configuration.title"],
		ServerName:     m["msg.configuration.serverName"],
		HTTPServerPort: m["msg.configuration.httpServerPort"],
		LogLevel:       m["msg.configuration.logLevel"],
		Save:           m["msg.button.save"],
		Reset:          m["msg.button.reset"],
	}, nil
}

// @Summary      Admin page
// @Description  Full page with the four folder grids, the configuration form and the settings view
// @Tags         admin
// @Success      200  {object}  string
// @Router       /admin [get]
func (a *Admin) apiAdminPage(c *gin.Context) {
	var sections []Node
	for _, kind := range apiexternal.FolderKinds {
		caption, err := a.Lookup.Lookup("msg." + string(kind) + ".folders")
		if err != nil {
			logFailure(c, err, "page labels")
			renderNode(c, http.StatusInternalServerError, a.Render.Page(PageTitle, []Node{createAlert(apperrors.UserMessage(err), "danger")}))
			return
		}
		sections = append(sections, a.Render.Section(string(kind), caption, gridURL(kind)))
	}
	labels, err := i18n.Labels(a.Lookup, "msg.configuration.title", "msg.settings.title")
	if err != nil {
		logFailure(c, err, "page labels")
		renderNode(c, http.StatusInternalServerError, a.Render.Page(PageTitle, []Node{createAlert(apperrors.UserMessage(err), "danger")}))
		return
	}
	sections = append(sections,
		a.Render.Section("configuration", labels["msg.configuration.title"], "/admin/configuration"),
		a.Render.Section("settings", labels["msg.settings.title"], "/admin/settings"),
	)
	renderNode(c, http.StatusOK, a.Render.Page(PageTitle, sections))
}

// @Summary      Folder grid
// @Description  Loads the rows of one folder kind from the backend
// @Tags         grid
// @Param        kind  path  string  true  "video, audio, picture or podcast"
// @Success      200  {object}  string
// @Failure      404  {object}  string
// @Router       /admin/grid/{kind} [get]
func (a *Admin) apiGridGet(c *gin.Context) {
	kind, ok := a.kind(c)
	if !ok {
		return
	}
	a.renderGrid(c, kind)
}

func (a *Admin) renderGrid(c *gin.Context, kind apiexternal.FolderKind) {
	nav, err := a.navLabels()
	if err != nil {
		logFailure(c, err, "grid labels")
		renderNode(c, http.StatusOK, a.Render.GridError(kind, apperrors.UserMessage(err)))
		return
	}
	grid, err := a.Grids.Init(c.Request.Context(), kind)
	if err != nil {
		logFailure(c, err, "grid not loaded")
		renderNode(c, http.StatusOK, a.Render.GridError(kind, apperrors.UserMessage(err)))
		return
	}
	renderNode(c, http.StatusOK, a.Render.Grid(grid, nav))
}

// editDialog renders the add or edit dialog for row with an optional message.
func (a *Admin) editDialog(c *gin.Context, kind apiexternal.FolderKind, row apiexternal.FolderEntry, message string) {
	labels, err := a.Grids.Labels(kind)
	if err != nil {
		renderNode(c, http.StatusOK, createAlert(apperrors.UserMessage(err), "danger"))
		return
	}
	columns, err := a.Grids.Columns(kind)
	if err != nil {
		renderNode(c, http.StatusOK, createAlert(apperrors.UserMessage(err), "danger"))
		return
	}
	buttons, err := a.dialogLabels()
	if err != nil {
		renderNode(c, http.StatusOK, createAlert(apperrors.UserMessage(err), "danger"))
		return
	}
	caption := labels.EditCaption
	if row.ID == "" {
		caption = labels.AddCaption
	}
	renderNode(c, http.StatusOK, a.Render.EditDialog(kind, caption, columns, row, message, buttons))
}

func (a *Admin) deleteDialog(c *gin.Context, kind apiexternal.FolderKind, row apiexternal.FolderEntry, message string) {
	labels, err := a.Grids.Labels(kind)
	if err != nil {
		renderNode(c, http.StatusOK, createAlert(apperrors.UserMessage(err), "danger"))
		return
	}
	buttons, err := a.dialogLabels()
	if err != nil {
		renderNode(c, http.StatusOK, createAlert(apperrors.UserMessage(err), "danger"))
		return
	}
	renderNode(c, http.StatusOK, a.Render.DeleteDialog(kind, labels.RemoveCaption, labels.RemoveMsg, row, message, buttons))
}

// @Summary      Add or edit dialog
// @Description  Without id the add dialog, with id the edit dialog pre-filled from the row cache
// @Tags         grid
// @Param        kind  path   string  true   "folder kind"
// @Param        id    query  string  false  "row id"
// @Success      200  {object}  string
// @Router       /admin/grid/{kind}/form [get]
func (a *Admin) apiGridForm(c *gin.Context) {
	kind, ok := a.kind(c)
	if !ok {
		return
	}
	id := c.Query("id")
	if id == "" {
		a.editDialog(c, kind, apiexternal.FolderEntry{}, "")
		return
	}
	row, err := a.Grids.Row(c.Request.Context(), kind, id)
	if err != nil {
		logFailure(c, err, "row not found")
		renderNode(c, http.StatusOK, createAlert(apperrors.UserMessage(err), "danger"))
		return
	}
	a.editDialog(c, kind, row, "")
}

// @Summary      Delete dialog
// @Description  Confirmation before a row is removed
// @Tags         grid
// @Param        kind  path   string  true  "folder kind"
// @Param        id    query  string  true  "row id"
// @Success      200  {object}  string
// @Router       /admin/grid/{kind}/delete [get]
func (a *Admin) apiGridDelete(c *gin.Context) {
	kind, ok := a.kind(c)
	if !ok {
		return
	}
	id := c.Query("id")
	if id == "" {
		m, err := i18n.Labels(a.Lookup, "msg.alert", "msg.alertmsg")
		if err != nil {
			renderNode(c, http.StatusOK, createAlert(apperrors.UserMessage(err), "danger"))
			return
		}
		renderNode(c, http.StatusOK, createAlert(m["msg.alert"]+": "+m["msg.alertmsg"], "warning"))
		return
	}
	row, err := a.Grids.Row(c.Request.Context(), kind, id)
	if err != nil {
		logFailure(c, err, "row not found")
		renderNode(c, http.StatusOK, createAlert(apperrors.UserMessage(err), "danger"))
		return
	}
	a.deleteDialog(c, kind, row, "")
}

// @Summary      Submit grid operation
// @Description  oper is add, edit or del. Returns the reloaded grid, or the dialog again with the error
// @Tags         grid
// @Param        kind   path      string  true   "folder kind"
// @Param        oper   formData  string  true   "add, edit or del"
// @Param        id     formData  string  false  "row id, _empty on add"
// @Param        label  formData  string  false  "label"
// @Param        path   formData  string  false  "path or feed url"
// @Success      200  {object}  string
// @Failure      400  {object}  string
// @Router       /admin/grid/{kind} [post]
func (a *Admin) apiGridSubmit(c *gin.Context) {
	kind, ok := a.kind(c)
	if !ok {
		return
	}
	op, err := apiexternal.ParseOperation(c.PostForm("oper"))
	if err != nil {
		renderNode(c, http.StatusBadRequest, createAlert(err.Error(), "danger"))
		return
	}
	row := apiexternal.FolderEntry{ID: c.PostForm("id"), Label: c.PostForm("label"), Path: c.PostForm("path")}
	if row.ID == apiexternal.EmptyID {
		row.ID = ""
	}

	result, err := a.Grids.Submit(c.Request.Context(), kind, op, row)
	if result.Reopen {
		message := result.Response.Message
		if err != nil {
			logFailure(c, err, "grid submit failed")
			message = apperrors.UserMessage(err)
		}
		c.Header("HX-Retarget", "#"+dialogID(kind))
		c.Header("HX-Reswap", "innerHTML")
		if op == apiexternal.OperationDelete {
			row := result.Row
			if cached, err := a.Grids.Row(c.Request.Context(), kind, row.ID); err == nil {
				row = cached
			}
			a.deleteDialog(c, kind, row, message)
			return
		}
		a.editDialog(c, kind, result.Row, message)
		return
	}
	if err != nil || result.Grid == nil {
		logFailure(c, err, "grid reload failed")
		renderNode(c, http.StatusOK, a.Render.GridError(kind, apperrors.UserMessage(err)))
		return
	}
	nav, err := a.navLabels()
	if err != nil {
		renderNode(c, http.StatusOK, a.Render.GridError(kind, apperrors.UserMessage(err)))
		return
	}
	renderNode(c, http.StatusOK, a.Render.Grid(result.Grid, nav))
}

func (a *Admin) configForm(c *gin.Context, values apiexternal.ConfigurationForm, banner configuration.Banner) {
	labels, err := a.formLabels()
	if err != nil {
		logFailure(c, err, "configuration labels")
		renderNode(c, http.StatusOK, a.Render.Fragment("configuration", apperrors.UserMessage(err)))
		return
	}
	renderNode(c, http.StatusOK, a.Render.ConfigForm(values, banner, labels))
}

// @Summary      Configuration form
// @Tags         configuration
// @Success      200  {object}  string
// @Router       /admin/configuration [get]
func (a *Admin) apiConfigurationGet(c *gin.Context) {
	values, err := a.Config.Load(c.Request.Context())
	if err != nil {
		logFailure(c, err, "configuration not loaded")
		a.configForm(c, values, configuration.Banner{Kind: configuration.BannerError, Text: apperrors.UserMessage(err)})
		return
	}
	a.configForm(c, values, configuration.Banner{})
}

// @Summary      Save configuration
// @Description  Posts server name, port and log level as typed and returns the banner
// @Tags         configuration
// @Param        serverName      formData  string  false  "server name"
// @Param        httpServerPort  formData  string  false  "http port"
// @Param        logLevel        formData  string  false  "log level"
// @Success      200  {object}  string
// @Router       /admin/configuration [post]
func (a *Admin) apiConfigurationPost(c *gin.Context) {
	banner, err := a.Config.Submit(c.Request.Context(), apiexternal.ConfigurationForm{
		ServerName:     c.PostForm("serverName"),
		HTTPServerPort: c.PostForm("httpServerPort"),
		LogLevel:       c.PostForm("logLevel"),
	})
	if err != nil {
		logFailure(c, err, "configuration not saved")
	}
	renderNode(c, http.StatusOK, a.Render.Banner(banner))
}

func (a *Admin) apiConfigurationReset(c *gin.Context) {
	values, banner, err := a.Config.Reset(c.Request.Context())
	if err != nil {
		logFailure(c, err, "configuration not reloaded")
	}
	a.configForm(c, values, banner)
}

func (a *Admin) renderSettings(c *gin.Context) {
	var buf bytes.Buffer
	if err := a.Settings.Render(c.Request.Context(), &buf); err != nil {
		logFailure(c, err, "settings not rendered")
		renderNode(c, http.StatusOK, a.Render.Fragment("settings", apperrors.UserMessage(err)))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// @Summary      Settings view
// @Tags         settings
// @Success      200  {object}  string
// @Router       /admin/settings [get]
func (a *Admin) apiSettingsGet(c *gin.Context) {
	a.renderSettings(c)
}

// @Summary      Save settings
// @Description  Returns the notification, or 204 when a later save of the same form superseded this one
// @Tags         settings
// @Param        token                   formData  string  false  "token of the rendered form"
// @Param        serverName              formData  string  false  "server name"
// @Param        prependPodcastItem      formData  bool    false  "checkbox"
// @Param        enableIcecastDirectory  formData  bool    false  "checkbox"
// @Success      200  {object}  string
// @Success      204
// @Router       /admin/settings [post]
func (a *Admin) apiSettingsPost(c *gin.Context) {
	n := a.Settings.Save(c.Request.Context(), settings.Form{
		Token:                  c.PostForm("token"),
		ServerName:             c.PostForm("serverName"),
		PrependPodcastItem:     cast.ToBool(strings.TrimSpace(c.PostForm("prependPodcastItem"))),
		EnableIcecastDirectory: cast.ToBool(strings.TrimSpace(c.PostForm("enableIcecastDirectory"))),
	})
	if n.Stale {
		c.Status(http.StatusNoContent)
		return
	}
	renderNode(c, http.StatusOK, a.Render.Notification(n))
}

// apiSettingsCancel drops the edits and shows a fresh copy.
func (a *Admin) apiSettingsCancel(c *gin.Context) {
	var buf bytes.Buffer
	if err := a.Settings.Cancel(c.Request.Context(), &buf); err != nil {
		logFailure(c, err, "settings not reloaded")
		renderNode(c, http.StatusOK, a.Render.Fragment("settings", apperrors.UserMessage(err)))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
