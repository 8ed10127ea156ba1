package api

import (
	"io"
	"net/url"
	"strconv"

	"github.com/Kellerman81/holmes_admin/apiexternal"
	"github.com/Kellerman81/holmes_admin/configuration"
	"github.com/Kellerman81/holmes_admin/logger"
	"github.com/Kellerman81/holmes_admin/settings"
	. "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// Renderer builds every page and fragment of the console. It implements
// settings.Renderer.
type Renderer struct{}

// dialogLabels are the texts shared by all dialogs.
type dialogLabels struct {
	Submit string
	Cancel string
	Remove string
}

// formLabels are the texts of the mini settings form.
type formLabels struct {
	Title          string
	ServerName     string
	HTTPServerPort string
	LogLevel       string
	Save           string
	Reset          string
}

// navLabels are the grid toolbar tooltips.
type navLabels struct {
	Add     string
	Edit    string
	Remove  string
	Refresh string
}

func gridID(kind apiexternal.FolderKind) string   { return "grid-" + string(kind) }
func dialogID(kind apiexternal.FolderKind) string { return "dialog-" + string(kind) }
func gridURL(kind apiexternal.FolderKind) string  { return "/admin/grid/" + string(kind) }

// createAlert creates a dismissible alert.
func createAlert(message, alertType string) Node {
	var icon string
	switch alertType {
	case "success":
		icon = "fas fa-check-circle"
	case "danger":
		icon = "fas fa-exclamation-triangle"
	case "warning":
		icon = "fas fa-exclamation-circle"
	default:
		icon = "fas fa-info-circle"
	}
	return Div(
		Class("alert alert-"+alertType+" alert-dismissible shadow-sm"),
		Role("alert"),
		Button(
			Type("button"),
			Class("btn-close"),
			Data("bs-dismiss", "alert"),
			Aria("label", "Close"),
		),
		Div(
			Class("d-flex align-items-center"),
			I(Class(icon+" me-3")),
			Span(Class("alert-message"), Text(message)),
		),
	)
}

// Page is the admin page. Every section loads its own fragment.
func (Renderer) Page(title string, tabs []Node) Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(Text(title)),
				Link(Rel("stylesheet"), Href("https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css")),
				Script(Src("https://unpkg.com/htmx.org")),
				Script(Src("https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/js/bootstrap.bundle.min.js")),
			),
			Body(
				Main(Class("container-fluid p-3"),
					Div(ID("tabs"), Group(tabs)),
				),
			),
		),
	)
}

// Section wraps one lazily loaded fragment of the page.
func (Renderer) Section(id, caption, src string) Node {
	return Section(
		Class("card mb-3"),
		ID("tab-"+id),
		Data("caption", logger.StringToSlug(caption)),
		Header(Class("card-header"), H5(Text(caption))),
		Div(
			Class("card-body"),
			Div(hx.Get(src), hx.Trigger("load"), hx.Swap("outerHTML"), Text("...")),
		),
	)
}

// Grid renders a folder grid. The dialog container lives inside the grid so
// replacing the grid also closes any open dialog.
func (Renderer) Grid(grid *configuration.Grid, nav navLabels) Node {
	var head []Node
	for _, col := range grid.Columns {
		head = append(head, Th(If(col.Hidden, Style("display:none")), Text(col.Label)))
	}
	head = append(head, Th())

	var rows []Node
	for _, row := range grid.Rows {
		rows = append(rows, Tr(
			Data("id", row.ID),
			Td(Style("display:none"), Text(row.ID)),
			Td(Text(row.Label)),
			Td(Text(row.Path)),
			Td(
				Class("text-end"),
				Button(Type("button"), Class("btn btn-sm btn-outline-primary me-1"), Attr("title", nav.Edit),
					hx.Get(gridURL(grid.Kind)+"/form?id="+url.QueryEscape(row.ID)), hx.Target("#"+dialogID(grid.Kind)), hx.Swap("innerHTML"),
					I(Class("fas fa-pen"))),
				Button(Type("button"), Class("btn btn-sm btn-outline-danger"), Attr("title", nav.Remove),
					hx.Get(gridURL(grid.Kind)+"/delete?id="+url.QueryEscape(row.ID)), hx.Target("#"+dialogID(grid.Kind)), hx.Swap("innerHTML"),
					I(Class("fas fa-trash"))),
			),
		))
	}

	return Div(
		ID(gridID(grid.Kind)),
		Class("folder-grid"),
		Div(
			Class("d-flex justify-content-between mb-2"),
			H5(Class("grid-caption"), Text(grid.Labels.Folders)),
			Div(
				Button(Type("button"), Class("btn btn-sm btn-primary me-1"), Attr("title", nav.Add),
					hx.Get(gridURL(grid.Kind)+"/form"), hx.Target("#"+dialogID(grid.Kind)), hx.Swap("innerHTML"),
					I(Class("fas fa-plus"))),
				Button(Type("button"), Class("btn btn-sm btn-secondary"), Attr("title", nav.Refresh),
					hx.Get(gridURL(grid.Kind)), hx.Target("#"+gridID(grid.Kind)), hx.Swap("outerHTML"),
					I(Class("fas fa-sync"))),
			),
		),
		Div(
			Style("height:"+strconv.Itoa(grid.Height)+"px; overflow-y:auto"),
			Table(
				Class("table table-sm table-striped"),
				THead(Tr(Group(head))),
				TBody(Group(rows)),
			),
		),
		Div(ID(dialogID(grid.Kind))),
	)
}

// GridError replaces a grid that could not be loaded.
func (Renderer) GridError(kind apiexternal.FolderKind, message string) Node {
	return Div(
		ID(gridID(kind)),
		Class("folder-grid"),
		createAlert(message, "danger"),
		Button(Type("button"), Class("btn btn-sm btn-secondary"),
			hx.Get(gridURL(kind)), hx.Target("#"+gridID(kind)), hx.Swap("outerHTML"), Text("Retry")),
		Div(ID(dialogID(kind))),
	)
}

// EditDialog is the add dialog when row has no id, the edit dialog otherwise.
// message is shown above the fields when the dialog is reopened.
func (Renderer) EditDialog(kind apiexternal.FolderKind, caption string, columns []configuration.Column, row apiexternal.FolderEntry, message string, labels dialogLabels) Node {
	oper, id := apiexternal.OperationEdit, row.ID
	if row.ID == "" {
		oper, id = apiexternal.OperationAdd, apiexternal.EmptyID
	}
	values := map[string]string{"label": row.Label, "path": row.Path}

	var fields []Node
	for _, col := range columns {
		if !col.Editable {
			continue
		}
		fields = append(fields, Div(
			Class("mb-2"),
			Label(Class("form-label"), For(string(kind)+"-"+col.Name), Text(col.Label)),
			Input(
				Type("text"),
				Class("form-control"),
				ID(string(kind)+"-"+col.Name),
				Name(col.Name),
				Value(values[col.Name]),
				If(col.Required, Required()),
				If(col.Size > 0, Attr("size", strconv.Itoa(col.Size))),
			),
		))
	}

	return Div(
		Class("card card-body dialog"),
		H5(Class("dialog-caption"), Text(caption)),
		If(message != "", createAlert(message, "danger")),
		Form(
			hx.Post(gridURL(kind)), hx.Target("#"+gridID(kind)), hx.Swap("outerHTML"),
			Input(Type("hidden"), Name("oper"), Value(string(oper))),
			Input(Type("hidden"), Name("id"), Value(id)),
			Group(fields),
			Button(Type("submit"), Class("btn btn-primary me-1"), Text(labels.Submit)),
			Button(Type("button"), Class("btn btn-secondary"),
				hx.Get(gridURL(kind)), hx.Target("#"+gridID(kind)), hx.Swap("outerHTML"), Text(labels.Cancel)),
		),
	)
}

// DeleteDialog asks for confirmation before a row is removed.
func (Renderer) DeleteDialog(kind apiexternal.FolderKind, caption, question string, row apiexternal.FolderEntry, message string, labels dialogLabels) Node {
	return Div(
		Class("card card-body dialog"),
		H5(Class("dialog-caption"), Text(caption)),
		If(message != "", createAlert(message, "danger")),
		P(Text(question)),
		P(Class("text-muted"), Text(row.Label+" "+row.Path)),
		Form(
			hx.Post(gridURL(kind)), hx.Target("#"+gridID(kind)), hx.Swap("outerHTML"),
			Input(Type("hidden"), Name("oper"), Value(string(apiexternal.OperationDelete))),
			Input(Type("hidden"), Name("id"), Value(row.ID)),
			Button(Type("submit"), Class("btn btn-danger me-1"), Text(labels.Remove)),
			Button(Type("button"), Class("btn btn-secondary"),
				hx.Get(gridURL(kind)), hx.Target("#"+gridID(kind)), hx.Swap("outerHTML"), Text(labels.Cancel)),
		),
	)
}

// Banner is the message below the mini form.
func (Renderer) Banner(b configuration.Banner) Node {
	if b.Kind == configuration.BannerNone {
		return Group(nil)
	}
	return createAlert(b.Text, string(b.Kind))
}

// ConfigForm renders the mini settings form with its banner area.
func (r Renderer) ConfigForm(values apiexternal.ConfigurationForm, banner configuration.Banner, labels formLabels) Node {
	var options []Node
	for _, level := range apiexternal.LogLevels {
		options = append(options, Option(Value(level), Text(level), If(values.LogLevel == level, Selected())))
	}
	return Div(
		ID("configuration"),
		Form(
			ID("configuration_form"),
			hx.Post("/admin/configuration"), hx.Target("#message"), hx.Swap("innerHTML"),
			Div(Class("mb-2"),
				Label(Class("form-label"), For("text_server_name"), Text(labels.ServerName)),
				Input(Type("text"), Class("form-control"), ID("text_server_name"), Name("serverName"), Value(values.ServerName)),
			),
			Div(Class("mb-2"),
				Label(Class("form-label"), For("text_http_server_port"), Text(labels.HTTPServerPort)),
				Input(Type("text"), Class("form-control"), ID("text_http_server_port"), Name("httpServerPort"), Value(values.HTTPServerPort)),
			),
			Div(Class("mb-2"),
				Label(Class("form-label"), For("select_log_level"), Text(labels.LogLevel)),
				Select(Class("form-select"), ID("select_log_level"), Name("logLevel"), Group(options)),
			),
			Button(Type("submit"), ID("btn_submit"), Class("btn btn-primary me-1"), Text(labels.Save)),
			Button(Type("button"), ID("btn_reset"), Class("btn btn-secondary"),
				hx.Post("/admin/configuration/reset"), hx.Target("#configuration"), hx.Swap("outerHTML"), Text(labels.Reset)),
		),
		Div(ID("message"), Class("mt-2"), r.Banner(banner)),
	)
}

func (Renderer) settingsView(m settings.Model) Node {
	return Div(
		ID("settings"),
		H3(Text(m.Labels.Title)),
		Form(
			hx.Post("/admin/settings"), hx.Target("#messagebox"), hx.Swap("innerHTML"),
			Input(Type("hidden"), Name("token"), Value(m.Token)),
			Div(Class("mb-2"),
				Label(Class("form-label"), For("settingsServerName"), Text(m.Labels.ServerName)),
				Input(Type("text"), Class("form-control"), ID("settingsServerName"), Name("serverName"), Value(m.Settings.ServerName)),
			),
			Div(Class("form-check"),
				Input(Type("checkbox"), Class("form-check-input"), ID("chkPrependPodcastItem"), Name("prependPodcastItem"), Value("true"),
					If(m.Settings.PrependPodcastItem, Checked())),
				Label(Class("form-check-label"), For("chkPrependPodcastItem"), Text(m.Labels.PrependPodcastItem)),
			),
			Div(Class("form-check mb-2"),
				Input(Type("checkbox"), Class("form-check-input"), ID("chkEnableIcecastDirectory"), Name("enableIcecastDirectory"), Value("true"),
					If(m.Settings.EnableIcecastDirectory, Checked())),
				Label(Class("form-check-label"), For("chkEnableIcecastDirectory"), Text(m.Labels.EnableIcecastDirectory)),
			),
			Button(Type("button"), ID("btnSettingsCancel"), Class("btn btn-secondary me-1"),
				hx.Post("/admin/settings/cancel"), hx.Target("#settings"), hx.Swap("outerHTML"), Text(m.Labels.Cancel)),
			Button(Type("submit"), ID("btnSettingsSave"), Class("btn btn-primary"), Text(m.Labels.Save)),
		),
		Div(ID("messagebox"), Class("mt-2")),
	)
}

// RenderSettings writes the settings view.
func (r Renderer) RenderSettings(w io.Writer, m settings.Model) error {
	return r.settingsView(m).Render(w)
}

// Notification is the alert shown after a settings save.
func (Renderer) Notification(n settings.Notification) Node {
	return createAlert(n.Text, string(n.Kind))
}

// Fragment is an alert shown in place of a fragment that failed to load.
func (Renderer) Fragment(id, message string) Node {
	return Div(ID(id), createAlert(message, "danger"))
}
