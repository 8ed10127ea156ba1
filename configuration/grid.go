package configuration

import (
	"context"
	"time"

	"github.com/Kellerman81/holmes_admin/apiexternal"
	"github.com/Kellerman81/holmes_admin/apperrors"
	"github.com/Kellerman81/holmes_admin/i18n"
	"github.com/Kellerman81/holmes_admin/logger"
	"github.com/allegro/bigcache/v3"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FolderBackend is the part of the holmes client the grids need.
type FolderBackend interface {
	GetFolders(ctx context.Context, kind apiexternal.FolderKind) ([]apiexternal.FolderEntry, error)
	EditFolder(ctx context.Context, kind apiexternal.FolderKind, op apiexternal.Operation, entry apiexternal.FolderEntry) ([]byte, error)
}

// Column describes one grid column.
type Column struct {
	Name     string
	Label    string
	Hidden   bool
	Editable bool
	Required bool
	Size     int
}

// GridLabels are the localised captions of one grid and its dialogs.
type GridLabels struct {
	Folders       string
	EditCaption   string
	AddCaption    string
	RemoveCaption string
	RemoveMsg     string
}

// Grid is the client side view of one folder collection.
type Grid struct {
	Kind    apiexternal.FolderKind
	Labels  GridLabels
	Columns []Column
	Rows    []apiexternal.FolderEntry
	Height  int
}

// SubmitResult is the outcome of an add, edit or delete.
// On failure Reopen is set and Row holds the values to show again.
type SubmitResult struct {
	Operation apiexternal.Operation
	Response  EditResponseData
	Reopen    bool
	Row       apiexternal.FolderEntry
	Grid      *Grid
}

// GridController binds the four folder grids to their backend endpoints.
type GridController struct {
	client FolderBackend
	lookup i18n.Lookup
	rows   *bigcache.BigCache
	height int
}

// NewGridController creates the controller with a row cache expiring after ttl.
func NewGridController(ctx context.Context, client FolderBackend, lookup i18n.Lookup, ttl time.Duration, height int) (*GridController, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.CleanWindow = ttl
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = 4096
	cfg.MaxEntrySize = 256
	cfg.HardMaxCacheSize = 8
	cfg.Verbose = false
	cfg.Logger = logger.Log
	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create row cache")
	}
	return &GridController{client: client, lookup: lookup, rows: cache, height: height}, nil
}

// Close releases the row cache.
func (g *GridController) Close() error {
	return g.rows.Close()
}

// cacheKey holds the whole row list of a kind.
func cacheKey(kind apiexternal.FolderKind) string {
	return "rows/" + string(kind)
}

func prefix(kind apiexternal.FolderKind) string {
	return "msg." + string(kind)
}

// pathColumn is the message key of the path column; podcasts show a URL.
func pathColumn(kind apiexternal.FolderKind) string {
	if kind == apiexternal.FolderPodcast {
		return prefix(kind) + ".url"
	}
	return prefix(kind) + ".path"
}

// Labels resolves the captions of a grid. A missing key is an error.
func (g *GridController) Labels(kind apiexternal.FolderKind) (GridLabels, error) {
	p := prefix(kind)
	m, err := i18n.Labels(g.lookup, p+".folders", p+".edit.caption", p+".add.caption", p+".remove.caption", p+".remove.msg")
	if err != nil {
		return GridLabels{}, err
	}
	return GridLabels{
		Folders:       m[p+".folders"],
		EditCaption:   m[p+".edit.caption"],
		AddCaption:    m[p+".add.caption"],
		RemoveCaption: m[p+".remove.caption"],
		RemoveMsg:     m[p+".remove.msg"],
	}, nil
}

// Columns returns id (hidden), label and path, all labelled from the bundle.
func (g *GridController) Columns(kind apiexternal.FolderKind) ([]Column, error) {
	p := prefix(kind)
	m, err := i18n.Labels(g.lookup, p+".id", p+".label", pathColumn(kind))
	if err != nil {
		return nil, err
	}
	return []Column{
		{Name: "id", Label: m[p+".id"], Hidden: true},
		{Name: "label", Label: m[p+".label"], Editable: true, Required: true},
		{Name: "path", Label: m[pathColumn(kind)], Editable: true, Required: true, Size: 70},
	}, nil
}

// Init loads the rows of kind in server order and replaces the cached rows of kind.
func (g *GridController) Init(ctx context.Context, kind apiexternal.FolderKind) (*Grid, error) {
	labels, err := g.Labels(kind)
	if err != nil {
		return nil, err
	}
	columns, err := g.Columns(kind)
	if err != nil {
		return nil, err
	}
	rows, err := g.client.GetFolders(ctx, kind)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, errors.Wrap(err, "cache rows")
	}
	if err := g.rows.Set(cacheKey(kind), data); err != nil {
		_ = g.rows.Delete(cacheKey(kind))
		logger.Log.WithError(err).WithField("kind", kind).Warnln("rows not cached")
	}
	logger.Log.WithFields(logrus.Fields{"kind": kind, "rows": len(rows)}).Debugln("grid loaded")
	return &Grid{Kind: kind, Labels: labels, Columns: columns, Rows: rows, Height: g.height}, nil
}

// Row returns one row for the edit and delete dialogs. A cache miss reloads the grid.
func (g *GridController) Row(ctx context.Context, kind apiexternal.FolderKind, id string) (apiexternal.FolderEntry, error) {
	if entry, ok := g.cached(kind, id); ok {
		return entry, nil
	}
	if _, err := g.Init(ctx, kind); err != nil {
		return apiexternal.FolderEntry{}, err
	}
	if entry, ok := g.cached(kind, id); ok {
		return entry, nil
	}
	return apiexternal.FolderEntry{}, apperrors.New(apperrors.ErrClassBackend, "row", "unknown "+string(kind)+" row "+id)
}

func (g *GridController) cached(kind apiexternal.FolderKind, id string) (apiexternal.FolderEntry, bool) {
	data, err := g.rows.Get(cacheKey(kind))
	if err != nil {
		return apiexternal.FolderEntry{}, false
	}
	var rows []apiexternal.FolderEntry
	if err := json.Unmarshal(data, &rows); err != nil {
		return apiexternal.FolderEntry{}, false
	}
	for idx := range rows {
		if rows[idx].ID == id {
			return rows[idx], true
		}
	}
	return apiexternal.FolderEntry{}, false
}

// validate checks the fields an operation needs before anything is sent.
func validate(op apiexternal.Operation, row apiexternal.FolderEntry) error {
	if op != apiexternal.OperationAdd && row.ID == "" {
		return apperrors.Required("id")
	}
	if op == apiexternal.OperationDelete {
		return nil
	}
	if row.Label == "" {
		return apperrors.Required("label")
	}
	if row.Path == "" {
		return apperrors.Required("path")
	}
	return nil
}

// Submit sends one add, edit or delete. Invalid rows never reach the backend.
// A refused operation asks for the dialog to be reopened with the backend
// message; an accepted one reloads the grid from the server.
func (g *GridController) Submit(ctx context.Context, kind apiexternal.FolderKind, op apiexternal.Operation, row apiexternal.FolderEntry) (SubmitResult, error) {
	row = apiexternal.FolderEntry{
		ID:    logger.CleanFormValue(row.ID),
		Label: logger.CleanFormValue(row.Label),
		Path:  logger.CleanFormValue(row.Path),
	}
	if op == apiexternal.OperationAdd {
		row.ID = ""
	}
	if err := validate(op, row); err != nil {
		return SubmitResult{Operation: op, Reopen: true, Row: row}, err
	}

	body, err := g.client.EditFolder(ctx, kind, op, row)
	if err != nil {
		return SubmitResult{Operation: op, Reopen: true, Row: row}, err
	}
	data := GetEditResponseData(body)
	result := SubmitResult{Operation: op, Response: data, Row: row}
	logger.Log.WithFields(logrus.Fields{"kind": kind, "oper": op, "id": row.ID, "status": data.Status}).Infoln("grid submit")
	if !data.Status {
		result.Reopen = true
		return result, nil
	}

	_ = g.rows.Delete(cacheKey(kind))
	grid, err := g.Init(ctx, kind)
	if err != nil {
		return result, errors.Wrap(err, "reload after submit")
	}
	result.Grid = grid
	return result, nil
}
